package scene

import (
	"context"

	"github.com/shouni/go-gemini-client/gemini"
	"google.golang.org/genai"
)

// --- Mocks ---

type mockAIClient struct {
	generateFunc func(ctx context.Context, model string, parts []*genai.Part, opts gemini.GenerateOptions) (*gemini.Response, error)

	lastModel string
	lastParts []*genai.Part
	lastOpts  gemini.GenerateOptions
	callCount int
}

func (m *mockAIClient) UploadFile(ctx context.Context, data []byte, mimeType, displayName string) (string, string, error) {
	return "", "", nil
}

func (m *mockAIClient) DeleteFile(ctx context.Context, name string) error {
	return nil
}

func (m *mockAIClient) GenerateContent(ctx context.Context, model string, prompt string) (*gemini.Response, error) {
	return nil, nil
}

func (m *mockAIClient) GenerateWithParts(ctx context.Context, model string, parts []*genai.Part, opts gemini.GenerateOptions) (*gemini.Response, error) {
	m.callCount++
	m.lastModel = model
	m.lastParts = parts
	m.lastOpts = opts
	if m.generateFunc == nil {
		return textResponse(""), nil
	}
	return m.generateFunc(ctx, model, parts, opts)
}

func (m *mockAIClient) GetFile(ctx context.Context, name string) (*genai.File, error) {
	return nil, nil
}

// textResponse はテキストパーツ 1 つだけを持つ応答を組み立てるヘルパーです。
func textResponse(text string) *gemini.Response {
	return &gemini.Response{
		RawResponse: &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{
					Parts: []*genai.Part{{Text: text}},
				},
			}},
		},
	}
}
