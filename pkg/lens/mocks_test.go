package lens

import (
	"context"

	"github.com/shouni/go-chronolens-kit/pkg/domain"
	"github.com/shouni/go-chronolens-kit/pkg/render"
)

// --- Mocks ---

type mockKeys struct {
	has            bool
	grantOnRequest bool // RequestKey でキーが入力された状況を再現する
	requestErr     error
	requestCalls   int
}

func (m *mockKeys) HasKey() bool {
	return m.has
}

func (m *mockKeys) RequestKey(ctx context.Context) error {
	m.requestCalls++
	if m.requestErr != nil {
		return m.requestErr
	}
	if m.grantOnRequest {
		m.has = true
	}
	return nil
}

func (m *mockKeys) Key() string {
	if m.has {
		return "test-api-key"
	}
	return ""
}

type mockComposer struct {
	composeFunc func(ctx context.Context, req domain.GenerationRequest) (*domain.VisualContext, error)
	calls       int
	lastReq     domain.GenerationRequest
}

func (m *mockComposer) Compose(ctx context.Context, req domain.GenerationRequest) (*domain.VisualContext, error) {
	m.calls++
	m.lastReq = req
	if m.composeFunc == nil {
		return &domain.VisualContext{
			Description: "tricolour rising over red sandstone ramparts",
			Story:       "The first morning of independence.",
		}, nil
	}
	return m.composeFunc(ctx, req)
}

type mockRenderer struct {
	renderFunc func(ctx context.Context, req render.Request) (*render.Result, error)
	calls      int
	lastReq    render.Request
}

func (m *mockRenderer) Render(ctx context.Context, req render.Request) (*render.Result, error) {
	m.calls++
	m.lastReq = req
	if m.renderFunc == nil {
		return &render.Result{
			Output: render.ImageOutput{Data: []byte("png-bytes"), MimeType: "image/png"},
			Prompt: render.BuildPrompt(req.Context.Description, req.Style),
		}, nil
	}
	return m.renderFunc(ctx, req)
}

type mockResolver struct {
	name  string
	calls int
}

// ReverseLookupAsync はテストを決定的にするため update を同期的に呼びます。
func (m *mockResolver) ReverseLookupAsync(ctx context.Context, coords domain.Coordinates, update func(name string)) {
	m.calls++
	if m.name != "" {
		update(m.name)
	}
}
