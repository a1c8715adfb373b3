package scene

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shouni/go-gemini-client/gemini"
	"google.golang.org/genai"

	"github.com/shouni/go-chronolens-kit/pkg/domain"
)

// Composer は場所と日時の言語化を担当するアダプター層です。
type Composer struct {
	aiClient gemini.GenerativeModel // 通信クライアント
	model    string                 // 使用する解析モデル名
}

// NewComposer は依存関係を注入して Composer を初期化します。
func NewComposer(aiClient gemini.GenerativeModel, model string) (*Composer, error) {
	if aiClient == nil {
		return nil, fmt.Errorf("aiClient (gemini.GenerativeModel) is required")
	}
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}
	return &Composer{aiClient: aiClient, model: model}, nil
}

// Compose はリクエストを解析モデルに渡し、描写と物語の対を返します。
// 通信が成功していれば応答の JSON が崩れていてもエラーにしません。
func (c *Composer) Compose(ctx context.Context, req domain.GenerationRequest) (*domain.VisualContext, error) {
	slog.InfoContext(ctx, "情景を解析しています",
		"model", c.model, "location", req.Location.Label(), "date", req.Date)

	parts := []*genai.Part{{Text: BuildScenePrompt(req)}}
	opts := gemini.GenerateOptions{SystemPrompt: ScenePersona}

	resp, err := c.aiClient.GenerateWithParts(ctx, c.model, parts, opts)
	if err != nil {
		return nil, fmt.Errorf("情景解析の呼び出しに失敗しました: %w", err)
	}

	raw, err := extractText(resp)
	if err != nil {
		return nil, err
	}

	return parseVisualContext(raw), nil
}

// extractText は先頭候補のテキストパーツを連結して取り出します。
func extractText(resp *gemini.Response) (string, error) {
	if resp == nil || resp.RawResponse == nil || len(resp.RawResponse.Candidates) == 0 {
		return "", fmt.Errorf("情景解析の応答が空でした")
	}

	candidate := resp.RawResponse.Candidates[0]
	if candidate.Content == nil {
		return "", fmt.Errorf("情景解析の応答にコンテンツが含まれていません")
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("情景解析の応答にテキストが含まれていません")
	}
	return sb.String(), nil
}
