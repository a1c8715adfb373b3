package render

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/go-gemini-client/gemini"
	"google.golang.org/genai"
)

// Engine は情景描写から 1 枚の画像を合成するアダプター層です。
type Engine struct {
	aiClient gemini.GenerativeModel // 通信クライアント
	assets   *AssetCore             // 参照画像の準備
	model    string                 // 使用する画像モデル名
}

// NewEngine は依存関係を注入して Engine を初期化します。
func NewEngine(aiClient gemini.GenerativeModel, assets *AssetCore, model string) (*Engine, error) {
	if aiClient == nil {
		return nil, fmt.Errorf("aiClient (gemini.GenerativeModel) is required")
	}
	if assets == nil {
		return nil, fmt.Errorf("assets (AssetCore) is required")
	}
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}

	return &Engine{
		aiClient: aiClient,
		assets:   assets,
		model:    model,
	}, nil
}

// Render は描写をプロンプトに束ねて画像モデルを呼び、先頭の画像データを返します。
// 応答に画像が 1 件もなければ ErrNoImage、キーが拒否されれば ErrKeyRejected を返します。
func (e *Engine) Render(ctx context.Context, req Request) (*Result, error) {
	if req.Context == nil {
		return nil, fmt.Errorf("context (VisualContext) is required")
	}

	prompt := BuildPrompt(req.Context.Description, req.Style)
	slog.InfoContext(ctx, "画像を合成しています", "model", e.model, "style", req.Style)

	parts := []*genai.Part{{Text: prompt}}
	if req.ReferenceURL != "" {
		if imgPart := e.assets.PrepareImagePart(ctx, req.ReferenceURL); imgPart != nil {
			parts = append(parts, imgPart)
		}
	}

	opts := gemini.GenerateOptions{
		AspectRatio: DefaultAspectRatio,
		Seed:        req.Seed,
	}

	resp, err := e.aiClient.GenerateWithParts(ctx, e.model, parts, opts)
	if err != nil {
		if isKeyRejection(err) {
			return nil, fmt.Errorf("画像合成が拒否されました: %w: %w", ErrKeyRejected, err)
		}
		return nil, fmt.Errorf("画像合成の呼び出しに失敗しました: %w", err)
	}

	out, err := parseOutput(resp, dereferenceSeed(req.Seed))
	if err != nil {
		return nil, err
	}

	return &Result{Output: *out, Prompt: prompt}, nil
}

// parseOutput は先頭候補のパーツ列を走査し、最初の画像データを取り出します。
func parseOutput(resp *gemini.Response, seed int64) (*ImageOutput, error) {
	if resp == nil || resp.RawResponse == nil || len(resp.RawResponse.Candidates) == 0 {
		return nil, fmt.Errorf("画像合成の応答が空でした")
	}

	candidate := resp.RawResponse.Candidates[0]
	if candidate.Content == nil {
		return nil, ErrNoImage
	}
	for _, part := range candidate.Content.Parts {
		if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return &ImageOutput{
				Data:     part.InlineData.Data,
				MimeType: part.InlineData.MIMEType,
				UsedSeed: seed,
			}, nil
		}
	}
	return nil, ErrNoImage
}
