package ai

import (
	"bytes"
	"context"
	"fmt"

	"github.com/shouni/go-gemini-client/gemini"
	"google.golang.org/genai"
)

// Client は gemini.GenerativeModel を google.golang.org/genai で実装したものです。
// 生成パラメータのうちモデル呼び出しごとに変わらないもの（温度・解像度ティア）は
// ここで固定し、アダプター層にはインターフェースだけを見せます。
type Client struct {
	client      *genai.Client
	temperature *float32
	imageSize   string // "1K" / "2K" / "4K"。空なら指定なし
}

var _ gemini.GenerativeModel = (*Client)(nil)

// Options は Client 構築時に固定する生成パラメータです。
type Options struct {
	Temperature *float32
	ImageSize   string
}

// New は API キーで Gemini API バックエンドへのクライアントを構築します。
func New(ctx context.Context, apiKey string, opts Options) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("apiKey is required")
	}

	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("Geminiクライアントの構築に失敗しました: %w", err)
	}

	return &Client{
		client:      c,
		temperature: opts.Temperature,
		imageSize:   opts.ImageSize,
	}, nil
}

// GenerateContent は単一テキストプロンプトで生成を実行します。
func (c *Client) GenerateContent(ctx context.Context, model string, prompt string) (*gemini.Response, error) {
	return c.GenerateWithParts(ctx, model, []*genai.Part{{Text: prompt}}, gemini.GenerateOptions{})
}

// GenerateWithParts は複数パーツと生成オプションを指定して生成を実行します。
// AspectRatio が指定されたときだけ画像応答モードになります。
func (c *Client) GenerateWithParts(ctx context.Context, model string, parts []*genai.Part, opts gemini.GenerateOptions) (*gemini.Response, error) {
	cfg := buildGenerateConfig(c.temperature, c.imageSize, opts)

	raw, err := c.client.Models.GenerateContent(ctx, model, []*genai.Content{{Parts: parts}}, cfg)
	if err != nil {
		// genai.APIError は構造化コードごと呼び出し側へ渡す
		return nil, err
	}
	return &gemini.Response{RawResponse: raw}, nil
}

// UploadFile はバイナリを File API へアップロードし、URI と管理名を返します。
func (c *Client) UploadFile(ctx context.Context, data []byte, mimeType, displayName string) (string, string, error) {
	f, err := c.client.Files.Upload(ctx, bytes.NewReader(data), &genai.UploadFileConfig{
		MIMEType:    mimeType,
		DisplayName: displayName,
	})
	if err != nil {
		return "", "", fmt.Errorf("File APIへのアップロードに失敗しました: %w", err)
	}
	return f.URI, f.Name, nil
}

// DeleteFile は File API 上の実体を管理名 (files/xxxx) で削除します。
func (c *Client) DeleteFile(ctx context.Context, name string) error {
	if _, err := c.client.Files.Delete(ctx, name, nil); err != nil {
		return fmt.Errorf("File API上のファイル削除に失敗しました: %w", err)
	}
	return nil
}

// GetFile は File API 上のメタデータを取得します。
func (c *Client) GetFile(ctx context.Context, name string) (*genai.File, error) {
	return c.client.Files.Get(ctx, name, nil)
}

// buildGenerateConfig は固定パラメータと呼び出しごとのオプションを 1 つの設定に畳み込みます。
func buildGenerateConfig(temperature *float32, imageSize string, opts gemini.GenerateOptions) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature: temperature,
	}

	if opts.SystemPrompt != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: opts.SystemPrompt}}}
	}
	if opts.Seed != nil {
		cfg.Seed = seedToPtrInt32(opts.Seed)
	}
	if opts.AspectRatio != "" {
		cfg.ResponseModalities = []string{"TEXT", "IMAGE"}
		cfg.ImageConfig = &genai.ImageConfig{AspectRatio: opts.AspectRatio}
		if imageSize != "" {
			cfg.ImageConfig.ImageSize = imageSize
		}
	}
	return cfg
}

// seedToPtrInt32 は *int64 を SDK が期待する *int32 へ変換します。
func seedToPtrInt32(s *int64) *int32 {
	if s == nil {
		return nil
	}
	v := int32(*s)
	return &v
}
