package builder

import (
	"context"
	"fmt"

	"github.com/shouni/go-chronolens-kit/internal/ai"
	"github.com/shouni/go-chronolens-kit/internal/config"
	"github.com/shouni/go-chronolens-kit/pkg/apikey"
	"github.com/shouni/go-chronolens-kit/pkg/geocode"
	"github.com/shouni/go-chronolens-kit/pkg/lens"
	"github.com/shouni/go-chronolens-kit/pkg/render"
	"github.com/shouni/go-chronolens-kit/pkg/scene"

	gocache "github.com/patrickmn/go-cache"
	"github.com/shouni/go-gemini-client/gemini"
	"github.com/shouni/go-http-kit/httpkit"
	"github.com/shouni/go-remote-io/pkg/gcsfactory"
	"github.com/shouni/go-remote-io/pkg/remoteio"
)

// NewAppContext は CLI 実行用の依存一式を組み立てます。
// API キーは環境変数から読み込み済みの cfg.GeminiAPIKey を使います。
func NewAppContext(ctx context.Context, cfg *config.Config, opts config.CaptureOptions) (*AppContext, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("環境変数 GEMINI_API_KEY が設定されていません")
	}

	appCtx, err := newBaseContext(ctx, cfg)
	if err != nil {
		return nil, err
	}
	appCtx.Options = opts
	appCtx.Keys = apikey.NewStatic(cfg.GeminiAPIKey)

	appCtx.Lens, appCtx.Assets, err = BuildLens(ctx, cfg.GeminiAPIKey, cfg, appCtx.Keys, appCtx.Reader, appCtx.httpClient, appCtx.Geocoder)
	if err != nil {
		return nil, err
	}
	return appCtx, nil
}

// NewServerContext はサーバ実行用の依存一式を組み立てます。
// API キーは起動時には不要です。キーの保持は呼び出し側が用意する
// apikey.Session が担い、登録された時点で BuildLens を呼び出してください。
func NewServerContext(ctx context.Context, cfg *config.Config) (*AppContext, error) {
	return newBaseContext(ctx, cfg)
}

// newBaseContext は API キーに依存しない共通コンポーネントを組み立てます。
func newBaseContext(ctx context.Context, cfg *config.Config) (*AppContext, error) {
	timeout := cfg.Options.HTTPTimeout
	if timeout <= 0 {
		timeout = config.DefaultHTTPTimeout
	}
	httpClient := httpkit.New(timeout)

	factory, err := gcsfactory.NewGCSClientFactory(ctx)
	if err != nil {
		return nil, fmt.Errorf("ストレージクライアントの初期化に失敗しました: %w", err)
	}
	reader, err := factory.NewInputReader()
	if err != nil {
		return nil, fmt.Errorf("InputReader の準備に失敗しました: %w", err)
	}
	writer, err := factory.NewOutputWriter()
	if err != nil {
		return nil, fmt.Errorf("OutputWriter の準備に失敗しました: %w", err)
	}

	geocoder, err := InitializeGeocoder(httpClient, cfg.NominatimBaseURL)
	if err != nil {
		return nil, err
	}

	return &AppContext{
		Config:     cfg,
		Geocoder:   geocoder,
		Reader:     reader,
		Writer:     writer,
		httpClient: httpClient,
	}, nil
}

// InitializeGeocoder は Nominatim 向けのジオコーディングクライアントを初期化します。
func InitializeGeocoder(httpClient httpkit.ClientInterface, baseURL string) (*geocode.Client, error) {
	geocoder, err := geocode.New(httpClient, baseURL, config.DefaultGeocodeInterval)
	if err != nil {
		return nil, fmt.Errorf("ジオコーディングクライアントの初期化に失敗しました: %w", err)
	}
	return geocoder, nil
}

// InitializeAIClients は情景解析用と画像合成用の Gemini クライアントを初期化します。
// 解析側には創造性を持たせる温度を、合成側には出力サイズを設定します。
func InitializeAIClients(ctx context.Context, apiKey string, cfg *config.Config) (textClient, imageClient gemini.GenerativeModel, err error) {
	temperature := config.DefaultTemperature
	textClient, err = ai.New(ctx, apiKey, ai.Options{Temperature: &temperature})
	if err != nil {
		return nil, nil, fmt.Errorf("情景解析クライアントの初期化に失敗しました: %w", err)
	}
	imageClient, err = ai.New(ctx, apiKey, ai.Options{ImageSize: cfg.ImageSize})
	if err != nil {
		return nil, nil, fmt.Errorf("画像合成クライアントの初期化に失敗しました: %w", err)
	}
	return textClient, imageClient, nil
}

// BuildLens は API キーを受け取り、撮影フロー一式（解析・合成・Lens）を組み立てます。
// geocoder が nil でなければ、地名の逆引き担当として Lens に登録します。
// 返される AssetCore は参照画像の File API 登録を管理しており、
// バッチ実行後の後始末（ForgetReference）に使えます。
func BuildLens(ctx context.Context, apiKey string, cfg *config.Config, keys apikey.Source, reader remoteio.InputReader, httpClient httpkit.ClientInterface, geocoder *geocode.Client) (*lens.Lens, *render.AssetCore, error) {
	textClient, imageClient, err := InitializeAIClients(ctx, apiKey, cfg)
	if err != nil {
		return nil, nil, err
	}

	composer, err := scene.NewComposer(textClient, cfg.TextModel)
	if err != nil {
		return nil, nil, fmt.Errorf("Composer の初期化に失敗しました: %w", err)
	}

	assetCache := gocache.New(config.DefaultCacheTTL, config.DefaultCacheCleanup)
	assets, err := render.NewAssetCore(imageClient, reader, httpClient, assetCache, config.DefaultCacheTTL)
	if err != nil {
		return nil, nil, fmt.Errorf("AssetCore の初期化に失敗しました: %w", err)
	}

	engine, err := render.NewEngine(imageClient, assets, cfg.ImageModel)
	if err != nil {
		return nil, nil, fmt.Errorf("Engine の初期化に失敗しました: %w", err)
	}

	l, err := lens.New(keys, composer, engine)
	if err != nil {
		return nil, nil, fmt.Errorf("Lens の初期化に失敗しました: %w", err)
	}
	if geocoder != nil {
		l.SetNameResolver(geocoder)
	}
	return l, assets, nil
}
