package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/shouni/go-utils/envutil"
)

// デフォルト値の定義
const (
	DefaultTextModel  = "gemini-3-flash-preview"
	DefaultImageModel = "gemini-3-pro-image-preview"

	// DefaultAspectRatio と DefaultImageSize は全撮影共通の固定出力設定です。
	DefaultAspectRatio = "16:9"
	DefaultImageSize   = "2K"

	DefaultTemperature = float32(0.7)

	DefaultNominatimBaseURL = "https://nominatim.openstreetmap.org"
	// Nominatim の利用規約は 1 リクエスト/秒まで
	DefaultGeocodeInterval = time.Second

	DefaultHTTPTimeout   = 30 * time.Second
	DefaultRateInterval  = 10 * time.Second
	DefaultCacheTTL      = 30 * time.Minute
	DefaultCacheCleanup  = time.Hour
	DefaultOutputDir     = "output"
	DefaultOutputPattern = "chronolens_%s_%s" // スタイルと ID で一意にする
)

// Config はアプリケーション全体の環境設定（APIキーやモデル名）を保持する構造体です。
type Config struct {
	GeminiAPIKey string
	TextModel    string
	ImageModel   string
	ImageSize    string

	NominatimBaseURL string

	Options CaptureOptions
}

// LoadConfig は環境変数から設定を読み込み、構造体を返します。
func LoadConfig() *Config {
	return &Config{
		GeminiAPIKey:     envutil.GetEnv("GEMINI_API_KEY", ""),
		TextModel:        envutil.GetEnv("GEMINI_MODEL", DefaultTextModel),
		ImageModel:       envutil.GetEnv("IMAGE_GEMINI_MODEL", DefaultImageModel),
		ImageSize:        envutil.GetEnv("IMAGE_SIZE", DefaultImageSize),
		NominatimBaseURL: envutil.GetEnv("NOMINATIM_BASE_URL", DefaultNominatimBaseURL),
	}
}

// CaptureOptions は CLI フラグから渡される実行時パラメータです。
type CaptureOptions struct {
	// 撮影対象
	Location string // --location: 地名検索
	Lat      float64
	Lon      float64
	Date     string // --date: 自由形式の日付テキスト
	Time     string // --time: 任意の時刻テキスト
	Style    string // --style

	// プリセット入力
	PresetID   string // --preset
	PresetFile string // --preset-file: ローカルパスまたは GCS URI

	// 画像生成関連
	ReferenceURL string
	Seed         int64
	SeedSet      bool
	AllStyles    bool // 全スタイルを一括生成する
	OutputDir    string

	// 実行制御
	HTTPTimeout time.Duration
}

// ServerConfig は serve コマンド用の HTTP サーバー設定です。
type ServerConfig struct {
	Host            string        `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port            string        `env:"SERVER_PORT" envDefault:"8080"`
	Timeout         time.Duration `env:"SERVER_TIMEOUT" envDefault:"2m"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	ThrottleLimit   int           `env:"SERVER_THROTTLE_LIMIT" envDefault:"50"`

	Redis RedisConfig
}

// RedisConfig は地名キャッシュの共有に使う Redis の設定です。Addr が空なら使いません。
type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB" envDefault:"0"`
	TTL      time.Duration `env:"REDIS_TTL" envDefault:"30m"`
}

// LoadServerConfig は環境変数からサーバー設定を読み込みます。
func LoadServerConfig() (*ServerConfig, error) {
	cfg := &ServerConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("サーバー設定の読み込みに失敗しました: %w", err)
	}
	return cfg, nil
}
