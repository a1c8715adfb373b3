package render

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/shouni/go-chronolens-kit/pkg/domain"
)

const (
	// DefaultAspectRatio は生成画像の固定比率です。常に横長で生成します。
	DefaultAspectRatio = "16:9"

	// UseImageCompression は参照画像を File API へ渡す前に JPEG 圧縮するかどうかです。
	UseImageCompression     = true
	ImageCompressionQuality = 75

	cacheKeyFileURI  = "fileapi_uri:"
	cacheKeyFileName = "fileapi_name:"
)

// Request は 1 枚の画像合成に必要な入力です。
type Request struct {
	Context      *domain.VisualContext // 情景解析の結果
	Style        domain.PhotoStyle
	ReferenceURL string // 構図の参照画像 (http(s) または gs://)。空なら未使用
	Seed         *int64 // nil なら毎回ランダム
}

// Result は合成結果と、実際にモデルへ送ったプロンプトの対です。
type Result struct {
	Output ImageOutput
	Prompt string
}

// ImageOutput は応答から取り出した画像バイナリです。
type ImageOutput struct {
	Data     []byte
	MimeType string
	UsedSeed int64
}

// DataURL は画像をブラウザへそのまま渡せる data URL に変換します。
func (o ImageOutput) DataURL() string {
	return fmt.Sprintf("data:%s;base64,%s", o.MimeType, base64.StdEncoding.EncodeToString(o.Data))
}

// Cacher は File API の URI とファイル名を覚えておくためのインターフェースです。
// *cache.Cache (patrickmn/go-cache) がそのまま満たします。
type Cacher interface {
	Get(key string) (any, bool)
	Set(key string, value any, d time.Duration)
}
