package builder

import (
	"github.com/shouni/go-chronolens-kit/internal/config"
	"github.com/shouni/go-chronolens-kit/pkg/apikey"
	"github.com/shouni/go-chronolens-kit/pkg/geocode"
	"github.com/shouni/go-chronolens-kit/pkg/lens"
	"github.com/shouni/go-chronolens-kit/pkg/render"

	"github.com/shouni/go-http-kit/httpkit"
	"github.com/shouni/go-remote-io/pkg/remoteio"
)

// AppContext は、アプリケーション実行に必要な共通コンテキストを保持します。
// これを各コマンドに渡すことで、依存関係の注入を簡素化します。
type AppContext struct {
	Config   *config.Config        // 環境変数から読み込まれたグローバル設定
	Options  config.CaptureOptions // コマンドラインから渡された実行時の設定
	Keys     apikey.Source         // API キーの供給元
	Geocoder *geocode.Client       // 地名と座標の相互変換
	Lens     *lens.Lens            // 撮影フローの窓口
	Assets   *render.AssetCore     // 参照画像の File API 管理。バッチ後の掃除に使う
	Reader   remoteio.InputReader  // プリセットや参照画像の入力元
	Writer   remoteio.OutputWriter // 生成画像の保存先

	httpClient httpkit.ClientInterface // 外部 API との通信に使う共通クライアント
}

// HTTPClient は共有の HTTP クライアントを返します。
func (a *AppContext) HTTPClient() httpkit.ClientInterface {
	return a.httpClient
}
