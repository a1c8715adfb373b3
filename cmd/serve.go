package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/go-chronolens-kit/internal/builder"
	"github.com/shouni/go-chronolens-kit/internal/cache"
	"github.com/shouni/go-chronolens-kit/internal/config"
	"github.com/shouni/go-chronolens-kit/internal/metrics"
	"github.com/shouni/go-chronolens-kit/internal/server"
	"github.com/shouni/go-chronolens-kit/pkg/apikey"
	"github.com/shouni/go-chronolens-kit/pkg/lens"

	"github.com/spf13/cobra"
)

// serveCmd は、Web UI と JSON API のサーバーを起動します。
// API キーは起動時には不要で、ブラウザのキーダイアログから登録します。
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Web UI と JSON API のサーバーを起動します。",
	Long: `ブラウザで使える撮影 UI（地図・日時・スタイル選択）と JSON API を配信します。
API キーは起動時には不要です。UI のキーダイアログから登録すると、
そのキーはサーバープロセスのメモリにのみ保持されます。

サーバー設定は SERVER_HOST / SERVER_PORT などの環境変数で変更できます。`,
	RunE: serveCommand,
}

func serveCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg := config.LoadConfig()
	srvCfg, err := config.LoadServerConfig()
	if err != nil {
		return err
	}

	appCtx, err := builder.NewServerContext(ctx, cfg)
	if err != nil {
		return err
	}

	// Redis があれば地名キャッシュをプロセス間で共有する
	if srvCfg.Redis.Addr != "" {
		redisCache := cache.NewRedisCache(srvCfg.Redis.Addr, srvCfg.Redis.Password, srvCfg.Redis.DB, srvCfg.Redis.TTL)
		defer redisCache.Close()
		appCtx.Geocoder.SetCacheClient(redisCache)
		slog.Info("地名キャッシュに Redis を使います", "addr", srvCfg.Redis.Addr)
	}

	session := apikey.NewSession()
	appCtx.Keys = session

	// キーが登録されるたびに撮影一式を組み立て直す。クライアントの寿命を
	// リクエストに縛らないよう、factory はコマンドの ctx を使う。
	factory := func(_ context.Context, apiKey string) (server.Camera, error) {
		l, _, err := builder.BuildLens(ctx, apiKey, cfg, session, appCtx.Reader, appCtx.HTTPClient(), appCtx.Geocoder)
		if err != nil {
			return nil, err
		}
		l.SetPhaseListener(func(p lens.Phase) {
			metrics.CapturePhase(string(p))
		})
		return l, nil
	}

	srv, err := server.New(cfg, srvCfg, appCtx.Geocoder, session, factory)
	if err != nil {
		return fmt.Errorf("サーバーの初期化に失敗しました: %w", err)
	}
	return srv.Run(ctx)
}
