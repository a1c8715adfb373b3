package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shouni/go-chronolens-kit/internal/config"
	"github.com/shouni/go-chronolens-kit/internal/metrics"
	"github.com/shouni/go-chronolens-kit/internal/server/web"
	"github.com/shouni/go-chronolens-kit/pkg/apikey"
	"github.com/shouni/go-chronolens-kit/pkg/domain"
	"github.com/shouni/go-chronolens-kit/pkg/geocode"
	"github.com/shouni/go-chronolens-kit/pkg/lens"
)

// Camera は撮影フローの窓口です。*lens.Lens が満たします。
type Camera interface {
	Capture(ctx context.Context, req domain.GenerationRequest) (*domain.GeneratedImage, error)
	Phase() lens.Phase
	Busy() bool
	Result() *domain.GeneratedImage
	Err() *lens.Error
}

// LensFactory は API キーを受け取って撮影一式を組み立てる関数です。
// キーが登録・差し替えされるたびに呼ばれます。
type LensFactory func(ctx context.Context, apiKey string) (Camera, error)

// Server は Web UI と JSON API を配信する HTTP サーバーです。
// API キーはセッション中のみ保持し、キーが未登録の間は
// 生成系のエンドポイントを外部 API に触れずに拒否します。
type Server struct {
	cfg      *config.Config
	srvCfg   *config.ServerConfig
	geocoder *geocode.Client
	session  *apikey.Session
	factory  LensFactory

	mu     sync.RWMutex
	camera Camera
}

// New は Server を構築します。factory はキー登録時に呼び出されます。
func New(cfg *config.Config, srvCfg *config.ServerConfig, geocoder *geocode.Client, session *apikey.Session, factory LensFactory) (*Server, error) {
	if cfg == nil || srvCfg == nil {
		return nil, fmt.Errorf("設定 (config) は必須です")
	}
	if geocoder == nil {
		return nil, fmt.Errorf("ジオコーディングクライアント (geocoder) は必須です")
	}
	if session == nil {
		return nil, fmt.Errorf("キーセッション (session) は必須です")
	}
	if factory == nil {
		return nil, fmt.Errorf("LensFactory は必須です")
	}
	return &Server{
		cfg:      cfg,
		srvCfg:   srvCfg,
		geocoder: geocoder,
		session:  session,
		factory:  factory,
	}, nil
}

// Router はルーティングとミドルウェアを組み立てたハンドラを返します。
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use([]func(http.Handler) http.Handler{
		middleware.Logger,
		middleware.Recoverer,
		middleware.Throttle(s.srvCfg.ThrottleLimit),
		middleware.Timeout(s.srvCfg.Timeout),
		metrics.Middleware,
	}...)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/styles", s.handleStyles)
		r.Get("/presets", s.handlePresets)
		r.Get("/geocode", s.handleGeocode)
		r.Get("/reverse", s.handleReverse)
		r.Get("/key", s.handleKeyStatus)
		r.Post("/key", s.handleSetKey)
		r.Delete("/key", s.handleClearKey)
		r.Post("/capture", s.handleCapture)
		r.Get("/status", s.handleStatus)
	})

	r.Handle("/*", web.Handler())
	return r
}

// Run はサーバーを起動し、ctx のキャンセルで猶予付きシャットダウンします。
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    net.JoinHostPort(s.srvCfg.Host, s.srvCfg.Port),
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("サーバーを起動しました", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("サーバーの起動に失敗しました: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.srvCfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("サーバーの停止に失敗しました: %w", err)
	}
	slog.Info("サーバーを停止しました")
	return nil
}

// currentCamera は現在の撮影窓口を返します。キー未登録の間は nil です。
func (s *Server) currentCamera() Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.camera
}

func (s *Server) setCamera(cam Camera) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.camera = cam
}
