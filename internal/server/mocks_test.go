package server

import (
	"context"
	"errors"
	"time"

	"github.com/shouni/go-chronolens-kit/pkg/domain"
	"github.com/shouni/go-chronolens-kit/pkg/lens"
)

// stubCamera は Camera のテスト用実装です。
type stubCamera struct {
	captureFunc func(ctx context.Context, req domain.GenerationRequest) (*domain.GeneratedImage, error)
	phase       lens.Phase
	busy        bool
	result      *domain.GeneratedImage
	lastErr     *lens.Error

	captured []domain.GenerationRequest
}

func (c *stubCamera) Capture(ctx context.Context, req domain.GenerationRequest) (*domain.GeneratedImage, error) {
	c.captured = append(c.captured, req)
	if c.captureFunc != nil {
		return c.captureFunc(ctx, req)
	}
	return testImage(), nil
}

func (c *stubCamera) Phase() lens.Phase {
	if c.phase == "" {
		return lens.PhaseIdle
	}
	return c.phase
}

func (c *stubCamera) Busy() bool { return c.busy }

func (c *stubCamera) Result() *domain.GeneratedImage { return c.result }

func (c *stubCamera) Err() *lens.Error { return c.lastErr }

// mockHTTPClient は httpkit.ClientInterface のテスト用実装です。
type mockHTTPClient struct {
	fetchFunc func(ctx context.Context, url string) ([]byte, error)
	calls     []string
}

func (m *mockHTTPClient) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	m.calls = append(m.calls, url)
	if m.fetchFunc == nil {
		return nil, errors.New("fetchFunc not set")
	}
	return m.fetchFunc(ctx, url)
}

func testImage() *domain.GeneratedImage {
	return &domain.GeneratedImage{
		ID:          "20f8a4c2-0000-0000-0000-000000000000",
		ImageURL:    "data:image/png;base64,QUJD",
		Description: "A grand sandstone fort at dawn",
		Story:       "The morning the flag rose over the ramparts.",
		PromptUsed:  "A grand sandstone fort at dawn, in the style of Photojournalism",
		Style:       domain.StyleJournalistic,
		Location: domain.LocationData{
			Name:        "Red Fort",
			Coordinates: domain.Coordinates{Lat: 28.6562, Lon: 77.241},
		},
		CreatedAt: time.Date(2026, 8, 15, 8, 30, 0, 0, time.UTC),
	}
}
