package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("未設定ならデフォルト値が入ること", func(t *testing.T) {
		cfg := LoadConfig()
		assert.Equal(t, DefaultNominatimBaseURL, cfg.NominatimBaseURL)
		assert.Equal(t, DefaultImageSize, cfg.ImageSize)
	})

	t.Run("環境変数が優先されること", func(t *testing.T) {
		t.Setenv("GEMINI_MODEL", "custom-text-model")
		t.Setenv("IMAGE_SIZE", "4K")

		cfg := LoadConfig()
		assert.Equal(t, "custom-text-model", cfg.TextModel)
		assert.Equal(t, "4K", cfg.ImageSize)
	})
}

func TestLoadServerConfig(t *testing.T) {
	t.Run("デフォルト値で読み込めること", func(t *testing.T) {
		cfg, err := LoadServerConfig()
		require.NoError(t, err)

		assert.Equal(t, "8080", cfg.Port)
		assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
		assert.Equal(t, 50, cfg.ThrottleLimit)
		assert.Equal(t, 30*time.Minute, cfg.Redis.TTL)
	})

	t.Run("環境変数で上書きできること", func(t *testing.T) {
		t.Setenv("SERVER_PORT", "9090")
		t.Setenv("REDIS_ADDR", "localhost:6379")

		cfg, err := LoadServerConfig()
		require.NoError(t, err)
		assert.Equal(t, "9090", cfg.Port)
		assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	})
}
