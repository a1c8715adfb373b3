package geocode

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/go-chronolens-kit/pkg/domain"
)

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

const redFortJSON = `[{"lat":"28.6561600","lon":"77.2410600","display_name":"Red Fort, Netaji Subhash Marg, Old Delhi, Delhi, India"}]`

func newTestClient(t *testing.T, mock *mockHTTPClient) *Client {
	t.Helper()
	c, err := New(mock, "https://nominatim.example.org", 0)
	require.NoError(t, err)
	return c
}

func TestNew(t *testing.T) {
	t.Run("httpClient が nil ならエラーになること", func(t *testing.T) {
		_, err := New(nil, "https://nominatim.example.org", 0)
		assert.Error(t, err)
	})

	t.Run("baseURL が空ならエラーになること", func(t *testing.T) {
		_, err := New(&mockHTTPClient{}, "", 0)
		assert.Error(t, err)
	})
}

func TestClient_Forward(t *testing.T) {
	ctx := context.Background()

	t.Run("正常系: 先頭 1 件が短縮名つきで返ること", func(t *testing.T) {
		mock := &mockHTTPClient{
			fetchFunc: func(ctx context.Context, url string) ([]byte, error) {
				return []byte(redFortJSON), nil
			},
		}
		c := newTestClient(t, mock)

		place, err := c.Forward(ctx, "Red Fort, Delhi")
		require.NoError(t, err)

		assert.Equal(t, "Red Fort", place.Name)
		assert.Equal(t, "Red Fort, Netaji Subhash Marg, Old Delhi, Delhi, India", place.DisplayName)
		assert.InDelta(t, 28.65616, place.Coordinates.Lat, 1e-6)
		assert.InDelta(t, 77.24106, place.Coordinates.Lon, 1e-6)

		require.Len(t, mock.calls, 1)
		assert.Contains(t, mock.calls[0], "/search?")
		assert.Contains(t, mock.calls[0], "limit=1")
		assert.Contains(t, mock.calls[0], "format=json")
	})

	t.Run("0 件なら ErrNotFound を返すこと", func(t *testing.T) {
		mock := &mockHTTPClient{
			fetchFunc: func(ctx context.Context, url string) ([]byte, error) {
				return []byte(`[]`), nil
			},
		}
		c := newTestClient(t, mock)

		_, err := c.Forward(ctx, "存在しない場所xyz")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("通信失敗は ErrNotFound とは別のエラーになること", func(t *testing.T) {
		mock := &mockHTTPClient{
			fetchFunc: func(ctx context.Context, url string) ([]byte, error) {
				return nil, errors.New("connection refused")
			},
		}
		c := newTestClient(t, mock)

		_, err := c.Forward(ctx, "Red Fort")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotFound)
	})

	t.Run("壊れた応答はエラーになること", func(t *testing.T) {
		mock := &mockHTTPClient{
			fetchFunc: func(ctx context.Context, url string) ([]byte, error) {
				return []byte(`{"unexpected": true}`), nil
			},
		}
		c := newTestClient(t, mock)

		_, err := c.Forward(ctx, "Red Fort")
		assert.Error(t, err)
	})

	t.Run("2 回目はキャッシュから返り外部呼び出しは増えないこと", func(t *testing.T) {
		mock := &mockHTTPClient{
			fetchFunc: func(ctx context.Context, url string) ([]byte, error) {
				return []byte(redFortJSON), nil
			},
		}
		c := newTestClient(t, mock)

		first, err := c.Forward(ctx, "Red Fort, Delhi")
		require.NoError(t, err)
		second, err := c.Forward(ctx, "red fort, delhi")
		require.NoError(t, err)

		assert.Equal(t, first.Name, second.Name)
		assert.Len(t, mock.calls, 1)
	})

	t.Run("空の検索文字列は外部呼び出しなしでエラーになること", func(t *testing.T) {
		mock := &mockHTTPClient{}
		c := newTestClient(t, mock)

		_, err := c.Forward(ctx, "   ")
		assert.Error(t, err)
		assert.Empty(t, mock.calls)
	})
}

func TestClient_ReverseLookup(t *testing.T) {
	ctx := context.Background()
	coords := domain.Coordinates{Lat: 28.6562, Lon: 77.2410}

	t.Run("正常系: 短縮名が返ること", func(t *testing.T) {
		mock := &mockHTTPClient{
			fetchFunc: func(ctx context.Context, url string) ([]byte, error) {
				return []byte(`{"lat":"28.6562","lon":"77.2410","display_name":"Red Fort, Old Delhi, India"}`), nil
			},
		}
		c := newTestClient(t, mock)

		name := c.ReverseLookup(ctx, coords)
		assert.Equal(t, "Red Fort", name)
		require.Len(t, mock.calls, 1)
		assert.Contains(t, mock.calls[0], "/reverse?")
	})

	t.Run("通信失敗は空文字に飲み込まれること", func(t *testing.T) {
		mock := &mockHTTPClient{
			fetchFunc: func(ctx context.Context, url string) ([]byte, error) {
				return nil, errors.New("timeout")
			},
		}
		c := newTestClient(t, mock)

		assert.Empty(t, c.ReverseLookup(ctx, coords))
	})

	t.Run("解決不能応答も空文字に飲み込まれること", func(t *testing.T) {
		mock := &mockHTTPClient{
			fetchFunc: func(ctx context.Context, url string) ([]byte, error) {
				return []byte(`{"error":"Unable to geocode"}`), nil
			},
		}
		c := newTestClient(t, mock)

		assert.Empty(t, c.ReverseLookup(ctx, domain.Coordinates{Lat: 0, Lon: 0}))
	})

	t.Run("解決済みの座標はキャッシュから返ること", func(t *testing.T) {
		mock := &mockHTTPClient{
			fetchFunc: func(ctx context.Context, url string) ([]byte, error) {
				return []byte(`{"display_name":"Shibuya, Tokyo, Japan"}`), nil
			},
		}
		c := newTestClient(t, mock)
		tokyo := domain.Coordinates{Lat: 35.6595, Lon: 139.7005}

		assert.Equal(t, "Shibuya", c.ReverseLookup(ctx, tokyo))
		assert.Equal(t, "Shibuya", c.ReverseLookup(ctx, tokyo))
		assert.Len(t, mock.calls, 1)
	})
}

func TestClient_ReverseLookupAsync(t *testing.T) {
	t.Run("解決できた場合にだけ update が呼ばれること", func(t *testing.T) {
		mock := &mockHTTPClient{
			fetchFunc: func(ctx context.Context, url string) ([]byte, error) {
				return []byte(`{"display_name":"Brandenburg Gate, Berlin, Germany"}`), nil
			},
		}
		c := newTestClient(t, mock)

		got := make(chan string, 1)
		c.ReverseLookupAsync(context.Background(), domain.Coordinates{Lat: 52.5163, Lon: 13.3777}, func(name string) {
			got <- name
		})

		select {
		case name := <-got:
			assert.Equal(t, "Brandenburg Gate", name)
		case <-time.After(2 * time.Second):
			t.Fatal("update が呼ばれませんでした")
		}
	})

	t.Run("失敗時は update が呼ばれないこと", func(t *testing.T) {
		mock := &mockHTTPClient{
			fetchFunc: func(ctx context.Context, url string) ([]byte, error) {
				return nil, fmt.Errorf("unreachable")
			},
		}
		c := newTestClient(t, mock)

		called := make(chan string, 1)
		c.ReverseLookupAsync(context.Background(), domain.Coordinates{Lat: 1, Lon: 1}, func(name string) {
			called <- name
		})

		select {
		case name := <-called:
			t.Fatalf("update が呼ばれてしまいました: %q", name)
		case <-time.After(200 * time.Millisecond):
			// 期待どおり何も起きない
		}
	})
}

func TestShortName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Red Fort, Old Delhi, Delhi, India", "Red Fort"},
		{"Tokyo", "Tokyo"},
		{"  Eiffel Tower , Paris", "Eiffel Tower"},
		{"", ""},
		{",leading comma", ""},
	}
	for _, tt := range tests {
		if got := shortName(tt.input); got != tt.want {
			t.Errorf("shortName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestShortNameForwardIntegration(t *testing.T) {
	t.Run("display_name にカンマがなければ全体が短縮名になること", func(t *testing.T) {
		mock := &mockHTTPClient{
			fetchFunc: func(ctx context.Context, url string) ([]byte, error) {
				return []byte(`[{"lat":"35.0","lon":"135.0","display_name":"Kyoto"}]`), nil
			},
		}
		c := newTestClient(t, mock)

		place, err := c.Forward(context.Background(), "Kyoto")
		require.NoError(t, err)
		assert.Equal(t, "Kyoto", place.Name)
		assert.True(t, strings.HasPrefix(place.DisplayName, "Kyoto"))
	})
}
