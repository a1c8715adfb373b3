// Package geocode は Nominatim 互換サービスへのフォワード／リバース
// ジオコーディングクライアントを提供します。
package geocode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	gocache "github.com/patrickmn/go-cache"
	"github.com/shouni/go-http-kit/httpkit"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/shouni/go-chronolens-kit/pkg/domain"
)

// ErrNotFound は検索結果が 0 件だったことを示します。
var ErrNotFound = errors.New("場所が見つかりませんでした")

const (
	defaultCacheTTL     = 30 * time.Minute
	defaultCacheCleanup = time.Hour
)

// Cache は解決結果を保存するための差し替え可能なキャッシュ契約です。
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string) error
}

// Client は Nominatim 互換エンドポイントへのジオコーディングクライアントです。
// 公開インスタンスへの礼儀として、リクエスト間隔をレートリミッタで空けます。
type Client struct {
	httpClient httpkit.ClientInterface
	baseURL    string
	limiter    *rate.Limiter
	cache      Cache
	sf         singleflight.Group
}

// New は依存関係を注入して Client を初期化します。
// interval はリクエストの最小間隔で、0 以下なら制限なしになります。
// キャッシュは既定でプロセス内キャッシュが有効です（SetCacheClient で差し替え可）。
func New(httpClient httpkit.ClientInterface, baseURL string, interval time.Duration) (*Client, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("httpClient is required")
	}
	if baseURL == "" {
		return nil, fmt.Errorf("baseURL is required")
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if interval > 0 {
		limiter = rate.NewLimiter(rate.Every(interval), 1)
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		limiter:    limiter,
		cache:      newMemoryCache(defaultCacheTTL, defaultCacheCleanup),
	}, nil
}

// SetCacheClient はキャッシュ実装を差し替えます。Redis を併設する場合などに
// 使います。nil を渡すとキャッシュなしで動作します。
func (c *Client) SetCacheClient(cache Cache) {
	c.cache = cache
}

// Forward は自由記述の検索文字列を座標と正規化名に解決します。
// 検索結果はサービス側の並び順そのままで、先頭の 1 件だけを使います。
// 0 件のときは ErrNotFound を返します。
func (c *Client) Forward(ctx context.Context, query string) (*Place, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("検索文字列が空です")
	}

	cacheKey := "geocode:fwd:" + strings.ToLower(query)
	if cached, ok := c.cacheGet(ctx, cacheKey); ok {
		var p Place
		if err := sonic.Unmarshal([]byte(cached), &p); err == nil {
			return &p, nil
		}
	}

	body, err := c.fetch(ctx, "/search", url.Values{
		"q":      {query},
		"format": {"json"},
		"limit":  {"1"},
	})
	if err != nil {
		return nil, fmt.Errorf("ジオコーディングの問い合わせに失敗しました: %w", err)
	}

	var results []nominatimPlace
	if err := sonic.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("ジオコーディング応答の解析に失敗しました: %w", err)
	}
	if len(results) == 0 {
		return nil, ErrNotFound
	}

	place, err := results[0].toPlace()
	if err != nil {
		return nil, fmt.Errorf("ジオコーディング応答の解析に失敗しました: %w", err)
	}

	if raw, err := sonic.Marshal(place); err == nil {
		c.cacheSet(ctx, cacheKey, string(raw))
	}
	return place, nil
}

// ReverseLookup は座標から表示用の短縮名を引きます。ベストエフォートの契約で、
// 失敗しても呼び出し元にエラーは伝搬せず空文字を返します（ログには残します）。
// 呼び出し側は値が得られることを前提にしてはいけません。
func (c *Client) ReverseLookup(ctx context.Context, coords domain.Coordinates) string {
	cacheKey := fmt.Sprintf("geocode:rev:%.4f,%.4f", coords.Lat, coords.Lon)
	if cached, ok := c.cacheGet(ctx, cacheKey); ok {
		return cached
	}

	// 地図操作で同じ座標が連打されても外部呼び出しは 1 回にまとめる。
	v, err, _ := c.sf.Do(cacheKey, func() (any, error) {
		body, err := c.fetch(ctx, "/reverse", url.Values{
			"lat":    {fmt.Sprintf("%f", coords.Lat)},
			"lon":    {fmt.Sprintf("%f", coords.Lon)},
			"format": {"json"},
		})
		if err != nil {
			return "", err
		}

		var result nominatimPlace
		if err := sonic.Unmarshal(body, &result); err != nil {
			return "", err
		}
		if result.Error != "" || result.DisplayName == "" {
			return "", fmt.Errorf("座標に対応する場所がありません")
		}

		name := shortName(result.DisplayName)
		c.cacheSet(ctx, cacheKey, name)
		return name, nil
	})
	if err != nil {
		slog.WarnContext(ctx, "リバースジオコーディングに失敗しました",
			"lat", coords.Lat, "lon", coords.Lon, "error", err)
		return ""
	}
	return v.(string)
}

// ReverseLookupAsync は結果を待たずに戻る fire-and-forget 版です。
// 解決できた場合にだけ update が呼ばれます。呼び出し元の ctx がキャンセル
// されても裏の問い合わせは継続します。
func (c *Client) ReverseLookupAsync(ctx context.Context, coords domain.Coordinates, update func(name string)) {
	ctx = context.WithoutCancel(ctx)
	go func() {
		if name := c.ReverseLookup(ctx, coords); name != "" && update != nil {
			update(name)
		}
	}()
}

func (c *Client) fetch(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return c.httpClient.FetchBytes(ctx, c.baseURL+path+"?"+params.Encode())
}

func (c *Client) cacheGet(ctx context.Context, key string) (string, bool) {
	if c.cache == nil {
		return "", false
	}
	val, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		slog.WarnContext(ctx, "ジオコーディングキャッシュの取得に失敗しました", "error", err)
		return "", false
	}
	return val, ok
}

func (c *Client) cacheSet(ctx context.Context, key, value string) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Set(ctx, key, value); err != nil {
		slog.WarnContext(ctx, "ジオコーディングキャッシュの保存に失敗しました", "error", err)
	}
}

// memoryCache は patrickmn/go-cache を Cache 契約に合わせた既定実装です。
type memoryCache struct {
	inner *gocache.Cache
}

func newMemoryCache(ttl, cleanup time.Duration) *memoryCache {
	return &memoryCache{inner: gocache.New(ttl, cleanup)}
}

func (m *memoryCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, ok := m.inner.Get(key)
	if !ok {
		return "", false, nil
	}
	s, ok := val.(string)
	return s, ok, nil
}

func (m *memoryCache) Set(ctx context.Context, key string, value string) error {
	m.inner.Set(key, value, gocache.DefaultExpiration)
	return nil
}
