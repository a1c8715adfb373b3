package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache は地名解決の結果をプロセス間で共有するためのキャッシュです。
// pkg/geocode の Cache インターフェースを満たします。
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache は接続設定から RedisCache を構築します。疎通確認は行いません。
func NewRedisCache(addr, password string, db int, ttl time.Duration) *RedisCache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisCache{
		client: rdb,
		ttl:    ttl,
	}
}

// Get はキーの値とヒット有無を返します。未登録はエラーではなくミス扱いです。
func (r *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// Set はキーに値を保存します。TTL は構築時の値で固定です。
func (r *RedisCache) Set(ctx context.Context, key string, value string) error {
	return r.client.Set(ctx, key, value, r.ttl).Err()
}

// Close は接続を閉じます。
func (r *RedisCache) Close() error {
	return r.client.Close()
}
