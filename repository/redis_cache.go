package repository

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

type RedisCacheOption func(*RedisCache)

// WithKeyPrefix namespaces every key, e.g. "loans" turns "mortgage:1" into
// "loans:mortgage:1".
func WithKeyPrefix(prefix string) RedisCacheOption {
	return func(r *RedisCache) { r.prefix = strings.Trim(prefix, ":") }
}

// WithTTL sets an expiry on written keys. Zero keeps them forever.
func WithTTL(d time.Duration) RedisCacheOption {
	return func(r *RedisCache) { r.ttl = d }
}

func NewRedisCache(client *redis.Client, opts ...RedisCacheOption) *RedisCache {
	r := &RedisCache{client: client}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Ping checks the connection, used at startup.
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}

func (r *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	val, err := r.client.Get(ctx, r.key(key)).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

func (r *RedisCache) Set(ctx context.Context, key string, value string) error {
	return r.client.Set(ctx, r.key(key), value, r.ttl).Err()
}

func (r *RedisCache) key(k string) string {
	if r.prefix == "" {
		return k
	}
	return r.prefix + ":" + k
}
