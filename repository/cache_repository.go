package repository

import "context"

// CacheRepository is a key/value mirror of stored mortgages.
type CacheRepository interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key string, value string) error
}
