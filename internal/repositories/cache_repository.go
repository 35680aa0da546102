package repositories

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss - ключа в кеше нет.
var ErrCacheMiss = errors.New("ключ не найден в кеше")

// CacheRepositoryInterface - счётчики в Redis для номеров запросов и отказов.
type CacheRepositoryInterface interface {
	Get(ctx context.Context, key string) (string, error)
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, expiration time.Duration) (bool, error)
}
