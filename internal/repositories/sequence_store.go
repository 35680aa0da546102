package repositories

import (
	"context"
	"errors"
	"strconv"
	"time"

	"workorder-system/internal/origin"
)

const sequenceKeyPrefix = "origin:seq:"

// RedisSequenceStore хранит номера запросов загрузчиков в Redis, чтобы проверка
// устаревших результатов работала между несколькими экземплярами сервиса.
type RedisSequenceStore struct {
	cache CacheRepositoryInterface
	ttl   time.Duration
}

var _ origin.SequenceStore = (*RedisSequenceStore)(nil)

func NewRedisSequenceStore(cache CacheRepositoryInterface, ttl time.Duration) *RedisSequenceStore {
	return &RedisSequenceStore{cache: cache, ttl: ttl}
}

func (s *RedisSequenceStore) Next(ctx context.Context, key string) (int64, error) {
	k := sequenceKeyPrefix + key
	n, err := s.cache.Incr(ctx, k)
	if err != nil {
		return 0, err
	}
	if s.ttl > 0 {
		if _, err := s.cache.Expire(ctx, k, s.ttl); err != nil {
			return 0, err
		}
	}
	return n, nil
}

func (s *RedisSequenceStore) Latest(ctx context.Context, key string) (int64, error) {
	raw, err := s.cache.Get(ctx, sequenceKeyPrefix+key)
	if errors.Is(err, ErrCacheMiss) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(raw, 10, 64)
}
