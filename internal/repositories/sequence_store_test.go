package repositories

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ CacheRepositoryInterface = (*memCache)(nil)
	_ CacheRepositoryInterface = (*RedisCacheRepository)(nil)
)

// memCache - CacheRepositoryInterface в памяти.
type memCache struct {
	mu      sync.Mutex
	values  map[string]string
	ttls    map[string]time.Duration
	failGet error
}

func newMemCache() *memCache {
	return &memCache{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (c *memCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failGet != nil {
		return "", c.failGet
	}
	v, ok := c.values[key]
	if !ok {
		return "", ErrCacheMiss
	}
	return v, nil
}

func (c *memCache) Incr(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, _ := strconv.ParseInt(c.values[key], 10, 64)
	n++
	c.values[key] = strconv.FormatInt(n, 10)
	return n, nil
}

func (c *memCache) Expire(_ context.Context, key string, expiration time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.values[key]
	c.ttls[key] = expiration
	return ok, nil
}

func TestRedisSequenceStore(t *testing.T) {
	ctx := context.Background()
	cache := newMemCache()
	store := NewRedisSequenceStore(cache, time.Hour)

	latest, err := store.Latest(ctx, "s1:anomalies")
	require.NoError(t, err)
	assert.Zero(t, latest)

	first, err := store.Next(ctx, "s1:anomalies")
	require.NoError(t, err)
	second, err := store.Next(ctx, "s1:anomalies")
	require.NoError(t, err)
	assert.Equal(t, int64(1), first)
	assert.Equal(t, int64(2), second)

	latest, err = store.Latest(ctx, "s1:anomalies")
	require.NoError(t, err)
	assert.Equal(t, second, latest)

	// ключи сессий независимы
	other, err := store.Next(ctx, "s2:anomalies")
	require.NoError(t, err)
	assert.Equal(t, int64(1), other)

	assert.Equal(t, time.Hour, cache.ttls["origin:seq:s1:anomalies"])
}

func TestRedisSequenceStore_LatestError(t *testing.T) {
	cache := newMemCache()
	cache.failGet = errors.New("redis down")
	store := NewRedisSequenceStore(cache, 0)

	_, err := store.Latest(context.Background(), "k")

	assert.EqualError(t, err, "redis down")
}
