package listeners

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"workorder-system/internal/events"
	"workorder-system/internal/origin"
	"workorder-system/pkg/eventbus"
)

type countingCache struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func (c *countingCache) Get(context.Context, string) (string, error)                 { return "", nil }
func (c *countingCache) Expire(context.Context, string, time.Duration) (bool, error) { return true, nil }

func (c *countingCache) Incr(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return 0, c.err
	}
	c.counts[key]++
	return c.counts[key], nil
}

type reasonCounter struct {
	mu      sync.Mutex
	reasons []string
}

func (r *reasonCounter) TaskIDRejected(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reasons = append(r.reasons, reason)
}

func TestRejectionListener_CountsThroughBus(t *testing.T) {
	cache := &countingCache{counts: map[string]int64{}}
	counter := &reasonCounter{}
	bus := eventbus.New(zap.NewNop())
	NewRejectionListener(cache, counter, zap.NewNop()).Register(bus)

	sink := events.NewBusSink(bus)
	ctx := origin.WithSession(context.Background(), "3f7c1e0a-8a2b-4c55-9d1e-1c2b3a4d5e6f")
	sink.TaskIDRejected(ctx, origin.Rejection{TaskID: "cmg1", PlanID: "PL1", Reason: "fixture_marker"})
	sink.TaskIDRejected(ctx, origin.Rejection{TaskID: "short", PlanID: "PL1", Reason: "length"})
	sink.TaskIDRejected(ctx, origin.Rejection{TaskID: "cmg2", PlanID: "PL1", Reason: "fixture_marker"})
	bus.Wait()

	assert.Equal(t, int64(2), cache.counts[RejectionCounterKey("fixture_marker")])
	assert.Equal(t, int64(1), cache.counts[RejectionCounterKey("length")])
	assert.ElementsMatch(t, []string{"fixture_marker", "length", "fixture_marker"}, counter.reasons)
}

func TestRejectionListener_Errors(t *testing.T) {
	l := NewRejectionListener(&countingCache{err: errors.New("redis down")}, nil, zap.NewNop())

	err := l.Handle(context.Background(), events.TaskIDRejectedEvent{Rejection: origin.Rejection{Reason: "length"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis down")

	err = l.Handle(context.Background(), otherEvent{})
	assert.Error(t, err)
}

type otherEvent struct{}

func (otherEvent) Name() string { return "other" }
