package events

import (
	"context"

	"workorder-system/internal/origin"
	"workorder-system/pkg/eventbus"
)

const TaskIDRejectedEventName = "origin.task_id.rejected"

// TaskIDRejectedEvent - валидатор отклонил идентификатор сгенерированной задачи.
type TaskIDRejectedEvent struct {
	Rejection origin.Rejection
	SessionID string
}

func (e TaskIDRejectedEvent) Name() string {
	return TaskIDRejectedEventName
}

// BusSink публикует отказы валидатора в шину событий.
type BusSink struct {
	bus *eventbus.Bus
}

var _ origin.RejectionSink = (*BusSink)(nil)

func NewBusSink(bus *eventbus.Bus) *BusSink {
	return &BusSink{bus: bus}
}

func (s *BusSink) TaskIDRejected(ctx context.Context, r origin.Rejection) {
	session, _ := origin.SessionFromContext(ctx)
	s.bus.Publish(ctx, TaskIDRejectedEvent{Rejection: r, SessionID: session})
}
