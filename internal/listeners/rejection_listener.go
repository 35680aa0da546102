package listeners

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"workorder-system/internal/events"
	"workorder-system/internal/repositories"
	"workorder-system/pkg/eventbus"
)

const rejectionCounterPrefix = "origin:rejections:"

// RejectionCounter - приёмник числа отказов по причинам (метрики).
type RejectionCounter interface {
	TaskIDRejected(reason string)
}

// RejectionListener ведёт счётчики отказов валидатора в Redis и в метриках.
// Счётчик в Redis общий для всех экземпляров сервиса.
type RejectionListener struct {
	cache   repositories.CacheRepositoryInterface
	metrics RejectionCounter
	logger  *zap.Logger
}

func NewRejectionListener(cache repositories.CacheRepositoryInterface, metrics RejectionCounter, logger *zap.Logger) *RejectionListener {
	return &RejectionListener{cache: cache, metrics: metrics, logger: logger}
}

func (l *RejectionListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(events.TaskIDRejectedEventName, l.Handle)
	l.logger.Info("RejectionListener подписан на событие", zap.String("event", events.TaskIDRejectedEventName))
}

func (l *RejectionListener) Handle(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.TaskIDRejectedEvent)
	if !ok {
		return fmt.Errorf("неожиданный тип события %T", event)
	}

	if l.metrics != nil {
		l.metrics.TaskIDRejected(e.Rejection.Reason)
	}

	total, err := l.cache.Incr(ctx, RejectionCounterKey(e.Rejection.Reason))
	if err != nil {
		return fmt.Errorf("счётчик отказов %s: %w", e.Rejection.Reason, err)
	}

	l.logger.Debug("Учтён отказ идентификатора задачи",
		zap.String("reason", e.Rejection.Reason),
		zap.String("plan_id", e.Rejection.PlanID),
		zap.String("session", e.SessionID),
		zap.Int64("total", total),
	)
	return nil
}

func RejectionCounterKey(reason string) string {
	return rejectionCounterPrefix + reason
}
