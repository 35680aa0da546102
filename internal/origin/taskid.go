package origin

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

const (
	TaskIDLength = 26
	// FixtureMarker - подстрока, которой слой генерации тестовых данных помечает
	// фиктивные идентификаторы. Такие id не должны попадать в выбор.
	FixtureMarker = "cmg"
)

const (
	RejectReasonLength  = "length"
	RejectReasonFixture = "fixture_marker"
)

// IsValidTaskID - чистая проверка формы идентификатора задачи.
func IsValidTaskID(id string) bool {
	return rejectReason(id) == ""
}

func rejectReason(id string) string {
	if len(id) != TaskIDLength {
		return RejectReasonLength
	}
	if strings.Contains(id, FixtureMarker) {
		return RejectReasonFixture
	}
	return ""
}

// Rejection - отказ валидатора, отправляемый в приёмник наблюдаемости.
type Rejection struct {
	TaskID      string
	PlanID      string
	Description string
	Reason      string
}

type RejectionSink interface {
	TaskIDRejected(ctx context.Context, r Rejection)
}

// IDValidator проверяет идентификаторы и сообщает о каждом отказе.
type IDValidator struct {
	sink RejectionSink
}

func NewIDValidator(sink RejectionSink) *IDValidator {
	if sink == nil {
		sink = NopSink{}
	}
	return &IDValidator{sink: sink}
}

func (v *IDValidator) Check(ctx context.Context, taskID, planID, description string) bool {
	reason := rejectReason(taskID)
	if reason == "" {
		return true
	}
	v.sink.TaskIDRejected(ctx, Rejection{
		TaskID:      taskID,
		PlanID:      planID,
		Description: description,
		Reason:      reason,
	})
	return false
}

type NopSink struct{}

func (NopSink) TaskIDRejected(context.Context, Rejection) {}

// LogSink пишет отказ в журнал. Отказ означает, что выше по цепочке
// просочились непроизводственные идентификаторы.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) TaskIDRejected(_ context.Context, r Rejection) {
	s.logger.Error("Отклонён недопустимый идентификатор задачи",
		zap.String("task_id", r.TaskID),
		zap.String("plan_id", r.PlanID),
		zap.String("description", r.Description),
		zap.String("reason", r.Reason),
	)
}

type MultiSink []RejectionSink

func (m MultiSink) TaskIDRejected(ctx context.Context, r Rejection) {
	for _, s := range m {
		s.TaskIDRejected(ctx, r)
	}
}
