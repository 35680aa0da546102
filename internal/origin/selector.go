package origin

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

type ActionType string

const (
	ActionChooseType           ActionType = "choose_type"
	ActionChoosePlant          ActionType = "choose_plant"
	ActionChooseUnit           ActionType = "choose_unit"
	ActionChooseAnomaly        ActionType = "choose_anomaly"
	ActionTogglePlan           ActionType = "toggle_plan"
	ActionToggleTask           ActionType = "toggle_task"
	ActionSelectAllInPlan      ActionType = "select_all_in_plan"
	ActionClearAllInPlan       ActionType = "clear_all_in_plan"
	ActionToggleGroupExpansion ActionType = "toggle_group_expansion"
)

// Action - одно действие пользователя над выбором.
// ID - идентификатор площадки, подразделения, аномалии, плана или задачи в зависимости от Type.
type Action struct {
	Type       ActionType `json:"type"`
	OriginType OriginType `json:"origin_type,omitempty"`
	ID         string     `json:"id,omitempty"`
	Checked    bool       `json:"checked,omitempty"`
}

// Host - форма, владеющая значением выбора.
type Host interface {
	SetValue(Selection)
	LocationAssetChanged(Projection)
}

// HostFuncs адаптирует пару колбэков к Host. Оба поля необязательны.
type HostFuncs struct {
	OnChange     func(Selection)
	OnProjection func(Projection)
}

func (h HostFuncs) SetValue(s Selection) {
	if h.OnChange != nil {
		h.OnChange(s)
	}
}

func (h HostFuncs) LocationAssetChanged(p Projection) {
	if h.OnProjection != nil {
		h.OnProjection(p)
	}
}

type Result struct {
	Selection         Selection  `json:"selection"`
	Projection        Projection `json:"projection"`
	ProjectionChanged bool       `json:"projection_changed"`
}

// Selector - управляемый компонент: своего состояния выбора не хранит,
// получает текущее значение и отдаёт форме полную замену.
type Selector struct {
	anomalies  *AnomalyPath
	aggregator *Aggregator
	logger     *zap.Logger
}

func NewSelector(anomalies *AnomalyPath, aggregator *Aggregator, logger *zap.Logger) *Selector {
	return &Selector{anomalies: anomalies, aggregator: aggregator, logger: logger}
}

func (s *Selector) Aggregator() *Aggregator {
	return s.aggregator
}

func (s *Selector) Apply(ctx context.Context, current Selection, action Action, host Host) (Result, error) {
	if host == nil {
		host = HostFuncs{}
	}
	if action.Type != ActionChooseType {
		if err := Validate(current); err != nil {
			return Result{Selection: current}, err
		}
	}

	next, res, err := s.dispatch(ctx, current, action)
	if err != nil {
		s.logger.Debug("Действие над выбором отклонено",
			zap.String("action", string(action.Type)), zap.String("id", action.ID), zap.Error(err))
		return Result{Selection: current}, err
	}

	host.SetValue(next)
	res.Selection = next
	if res.ProjectionChanged {
		host.LocationAssetChanged(res.Projection)
	}
	return res, nil
}

func (s *Selector) dispatch(ctx context.Context, current Selection, action Action) (Selection, Result, error) {
	var (
		next Selection
		res  Result
		err  error
	)

	switch action.Type {
	case ActionChooseType:
		next, err = ChooseType(action.OriginType)
		res.ProjectionChanged = err == nil

	case ActionChoosePlant:
		switch current.Type {
		case OriginAnomaly:
			next, err = ChooseAnomalyPlant(current, action.ID)
			res.ProjectionChanged = err == nil && current.Anomaly.AnomalyID != ""
		case OriginPlan:
			next, err = ChoosePlanPlant(current, action.ID)
			res = s.planProjection(current, next)
		default:
			err = fmt.Errorf("%w: выбор площадки недоступен для варианта '%s'", ErrInvalidTransition, current.Type)
		}

	case ActionChooseUnit:
		next, err = ChooseUnit(current, action.ID)
		res.ProjectionChanged = err == nil && current.Anomaly.AnomalyID != ""

	case ActionChooseAnomaly:
		var anomaly *AnomalySummary
		next, anomaly, err = s.anomalies.ChooseAnomaly(ctx, current, action.ID)
		if err == nil {
			res.ProjectionChanged = true
			if anomaly != nil {
				res.Projection = Project(next, []AnomalySummary{*anomaly})
			}
		}

	case ActionTogglePlan:
		next, err = s.aggregator.TogglePlan(ctx, current, action.ID)
		res = s.planProjection(current, next)

	case ActionToggleTask:
		next, err = s.aggregator.ToggleTask(ctx, current, action.ID, action.Checked)
		res = s.planProjection(current, next)

	case ActionSelectAllInPlan:
		next, err = s.aggregator.SelectAllInPlan(ctx, current, action.ID)
		res = s.planProjection(current, next)

	case ActionClearAllInPlan:
		next, err = ClearAllInPlan(current, action.ID)
		res = s.planProjection(current, next)

	case ActionToggleGroupExpansion:
		next, err = ToggleGroupExpansion(current, action.ID)

	default:
		err = fmt.Errorf("%w: '%s'", ErrUnknownAction, action.Type)
	}

	if err != nil {
		return current, Result{}, err
	}
	return next, res, nil
}

// planProjection пересчитывает проекцию, если изменился набор выбранных задач.
func (s *Selector) planProjection(before, after Selection) Result {
	if after.Plan == nil || before.Plan == nil {
		return Result{}
	}
	if equalStrings(before.Plan.SelectedTaskIDs, after.Plan.SelectedTaskIDs) {
		return Result{}
	}
	return Result{Projection: Project(after, nil), ProjectionChanged: true}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
