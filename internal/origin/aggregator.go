package origin

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// DefaultEquipmentScope используется, когда у плана нет собственного списка оборудования.
var DefaultEquipmentScope = []string{"1"}

// Aggregator ведёт выбор нескольких планов ТО, у каждого своя группа задач.
type Aggregator struct {
	provider     *Provider
	validator    *IDValidator
	defaultScope []string
	logger       *zap.Logger
}

func NewAggregator(provider *Provider, validator *IDValidator, defaultScope []string, logger *zap.Logger) *Aggregator {
	if len(defaultScope) == 0 {
		defaultScope = DefaultEquipmentScope
	}
	if validator == nil {
		validator = NewIDValidator(nil)
	}
	return &Aggregator{
		provider:     provider,
		validator:    validator,
		defaultScope: append([]string{}, defaultScope...),
		logger:       logger,
	}
}

// EquipmentScope - оборудование, по которому разворачивается план.
func (a *Aggregator) EquipmentScope(plan Plan) []string {
	if ids := plan.EquipmentIDs(); len(ids) > 0 {
		return ids
	}
	return append([]string{}, a.defaultScope...)
}

// ChoosePlanPlant: смена площадки обнуляет все планы и задачи.
func ChoosePlanPlant(sel Selection, plantID string) (Selection, error) {
	if err := requireType(sel, OriginPlan); err != nil {
		return sel, err
	}
	next := NewSelection(OriginPlan)
	next.Plan.PlantID = plantID
	return next, nil
}

// TogglePlan снимает выбранный план вместе с его задачами или добавляет новый.
// План попадает в выбор только после того, как развёртывание задач завершилось.
// Неизвестный план, сбой справочника или ошибка развёртывания дают план с пустым
// списком задач; значение не меняется только для устаревшего результата.
func (a *Aggregator) TogglePlan(ctx context.Context, sel Selection, planID string) (Selection, error) {
	if err := requireType(sel, OriginPlan); err != nil {
		return sel, err
	}
	if planID == "" {
		return sel, fmt.Errorf("%w: не указан план", ErrInvalidTransition)
	}

	if sel.Plan.isPlanSelected(planID) {
		next := sel.Clone()
		removed := next.Plan.TaskGroups[planID]
		delete(next.Plan.TaskGroups, planID)
		next.Plan.SelectedPlanIDs = removeString(next.Plan.SelectedPlanIDs, planID)
		for _, taskID := range removed.taskIDs() {
			next.Plan.SelectedTaskIDs = removeString(next.Plan.SelectedTaskIDs, taskID)
		}
		return next, nil
	}

	tasks, summary, err := a.expandForToggle(ctx, sel.Plan.PlantID, planID)
	if err != nil {
		if errors.Is(err, ErrStaleResult) {
			return sel, err
		}
		a.logger.Warn("Не удалось развернуть задачи плана, план добавлен без задач",
			zap.String("plan_id", planID), zap.Error(err))
		tasks = []GeneratedTask{}
	}

	next := sel.Clone()
	next.Plan.SelectedPlanIDs = append(next.Plan.SelectedPlanIDs, planID)
	next.Plan.TaskGroups[planID] = TaskGroup{Plan: summary, Tasks: tasks, Expanded: true}
	return next, nil
}

// expandForToggle находит план и разворачивает его задачи. Сводка плана возвращается
// всегда, даже при ошибке: неизвестный план представлен одним идентификатором.
func (a *Aggregator) expandForToggle(ctx context.Context, plantID, planID string) ([]GeneratedTask, PlanSummary, error) {
	plan, err := a.provider.ResolvePlan(ctx, plantID, planID)
	if err != nil {
		return nil, PlanSummary{ID: planID}, err
	}
	tasks, err := a.provider.ExpandPlan(ctx, plan, a.EquipmentScope(plan))
	return tasks, plan.PlanSummary, err
}

// ToggleTask: недопустимый id или id без группы никогда не попадает в выбор.
func (a *Aggregator) ToggleTask(ctx context.Context, sel Selection, taskID string, checked bool) (Selection, error) {
	if err := requireType(sel, OriginPlan); err != nil {
		return sel, err
	}
	if !checked {
		if !sel.Plan.isTaskSelected(taskID) {
			return sel, nil
		}
		next := sel.Clone()
		next.Plan.SelectedTaskIDs = removeString(next.Plan.SelectedTaskIDs, taskID)
		return next, nil
	}

	if sel.Plan.isTaskSelected(taskID) {
		return sel, nil
	}
	planID, ok := sel.Plan.owningGroup(taskID)
	if !ok {
		a.logger.Warn("Задача не принадлежит ни одной группе выбранных планов", zap.String("task_id", taskID))
		return sel, nil
	}
	if !a.validator.Check(ctx, taskID, planID, taskDescription(sel.Plan.TaskGroups[planID], taskID)) {
		return sel, nil
	}
	next := sel.Clone()
	next.Plan.SelectedTaskIDs = append(next.Plan.SelectedTaskIDs, taskID)
	return next, nil
}

// SelectAllInPlan отмечает все допустимые задачи группы, выбор в других группах не трогает.
func (a *Aggregator) SelectAllInPlan(ctx context.Context, sel Selection, planID string) (Selection, error) {
	if err := requireType(sel, OriginPlan); err != nil {
		return sel, err
	}
	group, ok := sel.Plan.TaskGroups[planID]
	if !ok {
		return sel, fmt.Errorf("%w: план '%s' не выбран", ErrInvalidTransition, planID)
	}
	next := sel.Clone()
	for _, t := range group.Tasks {
		if next.Plan.isTaskSelected(t.ID) {
			continue
		}
		if !a.validator.Check(ctx, t.ID, planID, t.Description) {
			continue
		}
		next.Plan.SelectedTaskIDs = append(next.Plan.SelectedTaskIDs, t.ID)
	}
	return next, nil
}

func ClearAllInPlan(sel Selection, planID string) (Selection, error) {
	if err := requireType(sel, OriginPlan); err != nil {
		return sel, err
	}
	group, ok := sel.Plan.TaskGroups[planID]
	if !ok {
		return sel, fmt.Errorf("%w: план '%s' не выбран", ErrInvalidTransition, planID)
	}
	next := sel.Clone()
	for _, taskID := range group.taskIDs() {
		next.Plan.SelectedTaskIDs = removeString(next.Plan.SelectedTaskIDs, taskID)
	}
	return next, nil
}

// ToggleGroupExpansion меняет только состояние интерфейса.
func ToggleGroupExpansion(sel Selection, planID string) (Selection, error) {
	if err := requireType(sel, OriginPlan); err != nil {
		return sel, err
	}
	group, ok := sel.Plan.TaskGroups[planID]
	if !ok {
		return sel, fmt.Errorf("%w: план '%s' не выбран", ErrInvalidTransition, planID)
	}
	next := sel.Clone()
	group = next.Plan.TaskGroups[planID]
	group.Expanded = !group.Expanded
	next.Plan.TaskGroups[planID] = group
	return next, nil
}

func taskDescription(g TaskGroup, taskID string) string {
	for _, t := range g.Tasks {
		if t.ID == taskID {
			return t.Description
		}
	}
	return ""
}
