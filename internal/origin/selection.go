package origin

import (
	"fmt"
)

// AnomalyOrigin - иерархия Площадка → Подразделение → Аномалия.
// Пустая строка означает, что уровень ещё не выбран.
type AnomalyOrigin struct {
	PlantID   string `json:"plant_id"`
	UnitID    string `json:"unit_id"`
	AnomalyID string `json:"anomaly_id"`
}

type TaskGroup struct {
	Plan     PlanSummary     `json:"plan"`
	Tasks    []GeneratedTask `json:"tasks"`
	Expanded bool            `json:"expanded"`
}

func (g TaskGroup) hasTask(id string) bool {
	for _, t := range g.Tasks {
		if t.ID == id {
			return true
		}
	}
	return false
}

func (g TaskGroup) taskIDs() []string {
	ids := make([]string, 0, len(g.Tasks))
	for _, t := range g.Tasks {
		ids = append(ids, t.ID)
	}
	return ids
}

// PlanOrigin - выбор одного или нескольких планов ТО и их задач.
// SelectedPlanIDs хранит порядок выбора планов, он важен для проектора.
type PlanOrigin struct {
	PlantID         string               `json:"plant_id"`
	SelectedPlanIDs []string             `json:"selected_plan_ids"`
	TaskGroups      map[string]TaskGroup `json:"task_groups"`
	SelectedTaskIDs []string             `json:"selected_task_ids"`
}

func (p *PlanOrigin) isPlanSelected(planID string) bool {
	return containsString(p.SelectedPlanIDs, planID)
}

func (p *PlanOrigin) isTaskSelected(taskID string) bool {
	return containsString(p.SelectedTaskIDs, taskID)
}

// owningGroup возвращает план, которому принадлежит задача.
func (p *PlanOrigin) owningGroup(taskID string) (string, bool) {
	for _, planID := range p.SelectedPlanIDs {
		if g, ok := p.TaskGroups[planID]; ok && g.hasTask(taskID) {
			return planID, true
		}
	}
	return "", false
}

// Selection - корневое значение, которым владеет форма создания наряда.
// Ненулевым может быть только указатель, соответствующий Type.
type Selection struct {
	Type    OriginType     `json:"type"`
	Anomaly *AnomalyOrigin `json:"anomaly,omitempty"`
	Plan    *PlanOrigin    `json:"plan,omitempty"`
}

// NewSelection создаёт пустое значение выбранного варианта.
func NewSelection(t OriginType) Selection {
	switch t {
	case OriginAnomaly:
		return Selection{Type: OriginAnomaly, Anomaly: &AnomalyOrigin{}}
	case OriginPlan:
		return Selection{Type: OriginPlan, Plan: &PlanOrigin{
			SelectedPlanIDs: []string{},
			TaskGroups:      map[string]TaskGroup{},
			SelectedTaskIDs: []string{},
		}}
	default:
		return Selection{Type: OriginManual}
	}
}

// Clone делает глубокую копию. Все переходы работают с копией, исходное значение не меняется.
func (s Selection) Clone() Selection {
	out := Selection{Type: s.Type}
	if s.Anomaly != nil {
		a := *s.Anomaly
		out.Anomaly = &a
	}
	if s.Plan != nil {
		p := &PlanOrigin{
			PlantID:         s.Plan.PlantID,
			SelectedPlanIDs: append([]string{}, s.Plan.SelectedPlanIDs...),
			TaskGroups:      make(map[string]TaskGroup, len(s.Plan.TaskGroups)),
			SelectedTaskIDs: append([]string{}, s.Plan.SelectedTaskIDs...),
		}
		for id, g := range s.Plan.TaskGroups {
			p.TaskGroups[id] = TaskGroup{
				Plan:     g.Plan,
				Tasks:    append([]GeneratedTask{}, g.Tasks...),
				Expanded: g.Expanded,
			}
		}
		out.Plan = p
	}
	return out
}

// Validate проверяет структурные инварианты значения, полученного от формы.
func Validate(s Selection) error {
	switch s.Type {
	case OriginManual:
		if s.Anomaly != nil || s.Plan != nil {
			return fmt.Errorf("%w: ручной вариант не содержит данных", ErrInvalidSelection)
		}
	case OriginAnomaly:
		if s.Anomaly == nil || s.Plan != nil {
			return fmt.Errorf("%w: вариант 'anomaly' требует только блок anomaly", ErrInvalidSelection)
		}
		a := s.Anomaly
		if a.UnitID != "" && a.PlantID == "" {
			return fmt.Errorf("%w: подразделение выбрано без площадки", ErrInvalidSelection)
		}
		if a.AnomalyID != "" && (a.PlantID == "" || a.UnitID == "") {
			return fmt.Errorf("%w: аномалия выбрана без площадки и подразделения", ErrInvalidSelection)
		}
	case OriginPlan:
		if s.Plan == nil || s.Anomaly != nil {
			return fmt.Errorf("%w: вариант 'plan' требует только блок plan", ErrInvalidSelection)
		}
		return validatePlanOrigin(s.Plan)
	default:
		return fmt.Errorf("%w: неизвестный тип '%s'", ErrInvalidSelection, s.Type)
	}
	return nil
}

func validatePlanOrigin(p *PlanOrigin) error {
	if hasDuplicates(p.SelectedPlanIDs) {
		return fmt.Errorf("%w: повторяющиеся планы", ErrInvalidSelection)
	}
	if hasDuplicates(p.SelectedTaskIDs) {
		return fmt.Errorf("%w: повторяющиеся задачи", ErrInvalidSelection)
	}
	if len(p.TaskGroups) != len(p.SelectedPlanIDs) {
		return fmt.Errorf("%w: группы задач не совпадают с выбранными планами", ErrInvalidSelection)
	}
	for _, planID := range p.SelectedPlanIDs {
		g, ok := p.TaskGroups[planID]
		if !ok {
			return fmt.Errorf("%w: нет группы задач для плана '%s'", ErrInvalidSelection, planID)
		}
		if g.Plan.ID != planID {
			return fmt.Errorf("%w: группа '%s' описывает план '%s'", ErrInvalidSelection, planID, g.Plan.ID)
		}
	}
	for _, taskID := range p.SelectedTaskIDs {
		if _, ok := p.owningGroup(taskID); !ok {
			return fmt.Errorf("%w: %s", ErrInconsistentSelection, taskID)
		}
		if !IsValidTaskID(taskID) {
			return fmt.Errorf("%w: недопустимый идентификатор задачи '%s'", ErrInvalidSelection, taskID)
		}
	}
	return nil
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func removeString(list []string, v string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}

func hasDuplicates(list []string) bool {
	seen := make(map[string]struct{}, len(list))
	for _, s := range list {
		if _, ok := seen[s]; ok {
			return true
		}
		seen[s] = struct{}{}
	}
	return false
}
