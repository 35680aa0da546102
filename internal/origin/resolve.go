package origin

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// WorkOrderOrigin - итог выбора, который форма передаёт при создании наряда.
type WorkOrderOrigin struct {
	Type      OriginType      `json:"type"`
	PlantID   string          `json:"plant_id,omitempty"`
	UnitID    string          `json:"unit_id,omitempty"`
	AnomalyID string          `json:"anomaly_id,omitempty"`
	PlanIDs   []string        `json:"plan_ids,omitempty"`
	Tasks     []GeneratedTask `json:"tasks,omitempty"`
}

// Resolve проверяет, что выбор завершён, и собирает его итог.
func (s *Selector) Resolve(sel Selection) (WorkOrderOrigin, error) {
	if err := Validate(sel); err != nil {
		if errors.Is(err, ErrInconsistentSelection) {
			// Обе коллекции всегда чистятся вместе, сюда попасть нельзя.
			s.logger.DPanic("Нарушена целостность выбора задач", zap.Error(err))
		}
		return WorkOrderOrigin{}, err
	}

	switch sel.Type {
	case OriginManual:
		return WorkOrderOrigin{Type: OriginManual}, nil

	case OriginAnomaly:
		if StateOf(*sel.Anomaly) != StateAnomalyChosen {
			return WorkOrderOrigin{}, fmt.Errorf("%w: выберите площадку, подразделение и аномалию", ErrIncompleteSelection)
		}
		return WorkOrderOrigin{
			Type:      OriginAnomaly,
			PlantID:   sel.Anomaly.PlantID,
			UnitID:    sel.Anomaly.UnitID,
			AnomalyID: sel.Anomaly.AnomalyID,
		}, nil

	case OriginPlan:
		p := sel.Plan
		if len(p.SelectedTaskIDs) == 0 {
			return WorkOrderOrigin{}, fmt.Errorf("%w: не выбрано ни одной задачи", ErrIncompleteSelection)
		}
		out := WorkOrderOrigin{
			Type:    OriginPlan,
			PlantID: p.PlantID,
			PlanIDs: append([]string{}, p.SelectedPlanIDs...),
			Tasks:   make([]GeneratedTask, 0, len(p.SelectedTaskIDs)),
		}
		for _, planID := range p.SelectedPlanIDs {
			for _, t := range p.TaskGroups[planID].Tasks {
				if p.isTaskSelected(t.ID) {
					out.Tasks = append(out.Tasks, t)
				}
			}
		}
		return out, nil
	}
	return WorkOrderOrigin{}, fmt.Errorf("%w: неизвестный тип '%s'", ErrInvalidSelection, sel.Type)
}
