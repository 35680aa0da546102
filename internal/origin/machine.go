package origin

import (
	"context"
	"fmt"
)

// AnomalyState - состояние каскадного выбора по аномалии.
type AnomalyState int

const (
	StateUninitialized AnomalyState = iota
	StatePlantChosen
	StateUnitChosen
	StateAnomalyChosen
)

func (s AnomalyState) String() string {
	switch s {
	case StatePlantChosen:
		return "plant_chosen"
	case StateUnitChosen:
		return "unit_chosen"
	case StateAnomalyChosen:
		return "anomaly_chosen"
	default:
		return "uninitialized"
	}
}

func StateOf(a AnomalyOrigin) AnomalyState {
	switch {
	case a.PlantID == "":
		return StateUninitialized
	case a.UnitID == "":
		return StatePlantChosen
	case a.AnomalyID == "":
		return StateUnitChosen
	default:
		return StateAnomalyChosen
	}
}

// ChooseType начинает выбор заново для нового варианта.
func ChooseType(t OriginType) (Selection, error) {
	if !t.Valid() {
		return Selection{}, fmt.Errorf("%w: неизвестный тип '%s'", ErrInvalidTransition, t)
	}
	return NewSelection(t), nil
}

func requireType(sel Selection, t OriginType) error {
	if sel.Type != t {
		return fmt.Errorf("%w: действие доступно только для варианта '%s', текущий '%s'", ErrInvalidTransition, t, sel.Type)
	}
	if (t == OriginAnomaly && sel.Anomaly == nil) || (t == OriginPlan && sel.Plan == nil) {
		return fmt.Errorf("%w: нет данных варианта '%s'", ErrInvalidSelection, t)
	}
	return nil
}

// ChooseAnomalyPlant: новая площадка сбрасывает подразделение и аномалию,
// пустая строка возвращает выбор в начальное состояние.
func ChooseAnomalyPlant(sel Selection, plantID string) (Selection, error) {
	if err := requireType(sel, OriginAnomaly); err != nil {
		return sel, err
	}
	next := sel.Clone()
	next.Anomaly = &AnomalyOrigin{PlantID: plantID}
	return next, nil
}

// ChooseUnit - то же на уровень ниже; площадка сохраняется.
func ChooseUnit(sel Selection, unitID string) (Selection, error) {
	if err := requireType(sel, OriginAnomaly); err != nil {
		return sel, err
	}
	if unitID != "" && sel.Anomaly.PlantID == "" {
		return sel, fmt.Errorf("%w: сначала выберите площадку", ErrInvalidTransition)
	}
	next := sel.Clone()
	next.Anomaly.UnitID = unitID
	next.Anomaly.AnomalyID = ""
	return next, nil
}

// AnomalyPath выбирает аномалию, сверяя её со списком открытых аномалий области.
type AnomalyPath struct {
	provider *Provider
}

func NewAnomalyPath(provider *Provider) *AnomalyPath {
	return &AnomalyPath{provider: provider}
}

// ChooseAnomaly возвращает новое значение и выбранную аномалию (nil при сбросе).
func (a *AnomalyPath) ChooseAnomaly(ctx context.Context, sel Selection, anomalyID string) (Selection, *AnomalySummary, error) {
	if err := requireType(sel, OriginAnomaly); err != nil {
		return sel, nil, err
	}
	if anomalyID == "" {
		next := sel.Clone()
		next.Anomaly.AnomalyID = ""
		return next, nil, nil
	}
	if StateOf(*sel.Anomaly) < StateUnitChosen {
		return sel, nil, fmt.Errorf("%w: сначала выберите площадку и подразделение", ErrInvalidTransition)
	}

	anomalies, err := a.provider.LoadOpenAnomalies(ctx, sel.Anomaly.PlantID, sel.Anomaly.UnitID)
	if err != nil {
		return sel, nil, err
	}
	for i := range anomalies {
		if anomalies[i].ID == anomalyID {
			next := sel.Clone()
			next.Anomaly.AnomalyID = anomalyID
			found := anomalies[i]
			return next, &found, nil
		}
	}
	return sel, nil, fmt.Errorf("%w: %s", ErrAnomalyNotFound, anomalyID)
}
