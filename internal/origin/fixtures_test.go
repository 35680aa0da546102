package origin

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// seqIDs выдаёт детерминированные 26-символьные идентификаторы.
type seqIDs struct {
	prefix string
	n      atomic.Int64
}

func (g *seqIDs) NewID() string {
	prefix := g.prefix
	if prefix == "" {
		prefix = "01TASK"
	}
	n := g.n.Add(1)
	return fmt.Sprintf("%s%0*d", prefix, TaskIDLength-len(prefix), n)
}

type recordingSink struct {
	mu         sync.Mutex
	rejections []Rejection
}

func (s *recordingSink) TaskIDRejected(_ context.Context, r Rejection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejections = append(s.rejections, r)
}

func (s *recordingSink) all() []Rejection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Rejection{}, s.rejections...)
}

type fakeDirectory struct {
	plants    []Plant
	units     map[string][]Unit
	anomalies []AnomalySummary
	plans     []Plan

	plantsErr    error
	anomaliesErr error
	plansErr     error

	// gates блокируют выборку аномалий по площадке до закрытия канала.
	gates map[string]chan struct{}
}

func (f *fakeDirectory) ListPlants(context.Context) ([]Plant, error) {
	return f.plants, f.plantsErr
}

func (f *fakeDirectory) ListUnitsForPlant(_ context.Context, plantID string) ([]Unit, error) {
	return f.units[plantID], f.plantsErr
}

func (f *fakeDirectory) ListOpenAnomalies(ctx context.Context, plantID, unitID string) ([]AnomalySummary, error) {
	if gate, ok := f.gates[plantID]; ok {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.anomalies, f.anomaliesErr
}

func (f *fakeDirectory) ListActivePlans(context.Context, string) ([]Plan, error) {
	return f.plans, f.plansErr
}

func scenarioDirectory() *fakeDirectory {
	return &fakeDirectory{
		plants: []Plant{{ID: "P1", Name: "Planta 1", Location: "Norte"}},
		units:  map[string][]Unit{"P1": {{ID: "U1", Name: "Unidade 1"}}},
		anomalies: []AnomalySummary{
			{
				ID: "AN1", Description: "Vazamento", Location: "Hall A", Asset: "Pump 3",
				Priority: "HIGH", Status: AnomalyStatusAwaiting, ReportedAt: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
				EquipmentID: "7", PlantID: "P1", UnitID: "U1",
			},
		},
		plans: []Plan{
			{
				PlanSummary: PlanSummary{ID: "PL1", Name: "Lubrificação", Category: "MECH", TemplateTaskCount: 2, EquipmentCount: 1, Active: true},
				Templates: []TaskTemplate{
					{ID: "T1", TagBase: "LUB", Description: "Lubrificar rolamentos", Category: "MECH", SuggestedOwner: "Equipe A"},
					{ID: "T2", TagBase: "INS", Description: "Inspecionar correia", Category: "MECH", SuggestedOwner: "Equipe B"},
				},
				Equipment: []EquipmentRef{{ID: "7", Location: "Hall B", Asset: "Conveyor 7"}},
			},
			{
				PlanSummary: PlanSummary{ID: "PL2", Name: "Elétrica", Category: "ELEC", TemplateTaskCount: 1, Active: true},
				Templates: []TaskTemplate{
					{ID: "T3", TagBase: "ELE", Description: "Reapertar bornes"},
				},
				Equipment: []EquipmentRef{{ID: "9", Location: "Subestação", Asset: "Painel 9"}},
			},
			{
				PlanSummary: PlanSummary{ID: "PL-OFF", Name: "Desativado", Active: false},
			},
		},
	}
}

type testEngine struct {
	dir      *fakeDirectory
	sink     *recordingSink
	provider *Provider
	agg      *Aggregator
	selector *Selector
}

func newTestEngine(dir *fakeDirectory, ids IDGenerator) *testEngine {
	if ids == nil {
		ids = &seqIDs{}
	}
	logger := zap.NewNop()
	sink := &recordingSink{}
	validator := NewIDValidator(sink)
	provider := NewProvider(dir, dir, dir, NewExpander(ids, validator), logger)
	agg := NewAggregator(provider, validator, nil, logger)
	return &testEngine{
		dir:      dir,
		sink:     sink,
		provider: provider,
		agg:      agg,
		selector: NewSelector(NewAnomalyPath(provider), agg, logger),
	}
}
