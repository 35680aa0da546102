package origin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type recordingHost struct {
	values      []Selection
	projections []Projection
}

func (h *recordingHost) SetValue(s Selection)              { h.values = append(h.values, s) }
func (h *recordingHost) LocationAssetChanged(p Projection) { h.projections = append(h.projections, p) }

func TestSelector_ScenarioD_ManualResetsEverything(t *testing.T) {
	e := newTestEngine(scenarioDirectory(), nil)
	ctx := context.Background()

	sel, err := e.agg.TogglePlan(ctx, planSelection("P1"), "PL1")
	require.NoError(t, err)
	sel, err = e.agg.SelectAllInPlan(ctx, sel, "PL1")
	require.NoError(t, err)

	starts := []Selection{
		{},
		{Type: OriginAnomaly, Anomaly: &AnomalyOrigin{PlantID: "P1", UnitID: "U1", AnomalyID: "AN1"}},
		sel,
	}
	for _, start := range starts {
		host := &recordingHost{}
		res, err := e.selector.Apply(ctx, start, Action{Type: ActionChooseType, OriginType: OriginManual}, host)

		require.NoError(t, err)
		assert.Equal(t, Selection{Type: OriginManual}, res.Selection)
		assert.True(t, res.ProjectionChanged)
		require.Len(t, host.projections, 1)
		assert.Equal(t, Projection{Location: "", Asset: ""}, host.projections[0])
		require.Len(t, host.values, 1)
		assert.Equal(t, res.Selection, host.values[0])
	}
}

func TestSelector_ChooseTypeClearsProjection(t *testing.T) {
	e := newTestEngine(scenarioDirectory(), nil)
	start := Selection{Type: OriginAnomaly, Anomaly: &AnomalyOrigin{PlantID: "P1", UnitID: "U1", AnomalyID: "AN1"}}

	for _, target := range []OriginType{OriginPlan, OriginAnomaly} {
		host := &recordingHost{}
		res, err := e.selector.Apply(context.Background(), start, Action{Type: ActionChooseType, OriginType: target}, host)

		require.NoError(t, err)
		assert.Equal(t, NewSelection(target), res.Selection)
		assert.True(t, res.ProjectionChanged)
		assert.Equal(t, []Projection{{}}, host.projections)
	}
}

func TestSelector_PlanProjectionFollowsTaskSelection(t *testing.T) {
	e := newTestEngine(scenarioDirectory(), nil)
	ctx := context.Background()
	host := &recordingHost{}

	res, err := e.selector.Apply(ctx, planSelection("P1"), Action{Type: ActionTogglePlan, ID: "PL1"}, host)
	require.NoError(t, err)
	assert.False(t, res.ProjectionChanged)
	assert.Empty(t, host.projections)

	taskID := res.Selection.Plan.TaskGroups["PL1"].Tasks[0].ID
	res, err = e.selector.Apply(ctx, res.Selection, Action{Type: ActionToggleTask, ID: taskID, Checked: true}, host)
	require.NoError(t, err)
	assert.True(t, res.ProjectionChanged)
	assert.Equal(t, Projection{Location: "Hall B", Asset: "Conveyor 7"}, res.Projection)

	res, err = e.selector.Apply(ctx, res.Selection, Action{Type: ActionToggleGroupExpansion, ID: "PL1"}, host)
	require.NoError(t, err)
	assert.False(t, res.ProjectionChanged)

	res, err = e.selector.Apply(ctx, res.Selection, Action{Type: ActionClearAllInPlan, ID: "PL1"}, host)
	require.NoError(t, err)
	assert.True(t, res.ProjectionChanged)
	assert.Equal(t, Projection{}, res.Projection)

	assert.Len(t, host.values, 4)
	assert.Len(t, host.projections, 2)
}

func TestSelector_RejectedActionDoesNotNotifyHost(t *testing.T) {
	e := newTestEngine(scenarioDirectory(), nil)
	host := &recordingHost{}
	start := Selection{Type: OriginAnomaly, Anomaly: &AnomalyOrigin{}}

	res, err := e.selector.Apply(context.Background(), start, Action{Type: ActionChooseUnit, ID: "U1"}, host)

	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, start, res.Selection)
	assert.Empty(t, host.values)
	assert.Empty(t, host.projections)
}

func TestSelector_RejectsMalformedValue(t *testing.T) {
	e := newTestEngine(scenarioDirectory(), nil)
	ctx := context.Background()

	malformed := []Selection{
		{Type: "bogus"},
		{Type: OriginManual, Anomaly: &AnomalyOrigin{}},
		{Type: OriginAnomaly},
		{Type: OriginAnomaly, Anomaly: &AnomalyOrigin{UnitID: "U1"}},
		{Type: OriginPlan, Plan: &PlanOrigin{SelectedPlanIDs: []string{"PL1"}, TaskGroups: map[string]TaskGroup{}}},
		{Type: OriginPlan, Plan: &PlanOrigin{SelectedPlanIDs: []string{"PL1", "PL1"}, TaskGroups: map[string]TaskGroup{"PL1": {Plan: PlanSummary{ID: "PL1"}}}}},
	}
	for _, sel := range malformed {
		_, err := e.selector.Apply(ctx, sel, Action{Type: ActionChoosePlant, ID: "P1"}, nil)
		assert.ErrorIs(t, err, ErrInvalidSelection, "%+v", sel)
	}
}

func TestSelector_UnknownAction(t *testing.T) {
	e := newTestEngine(scenarioDirectory(), nil)

	_, err := e.selector.Apply(context.Background(), NewSelection(OriginManual), Action{Type: "explode"}, nil)

	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestSelector_ChooseTypeRejectsUnknownVariant(t *testing.T) {
	e := newTestEngine(scenarioDirectory(), nil)

	_, err := e.selector.Apply(context.Background(), Selection{}, Action{Type: ActionChooseType, OriginType: "drone"}, nil)

	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestSelector_Resolve(t *testing.T) {
	e := newTestEngine(scenarioDirectory(), nil)
	ctx := context.Background()

	t.Run("manual", func(t *testing.T) {
		got, err := e.selector.Resolve(NewSelection(OriginManual))
		require.NoError(t, err)
		assert.Equal(t, WorkOrderOrigin{Type: OriginManual}, got)
	})

	t.Run("anomaly incomplete", func(t *testing.T) {
		_, err := e.selector.Resolve(Selection{Type: OriginAnomaly, Anomaly: &AnomalyOrigin{PlantID: "P1", UnitID: "U1"}})
		assert.ErrorIs(t, err, ErrIncompleteSelection)
	})

	t.Run("anomaly", func(t *testing.T) {
		got, err := e.selector.Resolve(Selection{Type: OriginAnomaly, Anomaly: &AnomalyOrigin{PlantID: "P1", UnitID: "U1", AnomalyID: "AN1"}})
		require.NoError(t, err)
		assert.Equal(t, "AN1", got.AnomalyID)
		assert.Equal(t, "U1", got.UnitID)
	})

	t.Run("plan without tasks", func(t *testing.T) {
		sel, err := e.agg.TogglePlan(ctx, planSelection("P1"), "PL1")
		require.NoError(t, err)
		_, err = e.selector.Resolve(sel)
		assert.ErrorIs(t, err, ErrIncompleteSelection)
	})

	t.Run("plan", func(t *testing.T) {
		sel, err := e.agg.TogglePlan(ctx, planSelection("P1"), "PL1")
		require.NoError(t, err)
		sel, err = e.agg.TogglePlan(ctx, sel, "PL2")
		require.NoError(t, err)
		second := sel.Plan.TaskGroups["PL1"].Tasks[1].ID
		third := sel.Plan.TaskGroups["PL2"].Tasks[0].ID
		sel, err = e.agg.ToggleTask(ctx, sel, third, true)
		require.NoError(t, err)
		sel, err = e.agg.ToggleTask(ctx, sel, second, true)
		require.NoError(t, err)

		got, err := e.selector.Resolve(sel)

		require.NoError(t, err)
		assert.Equal(t, []string{"PL1", "PL2"}, got.PlanIDs)
		require.Len(t, got.Tasks, 2)
		assert.Equal(t, second, got.Tasks[0].ID)
		assert.Equal(t, third, got.Tasks[1].ID)
	})
}

func TestSelector_ResolveReportsOrphanTask(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	e := newTestEngine(scenarioDirectory(), nil)
	selector := NewSelector(NewAnomalyPath(e.provider), e.agg, zap.New(core))

	sel := NewSelection(OriginPlan)
	sel.Plan.PlantID = "P1"
	sel.Plan.SelectedTaskIDs = []string{"01ORPHAN000000000000000000"}

	_, err := selector.Resolve(sel)

	assert.ErrorIs(t, err, ErrInconsistentSelection)
	assert.Equal(t, 1, logs.FilterMessage("Нарушена целостность выбора задач").Len())
}
