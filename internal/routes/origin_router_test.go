package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"workorder-system/internal/controllers"
	"workorder-system/internal/origin"
	"workorder-system/internal/services"
	"workorder-system/pkg/config"
	"workorder-system/pkg/middleware"
	"workorder-system/pkg/service"
	"workorder-system/pkg/validation"
)

type fakeDirectory struct {
	plants    []origin.Plant
	units     map[string][]origin.Unit
	anomalies []origin.AnomalySummary
	plans     []origin.Plan
	plantsErr error
}

func (f *fakeDirectory) ListPlants(context.Context) ([]origin.Plant, error) {
	return f.plants, f.plantsErr
}

func (f *fakeDirectory) ListUnitsForPlant(_ context.Context, plantID string) ([]origin.Unit, error) {
	return f.units[plantID], nil
}

func (f *fakeDirectory) ListOpenAnomalies(_ context.Context, plantID, unitID string) ([]origin.AnomalySummary, error) {
	out := []origin.AnomalySummary{}
	for _, a := range f.anomalies {
		if plantID == "" || (a.PlantID == plantID && a.UnitID == unitID) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeDirectory) ListActivePlans(context.Context, string) ([]origin.Plan, error) {
	return f.plans, nil
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		plants: []origin.Plant{{ID: "P1", Name: "North plant"}},
		units:  map[string][]origin.Unit{"P1": {{ID: "U1", Name: "Assembly"}}},
		anomalies: []origin.AnomalySummary{{
			ID: "AN1", PlantID: "P1", UnitID: "U1", Status: origin.AnomalyStatusAwaiting,
			Location: "Hall A", Asset: "Pump 3", ReportedAt: time.Now(),
		}},
		plans: []origin.Plan{{
			PlanSummary: origin.PlanSummary{ID: "PL1", Name: "Weekly", TemplateTaskCount: 2, EquipmentCount: 1, Active: true},
			Templates: []origin.TaskTemplate{
				{ID: "T1", TagBase: "INS", Description: "Inspect", SubTasks: []string{"look", "listen"}},
				{ID: "T2", TagBase: "LUB", Description: "Lubricate"},
			},
			Equipment: []origin.EquipmentRef{{ID: "E7", Location: "Hall B", Asset: "Conveyor 7"}},
		}},
	}
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Body    json.RawMessage `json:"body"`
}

type OriginRouterTestSuite struct {
	suite.Suite
	e     *echo.Echo
	dir   *fakeDirectory
	token string
}

func (s *OriginRouterTestSuite) SetupTest() {
	logger := zap.NewNop()
	s.dir = newFakeDirectory()

	v := validation.New()
	svc := services.NewOriginService(services.OriginDeps{
		Plants:    s.dir,
		Anomalies: s.dir,
		Plans:     s.dir,
		Validate:  v.Engine(),
	}, config.OriginConfig{DefaultEquipment: []string{"1"}, UpstreamTimeout: time.Second}, logger)

	s.e = echo.New()
	s.e.Validator = v

	jwtSvc := service.NewJWTService("test-secret", logger)
	token, err := jwtSvc.GenerateAccessToken(42, time.Hour)
	s.Require().NoError(err)
	s.token = token

	loggers := &Loggers{Main: logger, Origin: logger, HTTP: logger}
	secure := s.e.Group("/api", middleware.NewAuthMiddleware(jwtSvc, logger).Auth)
	RegisterOriginRoutes(secure, controllers.NewOriginController(svc, logger), loggers)
}

func (s *OriginRouterTestSuite) do(method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+s.token)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *OriginRouterTestSuite) decode(rec *httptest.ResponseRecorder, into interface{}) envelope {
	var env envelope
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &env))
	if into != nil {
		s.Require().NoError(json.Unmarshal(env.Body, into))
	}
	return env
}

func (s *OriginRouterTestSuite) apply(sel origin.Selection, action map[string]interface{}) (*httptest.ResponseRecorder, origin.Result) {
	rec := s.do(http.MethodPost, "/api/origin/selection/actions", map[string]interface{}{
		"selection": sel,
		"action":    action,
	}, nil)
	var res origin.Result
	if rec.Code == http.StatusOK {
		s.decode(rec, &res)
	}
	return rec, res
}

func (s *OriginRouterTestSuite) TestRequiresToken() {
	req := httptest.NewRequest(http.MethodGet, "/api/origin/plants", nil)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *OriginRouterTestSuite) TestDirectories() {
	rec := s.do(http.MethodGet, "/api/origin/plants", nil, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var plants []origin.Plant
	env := s.decode(rec, &plants)
	s.True(env.Status)
	s.Equal([]origin.Plant{{ID: "P1", Name: "North plant"}}, plants)

	rec = s.do(http.MethodGet, "/api/origin/plants/P1/units", nil, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var units []origin.Unit
	s.decode(rec, &units)
	s.Equal([]origin.Unit{{ID: "U1", Name: "Assembly"}}, units)

	rec = s.do(http.MethodGet, "/api/origin/anomalies?plant_id=P1&unit_id=U1", nil, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var anomalies []origin.AnomalySummary
	s.decode(rec, &anomalies)
	s.Len(anomalies, 1)

	rec = s.do(http.MethodGet, "/api/origin/plans?plant_id=P1", nil, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var plans []origin.PlanSummary
	s.decode(rec, &plans)
	s.Require().Len(plans, 1)
	s.Equal(2, plans[0].TemplateTaskCount)
}

func (s *OriginRouterTestSuite) TestAnomalyScopeNeedsBothLevels() {
	rec := s.do(http.MethodGet, "/api/origin/anomalies?plant_id=P1", nil, nil)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *OriginRouterTestSuite) TestUpstreamFailureIsBadGateway() {
	s.dir.plantsErr = errors.New("connection refused")
	rec := s.do(http.MethodGet, "/api/origin/plants", nil, nil)
	s.Equal(http.StatusBadGateway, rec.Code)
	env := s.decode(rec, nil)
	s.False(env.Status)
}

func (s *OriginRouterTestSuite) TestRejectsMalformedFormSession() {
	rec := s.do(http.MethodGet, "/api/origin/plants", nil, map[string]string{middleware.HeaderFormSession: "not-a-uuid"})
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/api/origin/plants", nil, map[string]string{middleware.HeaderFormSession: "3f7c1e0a-8a2b-4c55-9d1e-1c2b3a4d5e6f"})
	s.Equal(http.StatusOK, rec.Code)
}

func (s *OriginRouterTestSuite) TestAnomalyFlow() {
	rec, res := s.apply(origin.Selection{}, map[string]interface{}{"type": "choose_type", "origin_type": "anomaly"})
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal(origin.OriginAnomaly, res.Selection.Type)

	for _, step := range []map[string]interface{}{
		{"type": "choose_plant", "id": "P1"},
		{"type": "choose_unit", "id": "U1"},
	} {
		rec, res = s.apply(res.Selection, step)
		s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
		s.False(res.ProjectionChanged)
	}

	rec, res = s.apply(res.Selection, map[string]interface{}{"type": "choose_anomaly", "id": "AN1"})
	s.Require().Equal(http.StatusOK, rec.Code)
	s.True(res.ProjectionChanged)
	s.Equal(origin.Projection{Location: "Hall A", Asset: "Pump 3"}, res.Projection)

	rec = s.do(http.MethodPost, "/api/origin/selection/resolve", map[string]interface{}{"selection": res.Selection}, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var wo origin.WorkOrderOrigin
	s.decode(rec, &wo)
	s.Equal("AN1", wo.AnomalyID)
}

func (s *OriginRouterTestSuite) TestActionErrors() {
	empty := origin.NewSelection(origin.OriginAnomaly)

	rec, _ := s.apply(empty, map[string]interface{}{"type": "choose_unit", "id": "U1"})
	s.Equal(http.StatusUnprocessableEntity, rec.Code)

	withUnit := origin.Selection{Type: origin.OriginAnomaly, Anomaly: &origin.AnomalyOrigin{PlantID: "P1", UnitID: "U1"}}
	rec, _ = s.apply(withUnit, map[string]interface{}{"type": "choose_anomaly", "id": "AN404"})
	s.Equal(http.StatusNotFound, rec.Code)

	rec, _ = s.apply(origin.Selection{Type: "bogus"}, map[string]interface{}{"type": "choose_plant", "id": "P1"})
	s.Equal(http.StatusBadRequest, rec.Code)

	rec, _ = s.apply(empty, map[string]interface{}{"type": "explode", "id": "x"})
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/origin/selection/resolve", map[string]interface{}{"selection": withUnit}, nil)
	s.Equal(http.StatusUnprocessableEntity, rec.Code)
}

func (s *OriginRouterTestSuite) TestEmptyIDRegressesAnomalyLevels() {
	full := origin.Selection{Type: origin.OriginAnomaly, Anomaly: &origin.AnomalyOrigin{PlantID: "P1", UnitID: "U1", AnomalyID: "AN1"}}

	rec, res := s.apply(full, map[string]interface{}{"type": "choose_anomaly", "id": ""})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Equal(origin.AnomalyOrigin{PlantID: "P1", UnitID: "U1"}, *res.Selection.Anomaly)
	s.True(res.ProjectionChanged)
	s.Equal(origin.Projection{}, res.Projection)

	rec, res = s.apply(res.Selection, map[string]interface{}{"type": "choose_unit", "id": ""})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Equal(origin.AnomalyOrigin{PlantID: "P1"}, *res.Selection.Anomaly)

	withUnit := origin.Selection{Type: origin.OriginAnomaly, Anomaly: &origin.AnomalyOrigin{PlantID: "P1", UnitID: "U1"}}
	rec, res = s.apply(withUnit, map[string]interface{}{"type": "choose_plant", "id": ""})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Equal(origin.AnomalyOrigin{}, *res.Selection.Anomaly)
	s.False(res.ProjectionChanged)
}

func (s *OriginRouterTestSuite) TestPlanActionsRequireID() {
	start := origin.NewSelection(origin.OriginPlan)
	start.Plan.PlantID = "P1"

	for _, action := range []string{"toggle_plan", "toggle_task", "select_all_in_plan", "clear_all_in_plan", "toggle_group_expansion"} {
		rec, _ := s.apply(start, map[string]interface{}{"type": action, "id": ""})
		s.Equal(http.StatusBadRequest, rec.Code, action)
	}
}

func (s *OriginRouterTestSuite) TestPlanFlowProjection() {
	start := origin.NewSelection(origin.OriginPlan)
	start.Plan.PlantID = "P1"

	rec, res := s.apply(start, map[string]interface{}{"type": "toggle_plan", "id": "PL1"})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	group := res.Selection.Plan.TaskGroups["PL1"]
	s.Require().Len(group.Tasks, 2)
	s.False(res.ProjectionChanged)

	rec, res = s.apply(res.Selection, map[string]interface{}{"type": "toggle_task", "id": group.Tasks[1].ID, "checked": true})
	s.Require().Equal(http.StatusOK, rec.Code)
	s.True(res.ProjectionChanged)
	s.Equal(origin.Projection{Location: "Hall B", Asset: "Conveyor 7"}, res.Projection)
}

func (s *OriginRouterTestSuite) TestExpandPlanTasks() {
	rec := s.do(http.MethodPost, "/api/origin/plans/PL1/tasks", map[string]interface{}{"plant_id": "P1"}, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var out struct {
		PlanID string                 `json:"plan_id"`
		Tasks  []origin.GeneratedTask `json:"tasks"`
	}
	s.decode(rec, &out)
	s.Equal("PL1", out.PlanID)
	s.Require().Len(out.Tasks, 2)
	s.Equal("INS-EQE7", out.Tasks[0].Tag)
	for _, t := range out.Tasks {
		s.True(origin.IsValidTaskID(t.ID), t.ID)
	}

	rec = s.do(http.MethodPost, "/api/origin/plans/PL404/tasks", map[string]interface{}{"plant_id": "P1"}, nil)
	s.Equal(http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodPost, "/api/origin/plans/PL1/tasks?format=pdf", nil, nil)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *OriginRouterTestSuite) TestExpandPlanTasksXLSX() {
	rec := s.do(http.MethodPost, "/api/origin/plans/PL1/tasks?format=xlsx", map[string]interface{}{"equipment_ids": []string{"E7", "E9"}}, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Header().Get(echo.HeaderContentDisposition), "plan_PL1_tasks_")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	s.Require().NoError(err)
	defer f.Close()

	rows, err := f.GetRows("Задачи")
	s.Require().NoError(err)
	s.Require().Len(rows, 5)
	s.Equal("ID", rows[0][0])
	s.Equal("INS-EQE7", rows[1][1])
	s.Equal("look; listen", rows[1][13])
	s.Equal("LUB-EQE9", rows[4][1])
}

func TestOriginRouterTestSuite(t *testing.T) {
	suite.Run(t, new(OriginRouterTestSuite))
}
