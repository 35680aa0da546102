package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"workorder-system/internal/origin"
	"workorder-system/internal/repositories"
	"workorder-system/pkg/config"
	apperrors "workorder-system/pkg/errors"
)

type OriginServiceInterface interface {
	ListPlants(ctx context.Context) ([]origin.Plant, error)
	ListUnits(ctx context.Context, plantID string) ([]origin.Unit, error)
	ListOpenAnomalies(ctx context.Context, plantID, unitID string) ([]origin.AnomalySummary, error)
	ListActivePlans(ctx context.Context, plantID string) ([]origin.PlanSummary, error)
	ExpandPlanTasks(ctx context.Context, plantID, planID string, equipmentIDs []string) ([]origin.GeneratedTask, error)
	Apply(ctx context.Context, current origin.Selection, action origin.Action) (origin.Result, error)
	Resolve(ctx context.Context, sel origin.Selection) (origin.WorkOrderOrigin, error)
	Loading() origin.LoadingState
}

// OriginDeps - справочники и приёмники, из которых собирается движок.
type OriginDeps struct {
	Plants    repositories.PlantRepositoryInterface
	Anomalies repositories.AnomalyRepositoryInterface
	Plans     repositories.MaintenancePlanRepositoryInterface
	Sequence  origin.SequenceStore
	Observer  origin.LoadObserver
	Sink      origin.RejectionSink
	Validate  *validator.Validate
	IDs       origin.IDGenerator
}

type OriginService struct {
	provider *origin.Provider
	selector *origin.Selector
	timeout  time.Duration
	logger   *zap.Logger
}

func NewOriginService(deps OriginDeps, cfg config.OriginConfig, logger *zap.Logger) *OriginService {
	sinks := origin.MultiSink{origin.NewLogSink(logger)}
	if deps.Sink != nil {
		sinks = append(sinks, deps.Sink)
	}
	ids := deps.IDs
	if ids == nil {
		ids = origin.NewULIDGenerator()
	}

	idValidator := origin.NewIDValidator(sinks)
	expander := origin.NewExpander(ids, idValidator)

	var opts []origin.ProviderOption
	if deps.Sequence != nil {
		opts = append(opts, origin.WithSequenceStore(deps.Sequence))
	}
	if deps.Observer != nil {
		opts = append(opts, origin.WithObserver(deps.Observer))
	}
	if deps.Validate != nil {
		opts = append(opts, origin.WithValidator(deps.Validate))
	}
	provider := origin.NewProvider(deps.Plants, deps.Anomalies, deps.Plans, expander, logger, opts...)
	aggregator := origin.NewAggregator(provider, idValidator, cfg.DefaultEquipment, logger)

	return &OriginService{
		provider: provider,
		selector: origin.NewSelector(origin.NewAnomalyPath(provider), aggregator, logger),
		timeout:  cfg.UpstreamTimeout,
		logger:   logger,
	}
}

// withTimeout ограничивает обращение к справочникам.
func (s *OriginService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *OriginService) Loading() origin.LoadingState {
	return s.provider.Loading()
}

func (s *OriginService) ListPlants(ctx context.Context) ([]origin.Plant, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	plants, err := s.provider.LoadPlants(ctx)
	if err != nil {
		return nil, s.mapError(err, "Не удалось загрузить площадки")
	}
	return plants, nil
}

func (s *OriginService) ListUnits(ctx context.Context, plantID string) ([]origin.Unit, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	units, err := s.provider.LoadUnits(ctx, plantID)
	if err != nil {
		return nil, s.mapError(err, "Не удалось загрузить подразделения")
	}
	return units, nil
}

func (s *OriginService) ListOpenAnomalies(ctx context.Context, plantID, unitID string) ([]origin.AnomalySummary, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	anomalies, err := s.provider.LoadOpenAnomalies(ctx, plantID, unitID)
	if err != nil {
		return nil, s.mapError(err, "Не удалось загрузить аномалии")
	}
	return anomalies, nil
}

func (s *OriginService) ListActivePlans(ctx context.Context, plantID string) ([]origin.PlanSummary, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	plans, err := s.provider.LoadActivePlans(ctx, plantID)
	if err != nil {
		return nil, s.mapError(err, "Не удалось загрузить планы ТО")
	}
	out := make([]origin.PlanSummary, 0, len(plans))
	for _, p := range plans {
		out = append(out, p.PlanSummary)
	}
	return out, nil
}

// ExpandPlanTasks разворачивает план. Без списка оборудования берётся область плана
// (его оборудование или оборудование по умолчанию).
func (s *OriginService) ExpandPlanTasks(ctx context.Context, plantID, planID string, equipmentIDs []string) ([]origin.GeneratedTask, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	plan, err := s.provider.ResolvePlan(ctx, plantID, planID)
	if err != nil {
		return nil, s.mapError(err, "Не удалось найти план ТО")
	}
	if len(equipmentIDs) == 0 {
		equipmentIDs = s.selector.Aggregator().EquipmentScope(plan)
	}
	tasks, err := s.provider.ExpandPlan(ctx, plan, equipmentIDs)
	if err != nil {
		return nil, s.mapError(err, "Не удалось развернуть задачи плана")
	}
	return tasks, nil
}

func (s *OriginService) Apply(ctx context.Context, current origin.Selection, action origin.Action) (origin.Result, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	host := origin.HostFuncs{
		OnProjection: func(p origin.Projection) {
			s.logger.Debug("Пересчитаны местоположение и актив",
				zap.String("action", string(action.Type)),
				zap.String("location", p.Location),
				zap.String("asset", p.Asset))
		},
	}
	res, err := s.selector.Apply(ctx, current, action, host)
	if err != nil {
		return origin.Result{}, s.mapError(err, "Действие отклонено").
			WithContext("action", string(action.Type)).
			WithContext("id", action.ID)
	}
	return res, nil
}

func (s *OriginService) Resolve(_ context.Context, sel origin.Selection) (origin.WorkOrderOrigin, error) {
	out, err := s.selector.Resolve(sel)
	if err != nil {
		return origin.WorkOrderOrigin{}, s.mapError(err, "Выбор происхождения не завершён")
	}
	return out, nil
}

// mapError переводит ошибки движка в HTTP-ошибки.
func (s *OriginService) mapError(err error, message string) *apperrors.HttpError {
	var httpErr *apperrors.HttpError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	switch {
	case errors.Is(err, origin.ErrStaleResult):
		return apperrors.NewHttpError(http.StatusConflict, "Результат устарел, выполнен более новый запрос", err, nil)
	case errors.Is(err, origin.ErrAnomalyNotFound), errors.Is(err, origin.ErrPlanNotFound):
		return apperrors.NewHttpError(http.StatusNotFound, message, err, nil)
	case errors.Is(err, origin.ErrInvalidSelection),
		errors.Is(err, origin.ErrUnknownAction),
		errors.Is(err, origin.ErrScopeIncomplete):
		return apperrors.NewHttpError(http.StatusBadRequest, message, err, nil)
	case errors.Is(err, origin.ErrInvalidTransition),
		errors.Is(err, origin.ErrIncompleteSelection),
		errors.Is(err, origin.ErrInconsistentSelection):
		return apperrors.NewHttpError(http.StatusUnprocessableEntity, message, err, nil)
	}

	s.logger.Error("Ошибка обращения к справочнику", zap.String("op", message), zap.Error(err))
	return apperrors.NewHttpError(http.StatusBadGateway, message, fmt.Errorf("%w: %w", apperrors.ErrUpstream, err), nil)
}

var taskSheetHeaders = []string{
	"ID", "Тег", "Описание", "Категория", "Вид ТО", "Периодичность", "Критичность",
	"Длительность (ч)", "Минуты", "Исполнитель", "Оборудование", "Местоположение", "Актив",
	"Подзадачи", "Ресурсы", "Примечание",
}

// TasksWorkbook собирает xlsx со сгенерированными задачами плана.
func TasksWorkbook(plan string, tasks []origin.GeneratedTask) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := "Задачи"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(sheet, "A1", &taskSheetHeaders); err != nil {
		return nil, err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", "P1", style); err != nil {
		return nil, err
	}

	for i, t := range tasks {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []interface{}{
			t.ID, t.Tag, t.Description, t.Category, t.MaintenanceType, t.Frequency, t.Criticality,
			t.EstimatedDurationHours, t.EstimatedMinutes, t.Owner, t.EquipmentID, t.Location, t.Asset,
			strings.Join(t.SubTasks, "; "), strings.Join(t.Resources, "; "), t.Notes,
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 30)
	_ = f.SetColWidth(sheet, "C", "C", 40)
	_ = f.SetColWidth(sheet, "L", "M", 25)
	if plan != "" {
		_ = f.SetDocProps(&excelize.DocProperties{Title: plan})
	}
	return f, nil
}
