package origin

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Внешние справочники. Транспорт не важен, важна форма данных.
type PlantDirectory interface {
	ListPlants(ctx context.Context) ([]Plant, error)
	ListUnitsForPlant(ctx context.Context, plantID string) ([]Unit, error)
}

type AnomalyDirectory interface {
	// Пустые plantID и unitID означают выборку без фильтра.
	ListOpenAnomalies(ctx context.Context, plantID, unitID string) ([]AnomalySummary, error)
}

type PlanDirectory interface {
	ListActivePlans(ctx context.Context, plantID string) ([]Plan, error)
}

type LoadKind string

const (
	LoadPlants    LoadKind = "plants"
	LoadUnits     LoadKind = "units"
	LoadAnomalies LoadKind = "anomalies"
	LoadPlans     LoadKind = "plans"
	LoadTasks     LoadKind = "tasks"
)

var loadKinds = []LoadKind{LoadPlants, LoadUnits, LoadAnomalies, LoadPlans, LoadTasks}

// LoadObserver получает события загрузчиков (для метрик).
type LoadObserver interface {
	LoadStarted(kind LoadKind)
	LoadFinished(kind LoadKind, took time.Duration, err error)
}

type nopObserver struct{}

func (nopObserver) LoadStarted(LoadKind)                        {}
func (nopObserver) LoadFinished(LoadKind, time.Duration, error) {}

// LoadingState - флаги "идёт загрузка" по каждому виду данных.
type LoadingState struct {
	Plants    bool `json:"plants"`
	Units     bool `json:"units"`
	Anomalies bool `json:"anomalies"`
	Plans     bool `json:"plans"`
	Tasks     bool `json:"tasks"`
}

type ProviderOption func(*Provider)

func WithSequenceStore(s SequenceStore) ProviderOption {
	return func(p *Provider) { p.seq = s }
}

func WithObserver(o LoadObserver) ProviderOption {
	return func(p *Provider) { p.observer = o }
}

func WithValidator(v *validator.Validate) ProviderOption {
	return func(p *Provider) { p.validate = v }
}

// Provider - асинхронный поставщик данных для выбора происхождения.
// Каждый загрузчик грузится и падает независимо от остальных, кэша нет.
type Provider struct {
	plants    PlantDirectory
	anomalies AnomalyDirectory
	plans     PlanDirectory
	expander  *Expander
	seq       SequenceStore
	observer  LoadObserver
	validate  *validator.Validate
	logger    *zap.Logger
	inFlight  map[LoadKind]*atomic.Int32
}

func NewProvider(
	plants PlantDirectory,
	anomalies AnomalyDirectory,
	plans PlanDirectory,
	expander *Expander,
	logger *zap.Logger,
	opts ...ProviderOption,
) *Provider {
	p := &Provider{
		plants:    plants,
		anomalies: anomalies,
		plans:     plans,
		expander:  expander,
		seq:       NewMemorySequenceStore(),
		observer:  nopObserver{},
		validate:  validator.New(),
		logger:    logger,
		inFlight:  make(map[LoadKind]*atomic.Int32, len(loadKinds)),
	}
	for _, k := range loadKinds {
		p.inFlight[k] = new(atomic.Int32)
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) Loading() LoadingState {
	busy := func(k LoadKind) bool { return p.inFlight[k].Load() > 0 }
	return LoadingState{
		Plants:    busy(LoadPlants),
		Units:     busy(LoadUnits),
		Anomalies: busy(LoadAnomalies),
		Plans:     busy(LoadPlans),
		Tasks:     busy(LoadTasks),
	}
}

// track оборачивает один вызов загрузчика: флаг загрузки, наблюдатель и номер запроса.
// Результат запроса, который к моменту ответа перестал быть последним по ключу,
// отбрасывается с ErrStaleResult.
func (p *Provider) track(ctx context.Context, kind LoadKind, key string, fn func(ctx context.Context) error) error {
	var (
		seqKey string
		ticket int64
	)
	if session, ok := SessionFromContext(ctx); ok {
		seqKey = fmt.Sprintf("%s:%s", session, key)
		n, err := p.seq.Next(ctx, seqKey)
		if err != nil {
			p.logger.Warn("Не удалось получить номер запроса, проверка устаревания пропущена",
				zap.String("kind", string(kind)), zap.String("key", seqKey), zap.Error(err))
			seqKey = ""
		}
		ticket = n
	}

	counter := p.inFlight[kind]
	counter.Add(1)
	p.observer.LoadStarted(kind)
	started := time.Now()

	err := fn(ctx)

	if err == nil && seqKey != "" {
		latest, seqErr := p.seq.Latest(ctx, seqKey)
		switch {
		case seqErr != nil:
			p.logger.Warn("Не удалось проверить номер запроса", zap.String("key", seqKey), zap.Error(seqErr))
		case latest != ticket:
			p.logger.Debug("Отброшен устаревший результат загрузки",
				zap.String("kind", string(kind)), zap.Int64("ticket", ticket), zap.Int64("latest", latest))
			err = ErrStaleResult
		}
	}

	counter.Add(-1)
	p.observer.LoadFinished(kind, time.Since(started), err)
	return err
}

func (p *Provider) LoadPlants(ctx context.Context) ([]Plant, error) {
	var out []Plant
	err := p.track(ctx, LoadPlants, string(LoadPlants), func(ctx context.Context) error {
		rows, err := p.plants.ListPlants(ctx)
		if err != nil {
			return fmt.Errorf("загрузка площадок: %w", err)
		}
		out = make([]Plant, 0, len(rows))
		for _, r := range rows {
			if err := p.validate.Struct(r); err != nil {
				p.logger.Warn("Пропущена некорректная площадка", zap.String("id", r.ID), zap.Error(err))
				continue
			}
			out = append(out, r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Provider) LoadUnits(ctx context.Context, plantID string) ([]Unit, error) {
	if plantID == "" {
		return []Unit{}, nil
	}
	var out []Unit
	err := p.track(ctx, LoadUnits, string(LoadUnits), func(ctx context.Context) error {
		rows, err := p.plants.ListUnitsForPlant(ctx, plantID)
		if err != nil {
			return fmt.Errorf("загрузка подразделений площадки %s: %w", plantID, err)
		}
		out = make([]Unit, 0, len(rows))
		for _, r := range rows {
			if err := p.validate.Struct(r); err != nil {
				p.logger.Warn("Пропущено некорректное подразделение", zap.String("id", r.ID), zap.Error(err))
				continue
			}
			out = append(out, r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LoadOpenAnomalies: с площадкой и подразделением - выборка по ним,
// без обоих - все открытые аномалии (старый режим без иерархии).
func (p *Provider) LoadOpenAnomalies(ctx context.Context, plantID, unitID string) ([]AnomalySummary, error) {
	if (plantID == "") != (unitID == "") {
		return nil, ErrScopeIncomplete
	}
	scoped := plantID != ""

	var out []AnomalySummary
	err := p.track(ctx, LoadAnomalies, string(LoadAnomalies), func(ctx context.Context) error {
		rows, err := p.anomalies.ListOpenAnomalies(ctx, plantID, unitID)
		if err != nil {
			return fmt.Errorf("загрузка аномалий: %w", err)
		}
		out = make([]AnomalySummary, 0, len(rows))
		for _, r := range rows {
			if err := p.validate.Struct(r); err != nil {
				p.logger.Warn("Пропущена некорректная аномалия", zap.String("id", r.ID), zap.Error(err))
				continue
			}
			if !IsOpenAnomalyStatus(r.Status) {
				p.logger.Warn("Справочник вернул аномалию не в открытом статусе",
					zap.String("id", r.ID), zap.String("status", r.Status))
				continue
			}
			if scoped && (r.PlantID != plantID || r.UnitID != unitID) {
				p.logger.Warn("Справочник вернул аномалию вне запрошенной области",
					zap.String("id", r.ID), zap.String("plant_id", r.PlantID), zap.String("unit_id", r.UnitID))
				continue
			}
			out = append(out, r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Provider) LoadActivePlans(ctx context.Context, plantID string) ([]Plan, error) {
	var out []Plan
	err := p.track(ctx, LoadPlans, string(LoadPlans), func(ctx context.Context) error {
		var err error
		out, err = p.listActivePlans(ctx, plantID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Provider) listActivePlans(ctx context.Context, plantID string) ([]Plan, error) {
	rows, err := p.plans.ListActivePlans(ctx, plantID)
	if err != nil {
		return nil, fmt.Errorf("загрузка планов ТО: %w", err)
	}
	out := make([]Plan, 0, len(rows))
	for _, r := range rows {
		if !r.Active {
			continue
		}
		if err := p.validate.Struct(r); err != nil {
			p.logger.Warn("Пропущен некорректный план ТО", zap.String("id", r.ID), zap.Error(err))
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// ResolvePlan ищет план среди активных. Не найденный план - ErrPlanNotFound.
func (p *Provider) ResolvePlan(ctx context.Context, plantID, planID string) (Plan, error) {
	var plan Plan
	err := p.track(ctx, LoadPlans, "plans:"+planID, func(ctx context.Context) error {
		plans, err := p.listActivePlans(ctx, plantID)
		if err != nil {
			return err
		}
		for _, candidate := range plans {
			if candidate.ID == planID {
				plan = candidate
				return nil
			}
		}
		return ErrPlanNotFound
	})
	return plan, err
}

// ExpandPlanTasks: план, который не удалось найти, даёт пустой список, а не ошибку.
func (p *Provider) ExpandPlanTasks(ctx context.Context, plantID, planID string, equipmentIDs []string) ([]GeneratedTask, error) {
	var out []GeneratedTask
	err := p.track(ctx, LoadTasks, "tasks:"+planID, func(ctx context.Context) error {
		plans, err := p.listActivePlans(ctx, plantID)
		if err != nil {
			return err
		}
		for _, plan := range plans {
			if plan.ID == planID {
				out = p.expander.Expand(ctx, plan, equipmentIDs)
				return nil
			}
		}
		p.logger.Warn("План для развёртывания задач не найден", zap.String("plan_id", planID))
		out = []GeneratedTask{}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ExpandPlan разворачивает уже загруженный план под флагом загрузки задач.
func (p *Provider) ExpandPlan(ctx context.Context, plan Plan, equipmentIDs []string) ([]GeneratedTask, error) {
	var out []GeneratedTask
	err := p.track(ctx, LoadTasks, "tasks:"+plan.ID, func(ctx context.Context) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		out = p.expander.Expand(ctx, plan, equipmentIDs)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func IsStale(err error) bool {
	return errors.Is(err, ErrStaleResult)
}
