package repositories

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"go.uber.org/zap"

	"workorder-system/internal/entities"
	"workorder-system/internal/origin"
)

// MaintenancePlanRepositoryInterface - справочник планов ТО (origin.PlanDirectory).
type MaintenancePlanRepositoryInterface interface {
	ListActivePlans(ctx context.Context, plantID string) ([]origin.Plan, error)
}

type MaintenancePlanRepository struct {
	storage Querier
	logger  *zap.Logger
}

func NewMaintenancePlanRepository(storage Querier, logger *zap.Logger) MaintenancePlanRepositoryInterface {
	return &MaintenancePlanRepository{storage: storage, logger: logger}
}

func activePlansQuery(plantID string) sq.SelectBuilder {
	b := psql.Select("mp.id", "mp.plant_id", "mp.name", "mp.category", "mp.active").
		From("maintenance_plans AS mp").
		Where(sq.Eq{"mp.active": true}).
		OrderBy("mp.name", "mp.id")
	if plantID != "" {
		b = b.Where(sq.Eq{"mp.plant_id": plantID})
	}
	return b
}

// ListActivePlans собирает планы тремя запросами: планы, шаблоны задач, оборудование.
func (r *MaintenancePlanRepository) ListActivePlans(ctx context.Context, plantID string) ([]origin.Plan, error) {
	plans, err := r.loadPlans(ctx, plantID)
	if err != nil {
		return nil, err
	}
	if len(plans) == 0 {
		return []origin.Plan{}, nil
	}

	ids := make([]string, 0, len(plans))
	byID := make(map[string]*entities.MaintenancePlan, len(plans))
	for i := range plans {
		ids = append(ids, plans[i].ID)
		byID[plans[i].ID] = &plans[i]
	}

	if err := r.attachTemplates(ctx, ids, byID); err != nil {
		return nil, err
	}
	if err := r.attachEquipment(ctx, ids, byID); err != nil {
		return nil, err
	}

	out := make([]origin.Plan, 0, len(plans))
	for _, p := range plans {
		out = append(out, p.ToOrigin())
	}
	r.logger.Debug("Загружены активные планы ТО", zap.String("plant_id", plantID), zap.Int("count", len(out)))
	return out, nil
}

func (r *MaintenancePlanRepository) loadPlans(ctx context.Context, plantID string) ([]entities.MaintenancePlan, error) {
	query, args, err := activePlansQuery(plantID).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("выборка планов ТО: %w", err)
	}
	defer rows.Close()

	var plans []entities.MaintenancePlan
	for rows.Next() {
		var p entities.MaintenancePlan
		if err := rows.Scan(&p.ID, &p.PlantID, &p.Name, &p.Category, &p.Active); err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

func (r *MaintenancePlanRepository) attachTemplates(ctx context.Context, planIDs []string, byID map[string]*entities.MaintenancePlan) error {
	query, args, err := psql.Select(
		"t.id", "t.plan_id", "t.tag_base", "t.description", "t.category", "t.maintenance_type",
		"t.frequency", "t.criticality", "t.estimated_duration_hours", "t.estimated_minutes",
		"t.suggested_owner", "t.notes", "t.sub_tasks", "t.resources",
	).
		From("plan_task_templates AS t").
		Where(sq.Eq{"t.plan_id": planIDs}).
		OrderBy("t.plan_id", "t.position", "t.id").
		ToSql()
	if err != nil {
		return err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("выборка шаблонов задач: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t entities.PlanTaskTemplate
		if err := rows.Scan(
			&t.ID, &t.PlanID, &t.TagBase, &t.Description, &t.Category, &t.MaintenanceType,
			&t.Frequency, &t.Criticality, &t.EstimatedDurationHours, &t.EstimatedMinutes,
			&t.SuggestedOwner, &t.Notes, &t.SubTasks, &t.Resources,
		); err != nil {
			return err
		}
		if p, ok := byID[t.PlanID]; ok {
			p.Templates = append(p.Templates, t)
		}
	}
	return rows.Err()
}

func (r *MaintenancePlanRepository) attachEquipment(ctx context.Context, planIDs []string, byID map[string]*entities.MaintenancePlan) error {
	query, args, err := psql.Select("pe.plan_id", "pe.equipment_id", "e.location", "e.asset").
		From("plan_equipment AS pe").
		Join("equipment e ON e.id = pe.equipment_id").
		Where(sq.Eq{"pe.plan_id": planIDs}).
		OrderBy("pe.plan_id", "pe.position", "pe.equipment_id").
		ToSql()
	if err != nil {
		return err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("выборка оборудования планов: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e entities.PlanEquipment
		if err := rows.Scan(&e.PlanID, &e.EquipmentID, &e.Location, &e.Asset); err != nil {
			return err
		}
		if p, ok := byID[e.PlanID]; ok {
			p.Equipment = append(p.Equipment, e)
		}
	}
	return rows.Err()
}
