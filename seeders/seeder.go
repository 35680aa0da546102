package seeders

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"workorder-system/internal/repositories"
)

// SeedDirectories наполняет справочники площадок, аномалий и планов ТО
// данными для разработки. Повторный запуск обновляет существующие строки.
func SeedDirectories(ctx context.Context, db *pgxpool.Pool, logger *zap.Logger) error {
	steps := []struct {
		name string
		fn   func(ctx context.Context, tx pgx.Tx) error
	}{
		{"plants", seedPlants},
		{"units", seedUnits},
		{"equipment", seedEquipment},
		{"anomalies", seedAnomalies},
		{"maintenance_plans", seedPlans},
	}

	return repositories.WithTx(ctx, db, func(tx pgx.Tx) error {
		for _, step := range steps {
			logger.Info("Наполнение таблицы", zap.String("table", step.name))
			if err := step.fn(ctx, tx); err != nil {
				return fmt.Errorf("сидер %s: %w", step.name, err)
			}
		}
		return nil
	})
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func seedPlants(ctx context.Context, tx pgx.Tx) error {
	query := `INSERT INTO plants (id, name, location) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, location = EXCLUDED.location;`
	for _, p := range plantsData {
		if _, err := tx.Exec(ctx, query, p.ID, p.Name, nullable(p.Location)); err != nil {
			return err
		}
	}
	return nil
}

func seedUnits(ctx context.Context, tx pgx.Tx) error {
	query := `INSERT INTO units (id, plant_id, name) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET plant_id = EXCLUDED.plant_id, name = EXCLUDED.name;`
	for _, u := range unitsData {
		if _, err := tx.Exec(ctx, query, u.ID, u.PlantID, u.Name); err != nil {
			return err
		}
	}
	return nil
}

func seedEquipment(ctx context.Context, tx pgx.Tx) error {
	query := `INSERT INTO equipment (id, plant_id, location, asset) VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET plant_id = EXCLUDED.plant_id, location = EXCLUDED.location, asset = EXCLUDED.asset;`
	for _, e := range equipmentData {
		if _, err := tx.Exec(ctx, query, e.ID, e.PlantID, nullable(e.Location), nullable(e.Asset)); err != nil {
			return err
		}
	}
	return nil
}

func seedAnomalies(ctx context.Context, tx pgx.Tx) error {
	query := `INSERT INTO anomalies (id, plant_id, unit_id, equipment_id, description, location, asset, priority, status, reported_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status, description = EXCLUDED.description,
			location = EXCLUDED.location, asset = EXCLUDED.asset, priority = EXCLUDED.priority;`
	now := time.Now()
	for _, a := range anomaliesData {
		reportedAt := now.Add(-time.Duration(a.HoursAgo) * time.Hour)
		if _, err := tx.Exec(ctx, query,
			a.ID, a.PlantID, a.UnitID, nullable(a.EquipmentID), a.Description,
			nullable(a.Location), nullable(a.Asset), a.Priority, a.Status, reportedAt,
		); err != nil {
			return err
		}
	}
	return nil
}

func seedPlans(ctx context.Context, tx pgx.Tx) error {
	planQuery := `INSERT INTO maintenance_plans (id, plant_id, name, category, active) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, category = EXCLUDED.category, active = EXCLUDED.active;`
	templateQuery := `INSERT INTO plan_task_templates (id, plan_id, position, tag_base, description, category, maintenance_type,
			frequency, criticality, estimated_duration_hours, estimated_minutes, suggested_owner, notes, sub_tasks, resources)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO UPDATE SET position = EXCLUDED.position, tag_base = EXCLUDED.tag_base,
			description = EXCLUDED.description, sub_tasks = EXCLUDED.sub_tasks, resources = EXCLUDED.resources;`
	equipmentQuery := `INSERT INTO plan_equipment (plan_id, equipment_id, position) VALUES ($1, $2, $3)
		ON CONFLICT (plan_id, equipment_id) DO UPDATE SET position = EXCLUDED.position;`

	for _, p := range plansData {
		if _, err := tx.Exec(ctx, planQuery, p.ID, p.PlantID, p.Name, nullable(p.Category), p.Active); err != nil {
			return err
		}
		for i, t := range p.Templates {
			subTasks, resources := t.SubTasks, t.Resources
			if subTasks == nil {
				subTasks = []string{}
			}
			if resources == nil {
				resources = []string{}
			}
			if _, err := tx.Exec(ctx, templateQuery,
				t.ID, p.ID, i, t.TagBase, t.Description, nullable(t.Category), nullable(t.MaintenanceType),
				nullable(t.Frequency), nullable(t.Criticality), t.Hours, t.Minutes, nullable(t.Owner), nullable(t.Notes),
				subTasks, resources,
			); err != nil {
				return err
			}
		}
		for i, equipmentID := range p.Equipment {
			if _, err := tx.Exec(ctx, equipmentQuery, p.ID, equipmentID, i); err != nil {
				return err
			}
		}
	}
	return nil
}
