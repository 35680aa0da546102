package repositories

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"go.uber.org/zap"

	"workorder-system/internal/entities"
	"workorder-system/internal/origin"
)

// AnomalyRepositoryInterface - справочник открытых аномалий (origin.AnomalyDirectory).
type AnomalyRepositoryInterface interface {
	ListOpenAnomalies(ctx context.Context, plantID, unitID string) ([]origin.AnomalySummary, error)
}

type AnomalyRepository struct {
	storage Querier
	logger  *zap.Logger
}

func NewAnomalyRepository(storage Querier, logger *zap.Logger) AnomalyRepositoryInterface {
	return &AnomalyRepository{storage: storage, logger: logger}
}

func (r *AnomalyRepository) openAnomaliesQuery(plantID, unitID string) sq.SelectBuilder {
	b := psql.Select(
		"a.id", "a.plant_id", "a.unit_id", "a.equipment_id", "a.description",
		"COALESCE(a.location, e.location)", "COALESCE(a.asset, e.asset)",
		"a.priority", "a.status", "a.reported_at",
	).
		From("anomalies AS a").
		LeftJoin("equipment e ON e.id = a.equipment_id").
		Where(sq.Eq{"a.status": origin.OpenAnomalyStatuses}).
		OrderBy("a.reported_at DESC", "a.id")

	// Без площадки и подразделения - старый режим: все открытые аномалии.
	if plantID != "" && unitID != "" {
		b = b.Where(sq.Eq{"a.plant_id": plantID, "a.unit_id": unitID})
	}
	return b
}

func (r *AnomalyRepository) ListOpenAnomalies(ctx context.Context, plantID, unitID string) ([]origin.AnomalySummary, error) {
	query, args, err := r.openAnomaliesQuery(plantID, unitID).ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("выборка аномалий: %w", err)
	}
	defer rows.Close()

	out := make([]origin.AnomalySummary, 0)
	for rows.Next() {
		var a entities.Anomaly
		if err := rows.Scan(
			&a.ID, &a.PlantID, &a.UnitID, &a.EquipmentID, &a.Description,
			&a.Location, &a.Asset,
			&a.Priority, &a.Status, &a.ReportedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, a.ToOrigin())
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	r.logger.Debug("Загружены открытые аномалии",
		zap.String("plant_id", plantID), zap.String("unit_id", unitID), zap.Int("count", len(out)))
	return out, nil
}
