package repositories

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"workorder-system/internal/entities"
	"workorder-system/internal/origin"
)

// PlantRepositoryInterface - справочник площадок и подразделений (origin.PlantDirectory).
type PlantRepositoryInterface interface {
	ListPlants(ctx context.Context) ([]origin.Plant, error)
	ListUnitsForPlant(ctx context.Context, plantID string) ([]origin.Unit, error)
}

type PlantRepository struct {
	storage Querier
	logger  *zap.Logger
}

func NewPlantRepository(storage Querier, logger *zap.Logger) PlantRepositoryInterface {
	return &PlantRepository{storage: storage, logger: logger}
}

func (r *PlantRepository) ListPlants(ctx context.Context) ([]origin.Plant, error) {
	query, args, err := psql.Select("p.id", "p.name", "p.location").
		From("plants AS p").
		OrderBy("p.name", "p.id").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("выборка площадок: %w", err)
	}
	defer rows.Close()

	plants := make([]origin.Plant, 0)
	for rows.Next() {
		var p entities.Plant
		if err := rows.Scan(&p.ID, &p.Name, &p.Location); err != nil {
			return nil, err
		}
		plants = append(plants, p.ToOrigin())
	}
	return plants, rows.Err()
}

func (r *PlantRepository) ListUnitsForPlant(ctx context.Context, plantID string) ([]origin.Unit, error) {
	query, args, err := psql.Select("u.id", "u.plant_id", "u.name").
		From("units AS u").
		Where(sq.Eq{"u.plant_id": plantID}).
		OrderBy("u.name", "u.id").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("выборка подразделений: %w", err)
	}

	units, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (origin.Unit, error) {
		var u entities.Unit
		err := row.Scan(&u.ID, &u.PlantID, &u.Name)
		return u.ToOrigin(), err
	})
	if err != nil {
		return nil, err
	}
	r.logger.Debug("Загружены подразделения", zap.String("plant_id", plantID), zap.Int("count", len(units)))
	return units, nil
}
