package entities

import (
	"time"

	"github.com/aarondl/null/v8"

	"workorder-system/internal/origin"
)

// Anomaly - строка справочника аномалий. Местоположение и актив берутся
// из самой аномалии, а если их нет - из привязанного оборудования.
type Anomaly struct {
	ID          string
	PlantID     string
	UnitID      string
	EquipmentID null.String
	Description string
	Location    null.String
	Asset       null.String
	Priority    string
	Status      string
	ReportedAt  time.Time
}

func (a Anomaly) ToOrigin() origin.AnomalySummary {
	return origin.AnomalySummary{
		ID:          a.ID,
		Description: a.Description,
		Location:    a.Location.String,
		Asset:       a.Asset.String,
		Priority:    a.Priority,
		Status:      a.Status,
		ReportedAt:  a.ReportedAt,
		EquipmentID: a.EquipmentID.String,
		PlantID:     a.PlantID,
		UnitID:      a.UnitID,
	}
}
