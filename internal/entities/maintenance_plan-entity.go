package entities

import (
	"github.com/aarondl/null/v8"

	"workorder-system/internal/origin"
)

type MaintenancePlan struct {
	ID       string
	PlantID  string
	Name     string
	Category null.String
	Active   bool

	Templates []PlanTaskTemplate
	Equipment []PlanEquipment
}

type PlanTaskTemplate struct {
	ID                     string
	PlanID                 string
	TagBase                string
	Description            string
	Category               null.String
	MaintenanceType        null.String
	Frequency              null.String
	Criticality            null.String
	EstimatedDurationHours float64
	EstimatedMinutes       int
	SuggestedOwner         null.String
	Notes                  null.String
	SubTasks               []string
	Resources              []string
}

type PlanEquipment struct {
	PlanID      string
	EquipmentID string
	Location    null.String
	Asset       null.String
}

func (p MaintenancePlan) ToOrigin() origin.Plan {
	out := origin.Plan{
		PlanSummary: origin.PlanSummary{
			ID:                p.ID,
			Name:              p.Name,
			Category:          p.Category.String,
			TemplateTaskCount: len(p.Templates),
			EquipmentCount:    len(p.Equipment),
			Active:            p.Active,
		},
		Templates: make([]origin.TaskTemplate, 0, len(p.Templates)),
		Equipment: make([]origin.EquipmentRef, 0, len(p.Equipment)),
	}
	for _, t := range p.Templates {
		out.Templates = append(out.Templates, origin.TaskTemplate{
			ID:                     t.ID,
			Category:               t.Category.String,
			MaintenanceType:        t.MaintenanceType.String,
			Frequency:              t.Frequency.String,
			Criticality:            t.Criticality.String,
			EstimatedDurationHours: t.EstimatedDurationHours,
			EstimatedMinutes:       t.EstimatedMinutes,
			SuggestedOwner:         t.SuggestedOwner.String,
			Notes:                  t.Notes.String,
			SubTasks:               t.SubTasks,
			Resources:              t.Resources,
			TagBase:                t.TagBase,
			Description:            t.Description,
		})
	}
	for _, e := range p.Equipment {
		out.Equipment = append(out.Equipment, origin.EquipmentRef{
			ID:       e.EquipmentID,
			Location: e.Location.String,
			Asset:    e.Asset.String,
		})
	}
	return out
}
