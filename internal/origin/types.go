package origin

import "time"

// OriginType - вариант происхождения наряда (заказа на работы).
type OriginType string

const (
	OriginManual  OriginType = "manual"
	OriginAnomaly OriginType = "anomaly"
	OriginPlan    OriginType = "plan"
)

func (t OriginType) Valid() bool {
	switch t {
	case OriginManual, OriginAnomaly, OriginPlan:
		return true
	}
	return false
}

// Статусы аномалий, которые считаются "открытыми" и доступны для выбора.
const (
	AnomalyStatusAwaiting      = "AWAITING"
	AnomalyStatusUnderAnalysis = "UNDER_ANALYSIS"
)

var OpenAnomalyStatuses = []string{AnomalyStatusAwaiting, AnomalyStatusUnderAnalysis}

func IsOpenAnomalyStatus(status string) bool {
	for _, s := range OpenAnomalyStatuses {
		if s == status {
			return true
		}
	}
	return false
}

type AnomalySummary struct {
	ID          string    `json:"id" validate:"required"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Asset       string    `json:"asset"`
	Priority    string    `json:"priority"`
	Status      string    `json:"status" validate:"required"`
	ReportedAt  time.Time `json:"reported_at"`
	EquipmentID string    `json:"equipment_id"`
	PlantID     string    `json:"plant_id" validate:"required"`
	UnitID      string    `json:"unit_id" validate:"required"`
}

type PlanSummary struct {
	ID                string `json:"id" validate:"required"`
	Name              string `json:"name" validate:"required"`
	Category          string `json:"category"`
	TemplateTaskCount int    `json:"template_task_count" validate:"gte=0"`
	EquipmentCount    int    `json:"equipment_count" validate:"gte=0"`
	Active            bool   `json:"active"`
}

type TaskTemplate struct {
	ID                     string   `json:"id" validate:"required"`
	Category               string   `json:"category"`
	MaintenanceType        string   `json:"maintenance_type"`
	Frequency              string   `json:"frequency"`
	Criticality            string   `json:"criticality"`
	EstimatedDurationHours float64  `json:"estimated_duration_hours" validate:"gte=0"`
	EstimatedMinutes       int      `json:"estimated_minutes" validate:"gte=0"`
	SuggestedOwner         string   `json:"suggested_owner"`
	Notes                  string   `json:"notes"`
	SubTasks               []string `json:"sub_tasks"`
	Resources              []string `json:"resources"`
	TagBase                string   `json:"tag_base" validate:"required"`
	Description            string   `json:"description" validate:"required"`
}

// EquipmentRef - оборудование, к которому привязан план, с его расположением.
type EquipmentRef struct {
	ID       string `json:"id" validate:"required"`
	Location string `json:"location"`
	Asset    string `json:"asset"`
}

// Plan - запись справочника планов ТО: сводка плюс шаблоны задач и оборудование.
type Plan struct {
	PlanSummary
	Templates []TaskTemplate `json:"templates" validate:"dive"`
	Equipment []EquipmentRef `json:"equipment" validate:"dive"`
}

func (p Plan) EquipmentIDs() []string {
	ids := make([]string, 0, len(p.Equipment))
	for _, e := range p.Equipment {
		ids = append(ids, e.ID)
	}
	return ids
}

func (p Plan) equipment(id string) (EquipmentRef, bool) {
	for _, e := range p.Equipment {
		if e.ID == id {
			return e, true
		}
	}
	return EquipmentRef{}, false
}

type GeneratedTask struct {
	ID                     string   `json:"id"`
	TemplateID             string   `json:"template_id"`
	Tag                    string   `json:"tag"`
	Description            string   `json:"description"`
	Category               string   `json:"category"`
	MaintenanceType        string   `json:"maintenance_type"`
	Frequency              string   `json:"frequency"`
	Criticality            string   `json:"criticality"`
	EstimatedDurationHours float64  `json:"estimated_duration_hours"`
	EstimatedMinutes       int      `json:"estimated_minutes"`
	Owner                  string   `json:"owner"`
	Notes                  string   `json:"notes"`
	EquipmentID            string   `json:"equipment_id"`
	Location               string   `json:"location"`
	Asset                  string   `json:"asset"`
	SubTasks               []string `json:"sub_tasks"`
	Resources              []string `json:"resources"`
}

// Plant и Unit - записи справочника площадок и подразделений.
type Plant struct {
	ID       string `json:"id" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Location string `json:"location"`
}

type Unit struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name" validate:"required"`
}

// Projection - "местоположение/актив" наряда, выводимые из текущего выбора.
type Projection struct {
	Location string `json:"location"`
	Asset    string `json:"asset"`
}
