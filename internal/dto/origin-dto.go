package dto

import (
	"github.com/aarondl/null/v8"

	"workorder-system/internal/origin"
)

// AnomalyQueryDTO - фильтр открытых аномалий. Площадка и подразделение задаются вместе
// или не задаются совсем.
type AnomalyQueryDTO struct {
	PlantID string `query:"plant_id" validate:"required_with=UnitID"`
	UnitID  string `query:"unit_id" validate:"required_with=PlantID"`
}

type PlanQueryDTO struct {
	PlantID string `query:"plant_id"`
}

type ExpandPlanTasksDTO struct {
	PlantID      string   `json:"plant_id"`
	EquipmentIDs []string `json:"equipment_ids" validate:"omitempty,dive,required"`
}

// ActionDTO: для choose_plant, choose_unit и choose_anomaly пустой ID означает сброс уровня.
// Действиям над планами и задачами ID обязателен.
type ActionDTO struct {
	Type       string `json:"type" validate:"required,oneof=choose_type choose_plant choose_unit choose_anomaly toggle_plan toggle_task select_all_in_plan clear_all_in_plan toggle_group_expansion"`
	OriginType string `json:"origin_type" validate:"omitempty,origin_type"`
	ID         string `json:"id" validate:"required_if=Type toggle_plan,required_if=Type toggle_task,required_if=Type select_all_in_plan,required_if=Type clear_all_in_plan,required_if=Type toggle_group_expansion"`
	Checked    bool   `json:"checked"`
}

func (a ActionDTO) ToOrigin() origin.Action {
	return origin.Action{
		Type:       origin.ActionType(a.Type),
		OriginType: origin.OriginType(a.OriginType),
		ID:         a.ID,
		Checked:    a.Checked,
	}
}

// SelectionActionDTO - текущее значение формы и действие над ним.
// SessionID заменяет заголовок X-Form-Session, если клиент не может его передать.
type SelectionActionDTO struct {
	Selection origin.Selection `json:"selection"`
	Action    ActionDTO        `json:"action"`
	SessionID null.String      `json:"session_id" validate:"omitempty,form_session"`
}

type ResolveSelectionDTO struct {
	Selection origin.Selection `json:"selection"`
}

type SelectionResultDTO struct {
	Selection         origin.Selection  `json:"selection"`
	Projection        origin.Projection `json:"projection"`
	ProjectionChanged bool              `json:"projection_changed"`
}

func NewSelectionResultDTO(res origin.Result) SelectionResultDTO {
	return SelectionResultDTO{
		Selection:         res.Selection,
		Projection:        res.Projection,
		ProjectionChanged: res.ProjectionChanged,
	}
}

type GeneratedTasksDTO struct {
	PlanID string                 `json:"plan_id"`
	Tasks  []origin.GeneratedTask `json:"tasks"`
}
