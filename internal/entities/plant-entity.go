package entities

import (
	"github.com/aarondl/null/v8"

	"workorder-system/internal/origin"
)

type Plant struct {
	ID       string
	Name     string
	Location null.String
}

func (p Plant) ToOrigin() origin.Plant {
	return origin.Plant{ID: p.ID, Name: p.Name, Location: p.Location.String}
}

type Unit struct {
	ID      string
	PlantID string
	Name    string
}

func (u Unit) ToOrigin() origin.Unit {
	return origin.Unit{ID: u.ID, Name: u.Name}
}
