package domain

import (
	"encoding/json"
	"time"

	"github.com/umyakar/a3-UtkuYakar/internal/calendar"
	"github.com/umyakar/a3-UtkuYakar/internal/watering"
)

// Sunlight is how much light a plant wants.
type Sunlight string

const (
	SunlightLow    Sunlight = "low"
	SunlightMedium Sunlight = "medium"
	SunlightHigh   Sunlight = "high"
)

func (s Sunlight) Valid() bool {
	switch s {
	case SunlightLow, SunlightMedium, SunlightHigh:
		return true
	}
	return false
}

// Field limits, counted in characters.
const (
	MaxPlantNameLen    = 100
	MaxPlantSpeciesLen = 100
	MaxPlantNotesLen   = 500
)

// Plant is a stored record, always owned by exactly one user.
type Plant struct {
	ID           string        `json:"id"           db:"id"`
	OwnerID      string        `json:"ownerId"      db:"owner_id"`
	Name         string        `json:"name"         db:"name"`
	Species      string        `json:"species"      db:"species"`
	LastWatered  calendar.Date `json:"lastWatered"  db:"last_watered"`
	IntervalDays int           `json:"intervalDays" db:"interval_days"`
	Sunlight     Sunlight      `json:"sunlight"     db:"sunlight"`
	Indoors      bool          `json:"indoors"      db:"indoors"`
	Notes        string        `json:"notes"        db:"notes"`
	CreatedAt    time.Time     `json:"createdAt"    db:"created_at"`
	UpdatedAt    time.Time     `json:"updatedAt"    db:"updated_at"`
}

// PlantView is a Plant as returned to clients, with its schedule attached.
type PlantView struct {
	Plant
	NextWaterDate calendar.Date    `json:"nextWaterDate"`
	Urgency       watering.Urgency `json:"urgency"`
}

// NewPlantView classifies p against today.
func NewPlantView(p Plant, today calendar.Date) PlantView {
	s := watering.Classify(p.LastWatered, p.IntervalDays, today)
	return PlantView{Plant: p, NextWaterDate: s.NextWaterDate, Urgency: s.Urgency}
}

// PlantInput is a create or update request body. Nil fields were not sent.
// IntervalDays is a json.Number so both 7 and "7" decode.
type PlantInput struct {
	Name         *string      `json:"name"`
	Species      *string      `json:"species"`
	LastWatered  *string      `json:"lastWatered"`
	IntervalDays *json.Number `json:"intervalDays"`
	Sunlight     *string      `json:"sunlight"`
	Indoors      *bool        `json:"indoors"`
	Notes        *string      `json:"notes"`
}
