package models

import "time"

type Service struct {
	ID              int64     `yaml:"id" json:"id"`
	Name            string    `yaml:"name" json:"name"`
	Description     string    `yaml:"description" json:"description,omitempty"`
	PriceCents      int64     `yaml:"price_cents" json:"price_cents"`
	DurationMinutes int       `yaml:"duration_minutes" json:"duration_minutes"`
	IsActive        bool      `yaml:"is_active" json:"is_active"`
	CreatedAt       time.Time `yaml:"-" json:"created_at"`
	UpdatedAt       time.Time `yaml:"-" json:"updated_at"`
}

// ServiceLine is one entry of an appointment's service bundle.
type ServiceLine struct {
	ServiceID           int64  `json:"service_id"`
	Name                string `json:"name"`
	UnitPriceCents      int64  `json:"unit_price_cents"`
	UnitDurationMinutes int    `json:"unit_duration_minutes"`
	Quantity            int    `json:"quantity"`
}

// ServiceLines is an ordered service bundle. Durations and prices sum
// over quantity.
type ServiceLines []ServiceLine

func (lines ServiceLines) TotalDurationMinutes() int {
	total := 0
	for _, l := range lines {
		total += l.UnitDurationMinutes * l.Quantity
	}
	return total
}

func (lines ServiceLines) TotalPriceCents() int64 {
	var total int64
	for _, l := range lines {
		total += l.UnitPriceCents * int64(l.Quantity)
	}
	return total
}
