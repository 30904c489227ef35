package models

import "time"

// WorkingHour describes the bookable window for one weekday.
// Weekday follows time.Weekday: 0=Sunday .. 6=Saturday. Times are
// wall-clock "HH:MM" strings, no timezone is modeled.
type WorkingHour struct {
	ID        int64     `json:"id"`
	BarberID  int64     `json:"barber_id"`
	Weekday   int       `json:"weekday"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Break is a recurring unavailable window. It applies to every
// occurrence of its weekday, independent of calendar date.
type Break struct {
	ID        int64     `json:"id"`
	BarberID  int64     `json:"barber_id"`
	Weekday   int       `json:"weekday"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	Label     string    `json:"label,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
