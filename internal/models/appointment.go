package models

import "time"

// Appointment is a booked visit. Date carries the calendar day,
// StartTime the wall-clock "HH:MM" start. The occupied duration is
// derived from Services when present, falling back to the linked
// ServiceID and finally to DefaultServiceDurationMinutes.
type Appointment struct {
	ID          int64        `json:"id"`
	Reference   string       `json:"reference"`
	BarberID    int64        `json:"barber_id"`
	ClientName  string       `json:"client_name"`
	ClientPhone string       `json:"client_phone"`
	Date        time.Time    `json:"date"`
	StartTime   string       `json:"start_time"`
	ServiceID   int64        `json:"service_id,omitempty"`
	Services    ServiceLines `json:"services,omitempty"`
	Status      string       `json:"status"` // pending, confirmed, cancelled, completed
	Comment     string       `json:"comment,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	Version     int64        `json:"version"`
}

func (a *Appointment) DateKey() string {
	return a.Date.Format("2006-01-02")
}
