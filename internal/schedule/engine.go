package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/Joao-Gabriel-Santos/autobarber-sub000/internal/models"

	"github.com/rs/zerolog"
)

// CalendarStore is the read side the engine computes over. Implemented
// by the sqlite database; readers never mutate it.
type CalendarStore interface {
	GetWorkingHour(ctx context.Context, barberID int64, weekday int) (*models.WorkingHour, error)
	GetBreaks(ctx context.Context, barberID int64, weekday int) ([]models.Break, error)
	GetAppointmentsByDate(ctx context.Context, barberID int64, date time.Time) ([]models.Appointment, error)
	GetServiceDuration(ctx context.Context, serviceID int64) (int, bool)
}

// Engine computes valid start times for a barber and day. It is
// stateless and side-effect free; every call re-reads the store, so it
// is safe to call concurrently.
type Engine struct {
	store CalendarStore
	log   zerolog.Logger
}

func NewEngine(store CalendarStore, logger *zerolog.Logger) *Engine {
	var log zerolog.Logger
	if logger != nil {
		log = logger.With().Str("component", "schedule-engine").Logger()
	}
	return &Engine{store: store, log: log}
}

// GenerateSlots returns the ascending list of "HH:MM" start times at
// which durationMinutes fits entirely inside the barber's working
// window for the date's weekday, avoiding breaks and every
// non-cancelled appointment on that date.
//
// Invalid input (non-positive duration, closed day, duration longer
// than the working window) yields an empty list, not an error; errors
// are reserved for store failures. Same-day cutoff is not applied here,
// callers compose FilterFuture for that.
func (e *Engine) GenerateSlots(ctx context.Context, barberID int64, date time.Time, durationMinutes int) ([]string, error) {
	if durationMinutes <= 0 {
		return nil, nil
	}

	weekday := int(date.Weekday())

	wh, err := e.store.GetWorkingHour(ctx, barberID, weekday)
	if err != nil {
		return nil, fmt.Errorf("get working hours: %w", err)
	}
	if wh == nil || !wh.IsActive {
		return nil, nil
	}

	dayStart, err := ParseClock(wh.StartTime)
	if err != nil {
		e.log.Warn().Int64("barber_id", barberID).Int("weekday", weekday).Err(err).Msg("malformed working hour start")
		return nil, nil
	}
	dayEnd, err := ParseClock(wh.EndTime)
	if err != nil {
		e.log.Warn().Int64("barber_id", barberID).Int("weekday", weekday).Err(err).Msg("malformed working hour end")
		return nil, nil
	}
	if dayStart >= dayEnd {
		return nil, nil
	}

	occupied, err := e.occupiedMinutes(ctx, barberID, date, weekday)
	if err != nil {
		return nil, err
	}

	var slots []string
	for candidate := dayStart; candidate+durationMinutes <= dayEnd; candidate += models.SlotStepMinutes {
		if intervalFree(occupied, candidate, durationMinutes) {
			slots = append(slots, FormatClock(candidate))
		}
	}
	return slots, nil
}

// IsStillAvailable re-derives the occupied-minute set from a fresh
// store read and reports whether [startTime, startTime+duration) is
// entirely free. Called immediately before the booking write to narrow
// the race between slot display and commit.
func (e *Engine) IsStillAvailable(ctx context.Context, barberID int64, date time.Time, startTime string, durationMinutes int) (bool, error) {
	if durationMinutes <= 0 {
		return false, nil
	}

	start, err := ParseClock(startTime)
	if err != nil {
		return false, nil
	}

	occupied, err := e.occupiedMinutes(ctx, barberID, date, int(date.Weekday()))
	if err != nil {
		return false, err
	}
	return intervalFree(occupied, start, durationMinutes), nil
}

// occupiedMinutes builds the per-day occupancy set: breaks are applied
// by weekday, appointments by exact date.
func (e *Engine) occupiedMinutes(ctx context.Context, barberID int64, date time.Time, weekday int) ([]bool, error) {
	occupied := make([]bool, models.MinutesPerDay)

	breaks, err := e.store.GetBreaks(ctx, barberID, weekday)
	if err != nil {
		return nil, fmt.Errorf("get breaks: %w", err)
	}
	for _, br := range breaks {
		start, err := ParseClock(br.StartTime)
		if err != nil {
			e.log.Warn().Int64("break_id", br.ID).Err(err).Msg("skipping malformed break start")
			continue
		}
		end, err := ParseClock(br.EndTime)
		if err != nil {
			e.log.Warn().Int64("break_id", br.ID).Err(err).Msg("skipping malformed break end")
			continue
		}
		markInterval(occupied, start, end-start)
	}

	appointments, err := e.store.GetAppointmentsByDate(ctx, barberID, date)
	if err != nil {
		return nil, fmt.Errorf("get appointments: %w", err)
	}
	for i := range appointments {
		appt := &appointments[i]
		if !models.OccupiesTime(appt.Status) {
			continue
		}
		start, err := ParseClock(appt.StartTime)
		if err != nil {
			e.log.Warn().Int64("appointment_id", appt.ID).Err(err).Msg("skipping malformed appointment start")
			continue
		}
		markInterval(occupied, start, ResolveDuration(ctx, appt, e.store.GetServiceDuration))
	}

	return occupied, nil
}
