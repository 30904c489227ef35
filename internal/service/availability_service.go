package service

import (
	"context"
	"time"

	"github.com/Joao-Gabriel-Santos/autobarber-sub000/internal/domain"
	"github.com/Joao-Gabriel-Santos/autobarber-sub000/internal/metrics"
	"github.com/Joao-Gabriel-Santos/autobarber-sub000/internal/models"
	"github.com/Joao-Gabriel-Santos/autobarber-sub000/internal/schedule"

	"github.com/rs/zerolog"
)

// AvailabilityService answers "which start times are open" queries.
// Slot lists are cached per barber, date and duration; the cache keeps
// the unfiltered day so today's entries stay valid as time passes, and
// past starts are trimmed on the way out.
type AvailabilityService struct {
	engine *schedule.Engine
	repo   domain.Repository
	cache  domain.SlotCache
	logger *zerolog.Logger
}

func NewAvailabilityService(engine *schedule.Engine, repo domain.Repository, cache domain.SlotCache, logger *zerolog.Logger) *AvailabilityService {
	return &AvailabilityService{
		engine: engine,
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

func (s *AvailabilityService) GetSlots(ctx context.Context, barberID int64, date time.Time, durationMinutes int) ([]string, error) {
	if _, err := s.repo.GetBarber(ctx, barberID); err != nil {
		return nil, err
	}

	dateKey := date.Format("2006-01-02")

	if s.cache != nil {
		slots, hit, err := s.cache.GetSlots(ctx, barberID, dateKey, durationMinutes)
		if err != nil {
			s.logger.Warn().Err(err).Msg("slot cache read failed")
		} else if hit {
			metrics.IncSlotQuery("cache")
			return s.trimPast(slots, date), nil
		}
	}

	slots, err := s.engine.GenerateSlots(ctx, barberID, date, durationMinutes)
	if err != nil {
		return nil, err
	}
	metrics.IncSlotQuery("engine")

	if s.cache != nil {
		if err := s.cache.SetSlots(ctx, barberID, dateKey, durationMinutes, slots); err != nil {
			s.logger.Warn().Err(err).Msg("slot cache write failed")
		}
	}

	return s.trimPast(slots, date), nil
}

// ResolveDuration computes the total service time of an appointment:
// bundle total when lines exist, else the linked service's duration,
// else the default.
func (s *AvailabilityService) ResolveDuration(ctx context.Context, appt *models.Appointment) int {
	return schedule.ResolveDuration(ctx, appt, s.repo.GetServiceDuration)
}

func (s *AvailabilityService) trimPast(slots []string, date time.Time) []string {
	now := time.Now()
	if date.Year() != now.Year() || date.YearDay() != now.YearDay() {
		return slots
	}
	return schedule.FilterFuture(slots, now)
}
