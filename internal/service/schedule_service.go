package service

import (
	"context"

	"github.com/Joao-Gabriel-Santos/autobarber-sub000/internal/domain"
	"github.com/Joao-Gabriel-Santos/autobarber-sub000/internal/events"
	"github.com/Joao-Gabriel-Santos/autobarber-sub000/internal/models"

	"github.com/rs/zerolog"
)

// ScheduleService edits a barber's weekly template: one working window
// per weekday plus recurring breaks. Cached slot lists are not
// invalidated here; the cache TTL is short enough that schedule edits
// surface within a minute.
type ScheduleService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewScheduleService(repo domain.Repository, eventBus domain.EventPublisher, logger *zerolog.Logger) *ScheduleService {
	return &ScheduleService{
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
	}
}

func (s *ScheduleService) SetWorkingHours(ctx context.Context, wh *models.WorkingHour) error {
	if err := s.repo.UpsertWorkingHour(ctx, wh); err != nil {
		return err
	}
	s.logger.Info().
		Int64("barber_id", wh.BarberID).
		Int("weekday", wh.Weekday).
		Str("start", wh.StartTime).
		Str("end", wh.EndTime).
		Msg("working hours updated")
	s.publishChange(wh.BarberID, wh.Weekday)
	return nil
}

func (s *ScheduleService) SetDayActive(ctx context.Context, barberID int64, weekday int, active bool) error {
	if err := s.repo.SetWorkingHourActive(ctx, barberID, weekday, active); err != nil {
		return err
	}
	s.publishChange(barberID, weekday)
	return nil
}

func (s *ScheduleService) WeekSchedule(ctx context.Context, barberID int64) ([]models.WorkingHour, []models.Break, error) {
	hours, err := s.repo.ListWorkingHours(ctx, barberID)
	if err != nil {
		return nil, nil, err
	}
	breaks, err := s.repo.ListBreaks(ctx, barberID)
	if err != nil {
		return nil, nil, err
	}
	return hours, breaks, nil
}

func (s *ScheduleService) AddBreak(ctx context.Context, br *models.Break) error {
	if err := s.repo.CreateBreak(ctx, br); err != nil {
		return err
	}
	s.publishChange(br.BarberID, br.Weekday)
	return nil
}

func (s *ScheduleService) RemoveBreak(ctx context.Context, barberID, breakID int64) error {
	weekday := -1
	if breaks, err := s.repo.ListBreaks(ctx, barberID); err == nil {
		for _, br := range breaks {
			if br.ID == breakID {
				weekday = br.Weekday
				break
			}
		}
	}

	if err := s.repo.DeleteBreak(ctx, barberID, breakID); err != nil {
		return err
	}
	if weekday >= 0 {
		s.publishChange(barberID, weekday)
	}
	return nil
}

func (s *ScheduleService) CopyDay(ctx context.Context, barberID int64, fromWeekday int, toWeekdays []int) error {
	if err := s.repo.CopyDaySchedule(ctx, barberID, fromWeekday, toWeekdays); err != nil {
		return err
	}
	for _, weekday := range toWeekdays {
		s.publishChange(barberID, weekday)
	}
	return nil
}

func (s *ScheduleService) publishChange(barberID int64, weekday int) {
	if s.eventBus == nil {
		return
	}
	payload := events.ScheduleEventPayload{BarberID: barberID, Weekday: weekday}
	if err := s.eventBus.PublishJSON(events.EventScheduleChanged, payload); err != nil {
		s.logger.Error().Err(err).Int64("barber_id", barberID).Msg("publish schedule event error")
	}
}
