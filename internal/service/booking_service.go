package service

import (
	"context"
	"errors"
	"time"

	"github.com/Joao-Gabriel-Santos/autobarber-sub000/internal/database"
	"github.com/Joao-Gabriel-Santos/autobarber-sub000/internal/domain"
	"github.com/Joao-Gabriel-Santos/autobarber-sub000/internal/events"
	"github.com/Joao-Gabriel-Santos/autobarber-sub000/internal/metrics"
	"github.com/Joao-Gabriel-Santos/autobarber-sub000/internal/models"
	"github.com/Joao-Gabriel-Santos/autobarber-sub000/internal/schedule"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type BookingService struct {
	repo           domain.Repository
	engine         *schedule.Engine
	cache          domain.SlotCache
	eventBus       domain.EventPublisher
	sheetsWorker   domain.SyncWorker
	maxBookingDays int
	logger         *zerolog.Logger
}

func NewBookingService(
	repo domain.Repository,
	engine *schedule.Engine,
	cache domain.SlotCache,
	eventBus domain.EventPublisher,
	sheetsWorker domain.SyncWorker,
	maxBookingDays int,
	logger *zerolog.Logger,
) *BookingService {
	if maxBookingDays <= 0 {
		maxBookingDays = models.DefaultMaxBookingDays
	}
	return &BookingService{
		repo:           repo,
		engine:         engine,
		cache:          cache,
		eventBus:       eventBus,
		sheetsWorker:   sheetsWorker,
		maxBookingDays: maxBookingDays,
		logger:         logger,
	}
}

// ValidateAppointmentDate enforces the booking horizon: today or later,
// at most maxBookingDays ahead.
func (s *BookingService) ValidateAppointmentDate(date time.Time) error {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if date.Before(today) {
		return database.ErrPastDate
	}
	if date.After(today.AddDate(0, 0, s.maxBookingDays)) {
		return database.ErrDateTooFar
	}
	return nil
}

// CreateAppointment books a slot. The interval is validated against
// the live calendar first, then re-validated inside the insert
// transaction, so two concurrent requests for overlapping intervals
// cannot both succeed.
func (s *BookingService) CreateAppointment(ctx context.Context, appt *models.Appointment) error {
	if appt.Reference == "" {
		appt.Reference = uuid.NewString()
	}
	if appt.Status == "" {
		appt.Status = models.StatusConfirmed
	}

	if err := s.ValidateAppointmentDate(appt.Date); err != nil {
		metrics.IncBooking("rejected")
		return err
	}

	duration := schedule.ResolveDuration(ctx, appt, s.repo.GetServiceDuration)

	available, err := s.engine.IsStillAvailable(ctx, appt.BarberID, appt.Date, appt.StartTime, duration)
	if err != nil {
		metrics.IncBooking("error")
		return err
	}
	if !available {
		metrics.IncBooking("conflict")
		return database.ErrSlotTaken
	}

	if err := s.repo.CreateAppointmentWithLock(ctx, appt, duration); err != nil {
		if errors.Is(err, database.ErrSlotTaken) {
			metrics.IncBooking("conflict")
		} else {
			metrics.IncBooking("error")
		}
		return err
	}

	metrics.IncBooking("created")
	s.logger.Info().
		Int64("appointment_id", appt.ID).
		Int64("barber_id", appt.BarberID).
		Str("date", appt.DateKey()).
		Str("start_time", appt.StartTime).
		Int("duration_minutes", duration).
		Msg("appointment created")

	s.invalidateDay(ctx, appt.BarberID, appt.Date)
	s.publishEvent(events.EventAppointmentCreated, appt)
	s.enqueueSync(ctx, appt, "append", "")

	return nil
}

func (s *BookingService) ConfirmAppointment(ctx context.Context, id, version int64) error {
	return s.transition(ctx, id, version, models.StatusConfirmed, events.EventAppointmentConfirmed)
}

func (s *BookingService) CancelAppointment(ctx context.Context, id, version int64) error {
	return s.transition(ctx, id, version, models.StatusCancelled, events.EventAppointmentCancelled)
}

func (s *BookingService) CompleteAppointment(ctx context.Context, id, version int64) error {
	return s.transition(ctx, id, version, models.StatusCompleted, events.EventAppointmentCompleted)
}

func (s *BookingService) transition(ctx context.Context, id, version int64, status, eventType string) error {
	if err := s.repo.UpdateAppointmentStatusWithVersion(ctx, id, version, status); err != nil {
		return err
	}

	appt, err := s.repo.GetAppointment(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Int64("appointment_id", id).Msg("load after status change failed")
		return nil
	}

	// Cancelling frees the interval for rebooking.
	if status == models.StatusCancelled {
		s.invalidateDay(ctx, appt.BarberID, appt.Date)
	}

	s.publishEvent(eventType, appt)
	s.enqueueSync(ctx, appt, "update_status", status)
	return nil
}

func (s *BookingService) GetAppointment(ctx context.Context, id int64) (*models.Appointment, error) {
	return s.repo.GetAppointment(ctx, id)
}

func (s *BookingService) GetAppointmentsByDateRange(ctx context.Context, start, end time.Time) ([]models.Appointment, error) {
	return s.repo.GetAppointmentsByDateRange(ctx, start, end)
}

func (s *BookingService) GetDailyAppointments(ctx context.Context, start, end time.Time) (map[string][]models.Appointment, error) {
	return s.repo.GetDailyAppointments(ctx, start, end)
}

func (s *BookingService) invalidateDay(ctx context.Context, barberID int64, date time.Time) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateDay(ctx, barberID, date.Format("2006-01-02")); err != nil {
		s.logger.Warn().Err(err).Int64("barber_id", barberID).Msg("slot cache invalidation failed")
	}
}

func (s *BookingService) publishEvent(eventType string, appt *models.Appointment) {
	if s.eventBus == nil {
		return
	}

	payload := events.AppointmentEventPayload{
		AppointmentID: appt.ID,
		Reference:     appt.Reference,
		BarberID:      appt.BarberID,
		ClientName:    appt.ClientName,
		Date:          appt.DateKey(),
		StartTime:     appt.StartTime,
		Status:        appt.Status,
		Comment:       appt.Comment,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("appointment_id", appt.ID).Msg("publish event error")
	}
}

func (s *BookingService) enqueueSync(ctx context.Context, appt *models.Appointment, taskType, status string) {
	if s.sheetsWorker == nil {
		return
	}
	if err := s.sheetsWorker.EnqueueTask(ctx, taskType, appt.ID, appt, status); err != nil {
		s.logger.Error().Err(err).Int64("appointment_id", appt.ID).Str("task", taskType).Msg("sheets enqueue error")
	}
}
