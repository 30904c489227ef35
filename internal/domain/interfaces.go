package domain

import (
	"context"
	"time"

	"github.com/Joao-Gabriel-Santos/autobarber-sub000/internal/models"
)

// Repository is the persistence surface the services depend on.
// *database.DB satisfies it.
type Repository interface {
	GetAppointment(ctx context.Context, id int64) (*models.Appointment, error)
	GetAppointmentByReference(ctx context.Context, reference string) (*models.Appointment, error)
	CreateAppointmentWithLock(ctx context.Context, appt *models.Appointment, durationMinutes int) error
	UpdateAppointmentStatusWithVersion(ctx context.Context, id, fromVersion int64, status string) error
	GetAppointmentsByDate(ctx context.Context, barberID int64, date time.Time) ([]models.Appointment, error)
	GetAppointmentsByDateRange(ctx context.Context, startDate, endDate time.Time) ([]models.Appointment, error)
	GetDailyAppointments(ctx context.Context, startDate, endDate time.Time) (map[string][]models.Appointment, error)

	GetActiveBarbers(ctx context.Context) ([]models.Barber, error)
	GetBarber(ctx context.Context, id int64) (*models.Barber, error)
	GetActiveServices(ctx context.Context) ([]models.Service, error)
	GetService(ctx context.Context, id int64) (*models.Service, error)
	GetServiceDuration(ctx context.Context, serviceID int64) (int, bool)

	GetWorkingHour(ctx context.Context, barberID int64, weekday int) (*models.WorkingHour, error)
	ListWorkingHours(ctx context.Context, barberID int64) ([]models.WorkingHour, error)
	UpsertWorkingHour(ctx context.Context, wh *models.WorkingHour) error
	SetWorkingHourActive(ctx context.Context, barberID int64, weekday int, active bool) error
	CopyDaySchedule(ctx context.Context, barberID int64, fromWeekday int, toWeekdays []int) error
	GetBreaks(ctx context.Context, barberID int64, weekday int) ([]models.Break, error)
	ListBreaks(ctx context.Context, barberID int64) ([]models.Break, error)
	CreateBreak(ctx context.Context, br *models.Break) error
	DeleteBreak(ctx context.Context, barberID, breakID int64) error

	CreateSyncTask(ctx context.Context, task *models.SyncTask) error
	GetPendingSyncTasks(ctx context.Context, limit int) ([]models.SyncTask, error)
	UpdateSyncTaskStatus(ctx context.Context, id int64, status, errMsg string, nextRetryAt *time.Time) error
}

// SlotCache caches computed slot lists per barber, date and duration.
// Implementations: redis, in-memory, and a failover wrapper.
type SlotCache interface {
	GetSlots(ctx context.Context, barberID int64, dateKey string, durationMinutes int) ([]string, bool, error)
	SetSlots(ctx context.Context, barberID int64, dateKey string, durationMinutes int, slots []string) error
	InvalidateDay(ctx context.Context, barberID int64, dateKey string) error
	Ping(ctx context.Context) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type SheetsWriter interface {
	AppendAppointment(ctx context.Context, appt *models.Appointment) error
	UpdateAppointmentStatus(ctx context.Context, appointmentID int64, status string) error
	UpdateScheduleSheet(
		ctx context.Context,
		startDate, endDate time.Time,
		dailyAppointments map[string][]models.Appointment,
		barbers []models.Barber,
	) error
}

type SyncWorker interface {
	EnqueueTask(ctx context.Context, taskType string, appointmentID int64, appt *models.Appointment, status string) error
	EnqueueSyncSchedule(ctx context.Context, startDate, endDate time.Time) error
}

type AvailabilityService interface {
	GetSlots(ctx context.Context, barberID int64, date time.Time, durationMinutes int) ([]string, error)
	ResolveDuration(ctx context.Context, appt *models.Appointment) int
}

type BookingService interface {
	ValidateAppointmentDate(date time.Time) error
	CreateAppointment(ctx context.Context, appt *models.Appointment) error
	ConfirmAppointment(ctx context.Context, id, version int64) error
	CancelAppointment(ctx context.Context, id, version int64) error
	CompleteAppointment(ctx context.Context, id, version int64) error
	GetAppointment(ctx context.Context, id int64) (*models.Appointment, error)
	GetAppointmentsByDateRange(ctx context.Context, start, end time.Time) ([]models.Appointment, error)
}

type ScheduleService interface {
	SetWorkingHours(ctx context.Context, wh *models.WorkingHour) error
	SetDayActive(ctx context.Context, barberID int64, weekday int, active bool) error
	WeekSchedule(ctx context.Context, barberID int64) ([]models.WorkingHour, []models.Break, error)
	AddBreak(ctx context.Context, br *models.Break) error
	RemoveBreak(ctx context.Context, barberID, breakID int64) error
	CopyDay(ctx context.Context, barberID int64, fromWeekday int, toWeekdays []int) error
}
