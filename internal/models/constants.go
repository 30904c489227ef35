package models

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

// OccupiesTime reports whether an appointment in the given status still
// blocks its time interval. Cancelled appointments release their slot.
func OccupiesTime(status string) bool {
	return status != StatusCancelled
}

const (
	// SlotStepMinutes is the fixed grid for candidate start times.
	// Slots always start on the quarter hour regardless of service duration.
	SlotStepMinutes = 15

	// DefaultServiceDurationMinutes is used when an appointment carries
	// neither a service bundle nor a resolvable linked service.
	DefaultServiceDurationMinutes = 30

	// MinutesPerDay bounds minute-of-day values.
	MinutesPerDay = 24 * 60
)

const (
	// DefaultSlotCacheTTL время жизни кэша слотов в секундах
	DefaultSlotCacheTTL = 60

	// DefaultMaxBookingDays максимальный горизонт бронирования
	DefaultMaxBookingDays = 90

	// WorkerQueueSize размер очереди воркера
	WorkerQueueSize = 1000

	// DefaultExportRangeMonthsBefore количество месяцев для экспорта по умолчанию
	DefaultExportRangeMonthsBefore = 1
	DefaultExportRangeMonthsAfter  = 2
)
