package schedule

import (
	"context"

	"github.com/Joao-Gabriel-Santos/autobarber-sub000/internal/models"
)

// ServiceDurationFunc reports the duration in minutes of a catalog
// service, or false when the service is unknown.
type ServiceDurationFunc func(ctx context.Context, serviceID int64) (int, bool)

// ResolveDuration computes the occupied duration of an appointment in
// minutes.
//
// A non-empty service bundle wins and its total is returned as-is, even
// when malformed data sums to zero or less; the engine treats such an
// appointment as occupying only its start minute. Without a bundle the
// linked service's duration is used, and when that is missing too the
// fixed default applies. Absence of data degrades, it never faults.
func ResolveDuration(ctx context.Context, appt *models.Appointment, lookup ServiceDurationFunc) int {
	if len(appt.Services) > 0 {
		return appt.Services.TotalDurationMinutes()
	}

	if appt.ServiceID != 0 && lookup != nil {
		if minutes, ok := lookup(ctx, appt.ServiceID); ok && minutes > 0 {
			return minutes
		}
	}

	return models.DefaultServiceDurationMinutes
}
