package database

import "errors"

var (
	// ErrSlotTaken is returned when the requested interval overlaps an
	// existing non-cancelled appointment at write time.
	ErrSlotTaken = errors.New("time slot is no longer available")

	// ErrPastDate rejects bookings for days that already passed.
	ErrPastDate = errors.New("booking date is in the past")

	// ErrDateTooFar rejects bookings beyond the allowed horizon.
	ErrDateTooFar = errors.New("booking date is too far in the future")

	// ErrInvalidTimeRange rejects schedule rows with start >= end.
	ErrInvalidTimeRange = errors.New("start time must be before end time")

	// ErrConcurrentModification signals a lost optimistic version check.
	ErrConcurrentModification = errors.New("appointment was modified concurrently")

	// ErrNotFound is returned for missing rows.
	ErrNotFound = errors.New("not found")
)
