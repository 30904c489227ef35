package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Joao-Gabriel-Santos/autobarber-sub000/internal/models"
	"github.com/Joao-Gabriel-Santos/autobarber-sub000/internal/schedule"
)

const dateLayout = "2006-01-02"

const appointmentColumns = `id, reference, barber_id, client_name, client_phone, date, start_time,
                 COALESCE(service_id, 0), status, COALESCE(comment, ''), created_at, updated_at, version`

// CreateAppointment inserts an appointment and its service lines
// without any conflict checking. Booking flows use
// CreateAppointmentWithLock; this one backs migrations and tests.
func (db *DB) CreateAppointment(ctx context.Context, appt *models.Appointment) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := insertAppointmentTx(ctx, tx, appt); err != nil {
		return err
	}
	return tx.Commit()
}

// CreateAppointmentWithLock validates that [start, start+duration) is
// free of every non-cancelled appointment for the same barber and date,
// then inserts, all inside one transaction. The connection takes the
// sqlite write lock at transaction start, so two concurrent attempts on
// overlapping intervals cannot both pass the check. Returns
// ErrSlotTaken on overlap.
func (db *DB) CreateAppointmentWithLock(ctx context.Context, appt *models.Appointment, durationMinutes int) error {
	if durationMinutes <= 0 {
		return fmt.Errorf("%w: non-positive duration", ErrInvalidTimeRange)
	}
	newStart, err := schedule.ParseClock(appt.StartTime)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTimeRange, err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Re-validate inside the transaction: load every occupying
	// appointment of the day together with its bundle total.
	rows, err := tx.QueryContext(ctx,
		`SELECT a.start_time, COALESCE(a.service_id, 0),
                COUNT(s.id), COALESCE(SUM(s.unit_duration_minutes * s.quantity), 0)
         FROM appointments a
         LEFT JOIN appointment_services s ON s.appointment_id = a.id
         WHERE a.barber_id = ? AND a.date = ? AND a.status != ?
         GROUP BY a.id`,
		appt.BarberID, appt.Date.Format(dateLayout), models.StatusCancelled)
	if err != nil {
		return fmt.Errorf("failed to check conflicts in tx: %w", err)
	}

	type occupied struct {
		start, duration int
	}
	var existing []occupied
	for rows.Next() {
		var startStr string
		var serviceID int64
		var lineCount, bundleMinutes int
		if err := rows.Scan(&startStr, &serviceID, &lineCount, &bundleMinutes); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan conflict row: %w", err)
		}

		start, err := schedule.ParseClock(startStr)
		if err != nil {
			continue
		}

		duration := models.DefaultServiceDurationMinutes
		switch {
		case lineCount > 0:
			duration = bundleMinutes
		case serviceID != 0:
			if minutes, ok := db.GetServiceDuration(ctx, serviceID); ok {
				duration = minutes
			}
		}
		if duration <= 0 {
			// Malformed bundles occupy just the start minute.
			duration = 1
		}
		existing = append(existing, occupied{start: start, duration: duration})
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("failed to read conflict rows: %w", err)
	}
	rows.Close()

	for _, occ := range existing {
		if newStart < occ.start+occ.duration && occ.start < newStart+durationMinutes {
			return ErrSlotTaken
		}
	}

	if err := insertAppointmentTx(ctx, tx, appt); err != nil {
		return err
	}
	return tx.Commit()
}

func insertAppointmentTx(ctx context.Context, tx *sql.Tx, appt *models.Appointment) error {
	if appt.Status == "" {
		appt.Status = models.StatusConfirmed
	}

	now := time.Now()
	result, err := tx.ExecContext(ctx,
		`INSERT INTO appointments (reference, barber_id, client_name, client_phone, date, start_time,
                                   service_id, status, comment, created_at, updated_at, version)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		appt.Reference,
		appt.BarberID,
		appt.ClientName,
		appt.ClientPhone,
		appt.Date.Format(dateLayout),
		appt.StartTime,
		nullableID(appt.ServiceID),
		appt.Status,
		appt.Comment,
		now,
		now,
		1,
	)
	if err != nil {
		return fmt.Errorf("failed to insert appointment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	for i, line := range appt.Services {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO appointment_services (appointment_id, service_id, name, unit_price_cents,
                                               unit_duration_minutes, quantity, position)
             VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, line.ServiceID, line.Name, line.UnitPriceCents, line.UnitDurationMinutes, line.Quantity, i); err != nil {
			return fmt.Errorf("failed to insert service line: %w", err)
		}
	}

	appt.ID = id
	appt.CreatedAt = now
	appt.UpdatedAt = now
	appt.Version = 1
	return nil
}

func nullableID(id int64) interface{} {
	if id == 0 {
		return nil
	}
	return id
}

func (db *DB) GetAppointment(ctx context.Context, id int64) (*models.Appointment, error) {
	appt, err := db.scanOneAppointment(db.QueryRowContext(ctx,
		`SELECT `+appointmentColumns+` FROM appointments WHERE id = ?`, id))
	if err != nil {
		return nil, err
	}
	if err := db.attachServiceLines(ctx, []*models.Appointment{appt}); err != nil {
		return nil, err
	}
	return appt, nil
}

func (db *DB) GetAppointmentByReference(ctx context.Context, reference string) (*models.Appointment, error) {
	appt, err := db.scanOneAppointment(db.QueryRowContext(ctx,
		`SELECT `+appointmentColumns+` FROM appointments WHERE reference = ?`, reference))
	if err != nil {
		return nil, err
	}
	if err := db.attachServiceLines(ctx, []*models.Appointment{appt}); err != nil {
		return nil, err
	}
	return appt, nil
}

func (db *DB) scanOneAppointment(row *sql.Row) (*models.Appointment, error) {
	var appt models.Appointment
	var dateStr string
	err := row.Scan(
		&appt.ID, &appt.Reference, &appt.BarberID, &appt.ClientName, &appt.ClientPhone,
		&dateStr, &appt.StartTime, &appt.ServiceID, &appt.Status, &appt.Comment,
		&appt.CreatedAt, &appt.UpdatedAt, &appt.Version,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}

	appt.Date, err = time.ParseInLocation(dateLayout, dateStr, time.Local)
	if err != nil {
		return nil, fmt.Errorf("failed to parse appointment date %s: %w", dateStr, err)
	}
	return &appt, nil
}

// GetAppointmentsByDate implements schedule.CalendarStore: every
// appointment of the day regardless of status, with bundles attached.
// Status filtering is the engine's concern.
func (db *DB) GetAppointmentsByDate(ctx context.Context, barberID int64, date time.Time) ([]models.Appointment, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+appointmentColumns+` FROM appointments
         WHERE barber_id = ? AND date = ? ORDER BY start_time, id`,
		barberID, date.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to get appointments by date: %w", err)
	}
	defer rows.Close()

	return db.collectAppointments(ctx, rows)
}

// GetAppointmentsByDateRange returns appointments across all barbers
// for export and reporting.
func (db *DB) GetAppointmentsByDateRange(ctx context.Context, startDate, endDate time.Time) ([]models.Appointment, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+appointmentColumns+` FROM appointments
         WHERE date >= ? AND date <= ? ORDER BY date, start_time, id`,
		startDate.Format(dateLayout), endDate.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to get appointments by date range: %w", err)
	}
	defer rows.Close()

	return db.collectAppointments(ctx, rows)
}

// GetDailyAppointments groups a date range by day key for export.
func (db *DB) GetDailyAppointments(ctx context.Context, startDate, endDate time.Time) (map[string][]models.Appointment, error) {
	appointments, err := db.GetAppointmentsByDateRange(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}

	daily := make(map[string][]models.Appointment)
	for _, appt := range appointments {
		daily[appt.DateKey()] = append(daily[appt.DateKey()], appt)
	}
	return daily, nil
}

func (db *DB) collectAppointments(ctx context.Context, rows *sql.Rows) ([]models.Appointment, error) {
	var appointments []models.Appointment
	for rows.Next() {
		var appt models.Appointment
		var dateStr string
		err := rows.Scan(
			&appt.ID, &appt.Reference, &appt.BarberID, &appt.ClientName, &appt.ClientPhone,
			&dateStr, &appt.StartTime, &appt.ServiceID, &appt.Status, &appt.Comment,
			&appt.CreatedAt, &appt.UpdatedAt, &appt.Version,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan appointment: %w", err)
		}
		appt.Date, err = time.ParseInLocation(dateLayout, dateStr, time.Local)
		if err != nil {
			return nil, fmt.Errorf("failed to parse appointment date %s: %w", dateStr, err)
		}
		appointments = append(appointments, appt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	refs := make([]*models.Appointment, len(appointments))
	for i := range appointments {
		refs[i] = &appointments[i]
	}
	if err := db.attachServiceLines(ctx, refs); err != nil {
		return nil, err
	}
	return appointments, nil
}

func (db *DB) attachServiceLines(ctx context.Context, appointments []*models.Appointment) error {
	if len(appointments) == 0 {
		return nil
	}

	byID := make(map[int64]*models.Appointment, len(appointments))
	placeholders := make([]string, 0, len(appointments))
	args := make([]interface{}, 0, len(appointments))
	for _, appt := range appointments {
		byID[appt.ID] = appt
		placeholders = append(placeholders, "?")
		args = append(args, appt.ID)
	}

	query := `SELECT appointment_id, service_id, name, unit_price_cents, unit_duration_minutes, quantity
              FROM appointment_services
              WHERE appointment_id IN (` + strings.Join(placeholders, ",") + `)
              ORDER BY appointment_id, position`
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to load service lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var apptID int64
		var line models.ServiceLine
		if err := rows.Scan(&apptID, &line.ServiceID, &line.Name, &line.UnitPriceCents, &line.UnitDurationMinutes, &line.Quantity); err != nil {
			return fmt.Errorf("failed to scan service line: %w", err)
		}
		if appt, ok := byID[apptID]; ok {
			appt.Services = append(appt.Services, line)
		}
	}
	return rows.Err()
}

// UpdateAppointmentStatusWithVersion applies an optimistic version
// check; a lost race surfaces as ErrConcurrentModification.
func (db *DB) UpdateAppointmentStatusWithVersion(ctx context.Context, id, fromVersion int64, status string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE appointments SET status = ?, version = version + 1, updated_at = ? WHERE id = ? AND version = ?`,
		status, time.Now(), id, fromVersion)
	if err != nil {
		return fmt.Errorf("failed to update appointment status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrConcurrentModification
	}
	return nil
}
