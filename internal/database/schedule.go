package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Joao-Gabriel-Santos/autobarber-sub000/internal/models"
	"github.com/Joao-Gabriel-Santos/autobarber-sub000/internal/schedule"
)

// validateTimeRange rejects rows the availability engine could not
// interpret: malformed clock strings or start >= end.
func validateTimeRange(startTime, endTime string) error {
	start, err := schedule.ParseClock(startTime)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTimeRange, err)
	}
	end, err := schedule.ParseClock(endTime)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTimeRange, err)
	}
	if start >= end {
		return ErrInvalidTimeRange
	}
	return nil
}

func validWeekday(weekday int) bool {
	return weekday >= 0 && weekday <= 6
}

// UpsertWorkingHour creates or replaces the working window for one
// weekday. Ranges violating start < end are rejected before touching
// the calendar.
func (db *DB) UpsertWorkingHour(ctx context.Context, wh *models.WorkingHour) error {
	if !validWeekday(wh.Weekday) {
		return fmt.Errorf("invalid weekday %d", wh.Weekday)
	}
	if err := validateTimeRange(wh.StartTime, wh.EndTime); err != nil {
		return err
	}

	query := `INSERT INTO working_hours (barber_id, weekday, start_time, end_time, is_active, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?)
              ON CONFLICT(barber_id, weekday) DO UPDATE SET
                  start_time = excluded.start_time,
                  end_time = excluded.end_time,
                  is_active = excluded.is_active,
                  updated_at = excluded.updated_at`
	now := time.Now()
	if _, err := db.ExecContext(ctx, query, wh.BarberID, wh.Weekday, wh.StartTime, wh.EndTime, wh.IsActive, now, now); err != nil {
		return fmt.Errorf("failed to upsert working hour: %w", err)
	}
	return nil
}

// SetWorkingHourActive toggles a weekday without editing its times.
func (db *DB) SetWorkingHourActive(ctx context.Context, barberID int64, weekday int, active bool) error {
	result, err := db.ExecContext(ctx,
		`UPDATE working_hours SET is_active = ?, updated_at = ? WHERE barber_id = ? AND weekday = ?`,
		active, time.Now(), barberID, weekday)
	if err != nil {
		return fmt.Errorf("failed to toggle working hour: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// GetWorkingHour implements schedule.CalendarStore. A missing row is
// (nil, nil): the engine treats it as a closed day, not an error.
func (db *DB) GetWorkingHour(ctx context.Context, barberID int64, weekday int) (*models.WorkingHour, error) {
	var wh models.WorkingHour
	err := db.QueryRowContext(ctx,
		`SELECT id, barber_id, weekday, start_time, end_time, is_active, created_at, updated_at
         FROM working_hours WHERE barber_id = ? AND weekday = ?`, barberID, weekday).
		Scan(&wh.ID, &wh.BarberID, &wh.Weekday, &wh.StartTime, &wh.EndTime, &wh.IsActive, &wh.CreatedAt, &wh.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get working hour: %w", err)
	}
	return &wh, nil
}

// ListWorkingHours returns all configured weekdays for a barber.
func (db *DB) ListWorkingHours(ctx context.Context, barberID int64) ([]models.WorkingHour, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, barber_id, weekday, start_time, end_time, is_active, created_at, updated_at
         FROM working_hours WHERE barber_id = ? ORDER BY weekday`, barberID)
	if err != nil {
		return nil, fmt.Errorf("failed to list working hours: %w", err)
	}
	defer rows.Close()

	var hours []models.WorkingHour
	for rows.Next() {
		var wh models.WorkingHour
		if err := rows.Scan(&wh.ID, &wh.BarberID, &wh.Weekday, &wh.StartTime, &wh.EndTime, &wh.IsActive, &wh.CreatedAt, &wh.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan working hour: %w", err)
		}
		hours = append(hours, wh)
	}
	return hours, rows.Err()
}

// CopyDaySchedule copies one weekday's working window and breaks onto
// other weekdays, replacing whatever they had.
func (db *DB) CopyDaySchedule(ctx context.Context, barberID int64, fromWeekday int, toWeekdays []int) error {
	if !validWeekday(fromWeekday) {
		return fmt.Errorf("invalid weekday %d", fromWeekday)
	}

	source, err := db.GetWorkingHour(ctx, barberID, fromWeekday)
	if err != nil {
		return err
	}
	if source == nil {
		return ErrNotFound
	}

	sourceBreaks, err := db.GetBreaks(ctx, barberID, fromWeekday)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now()
	for _, weekday := range toWeekdays {
		if !validWeekday(weekday) || weekday == fromWeekday {
			continue
		}

		_, err := tx.ExecContext(ctx,
			`INSERT INTO working_hours (barber_id, weekday, start_time, end_time, is_active, created_at, updated_at)
             VALUES (?, ?, ?, ?, ?, ?, ?)
             ON CONFLICT(barber_id, weekday) DO UPDATE SET
                 start_time = excluded.start_time,
                 end_time = excluded.end_time,
                 is_active = excluded.is_active,
                 updated_at = excluded.updated_at`,
			barberID, weekday, source.StartTime, source.EndTime, source.IsActive, now, now)
		if err != nil {
			return fmt.Errorf("failed to copy working hour to weekday %d: %w", weekday, err)
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM breaks WHERE barber_id = ? AND weekday = ?`, barberID, weekday); err != nil {
			return fmt.Errorf("failed to clear breaks for weekday %d: %w", weekday, err)
		}
		for _, br := range sourceBreaks {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO breaks (barber_id, weekday, start_time, end_time, label, created_at, updated_at)
                 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				barberID, weekday, br.StartTime, br.EndTime, br.Label, now, now); err != nil {
				return fmt.Errorf("failed to copy break to weekday %d: %w", weekday, err)
			}
		}
	}

	return tx.Commit()
}

// CreateBreak adds a recurring break for a weekday.
func (db *DB) CreateBreak(ctx context.Context, br *models.Break) error {
	if !validWeekday(br.Weekday) {
		return fmt.Errorf("invalid weekday %d", br.Weekday)
	}
	if err := validateTimeRange(br.StartTime, br.EndTime); err != nil {
		return err
	}

	now := time.Now()
	result, err := db.ExecContext(ctx,
		`INSERT INTO breaks (barber_id, weekday, start_time, end_time, label, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		br.BarberID, br.Weekday, br.StartTime, br.EndTime, br.Label, now, now)
	if err != nil {
		return fmt.Errorf("failed to create break: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	br.ID = id
	br.CreatedAt = now
	br.UpdatedAt = now
	return nil
}

func (db *DB) DeleteBreak(ctx context.Context, barberID, breakID int64) error {
	result, err := db.ExecContext(ctx,
		`DELETE FROM breaks WHERE id = ? AND barber_id = ?`, breakID, barberID)
	if err != nil {
		return fmt.Errorf("failed to delete break: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// GetBreaks implements schedule.CalendarStore.
func (db *DB) GetBreaks(ctx context.Context, barberID int64, weekday int) ([]models.Break, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, barber_id, weekday, start_time, end_time, COALESCE(label, ''), created_at, updated_at
         FROM breaks WHERE barber_id = ? AND weekday = ? ORDER BY start_time`, barberID, weekday)
	if err != nil {
		return nil, fmt.Errorf("failed to get breaks: %w", err)
	}
	defer rows.Close()

	var breaks []models.Break
	for rows.Next() {
		var br models.Break
		if err := rows.Scan(&br.ID, &br.BarberID, &br.Weekday, &br.StartTime, &br.EndTime, &br.Label, &br.CreatedAt, &br.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan break: %w", err)
		}
		breaks = append(breaks, br)
	}
	return breaks, rows.Err()
}

// ListBreaks returns every recurring break for a barber across the week.
func (db *DB) ListBreaks(ctx context.Context, barberID int64) ([]models.Break, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, barber_id, weekday, start_time, end_time, COALESCE(label, ''), created_at, updated_at
         FROM breaks WHERE barber_id = ? ORDER BY weekday, start_time`, barberID)
	if err != nil {
		return nil, fmt.Errorf("failed to list breaks: %w", err)
	}
	defer rows.Close()

	var breaks []models.Break
	for rows.Next() {
		var br models.Break
		if err := rows.Scan(&br.ID, &br.BarberID, &br.Weekday, &br.StartTime, &br.EndTime, &br.Label, &br.CreatedAt, &br.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan break: %w", err)
		}
		breaks = append(breaks, br)
	}
	return breaks, rows.Err()
}
