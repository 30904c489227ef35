package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Joao-Gabriel-Santos/autobarber-sub000/internal/models"
)

// SeedCatalog upserts barbers and services loaded from the catalog file
// and refreshes the in-memory caches. Called once at startup.
func (db *DB) SeedCatalog(ctx context.Context, barbers []models.Barber, services []models.Service) error {
	for i := range barbers {
		b := &barbers[i]
		query := `INSERT INTO barbers (id, name, phone, sort_order, is_active, created_at, updated_at)
                  VALUES (?, ?, ?, ?, ?, ?, ?)
                  ON CONFLICT(id) DO UPDATE SET
                      name = excluded.name,
                      phone = excluded.phone,
                      sort_order = excluded.sort_order,
                      is_active = excluded.is_active,
                      updated_at = excluded.updated_at`
		now := time.Now()
		if _, err := db.ExecContext(ctx, query, b.ID, b.Name, b.Phone, b.SortOrder, b.IsActive, now, now); err != nil {
			return fmt.Errorf("failed to seed barber %d: %w", b.ID, err)
		}
	}

	for i := range services {
		s := &services[i]
		query := `INSERT INTO services (id, name, description, price_cents, duration_minutes, is_active, created_at, updated_at)
                  VALUES (?, ?, ?, ?, ?, ?, ?, ?)
                  ON CONFLICT(id) DO UPDATE SET
                      name = excluded.name,
                      description = excluded.description,
                      price_cents = excluded.price_cents,
                      duration_minutes = excluded.duration_minutes,
                      is_active = excluded.is_active,
                      updated_at = excluded.updated_at`
		now := time.Now()
		if _, err := db.ExecContext(ctx, query, s.ID, s.Name, s.Description, s.PriceCents, s.DurationMinutes, s.IsActive, now, now); err != nil {
			return fmt.Errorf("failed to seed service %d: %w", s.ID, err)
		}
	}

	return db.RefreshCatalogCache(ctx)
}

// RefreshCatalogCache reloads the barber and service caches from disk.
func (db *DB) RefreshCatalogCache(ctx context.Context) error {
	barbers, err := db.loadBarbers(ctx)
	if err != nil {
		return err
	}
	services, err := db.loadServices(ctx)
	if err != nil {
		return err
	}

	db.mu.Lock()
	db.barbersCache = make(map[int64]models.Barber, len(barbers))
	for _, b := range barbers {
		db.barbersCache[b.ID] = b
	}
	db.servicesCache = make(map[int64]models.Service, len(services))
	for _, s := range services {
		db.servicesCache[s.ID] = s
	}
	db.mu.Unlock()
	return nil
}

func (db *DB) loadBarbers(ctx context.Context) ([]models.Barber, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, phone, sort_order, is_active, created_at, updated_at FROM barbers`)
	if err != nil {
		return nil, fmt.Errorf("failed to load barbers: %w", err)
	}
	defer rows.Close()

	var barbers []models.Barber
	for rows.Next() {
		var b models.Barber
		var phone sql.NullString
		if err := rows.Scan(&b.ID, &b.Name, &phone, &b.SortOrder, &b.IsActive, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan barber: %w", err)
		}
		b.Phone = phone.String
		barbers = append(barbers, b)
	}
	return barbers, rows.Err()
}

func (db *DB) loadServices(ctx context.Context) ([]models.Service, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, description, price_cents, duration_minutes, is_active, created_at, updated_at FROM services`)
	if err != nil {
		return nil, fmt.Errorf("failed to load services: %w", err)
	}
	defer rows.Close()

	var services []models.Service
	for rows.Next() {
		var s models.Service
		var desc sql.NullString
		if err := rows.Scan(&s.ID, &s.Name, &desc, &s.PriceCents, &s.DurationMinutes, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan service: %w", err)
		}
		s.Description = desc.String
		services = append(services, s)
	}
	return services, rows.Err()
}

// GetActiveBarbers returns active barbers ordered for display.
func (db *DB) GetActiveBarbers(ctx context.Context) ([]models.Barber, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, phone, sort_order, is_active, created_at, updated_at
         FROM barbers WHERE is_active = 1 ORDER BY sort_order, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to get active barbers: %w", err)
	}
	defer rows.Close()

	var barbers []models.Barber
	for rows.Next() {
		var b models.Barber
		var phone sql.NullString
		if err := rows.Scan(&b.ID, &b.Name, &phone, &b.SortOrder, &b.IsActive, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan barber: %w", err)
		}
		b.Phone = phone.String
		barbers = append(barbers, b)
	}
	return barbers, rows.Err()
}

func (db *DB) GetBarber(ctx context.Context, id int64) (*models.Barber, error) {
	db.mu.RLock()
	b, ok := db.barbersCache[id]
	db.mu.RUnlock()
	if ok {
		return &b, nil
	}

	var barber models.Barber
	var phone sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT id, name, phone, sort_order, is_active, created_at, updated_at FROM barbers WHERE id = ?`, id).
		Scan(&barber.ID, &barber.Name, &phone, &barber.SortOrder, &barber.IsActive, &barber.CreatedAt, &barber.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get barber: %w", err)
	}
	barber.Phone = phone.String
	return &barber, nil
}

// GetActiveServices returns the bookable service catalog.
func (db *DB) GetActiveServices(ctx context.Context) ([]models.Service, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, description, price_cents, duration_minutes, is_active, created_at, updated_at
         FROM services WHERE is_active = 1 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to get active services: %w", err)
	}
	defer rows.Close()

	var services []models.Service
	for rows.Next() {
		var s models.Service
		var desc sql.NullString
		if err := rows.Scan(&s.ID, &s.Name, &desc, &s.PriceCents, &s.DurationMinutes, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan service: %w", err)
		}
		s.Description = desc.String
		services = append(services, s)
	}
	return services, rows.Err()
}

func (db *DB) GetService(ctx context.Context, id int64) (*models.Service, error) {
	db.mu.RLock()
	s, ok := db.servicesCache[id]
	db.mu.RUnlock()
	if ok {
		return &s, nil
	}

	var service models.Service
	var desc sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT id, name, description, price_cents, duration_minutes, is_active, created_at, updated_at FROM services WHERE id = ?`, id).
		Scan(&service.ID, &service.Name, &desc, &service.PriceCents, &service.DurationMinutes, &service.IsActive, &service.CreatedAt, &service.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	service.Description = desc.String
	return &service, nil
}

// GetServiceDuration implements schedule.CalendarStore. Unknown
// services report false so the resolver can fall back to its default.
func (db *DB) GetServiceDuration(_ context.Context, serviceID int64) (int, bool) {
	db.mu.RLock()
	s, ok := db.servicesCache[serviceID]
	db.mu.RUnlock()
	if !ok || s.DurationMinutes <= 0 {
		return 0, false
	}
	return s.DurationMinutes, true
}
