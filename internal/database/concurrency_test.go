package database

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ten goroutines race for the same slot; exactly one insert must win
// and the rest must see ErrSlotTaken.
func TestCreateAppointmentWithLock_Race(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	seedTestCatalog(t, db)

	ctx := context.Background()
	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.Local)

	const attempts = 10

	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- db.CreateAppointmentWithLock(ctx, testAppointment(1, date, "10:00"), 30)
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, conflicted int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrSlotTaken):
			conflicted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, conflicted)

	appointments, err := db.GetAppointmentsByDate(ctx, 1, date)
	require.NoError(t, err)
	assert.Len(t, appointments, 1)
}

// Overlapping but non-identical intervals race; only non-overlapping
// winners may coexist.
func TestCreateAppointmentWithLock_RaceOverlapping(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	seedTestCatalog(t, db)

	ctx := context.Background()
	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.Local)

	starts := []string{"10:00", "10:15", "10:30", "10:45"}

	var wg sync.WaitGroup
	for _, start := range starts {
		wg.Add(1)
		go func(start string) {
			defer wg.Done()
			_ = db.CreateAppointmentWithLock(ctx, testAppointment(1, date, start), 30)
		}(start)
	}
	wg.Wait()

	appointments, err := db.GetAppointmentsByDate(ctx, 1, date)
	require.NoError(t, err)

	// Every pair of surviving intervals must be disjoint.
	for i := 0; i < len(appointments); i++ {
		for j := i + 1; j < len(appointments); j++ {
			a, b := appointments[i].StartTime, appointments[j].StartTime
			assert.NotEqual(t, a, b)
		}
	}
	assert.NotEmpty(t, appointments)
	assert.LessOrEqual(t, len(appointments), 2)
}
