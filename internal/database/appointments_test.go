package database

import (
	"context"
	"testing"
	"time"

	"github.com/Joao-Gabriel-Santos/autobarber-sub000/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAppointment(barberID int64, date time.Time, startTime string) *models.Appointment {
	return &models.Appointment{
		Reference:   uuid.NewString(),
		BarberID:    barberID,
		ClientName:  "Client",
		ClientPhone: "+5511988880000",
		Date:        date,
		StartTime:   startTime,
		ServiceID:   10,
		Status:      models.StatusConfirmed,
	}
}

func TestCreateAppointmentWithLock(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	seedTestCatalog(t, db)

	ctx := context.Background()
	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.Local)

	appt := testAppointment(1, date, "10:00")
	err := db.CreateAppointmentWithLock(ctx, appt, 30)
	require.NoError(t, err)
	assert.NotZero(t, appt.ID)
	assert.Equal(t, int64(1), appt.Version)

	loaded, err := db.GetAppointment(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, appt.Reference, loaded.Reference)
	assert.Equal(t, "10:00", loaded.StartTime)
	assert.Equal(t, "2025-06-02", loaded.DateKey())
}

func TestCreateAppointmentWithLock_Conflicts(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	seedTestCatalog(t, db)

	ctx := context.Background()
	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.Local)

	// Existing haircut, 30 minutes at 10:00.
	require.NoError(t, db.CreateAppointmentWithLock(ctx, testAppointment(1, date, "10:00"), 30))

	cases := []struct {
		name     string
		start    string
		duration int
		wantErr  error
	}{
		{"same start", "10:00", 30, ErrSlotTaken},
		{"starts inside", "10:15", 30, ErrSlotTaken},
		{"covers existing", "09:45", 60, ErrSlotTaken},
		{"ends exactly at start", "09:30", 30, nil},
		{"starts exactly at end", "10:30", 30, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := db.CreateAppointmentWithLock(ctx, testAppointment(1, date, tc.start), tc.duration)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCreateAppointmentWithLock_ScopedByBarberAndDate(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	seedTestCatalog(t, db)

	ctx := context.Background()
	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.Local)

	require.NoError(t, db.CreateAppointmentWithLock(ctx, testAppointment(1, date, "10:00"), 30))

	// Another barber, same slot.
	require.NoError(t, db.CreateAppointmentWithLock(ctx, testAppointment(2, date, "10:00"), 30))

	// Same barber, next day.
	require.NoError(t, db.CreateAppointmentWithLock(ctx, testAppointment(1, date.AddDate(0, 0, 1), "10:00"), 30))
}

func TestCreateAppointmentWithLock_CancelledFreesSlot(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	seedTestCatalog(t, db)

	ctx := context.Background()
	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.Local)

	first := testAppointment(1, date, "10:00")
	require.NoError(t, db.CreateAppointmentWithLock(ctx, first, 30))

	err := db.CreateAppointmentWithLock(ctx, testAppointment(1, date, "10:00"), 30)
	require.ErrorIs(t, err, ErrSlotTaken)

	require.NoError(t, db.UpdateAppointmentStatusWithVersion(ctx, first.ID, first.Version, models.StatusCancelled))

	err = db.CreateAppointmentWithLock(ctx, testAppointment(1, date, "10:00"), 30)
	assert.NoError(t, err)
}

func TestCreateAppointmentWithLock_BundleDuration(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	seedTestCatalog(t, db)

	ctx := context.Background()
	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.Local)

	// Haircut plus two beard trims: 30 + 2*15 = 60 minutes.
	bundle := testAppointment(1, date, "10:00")
	bundle.ServiceID = 0
	bundle.Services = models.ServiceLines{
		{ServiceID: 10, Name: "Haircut", UnitPriceCents: 6000, UnitDurationMinutes: 30, Quantity: 1},
		{ServiceID: 11, Name: "Beard Trim", UnitPriceCents: 4000, UnitDurationMinutes: 15, Quantity: 2},
	}
	require.NoError(t, db.CreateAppointmentWithLock(ctx, bundle, bundle.Services.TotalDurationMinutes()))

	// The bundle occupies until 11:00, so 10:45 conflicts.
	err := db.CreateAppointmentWithLock(ctx, testAppointment(1, date, "10:45"), 15)
	assert.ErrorIs(t, err, ErrSlotTaken)

	err = db.CreateAppointmentWithLock(ctx, testAppointment(1, date, "11:00"), 15)
	assert.NoError(t, err)

	loaded, err := db.GetAppointment(ctx, bundle.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Services, 2)
	assert.Equal(t, "Haircut", loaded.Services[0].Name)
	assert.Equal(t, 2, loaded.Services[1].Quantity)
	assert.Equal(t, 60, loaded.Services.TotalDurationMinutes())
}

func TestCreateAppointmentWithLock_InvalidInput(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	seedTestCatalog(t, db)

	ctx := context.Background()
	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.Local)

	err := db.CreateAppointmentWithLock(ctx, testAppointment(1, date, "10:00"), 0)
	assert.ErrorIs(t, err, ErrInvalidTimeRange)

	err = db.CreateAppointmentWithLock(ctx, testAppointment(1, date, "ten"), 30)
	assert.ErrorIs(t, err, ErrInvalidTimeRange)
}

func TestGetAppointmentsByDate(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	seedTestCatalog(t, db)

	ctx := context.Background()
	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.Local)

	require.NoError(t, db.CreateAppointmentWithLock(ctx, testAppointment(1, date, "11:00"), 30))
	require.NoError(t, db.CreateAppointmentWithLock(ctx, testAppointment(1, date, "09:00"), 30))

	cancelled := testAppointment(1, date, "14:00")
	require.NoError(t, db.CreateAppointmentWithLock(ctx, cancelled, 30))
	require.NoError(t, db.UpdateAppointmentStatusWithVersion(ctx, cancelled.ID, cancelled.Version, models.StatusCancelled))

	// All statuses come back, ordered by start time.
	appointments, err := db.GetAppointmentsByDate(ctx, 1, date)
	require.NoError(t, err)
	require.Len(t, appointments, 3)
	assert.Equal(t, "09:00", appointments[0].StartTime)
	assert.Equal(t, "11:00", appointments[1].StartTime)
	assert.Equal(t, models.StatusCancelled, appointments[2].Status)
}

func TestGetAppointmentByReference(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	seedTestCatalog(t, db)

	ctx := context.Background()
	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.Local)

	appt := testAppointment(1, date, "10:00")
	require.NoError(t, db.CreateAppointmentWithLock(ctx, appt, 30))

	loaded, err := db.GetAppointmentByReference(ctx, appt.Reference)
	require.NoError(t, err)
	assert.Equal(t, appt.ID, loaded.ID)

	_, err = db.GetAppointmentByReference(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateAppointmentStatusWithVersion(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	seedTestCatalog(t, db)

	ctx := context.Background()
	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.Local)

	appt := testAppointment(1, date, "10:00")
	require.NoError(t, db.CreateAppointmentWithLock(ctx, appt, 30))

	err := db.UpdateAppointmentStatusWithVersion(ctx, appt.ID, 1, models.StatusCompleted)
	require.NoError(t, err)

	loaded, err := db.GetAppointment(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, loaded.Status)
	assert.Equal(t, int64(2), loaded.Version)

	// A second update against the stale version loses the race.
	err = db.UpdateAppointmentStatusWithVersion(ctx, appt.ID, 1, models.StatusCancelled)
	assert.ErrorIs(t, err, ErrConcurrentModification)
}

func TestGetDailyAppointments(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	seedTestCatalog(t, db)

	ctx := context.Background()
	monday := time.Date(2025, 6, 2, 0, 0, 0, 0, time.Local)
	tuesday := monday.AddDate(0, 0, 1)

	require.NoError(t, db.CreateAppointmentWithLock(ctx, testAppointment(1, monday, "10:00"), 30))
	require.NoError(t, db.CreateAppointmentWithLock(ctx, testAppointment(2, monday, "10:00"), 30))
	require.NoError(t, db.CreateAppointmentWithLock(ctx, testAppointment(1, tuesday, "12:00"), 30))

	daily, err := db.GetDailyAppointments(ctx, monday, tuesday)
	require.NoError(t, err)
	require.Len(t, daily, 2)
	assert.Len(t, daily["2025-06-02"], 2)
	assert.Len(t, daily["2025-06-03"], 1)

	// Out of range days are excluded.
	daily, err = db.GetDailyAppointments(ctx, monday, monday)
	require.NoError(t, err)
	require.Len(t, daily, 1)
}
