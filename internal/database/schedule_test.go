package database

import (
	"context"
	"testing"

	"github.com/Joao-Gabriel-Santos/autobarber-sub000/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertWorkingHour(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	seedTestCatalog(t, db)

	ctx := context.Background()

	err := db.UpsertWorkingHour(ctx, &models.WorkingHour{
		BarberID: 1, Weekday: 1, StartTime: "09:00", EndTime: "18:00", IsActive: true,
	})
	require.NoError(t, err)

	wh, err := db.GetWorkingHour(ctx, 1, 1)
	require.NoError(t, err)
	require.NotNil(t, wh)
	assert.Equal(t, "09:00", wh.StartTime)
	assert.Equal(t, "18:00", wh.EndTime)
	assert.True(t, wh.IsActive)

	// Upsert replaces the window for the same weekday.
	err = db.UpsertWorkingHour(ctx, &models.WorkingHour{
		BarberID: 1, Weekday: 1, StartTime: "10:00", EndTime: "16:00", IsActive: true,
	})
	require.NoError(t, err)

	wh, err = db.GetWorkingHour(ctx, 1, 1)
	require.NoError(t, err)
	require.NotNil(t, wh)
	assert.Equal(t, "10:00", wh.StartTime)

	hours, err := db.ListWorkingHours(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, hours, 1)
}

func TestUpsertWorkingHour_InvalidRange(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	cases := []struct {
		name  string
		start string
		end   string
	}{
		{"start after end", "18:00", "09:00"},
		{"start equals end", "09:00", "09:00"},
		{"malformed start", "9am", "18:00"},
		{"malformed end", "09:00", "25:00"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := db.UpsertWorkingHour(ctx, &models.WorkingHour{
				BarberID: 1, Weekday: 1, StartTime: tc.start, EndTime: tc.end, IsActive: true,
			})
			assert.ErrorIs(t, err, ErrInvalidTimeRange)
		})
	}
}

func TestGetWorkingHour_MissingIsNil(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	wh, err := db.GetWorkingHour(context.Background(), 1, 0)
	require.NoError(t, err)
	assert.Nil(t, wh)
}

func TestSetWorkingHourActive(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	err := db.SetWorkingHourActive(ctx, 1, 1, false)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, db.UpsertWorkingHour(ctx, &models.WorkingHour{
		BarberID: 1, Weekday: 1, StartTime: "09:00", EndTime: "18:00", IsActive: true,
	}))

	require.NoError(t, db.SetWorkingHourActive(ctx, 1, 1, false))

	wh, err := db.GetWorkingHour(ctx, 1, 1)
	require.NoError(t, err)
	require.NotNil(t, wh)
	assert.False(t, wh.IsActive)
}

func TestBreaks_CreateDeleteList(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	lunch := &models.Break{BarberID: 1, Weekday: 1, StartTime: "12:00", EndTime: "13:00", Label: "lunch"}
	require.NoError(t, db.CreateBreak(ctx, lunch))
	assert.NotZero(t, lunch.ID)

	cleanup := &models.Break{BarberID: 1, Weekday: 1, StartTime: "17:00", EndTime: "17:30"}
	require.NoError(t, db.CreateBreak(ctx, cleanup))

	otherDay := &models.Break{BarberID: 1, Weekday: 3, StartTime: "12:00", EndTime: "12:30"}
	require.NoError(t, db.CreateBreak(ctx, otherDay))

	monday, err := db.GetBreaks(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, monday, 2)
	assert.Equal(t, "lunch", monday[0].Label)
	assert.Equal(t, "", monday[1].Label)

	all, err := db.ListBreaks(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	err = db.CreateBreak(ctx, &models.Break{BarberID: 1, Weekday: 1, StartTime: "14:00", EndTime: "13:00"})
	assert.ErrorIs(t, err, ErrInvalidTimeRange)

	require.NoError(t, db.DeleteBreak(ctx, 1, lunch.ID))
	monday, err = db.GetBreaks(ctx, 1, 1)
	require.NoError(t, err)
	assert.Len(t, monday, 1)

	// Deleting with the wrong owner does not touch the row.
	err = db.DeleteBreak(ctx, 2, cleanup.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCopyDaySchedule(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	require.NoError(t, db.UpsertWorkingHour(ctx, &models.WorkingHour{
		BarberID: 1, Weekday: 1, StartTime: "09:00", EndTime: "18:00", IsActive: true,
	}))
	require.NoError(t, db.CreateBreak(ctx, &models.Break{
		BarberID: 1, Weekday: 1, StartTime: "12:00", EndTime: "13:00", Label: "lunch",
	}))

	// Tuesday already has its own schedule that the copy must replace.
	require.NoError(t, db.UpsertWorkingHour(ctx, &models.WorkingHour{
		BarberID: 1, Weekday: 2, StartTime: "11:00", EndTime: "15:00", IsActive: true,
	}))
	require.NoError(t, db.CreateBreak(ctx, &models.Break{
		BarberID: 1, Weekday: 2, StartTime: "13:00", EndTime: "13:30",
	}))

	require.NoError(t, db.CopyDaySchedule(ctx, 1, 1, []int{2, 3}))

	for _, weekday := range []int{2, 3} {
		wh, err := db.GetWorkingHour(ctx, 1, weekday)
		require.NoError(t, err)
		require.NotNil(t, wh)
		assert.Equal(t, "09:00", wh.StartTime)
		assert.Equal(t, "18:00", wh.EndTime)

		breaks, err := db.GetBreaks(ctx, 1, weekday)
		require.NoError(t, err)
		require.Len(t, breaks, 1)
		assert.Equal(t, "lunch", breaks[0].Label)
	}

	// Source day is untouched and self-copy is ignored.
	require.NoError(t, db.CopyDaySchedule(ctx, 1, 1, []int{1}))
	monday, err := db.GetBreaks(ctx, 1, 1)
	require.NoError(t, err)
	assert.Len(t, monday, 1)
}

func TestCopyDaySchedule_MissingSource(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	err := db.CopyDaySchedule(context.Background(), 1, 5, []int{6})
	assert.ErrorIs(t, err, ErrNotFound)
}
