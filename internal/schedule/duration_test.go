package schedule

import (
	"context"
	"testing"

	"github.com/Joao-Gabriel-Santos/autobarber-sub000/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestResolveDuration_BundleWins(t *testing.T) {
	// Bundle totals beat any linked service duration.
	appt := &models.Appointment{
		ServiceID: 9,
		Services: models.ServiceLines{
			{ServiceID: 1, UnitDurationMinutes: 20, Quantity: 2},
			{ServiceID: 2, UnitDurationMinutes: 15, Quantity: 1},
		},
	}
	lookup := func(_ context.Context, _ int64) (int, bool) { return 120, true }

	assert.Equal(t, 55, ResolveDuration(context.Background(), appt, lookup))
}

func TestResolveDuration_MalformedBundleNotClamped(t *testing.T) {
	appt := &models.Appointment{
		Services: models.ServiceLines{
			{ServiceID: 1, UnitDurationMinutes: 0, Quantity: 3},
		},
	}
	assert.Equal(t, 0, ResolveDuration(context.Background(), appt, nil))

	appt.Services[0].UnitDurationMinutes = -10
	assert.Equal(t, -30, ResolveDuration(context.Background(), appt, nil))
}

func TestResolveDuration_LinkedServiceFallback(t *testing.T) {
	appt := &models.Appointment{ServiceID: 3}
	lookup := func(_ context.Context, id int64) (int, bool) {
		if id == 3 {
			return 45, true
		}
		return 0, false
	}

	assert.Equal(t, 45, ResolveDuration(context.Background(), appt, lookup))
}

func TestResolveDuration_Default(t *testing.T) {
	t.Run("NoServiceAtAll", func(t *testing.T) {
		appt := &models.Appointment{}
		assert.Equal(t, models.DefaultServiceDurationMinutes, ResolveDuration(context.Background(), appt, nil))
	})

	t.Run("DanglingServiceReference", func(t *testing.T) {
		appt := &models.Appointment{ServiceID: 42}
		lookup := func(_ context.Context, _ int64) (int, bool) { return 0, false }
		assert.Equal(t, models.DefaultServiceDurationMinutes, ResolveDuration(context.Background(), appt, lookup))
	})

	t.Run("NilLookup", func(t *testing.T) {
		appt := &models.Appointment{ServiceID: 42}
		assert.Equal(t, models.DefaultServiceDurationMinutes, ResolveDuration(context.Background(), appt, nil))
	})
}

func TestParseClock(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:05", 545, false},
		{"23:59", 1439, false},
		{" 12:30 ", 750, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"12", 0, true},
		{"ab:cd", 0, true},
		{"", 0, true},
	}

	for _, tc := range cases {
		got, err := ParseClock(tc.in)
		if tc.wantErr {
			assert.Error(t, err, "input %q", tc.in)
			continue
		}
		assert.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "00:00", FormatClock(0))
	assert.Equal(t, "09:05", FormatClock(545))
	assert.Equal(t, "17:30", FormatClock(1050))
}
