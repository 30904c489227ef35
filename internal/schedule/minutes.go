package schedule

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Joao-Gabriel-Santos/autobarber-sub000/internal/models"
)

// ParseClock converts a wall-clock "HH:MM" string to minutes since
// local midnight.
func ParseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time format: %q", s)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q: %w", s, err)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minute in %q: %w", s, err)
	}

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("time out of range: %q", s)
	}
	return hour*60 + minute, nil
}

// FormatClock renders minutes since midnight as zero-padded "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// markInterval marks [start, start+duration) as occupied, clamped to the
// day. A non-positive duration occupies exactly the start minute so that
// malformed upstream data cannot black out the whole day.
func markInterval(occupied []bool, start, duration int) {
	if duration <= 0 {
		duration = 1
	}
	end := start + duration
	if start < 0 {
		start = 0
	}
	if end > models.MinutesPerDay {
		end = models.MinutesPerDay
	}
	for m := start; m < end; m++ {
		occupied[m] = true
	}
}

// intervalFree reports whether every minute of [start, start+duration)
// is unmarked.
func intervalFree(occupied []bool, start, duration int) bool {
	if start < 0 || duration <= 0 || start+duration > models.MinutesPerDay {
		return false
	}
	for m := start; m < start+duration; m++ {
		if occupied[m] {
			return false
		}
	}
	return true
}
