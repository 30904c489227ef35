package schedule

import "time"

// FilterFuture drops slots starting at or before now's wall-clock
// minute. Same-day cutoff is presentation policy, so "now" is always an
// explicit parameter; callers apply the filter only when the queried
// date is today.
func FilterFuture(slots []string, now time.Time) []string {
	cutoff := now.Hour()*60 + now.Minute()

	var out []string
	for _, s := range slots {
		minute, err := ParseClock(s)
		if err != nil {
			continue
		}
		if minute > cutoff {
			out = append(out, s)
		}
	}
	return out
}
