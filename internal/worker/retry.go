package worker

import (
	"math"
	"time"
)

// RetryPolicy shapes how failed sync tasks are rescheduled: the wait
// grows by BackoffFactor with each attempt, starting at InitialDelay
// and capped at MaxDelay. Once MaxRetries is exhausted the task is
// parked on the dead-letter list instead of rescheduled.
type RetryPolicy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// NextDelay computes the wait before the given attempt, counted from 1.
// Zero-valued policy fields fall back to a one-second base and doubling.
func (p RetryPolicy) NextDelay(attempt int) time.Duration {
	base := p.InitialDelay
	if base <= 0 {
		base = time.Second
	}
	factor := p.BackoffFactor
	if factor <= 0 {
		factor = 2
	}
	if attempt < 1 {
		attempt = 1
	}

	next := time.Duration(float64(base) * math.Pow(factor, float64(attempt-1)))
	if p.MaxDelay > 0 && next > p.MaxDelay {
		next = p.MaxDelay
	}
	if next <= 0 {
		// Duration overflow on an extreme attempt count.
		next = base
	}
	return next
}
