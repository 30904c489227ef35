package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Joao-Gabriel-Santos/autobarber-sub000/internal/domain"

	"github.com/rs/zerolog"
)

const recoveryInterval = time.Minute

// FailoverSlotCache serves from redis while it is healthy and degrades
// to the in-memory cache on error. It probes the primary again after
// recoveryInterval.
type FailoverSlotCache struct {
	primary  domain.SlotCache
	fallback domain.SlotCache
	logger   *zerolog.Logger

	isDown    atomic.Bool
	mu        sync.Mutex
	lastCheck time.Time
}

func NewFailoverSlotCache(primary, fallback domain.SlotCache, logger *zerolog.Logger) *FailoverSlotCache {
	return &FailoverSlotCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (f *FailoverSlotCache) markDown(err error) {
	f.logger.Error().Err(err).Msg("Primary slot cache failed, falling back to memory")
	f.isDown.Store(true)
	f.mu.Lock()
	f.lastCheck = time.Now()
	f.mu.Unlock()
}

// shouldProbe reports whether enough time has passed to retry the
// primary after a failure.
func (f *FailoverSlotCache) shouldProbe() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if time.Since(f.lastCheck) < recoveryInterval {
		return false
	}
	f.lastCheck = time.Now()
	return true
}

func (f *FailoverSlotCache) GetSlots(ctx context.Context, barberID int64, dateKey string, durationMinutes int) ([]string, bool, error) {
	if !f.isDown.Load() {
		slots, hit, err := f.primary.GetSlots(ctx, barberID, dateKey, durationMinutes)
		if err == nil {
			return slots, hit, nil
		}
		f.markDown(err)
	} else if f.shouldProbe() {
		slots, hit, err := f.primary.GetSlots(ctx, barberID, dateKey, durationMinutes)
		if err == nil {
			f.isDown.Store(false)
			f.logger.Info().Msg("Primary slot cache recovered")
			return slots, hit, nil
		}
	}
	return f.fallback.GetSlots(ctx, barberID, dateKey, durationMinutes)
}

func (f *FailoverSlotCache) SetSlots(ctx context.Context, barberID int64, dateKey string, durationMinutes int, slots []string) error {
	if !f.isDown.Load() {
		err := f.primary.SetSlots(ctx, barberID, dateKey, durationMinutes, slots)
		if err == nil {
			return nil
		}
		f.markDown(err)
	}
	return f.fallback.SetSlots(ctx, barberID, dateKey, durationMinutes, slots)
}

// InvalidateDay is fanned out to both caches: after a failover window
// closes, stale entries must not survive on either side.
func (f *FailoverSlotCache) InvalidateDay(ctx context.Context, barberID int64, dateKey string) error {
	var primaryErr error
	if !f.isDown.Load() {
		if primaryErr = f.primary.InvalidateDay(ctx, barberID, dateKey); primaryErr != nil {
			f.markDown(primaryErr)
		}
	}
	if err := f.fallback.InvalidateDay(ctx, barberID, dateKey); err != nil {
		return err
	}
	return primaryErr
}

func (f *FailoverSlotCache) Ping(ctx context.Context) error {
	return f.primary.Ping(ctx)
}
