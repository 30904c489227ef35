package repository

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemorySlotCache is the in-process fallback used when redis is down
// or not configured.
type MemorySlotCache struct {
	entries sync.Map
	ttl     time.Duration
}

type slotEntry struct {
	slots     []string
	expiresAt time.Time
}

func NewMemorySlotCache(ttl time.Duration) *MemorySlotCache {
	return &MemorySlotCache{ttl: ttl}
}

func (m *MemorySlotCache) GetSlots(_ context.Context, barberID int64, dateKey string, durationMinutes int) ([]string, bool, error) {
	val, ok := m.entries.Load(slotKey(barberID, dateKey, durationMinutes))
	if !ok {
		return nil, false, nil
	}
	entry := val.(*slotEntry)
	if time.Now().After(entry.expiresAt) {
		m.entries.Delete(slotKey(barberID, dateKey, durationMinutes))
		return nil, false, nil
	}
	return entry.slots, true, nil
}

func (m *MemorySlotCache) SetSlots(_ context.Context, barberID int64, dateKey string, durationMinutes int, slots []string) error {
	m.entries.Store(slotKey(barberID, dateKey, durationMinutes), &slotEntry{
		slots:     slots,
		expiresAt: time.Now().Add(m.ttl),
	})
	return nil
}

func (m *MemorySlotCache) InvalidateDay(_ context.Context, barberID int64, dateKey string) error {
	prefix := slotKey(barberID, dateKey, 0)
	prefix = prefix[:strings.LastIndex(prefix, ":")+1]
	m.entries.Range(func(key, _ interface{}) bool {
		if strings.HasPrefix(key.(string), prefix) {
			m.entries.Delete(key)
		}
		return true
	})
	return nil
}

func (m *MemorySlotCache) Ping(context.Context) error {
	return nil
}
