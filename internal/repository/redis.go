package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Joao-Gabriel-Santos/autobarber-sub000/internal/config"

	"github.com/redis/go-redis/v9"
)

// RedisSlotCache keeps computed slot lists in redis, keyed by barber,
// date and requested duration. Entries are short-lived; bookings
// invalidate the whole day.
type RedisSlotCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func NewRedisSlotCache(client *redis.Client, ttl time.Duration) *RedisSlotCache {
	return &RedisSlotCache{
		client: client,
		ttl:    ttl,
	}
}

func slotKey(barberID int64, dateKey string, durationMinutes int) string {
	return fmt.Sprintf("slots:%d:%s:%d", barberID, dateKey, durationMinutes)
}

func (r *RedisSlotCache) GetSlots(ctx context.Context, barberID int64, dateKey string, durationMinutes int) ([]string, bool, error) {
	if r.client == nil {
		return nil, false, fmt.Errorf("redis client is nil")
	}
	val, err := r.client.Get(ctx, slotKey(barberID, dateKey, durationMinutes)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get slots from redis: %w", err)
	}

	var slots []string
	if err := json.Unmarshal([]byte(val), &slots); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal slots: %w", err)
	}
	return slots, true, nil
}

func (r *RedisSlotCache) SetSlots(ctx context.Context, barberID int64, dateKey string, durationMinutes int, slots []string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	data, err := json.Marshal(slots)
	if err != nil {
		return fmt.Errorf("failed to marshal slots: %w", err)
	}
	if err := r.client.Set(ctx, slotKey(barberID, dateKey, durationMinutes), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set slots in redis: %w", err)
	}
	return nil
}

// InvalidateDay drops every cached duration for the barber's day.
// The keyspace per day is tiny, so KEYS is fine here.
func (r *RedisSlotCache) InvalidateDay(ctx context.Context, barberID int64, dateKey string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	pattern := fmt.Sprintf("slots:%d:%s:*", barberID, dateKey)
	keys, err := r.client.Keys(ctx, pattern).Result()
	if err != nil {
		return fmt.Errorf("failed to list slot keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete slot keys: %w", err)
	}
	return nil
}

func (r *RedisSlotCache) Ping(ctx context.Context) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if _, err := r.client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}
	return nil
}

func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
