package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/CoderAK123/smart-clinic-management/pkg/errors"
)

const keyPrefix = "availability:"

// AvailabilityCache stores computed free-slot lists per doctor and day in
// Redis. Entries are invalidated whenever a booking for the doctor changes,
// so the TTL only bounds staleness after missed invalidations.
type AvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewAvailabilityCache creates a Redis-backed availability cache.
func NewAvailabilityCache(client *redis.Client, ttl time.Duration) *AvailabilityCache {
	return &AvailabilityCache{
		client: client,
		ttl:    ttl,
	}
}

func availabilityKey(doctorID string, date time.Time) string {
	return keyPrefix + doctorID + ":" + date.Format("2006-01-02")
}

// Get retrieves the cached free slots for a doctor on a given date.
func (c *AvailabilityCache) Get(ctx context.Context, doctorID string, date time.Time) ([]string, error) {
	data, err := c.client.Get(ctx, availabilityKey(doctorID, date)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("redis get availability: %w", err)
	}

	var slots []string
	if err := json.Unmarshal(data, &slots); err != nil {
		return nil, fmt.Errorf("unmarshal availability: %w", err)
	}

	return slots, nil
}

// Set stores the free slots for a doctor on a given date.
func (c *AvailabilityCache) Set(ctx context.Context, doctorID string, date time.Time, slots []string) error {
	data, err := json.Marshal(slots)
	if err != nil {
		return fmt.Errorf("marshal availability: %w", err)
	}

	if err := c.client.Set(ctx, availabilityKey(doctorID, date), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set availability: %w", err)
	}

	return nil
}

// Invalidate drops the cached slots for a doctor on a given date.
func (c *AvailabilityCache) Invalidate(ctx context.Context, doctorID string, date time.Time) error {
	if err := c.client.Del(ctx, availabilityKey(doctorID, date)).Err(); err != nil {
		return fmt.Errorf("redis del availability: %w", err)
	}

	return nil
}

// InvalidateDoctor drops every cached date for a doctor. Used when the
// doctor's declared slots change or the doctor is removed.
func (c *AvailabilityCache) InvalidateDoctor(ctx context.Context, doctorID string) error {
	iter := c.client.Scan(ctx, 0, keyPrefix+doctorID+":*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("redis del availability: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan availability: %w", err)
	}

	return nil
}
