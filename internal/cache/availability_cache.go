package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const availableEquipmentKey = "equipment:available"

// EquipmentAvailabilityCache keeps a short-lived snapshot of the
// available-equipment view in Redis. Every failure degrades to a cache
// miss; the database stays authoritative.
type EquipmentAvailabilityCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewEquipmentAvailabilityCache creates a cache with the given snapshot TTL.
func NewEquipmentAvailabilityCache(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *EquipmentAvailabilityCache {
	return &EquipmentAvailabilityCache{rdb: rdb, ttl: ttl, logger: logger}
}

// Get returns the cached snapshot, or ok=false on a miss or error.
func (c *EquipmentAvailabilityCache) Get(ctx context.Context) ([]byte, bool) {
	payload, err := c.rdb.Get(ctx, availableEquipmentKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("availability cache read failed", zap.Error(err))
		}
		return nil, false
	}
	return payload, true
}

// Set stores a fresh snapshot.
func (c *EquipmentAvailabilityCache) Set(ctx context.Context, payload []byte) {
	if err := c.rdb.Set(ctx, availableEquipmentKey, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("availability cache write failed", zap.Error(err))
	}
}

// Invalidate drops the snapshot. Called whenever a lifecycle side effect
// changes an equipment's availability flag.
func (c *EquipmentAvailabilityCache) Invalidate(ctx context.Context) {
	if err := c.rdb.Del(ctx, availableEquipmentKey).Err(); err != nil {
		c.logger.Warn("availability cache invalidation failed", zap.Error(err))
	}
}
