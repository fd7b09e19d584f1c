// Package cache provides the Redis-backed report cache.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"tillpoint/pkg/logger"
)

// ReportCache implements reports.Cache on top of Redis. Keys are scoped
// by store so invalidation after a sale mutation only touches that store.
type ReportCache struct {
	client *redis.Client
}

// NewReportCache creates a Redis report cache.
func NewReportCache(client *redis.Client) *ReportCache {
	return &ReportCache{client: client}
}

// Get loads a cached report into dest. A miss is not an error.
func (c *ReportCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get: %w", err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		// A corrupt entry is treated as a miss so the report is rebuilt.
		logger.Warn(ctx, "dropping unreadable cache entry", "key", key, "error", err)
		c.client.Del(ctx, key)
		return false, nil
	}
	return true, nil
}

// Set stores a report with a TTL.
func (c *ReportCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal: %w", err)
	}
	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Invalidate removes all cached reports for a store.
func (c *ReportCache) Invalidate(ctx context.Context, storeID string) error {
	pattern := fmt.Sprintf("reports:sales:%s:*", storeID)

	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return fmt.Errorf("cache scan: %w", err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("cache del: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}
