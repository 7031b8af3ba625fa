// Package cache provides the Redis-backed view cache used by read-heavy
// endpoints, plus its invalidation hooks.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"tokopos/pkg/logger"
)

const (
	catalogPrefix = "views:catalog:"
	reportsPrefix = "views:reports:"
)

// Views caches rendered catalog and report payloads in Redis and
// invalidates them after ledger or catalog mutations.
type Views struct {
	client *redis.Client
	ttl    time.Duration
}

// NewViews creates a view cache. A zero ttl defaults to five minutes;
// invalidation is the primary freshness mechanism, the TTL is a
// backstop.
func NewViews(client *redis.Client, ttl time.Duration) *Views {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Views{client: client, ttl: ttl}
}

// GetJSON loads a cached payload into dest. ok is false on miss.
func (v *Views) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	data, err := v.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("cache decode %s: %w", key, err)
	}
	return true, nil
}

// SetJSON stores a payload under key with the configured TTL.
func (v *Views) SetJSON(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	if err := v.client.Set(ctx, key, data, v.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// CatalogKey builds a catalog view key.
func CatalogKey(suffix string) string { return catalogPrefix + suffix }

// ReportsKey builds a reports view key.
func ReportsKey(suffix string) string { return reportsPrefix + suffix }

// InvalidateCatalog drops every cached catalog view.
func (v *Views) InvalidateCatalog(ctx context.Context) error {
	return v.deleteByPrefix(ctx, catalogPrefix)
}

// InvalidateReports drops every cached report view.
func (v *Views) InvalidateReports(ctx context.Context) error {
	return v.deleteByPrefix(ctx, reportsPrefix)
}

// deleteByPrefix scans and deletes keys in batches. SCAN instead of
// KEYS so a large cache does not block Redis.
func (v *Views) deleteByPrefix(ctx context.Context, prefix string) error {
	iter := v.client.Scan(ctx, 0, prefix+"*", 100).Iterator()

	batch := make([]string, 0, 100)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := v.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("cache delete: %w", err)
		}
		batch = batch[:0]
		return nil
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) >= 100 {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("cache scan: %w", err)
	}
	if err := flush(); err != nil {
		return err
	}

	logger.Debug(ctx, "view cache invalidated", "prefix", prefix)
	return nil
}

// NoopViews satisfies the view cache contracts when no Redis is
// configured (development mode): every read is a miss, every write and
// invalidation a no-op.
type NoopViews struct{}

func (NoopViews) GetJSON(ctx context.Context, key string, dest any) (bool, error) { return false, nil }
func (NoopViews) SetJSON(ctx context.Context, key string, value any) error        { return nil }
func (NoopViews) InvalidateCatalog(ctx context.Context) error                     { return nil }
func (NoopViews) InvalidateReports(ctx context.Context) error                     { return nil }
