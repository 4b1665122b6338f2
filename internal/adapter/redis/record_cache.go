// Package redis caches verification lookups in front of PostgreSQL.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/qrgetsemani-cmyk/QrGetsemani/internal/adapter/metrics"
	"github.com/qrgetsemani-cmyk/QrGetsemani/internal/domain"
)

const (
	recordCachePrefix = "record_cache:"

	// Records are immutable after creation, so cached entries never go
	// stale. The TTL only bounds memory for codes that stop being scanned.
	recordCacheTTL = 1 * time.Hour
)

// NewClient connects to Redis and installs the circuit-breaker hook.
func NewClient(ctx context.Context, redisURL string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := goredis.NewClient(opts)
	client.AddHook(NewCircuitBreakerHook())

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}

// RecordCache implements domain.RecordCache on Redis. All failures are
// best-effort: a cache error degrades to a PostgreSQL lookup, never to a
// failed request.
type RecordCache struct {
	rdb goredis.Cmdable
}

func NewRecordCache(rdb goredis.Cmdable) *RecordCache {
	return &RecordCache{rdb: rdb}
}

func (c *RecordCache) Get(ctx context.Context, key string) (*domain.Record, bool) {
	data, err := c.rdb.Get(ctx, recordCachePrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			slog.Warn("Redis record cache GET failed, falling through to PostgreSQL", "error", err)
		}
		metrics.RecordCacheMisses.Inc()
		return nil, false
	}

	var record domain.Record
	if err := json.Unmarshal(data, &record); err != nil {
		slog.Warn("Failed to unmarshal cached record, falling through to PostgreSQL", "error", err)
		metrics.RecordCacheMisses.Inc()
		return nil, false
	}

	metrics.RecordCacheHits.Inc()
	return &record, true
}

func (c *RecordCache) Put(ctx context.Context, key string, record *domain.Record) {
	encoded, err := json.Marshal(record)
	if err != nil {
		slog.Warn("Failed to marshal record for cache", "record_id", record.ID, "error", err)
		return
	}

	if err := c.rdb.Set(ctx, recordCachePrefix+key, encoded, recordCacheTTL).Err(); err != nil {
		slog.Warn("Failed to populate Redis record cache", "record_id", record.ID, "error", err)
	}
}
