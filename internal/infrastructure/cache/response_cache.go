// Package cache provides a Redis-backed JSON response cache.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache errors.
var (
	// ErrCacheMiss is returned when no entry exists for the key.
	ErrCacheMiss = errors.New("cache miss")
)

const (
	defaultKeyPrefix = "api_cache:"
	defaultTTL       = 5 * time.Minute

	hitsCounterKey   = "stats:hits"
	missesCounterKey = "stats:misses"
)

// ResponseCache stores serialized API responses in Redis with a TTL.
// Hit and miss counters are kept in Redis alongside the entries so stats
// survive process restarts.
type ResponseCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
	logger    *slog.Logger
}

// ResponseCacheConfig contains configuration for ResponseCache.
type ResponseCacheConfig struct {
	Client    *redis.Client
	KeyPrefix string
	TTL       time.Duration
	Logger    *slog.Logger
}

// NewResponseCache creates a new Redis-based response cache.
func NewResponseCache(cfg ResponseCacheConfig) *ResponseCache {
	keyPrefix := cfg.KeyPrefix
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &ResponseCache{
		client:    cfg.Client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
		logger:    logger,
	}
}

// Key builds a deterministic cache key from a namespace and the request
// parameters that shape the response. Identical inputs always produce the
// same key; any differing parameter produces a different one.
func (c *ResponseCache) Key(namespace string, params map[string]string) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(params[name])
		b.WriteByte(';')
	}

	sum := sha256.Sum256([]byte(b.String()))
	return fmt.Sprintf("%s%s:%s", c.keyPrefix, namespace, hex.EncodeToString(sum[:]))
}

// Get loads a cached value into dest. Returns ErrCacheMiss when absent.
func (c *ResponseCache) Get(ctx context.Context, key string, dest any) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.countMiss(ctx)
			return ErrCacheMiss
		}
		return fmt.Errorf("failed to read cache entry: %w", err)
	}

	if unmarshalErr := json.Unmarshal(data, dest); unmarshalErr != nil {
		// A corrupt entry behaves like a miss; it will be overwritten.
		c.countMiss(ctx)
		return ErrCacheMiss
	}

	c.countHit(ctx)
	return nil
}

// Set stores a value under the key with the configured TTL.
func (c *ResponseCache) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to serialize cache entry: %w", err)
	}

	if setErr := c.client.Set(ctx, key, data, c.ttl).Err(); setErr != nil {
		return fmt.Errorf("failed to write cache entry: %w", setErr)
	}

	return nil
}

// Invalidate removes all entries in a namespace.
func (c *ResponseCache) Invalidate(ctx context.Context, namespace string) (int64, error) {
	pattern := fmt.Sprintf("%s%s:*", c.keyPrefix, namespace)

	var removed int64
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return removed, fmt.Errorf("failed to delete cache entry: %w", err)
		}
		removed++
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("failed to scan cache keys: %w", err)
	}

	return removed, nil
}

// Stats reports hit/miss counters and the number of live cache entries.
type Stats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Entries int64 `json:"entries"`
}

// Stats returns current cache statistics.
func (c *ResponseCache) Stats(ctx context.Context) (Stats, error) {
	var stats Stats

	hits, err := c.client.Get(ctx, c.keyPrefix+hitsCounterKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return stats, fmt.Errorf("failed to read hit counter: %w", err)
	}
	misses, err := c.client.Get(ctx, c.keyPrefix+missesCounterKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return stats, fmt.Errorf("failed to read miss counter: %w", err)
	}

	var entries int64
	iter := c.client.Scan(ctx, 0, c.keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if !strings.HasPrefix(iter.Val(), c.keyPrefix+"stats:") {
			entries++
		}
	}
	if iterErr := iter.Err(); iterErr != nil {
		return stats, fmt.Errorf("failed to scan cache keys: %w", iterErr)
	}

	stats.Hits = hits
	stats.Misses = misses
	stats.Entries = entries
	return stats, nil
}

// countHit increments the hit counter. Counter failures are logged, not returned.
func (c *ResponseCache) countHit(ctx context.Context) {
	if err := c.client.Incr(ctx, c.keyPrefix+hitsCounterKey).Err(); err != nil {
		c.logger.DebugContext(ctx, "failed to increment cache hit counter",
			slog.String("error", err.Error()),
		)
	}
}

// countMiss increments the miss counter. Counter failures are logged, not returned.
func (c *ResponseCache) countMiss(ctx context.Context) {
	if err := c.client.Incr(ctx, c.keyPrefix+missesCounterKey).Err(); err != nil {
		c.logger.DebugContext(ctx, "failed to increment cache miss counter",
			slog.String("error", err.Error()),
		)
	}
}
