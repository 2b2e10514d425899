package core

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"aegis/metrics"
)

// whitelistKeyPrefix namespaces whitelist entry lists in Redis
const whitelistKeyPrefix = "whitelist:"

// RedisWhitelistCache serves whitelist entry lists from Redis with an
// in-process expiring LRU in front of it. Entries are deduplicated and
// empty-filtered at load so consumers always see canonical lists.
type RedisWhitelistCache struct {
	client *redis.Client
	local  *expirable.LRU[string, []string]
	logger *zap.SugaredLogger
}

// NewRedisWhitelistCache creates a whitelist cache. localSize bounds the
// in-process LRU, localTTL its staleness window.
func NewRedisWhitelistCache(addr, password string, db, poolSize, localSize int, localTTL time.Duration, logger *zap.SugaredLogger) *RedisWhitelistCache {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if localSize <= 0 {
		localSize = 16
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
		PoolSize: poolSize,
	})

	return &RedisWhitelistCache{
		client: client,
		local:  expirable.NewLRU[string, []string](localSize, nil, localTTL),
		logger: logger,
	}
}

// Ping tests the Redis connection
func (c *RedisWhitelistCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *RedisWhitelistCache) Close() error {
	return c.client.Close()
}

// whitelistKey builds the Redis key for one indicator category
func whitelistKey(category IndicatorCategory) string {
	return whitelistKeyPrefix + string(category)
}

// Entries returns the whitelist entries for a category. A missing key is an
// empty list, not an error.
func (c *RedisWhitelistCache) Entries(ctx context.Context, category IndicatorCategory) ([]string, error) {
	key := whitelistKey(category)

	if entries, ok := c.local.Get(key); ok {
		metrics.CacheHits.WithLabelValues("whitelist_local").Inc()
		return entries, nil
	}
	metrics.CacheMisses.WithLabelValues("whitelist_local").Inc()

	data, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			metrics.CacheMisses.WithLabelValues("whitelist_redis").Inc()
			c.local.Add(key, nil)
			return nil, nil
		}
		c.logger.Errorf("Failed to load whitelist entries for %s: %v", category, err)
		metrics.CacheErrors.WithLabelValues("whitelist_redis", "get").Inc()
		return nil, err
	}

	var raw []string
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		c.logger.Errorf("Failed to decode whitelist entries for %s: %v", category, err)
		metrics.CacheErrors.WithLabelValues("whitelist_redis", "unmarshal").Inc()
		return nil, err
	}

	entries := canonicalizeEntries(category, raw)
	metrics.CacheHits.WithLabelValues("whitelist_redis").Inc()
	c.local.Add(key, entries)
	return entries, nil
}

// SetEntries replaces the whitelist of one category and invalidates the
// local cache for it.
func (c *RedisWhitelistCache) SetEntries(ctx context.Context, category IndicatorCategory, entries []string) error {
	entries = canonicalizeEntries(category, entries)
	data, err := json.Marshal(entries)
	if err != nil {
		metrics.CacheErrors.WithLabelValues("whitelist_redis", "marshal").Inc()
		return err
	}

	// 10MB guard against runaway lists
	const maxSize = 10 * 1024 * 1024
	if len(data) > maxSize {
		metrics.CacheErrors.WithLabelValues("whitelist_redis", "size_limit").Inc()
		return fmt.Errorf("whitelist for %s is %d bytes, exceeds %d byte limit", category, len(data), maxSize)
	}

	key := whitelistKey(category)
	if err := c.client.Set(ctx, key, data, 0).Err(); err != nil {
		metrics.CacheErrors.WithLabelValues("whitelist_redis", "set").Inc()
		return err
	}
	c.local.Remove(key)
	return nil
}

// Invalidate drops the local cache for a category
func (c *RedisWhitelistCache) Invalidate(category IndicatorCategory) {
	c.local.Remove(whitelistKey(category))
}

// canonicalizeEntries dedups, drops empties and applies the same
// normalization used for extracted indicators.
func canonicalizeEntries(category IndicatorCategory, raw []string) []string {
	set := NewIndicatorSet()
	set.AddAll(category, raw...)
	return set.Values(category)
}
