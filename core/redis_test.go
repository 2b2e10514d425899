package core

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestWhitelistCache(t *testing.T) (*RedisWhitelistCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	logger := zaptest.NewLogger(t).Sugar()
	cache := NewRedisWhitelistCache(mr.Addr(), "", 0, 10, 16, time.Minute, logger)
	t.Cleanup(func() { _ = cache.Close() })

	require.NoError(t, cache.Ping(context.Background()))
	return cache, mr
}

func TestRedisWhitelistCache_MissingKeyIsEmpty(t *testing.T) {
	cache, _ := newTestWhitelistCache(t)

	entries, err := cache.Entries(context.Background(), IndicatorIP)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRedisWhitelistCache_SetAndGetEntries(t *testing.T) {
	cache, _ := newTestWhitelistCache(t)
	ctx := context.Background()

	require.NoError(t, cache.SetEntries(ctx, IndicatorIP, []string{"10.0.0.1", "10.0.0.2"}))

	entries, err := cache.Entries(ctx, IndicatorIP)
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, entries)
}

func TestRedisWhitelistCache_CanonicalizesEntries(t *testing.T) {
	cache, mr := newTestWhitelistCache(t)
	ctx := context.Background()

	// Raw list with duplicates, empties and a wildcard domain, as another
	// writer might have stored it
	raw, err := json.Marshal([]string{"*.example.com", "example.com", "", "other.example.org"})
	require.NoError(t, err)
	mr.Set("whitelist:domain", string(raw))

	entries, err := cache.Entries(ctx, IndicatorDomain)
	require.NoError(t, err)
	assert.Equal(t, []string{"example.com", "other.example.org"}, entries)
}

func TestRedisWhitelistCache_LocalCacheServesStaleUntilInvalidated(t *testing.T) {
	cache, mr := newTestWhitelistCache(t)
	ctx := context.Background()

	require.NoError(t, cache.SetEntries(ctx, IndicatorIP, []string{"10.0.0.1"}))
	first, err := cache.Entries(ctx, IndicatorIP)
	require.NoError(t, err)
	require.Equal(t, []string{"10.0.0.1"}, first)

	// Change the value behind the local cache's back
	raw, err := json.Marshal([]string{"10.9.9.9"})
	require.NoError(t, err)
	mr.Set("whitelist:ip", string(raw))

	stale, err := cache.Entries(ctx, IndicatorIP)
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.1"}, stale)

	cache.Invalidate(IndicatorIP)
	fresh, err := cache.Entries(ctx, IndicatorIP)
	require.NoError(t, err)
	assert.Equal(t, []string{"10.9.9.9"}, fresh)
}

func TestRedisWhitelistCache_SetEntriesInvalidatesLocal(t *testing.T) {
	cache, _ := newTestWhitelistCache(t)
	ctx := context.Background()

	require.NoError(t, cache.SetEntries(ctx, IndicatorHash, []string{"d41d8cd98f00b204e9800998ecf8427e"}))
	_, err := cache.Entries(ctx, IndicatorHash)
	require.NoError(t, err)

	require.NoError(t, cache.SetEntries(ctx, IndicatorHash, []string{"900150983cd24fb0d6963f7d28e17f72"}))
	entries, err := cache.Entries(ctx, IndicatorHash)
	require.NoError(t, err)
	assert.Equal(t, []string{"900150983cd24fb0d6963f7d28e17f72"}, entries)
}

func TestRedisWhitelistCache_MalformedPayload(t *testing.T) {
	cache, mr := newTestWhitelistCache(t)

	mr.Set("whitelist:url", "{not json")
	_, err := cache.Entries(context.Background(), IndicatorURL)
	assert.Error(t, err)
}
