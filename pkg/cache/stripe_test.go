package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripeCacheGetMissOnEmpty(t *testing.T) {
	c := NewStripeCache(StripeCacheConfig{MaxCacheSize: 1024, TTL: time.Minute}, nil)
	_, ok := c.Get(100)
	assert.False(t, ok)
}

func TestStripeCachePutThenGet(t *testing.T) {
	c := NewStripeCache(StripeCacheConfig{MaxCacheSize: 1024, TTL: time.Minute}, nil)
	require.True(t, c.Put(100, []byte("stripe data")))

	got, ok := c.Get(100)
	require.True(t, ok)
	assert.Equal(t, []byte("stripe data"), got)
}

func TestStripeCacheGetExpiresAfterTTL(t *testing.T) {
	c := NewStripeCache(StripeCacheConfig{MaxCacheSize: 1024, TTL: 10 * time.Millisecond}, nil)
	require.True(t, c.Put(100, []byte("stripe data")))

	time.Sleep(30 * time.Millisecond)

	_, ok := c.Get(100)
	assert.False(t, ok)
}

func TestStripeCacheGetExtendsTTLOnHit(t *testing.T) {
	c := NewStripeCache(StripeCacheConfig{MaxCacheSize: 1024, TTL: 40 * time.Millisecond}, nil)
	require.True(t, c.Put(100, []byte("stripe data")))

	time.Sleep(25 * time.Millisecond)
	_, ok := c.Get(100) // refresh expiry
	require.True(t, ok)

	time.Sleep(25 * time.Millisecond)
	_, ok = c.Get(100) // would be expired without the refresh above
	assert.True(t, ok)
}

func TestStripeCachePutRejectsOversizedEntry(t *testing.T) {
	c := NewStripeCache(StripeCacheConfig{MaxCacheSize: 4, TTL: time.Minute}, nil)
	assert.False(t, c.Put(100, []byte("too big for the cache")))
}

func TestStripeCacheInvalidateRemovesEntry(t *testing.T) {
	c := NewStripeCache(StripeCacheConfig{MaxCacheSize: 1024, TTL: time.Minute}, nil)
	require.True(t, c.Put(100, []byte("stripe data")))
	c.Invalidate(100)

	_, ok := c.Get(100)
	assert.False(t, ok)
}

func TestStripeCacheEvictsByAscendingHeatUnderPressure(t *testing.T) {
	c := NewStripeCache(StripeCacheConfig{MaxCacheSize: 10, TTL: time.Minute}, nil)
	require.True(t, c.Put(1, []byte("aaaaa"))) // 5 bytes, never touched again: coldest
	require.True(t, c.Put(2, []byte("bbbbb"))) // 5 bytes

	// Touch 2 repeatedly so it is hotter than 1.
	for i := 0; i < 5; i++ {
		_, ok := c.Get(2)
		require.True(t, ok)
	}

	// Adding a third 5-byte entry exceeds the 10-byte budget: the
	// coldest entry (1) must be evicted, not the hotter one (2).
	require.True(t, c.Put(3, []byte("ccccc")))

	_, ok := c.Get(1)
	assert.False(t, ok, "coldest entry should have been evicted")
	_, ok = c.Get(2)
	assert.True(t, ok, "hot entry should survive eviction")
}

func TestStripeCacheTotalBytesNeverExceedsBudget(t *testing.T) {
	c := NewStripeCache(StripeCacheConfig{MaxCacheSize: 12, TTL: time.Minute}, nil)
	c.Put(1, []byte("aaaa"))
	c.Put(2, []byte("bbbb"))
	c.Put(3, []byte("cccc"))
	c.Put(4, []byte("dddd"))

	assert.LessOrEqual(t, c.CurrentSize(), uint64(12))
}
