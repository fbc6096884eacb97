package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileCachePutThenGet(t *testing.T) {
	c := NewFileCache(FileCacheConfig{MaxCacheSize: 1024, MaxFileSize: 512, TTL: time.Minute}, nil)
	require.True(t, c.Put("/a", []byte("hello")))

	got, ok := c.Get("/a")
	require.True(t, ok)
	assert.Equal(t, []byte("hello"), got)
}

func TestFileCacheRejectsFilesLargerThanMaxFileSize(t *testing.T) {
	c := NewFileCache(FileCacheConfig{MaxCacheSize: 1024, MaxFileSize: 4, TTL: time.Minute}, nil)
	assert.False(t, c.Put("/a", []byte("too big")))
}

func TestFileCacheInvalidateRemovesEntry(t *testing.T) {
	c := NewFileCache(FileCacheConfig{MaxCacheSize: 1024, MaxFileSize: 512, TTL: time.Minute}, nil)
	require.True(t, c.Put("/a", []byte("hello")))
	c.Invalidate("/a")

	_, ok := c.Get("/a")
	assert.False(t, ok)
}

func TestFileCachePrefersEvictingLargerFilesAtEqualHeat(t *testing.T) {
	c := NewFileCache(FileCacheConfig{MaxCacheSize: 12, MaxFileSize: 12, TTL: time.Minute}, nil)
	require.True(t, c.Put("/small", []byte("aaaa")))  // 4 bytes
	require.True(t, c.Put("/large", []byte("bbbbbb"))) // 6 bytes

	// Same access_count (1, from insert) and same TTL for both, so the
	// heat score divides by size: the larger file scores lower and is
	// evicted first.
	require.True(t, c.Put("/third", []byte("ccc"))) // 3 bytes; forces eviction

	_, smallOK := c.Get("/small")
	_, largeOK := c.Get("/large")
	assert.True(t, smallOK, "smaller file should be preferred on eviction")
	assert.False(t, largeOK, "larger file should be evicted first at equal heat")
}

func TestFileCacheTotalBytesNeverExceedsBudget(t *testing.T) {
	c := NewFileCache(FileCacheConfig{MaxCacheSize: 10, MaxFileSize: 10, TTL: time.Minute}, nil)
	c.Put("/a", []byte("aaaa"))
	c.Put("/b", []byte("bbbb"))
	c.Put("/c", []byte("cccc"))

	assert.LessOrEqual(t, c.CurrentSize(), uint64(10))
}
