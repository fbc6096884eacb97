package cache

import (
	"time"

	"github.com/cloudraidfs/cloudraidfs/pkg/metrics"
)

// FileCacheConfig configures a FileCache.
type FileCacheConfig struct {
	// MaxCacheSize is the aggregate byte budget across all cached files.
	MaxCacheSize uint64
	// MaxFileSize is the largest single file this cache will admit;
	// larger files are always read through the stripe path.
	MaxFileSize uint64
	// TTL is how long a file stays cached after its most recent hit.
	TTL time.Duration
}

// FileCache is a TTL + heat-scored in-memory cache of whole small
// files keyed by path, sitting above the file layer for
// whole-file reads.
type FileCache struct {
	eng         *engine[string]
	maxFileSize uint64
}

// NewFileCache constructs a FileCache. metricsImpl may be nil.
func NewFileCache(cfg FileCacheConfig, metricsImpl *metrics.CacheMetrics) *FileCache {
	return &FileCache{
		eng:         newEngine[string](cfg.MaxCacheSize, cfg.TTL, fileHeat, metricsImpl),
		maxFileSize: cfg.MaxFileSize,
	}
}

// fileHeat scores a cached file: H = access_count * (seconds_to_expire
// + 1) / (size_in_KiB + 1). Smaller hot files are preferred over
// larger ones with the same access pattern.
func fileHeat(e *entry[string], now time.Time) float64 {
	secsToExpire := e.expireAt.Sub(now).Seconds()
	if secsToExpire < 0 {
		return -1
	}
	sizeKiB := float64(len(e.data)) / 1024
	return float64(e.accessCount) * (secsToExpire + 1) / (sizeKiB + 1)
}

// Get returns the cached bytes for path, extending its TTL on hit.
func (c *FileCache) Get(path string) ([]byte, bool) {
	return c.eng.get(path)
}

// Put caches data under path. Refuses files larger than MaxFileSize
// outright, in addition to the engine's own MaxCacheSize admission
// check.
func (c *FileCache) Put(path string, data []byte) bool {
	if uint64(len(data)) > c.maxFileSize {
		return false
	}
	return c.eng.put(path, data)
}

// Invalidate drops path's entry, if present. Called on any write or
// truncate of the file.
func (c *FileCache) Invalidate(path string) {
	c.eng.invalidate(path)
}

// CurrentSize returns the current aggregate cached byte count.
func (c *FileCache) CurrentSize() uint64 {
	return c.eng.currentSizeBytes()
}

// EntryCount returns the current number of cached files.
func (c *FileCache) EntryCount() int {
	return c.eng.count()
}
