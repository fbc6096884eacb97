package cache

import (
	"time"

	"github.com/cloudraidfs/cloudraidfs/pkg/metrics"
)

// StripeCacheConfig configures a StripeCache.
type StripeCacheConfig struct {
	// MaxCacheSize is the aggregate byte budget across all cached
	// stripes.
	MaxCacheSize uint64
	// TTL is how long a stripe stays cached after its most recent hit.
	TTL time.Duration
}

// StripeCache is a TTL + heat-scored in-memory cache of decoded
// stripes keyed by stripe ID, sitting above the stripe store on the
// read path.
type StripeCache struct {
	eng *engine[uint64]
}

// NewStripeCache constructs a StripeCache. metricsImpl may be nil.
func NewStripeCache(cfg StripeCacheConfig, metricsImpl *metrics.CacheMetrics) *StripeCache {
	return &StripeCache{eng: newEngine[uint64](cfg.MaxCacheSize, cfg.TTL, stripeHeat, metricsImpl)}
}

// stripeHeat scores a cached stripe: H = access_count * (seconds_to_expire + 1).
func stripeHeat(e *entry[uint64], now time.Time) float64 {
	secsToExpire := e.expireAt.Sub(now).Seconds()
	if secsToExpire < 0 {
		return -1
	}
	return float64(e.accessCount) * (secsToExpire + 1)
}

// Get returns the cached plaintext for stripeID, extending its TTL on
// hit.
func (c *StripeCache) Get(stripeID uint64) ([]byte, bool) {
	return c.eng.get(stripeID)
}

// Put caches data under stripeID. Returns false if data could not be
// admitted (too large even after eviction).
func (c *StripeCache) Put(stripeID uint64, data []byte) bool {
	return c.eng.put(stripeID, data)
}

// Invalidate drops stripeID's entry, if present. Called on any write
// to the stripe and on truncate for every stripe of the truncated
// file.
func (c *StripeCache) Invalidate(stripeID uint64) {
	c.eng.invalidate(stripeID)
}

// CurrentSize returns the current aggregate cached byte count.
func (c *StripeCache) CurrentSize() uint64 {
	return c.eng.currentSizeBytes()
}

// EntryCount returns the current number of cached stripes.
func (c *StripeCache) EntryCount() int {
	return c.eng.count()
}
