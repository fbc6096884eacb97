package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// CacheMetrics is the Prometheus-backed metrics collector used by the
// caches in pkg/cache. One instance is shared by all caches of a given
// kind; the kind ("stripe" or "file") is a const label so StripeCache
// and FileCache show up as separate series on a shared set of metric
// names.
//
// This implementation collects metrics about cache operations including:
//   - Hit/miss counts and latencies
//   - Entry counts and evictions
//   - Cached byte totals
type CacheMetrics struct {
	kind           string
	hits           prometheus.Counter
	misses         prometheus.Counter
	getDuration    prometheus.Histogram
	putDuration    prometheus.Histogram
	evictionsTotal *prometheus.CounterVec
	entryCount     prometheus.Gauge
	bytesCached    prometheus.Gauge
}

// NewCacheMetrics creates a new Prometheus-backed CacheMetrics instance for
// the given cache kind ("stripe" or "file").
//
// Returns nil if metrics are not enabled (InitRegistry not called), which
// causes the cache to skip metrics collection entirely.
func NewCacheMetrics(kind string) *CacheMetrics {
	if !IsEnabled() {
		return nil
	}

	reg := GetRegistry()
	labels := prometheus.Labels{"kind": kind}

	return &CacheMetrics{
		kind: kind,
		hits: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name:        "cloudraidfs_cache_hits_total",
				Help:        "Total number of cache hits",
				ConstLabels: labels,
			},
		),
		misses: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name:        "cloudraidfs_cache_misses_total",
				Help:        "Total number of cache misses",
				ConstLabels: labels,
			},
		),
		getDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:        "cloudraidfs_cache_get_duration_seconds",
				Help:        "Duration of cache get operations in seconds",
				ConstLabels: labels,
				Buckets:     []float64{0.00001, 0.0001, 0.001, 0.01, 0.1},
			},
		),
		putDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:        "cloudraidfs_cache_put_duration_seconds",
				Help:        "Duration of cache put operations in seconds",
				ConstLabels: labels,
				Buckets:     []float64{0.00001, 0.0001, 0.001, 0.01, 0.1},
			},
		),
		evictionsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name:        "cloudraidfs_cache_evictions_total",
				Help:        "Total number of cache evictions by reason (expired, heat)",
				ConstLabels: labels,
			},
			[]string{"reason"},
		),
		entryCount: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name:        "cloudraidfs_cache_entries",
				Help:        "Current number of entries held in the cache",
				ConstLabels: labels,
			},
		),
		bytesCached: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name:        "cloudraidfs_cache_bytes",
				Help:        "Current number of bytes held in the cache",
				ConstLabels: labels,
			},
		),
	}
}

// ObserveGet records a cache lookup, hit or miss, along with its latency.
func (m *CacheMetrics) ObserveGet(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	if hit {
		m.hits.Inc()
	} else {
		m.misses.Inc()
	}
	m.getDuration.Observe(duration.Seconds())
}

// ObservePut records a cache insertion.
func (m *CacheMetrics) ObservePut(duration time.Duration) {
	if m == nil {
		return
	}
	m.putDuration.Observe(duration.Seconds())
}

// RecordEviction records an eviction and its reason ("expired" or "heat").
func (m *CacheMetrics) RecordEviction(reason string) {
	if m == nil {
		return
	}
	m.evictionsTotal.WithLabelValues(reason).Inc()
}

// SetEntryCount records the current number of cached entries.
func (m *CacheMetrics) SetEntryCount(count int) {
	if m == nil {
		return
	}
	m.entryCount.Set(float64(count))
}

// SetBytesCached records the current total size of cached payloads.
func (m *CacheMetrics) SetBytesCached(bytes int64) {
	if m == nil {
		return
	}
	m.bytesCached.Set(float64(bytes))
}
