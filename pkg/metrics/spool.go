package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SpoolMetrics is the Prometheus implementation of upload spool
// observability: queue depth, worker throughput, and retry/backoff
// behavior.
type SpoolMetrics struct {
	queueDepth      prometheus.Gauge
	uploadsTotal    *prometheus.CounterVec
	uploadDuration  prometheus.Histogram
	retriesTotal    prometheus.Counter
	recoveredTotal  prometheus.Counter
}

// NewSpoolMetrics creates a new Prometheus-backed SpoolMetrics instance.
// Returns nil if metrics are not enabled.
func NewSpoolMetrics() *SpoolMetrics {
	if !IsEnabled() {
		return nil
	}

	reg := GetRegistry()

	return &SpoolMetrics{
		queueDepth: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "cloudraidfs_spool_queue_depth",
				Help: "Current number of shard upload tasks queued",
			},
		),
		uploadsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "cloudraidfs_spool_uploads_total",
				Help: "Total number of spooled shard upload attempts by status",
			},
			[]string{"status"},
		),
		uploadDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "cloudraidfs_spool_upload_duration_seconds",
				Help:    "Duration of a spooled shard upload attempt",
				Buckets: prometheus.DefBuckets,
			},
		),
		retriesTotal: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "cloudraidfs_spool_retries_total",
				Help: "Total number of upload retry attempts",
			},
		),
		recoveredTotal: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "cloudraidfs_spool_recovered_records_total",
				Help: "Total number of spool records recovered from disk on startup",
			},
		),
	}
}

// SetQueueDepth records the current pending-upload count.
func (m *SpoolMetrics) SetQueueDepth(depth int) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(depth))
}

// ObserveUpload records a completed upload attempt.
func (m *SpoolMetrics) ObserveUpload(duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.uploadsTotal.WithLabelValues(status).Inc()
	m.uploadDuration.Observe(duration.Seconds())
}

// RecordRetry records one retry attempt.
func (m *SpoolMetrics) RecordRetry() {
	if m == nil {
		return
	}
	m.retriesTotal.Inc()
}

// RecordRecovered records spool records recovered from disk at startup.
func (m *SpoolMetrics) RecordRecovered(count int) {
	if m == nil {
		return
	}
	m.recoveredTotal.Add(float64(count))
}
