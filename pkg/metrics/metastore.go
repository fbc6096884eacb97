package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetastoreMetrics is the Prometheus implementation of metastore
// observability: lookups, mutations, and the size of the in-memory file
// table and directory trie.
type MetastoreMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	fileCount         prometheus.Gauge
	dirCount          prometheus.Gauge
	persistDuration   prometheus.Histogram
	persistBytes      prometheus.Counter
}

// NewMetastoreMetrics creates a new Prometheus-backed MetastoreMetrics
// instance. Returns nil if metrics are not enabled.
func NewMetastoreMetrics() *MetastoreMetrics {
	if !IsEnabled() {
		return nil
	}

	reg := GetRegistry()

	return &MetastoreMetrics{
		operationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "cloudraidfs_metastore_operations_total",
				Help: "Total number of metadata operations by operation and status",
			},
			[]string{"operation", "status"},
		),
		operationDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cloudraidfs_metastore_operation_duration_seconds",
				Help:    "Duration of metadata operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		fileCount: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "cloudraidfs_metastore_files",
				Help: "Current number of files tracked in the file table",
			},
		),
		dirCount: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "cloudraidfs_metastore_directories",
				Help: "Current number of directories tracked in the path trie",
			},
		),
		persistDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "cloudraidfs_metastore_persist_duration_seconds",
				Help:    "Duration of self-persistence snapshots to the reserved metadata stripes",
				Buckets: prometheus.DefBuckets,
			},
		),
		persistBytes: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "cloudraidfs_metastore_persist_bytes_total",
				Help: "Total bytes written by metadata self-persistence snapshots",
			},
		),
	}
}

// ObserveOperation records a completed metadata operation.
func (m *MetastoreMetrics) ObserveOperation(operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.operationsTotal.WithLabelValues(operation, status).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// SetFileCount records the current file table size.
func (m *MetastoreMetrics) SetFileCount(count int) {
	if m == nil {
		return
	}
	m.fileCount.Set(float64(count))
}

// SetDirCount records the current directory trie size.
func (m *MetastoreMetrics) SetDirCount(count int) {
	if m == nil {
		return
	}
	m.dirCount.Set(float64(count))
}

// ObservePersist records a self-persistence snapshot.
func (m *MetastoreMetrics) ObservePersist(duration time.Duration, bytes int64) {
	if m == nil {
		return
	}
	m.persistDuration.Observe(duration.Seconds())
	m.persistBytes.Add(float64(bytes))
}
