package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// StripeMetrics is the Prometheus-backed metrics collector used by
// pkg/stripestore.
//
// This implementation collects metrics about stripe-level operations
// including:
//   - Write/read/delete operation counts and latency
//   - Per-backend operation outcomes (the fan-out write/read stats the
//     original implementation only printed to stderr)
//   - Repair counts
type StripeMetrics struct {
	operationsTotal    *prometheus.CounterVec
	operationDuration  *prometheus.HistogramVec
	backendOpsTotal    *prometheus.CounterVec
	backendOpsDuration *prometheus.HistogramVec
	repairsTotal       *prometheus.CounterVec
	bytesTransferred   *prometheus.CounterVec
}

// NewStripeMetrics creates a new Prometheus-backed StripeMetrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called), which
// causes the stripe store to skip metrics collection entirely.
func NewStripeMetrics() *StripeMetrics {
	if !IsEnabled() {
		return nil
	}

	reg := GetRegistry()

	return &StripeMetrics{
		operationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "cloudraidfs_stripe_operations_total",
				Help: "Total number of stripe-level operations by operation and status",
			},
			[]string{"operation", "status"},
		),
		operationDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cloudraidfs_stripe_operation_duration_seconds",
				Help:    "Duration of stripe-level operations (write/read/delete) in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		backendOpsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "cloudraidfs_stripe_backend_operations_total",
				Help: "Total number of per-backend shard operations by backend and status",
			},
			[]string{"backend", "operation", "status"},
		),
		backendOpsDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cloudraidfs_stripe_backend_operation_duration_seconds",
				Help:    "Duration of per-backend shard operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"backend", "operation"},
		),
		repairsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "cloudraidfs_stripe_repairs_total",
				Help: "Total number of opportunistic shard repairs attempted, by backend and status",
			},
			[]string{"backend", "status"},
		),
		bytesTransferred: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "cloudraidfs_stripe_bytes_transferred_total",
				Help: "Total bytes transferred in stripe operations",
			},
			[]string{"operation"},
		),
	}
}

// ObserveOperation records a stripe-level write, read or delete.
func (m *StripeMetrics) ObserveOperation(operation string, duration time.Duration, err error) {
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

// ObserveBackendOperation records the outcome of one backend's share of a
// fan-out write or read.
func (m *StripeMetrics) ObserveBackendOperation(backend, operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.backendOpsTotal.WithLabelValues(backend, operation, status).Inc()
	m.backendOpsDuration.WithLabelValues(backend, operation).Observe(duration.Seconds())
}

// RecordRepair records an opportunistic repair attempt for a missing shard.
func (m *StripeMetrics) RecordRepair(backend string, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.repairsTotal.WithLabelValues(backend, status).Inc()
}

// RecordBytes records bytes moved by a stripe-level operation.
func (m *StripeMetrics) RecordBytes(operation string, bytes int64) {
	if m == nil {
		return
	}
	m.bytesTransferred.WithLabelValues(operation).Add(float64(bytes))
}
