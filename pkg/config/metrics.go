package config

import (
	"github.com/cloudraidfs/cloudraidfs/pkg/metrics"
)

// MetricsResult bundles every component metrics collector constructed
// from configuration, plus the HTTP server exposing them. Every field
// is nil (and every collector method a no-op) when metrics are
// disabled — components never need a separate disabled branch.
type MetricsResult struct {
	Server *metrics.Server

	Stripe     *metrics.StripeMetrics
	Metastore  *metrics.MetastoreMetrics
	FileLayer  *metrics.FileLayerMetrics
	Spool      *metrics.SpoolMetrics
	FileCache  *metrics.CacheMetrics
	ChunkCache *metrics.CacheMetrics
}

// InitializeMetrics creates every metrics collector and the HTTP
// server that exposes them, based on cfg.Server.Metrics. If metrics
// are disabled, every collector is nil and Server is nil.
func InitializeMetrics(cfg *Config) *MetricsResult {
	if !cfg.Server.Metrics.Enabled {
		return &MetricsResult{}
	}

	metrics.InitRegistry()

	return &MetricsResult{
		Server:     metrics.NewServer(metrics.ServerConfig{Port: cfg.Server.Metrics.Port}),
		Stripe:     metrics.NewStripeMetrics(),
		Metastore:  metrics.NewMetastoreMetrics(),
		FileLayer:  metrics.NewFileLayerMetrics(),
		Spool:      metrics.NewSpoolMetrics(),
		FileCache:  metrics.NewCacheMetrics("file"),
		ChunkCache: metrics.NewCacheMetrics("stripe"),
	}
}
