package config

import (
	"context"
	"fmt"

	"github.com/cloudraidfs/cloudraidfs/pkg/cache"
	"github.com/cloudraidfs/cloudraidfs/pkg/filelayer"
	"github.com/cloudraidfs/cloudraidfs/pkg/metastore"
	"github.com/cloudraidfs/cloudraidfs/pkg/raidfs"
	"github.com/cloudraidfs/cloudraidfs/pkg/spool"
	"github.com/cloudraidfs/cloudraidfs/pkg/stripestore"
)

// Built holds every long-lived component Build constructed, so the
// caller (cmd/cloudraidfsd) can drive their lifecycle: recover the
// spool, start its workers, and flush/stop/save on shutdown.
type Built struct {
	FS      *raidfs.FS
	Spool   *spool.Spool
	Metrics *MetricsResult
}

// Build wires a complete, ready-to-serve filesystem from configuration:
// backends → stripe store → caches → spool → file layer → metadata
// store → filesystem-adaptor facade. It does not start the spool's
// workers or load the persisted metadata snapshot — call Spool.Start
// and FS-level bootstrap separately so the caller controls ordering
// around spool recovery.
func Build(ctx context.Context, cfg *Config) (*Built, error) {
	metricsResult := InitializeMetrics(cfg)

	backends, err := CreateBackends(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create backends: %w", err)
	}

	stripes, err := stripestore.New(backends, cfg.K, cfg.M, metricsResult.Stripe)
	if err != nil {
		return nil, fmt.Errorf("failed to create stripe store: %w", err)
	}

	fileCache := cache.NewFileCache(cache.FileCacheConfig{
		MaxCacheSize: cfg.Cache.MaxCacheSize,
		MaxFileSize:  cfg.Cache.MaxFileSize,
		TTL:          cfg.Cache.CacheTTL,
	}, metricsResult.FileCache)

	stripeCache := cache.NewStripeCache(cache.StripeCacheConfig{
		MaxCacheSize: cfg.ChunkCache.MaxCacheSize,
		TTL:          cfg.ChunkCache.CacheTTL,
	}, metricsResult.ChunkCache)

	sp := spool.New(backends, cfg.K, cfg.M, spool.Config{
		Dir:           cfg.AsyncUpload.CacheDir,
		WorkerThreads: cfg.AsyncUpload.WorkerThreads,
		MaxRetries:    cfg.AsyncUpload.MaxRetries,
		RetryDelayMs:  cfg.AsyncUpload.RetryDelayMs,
		MaxQueueSize:  cfg.AsyncUpload.MaxQueueSize,
	}, metricsResult.Spool)

	meta := metastore.New(cfg.StripeSize, metricsResult.Metastore)

	file := filelayer.New(meta, stripes, sp, fileCache, stripeCache, filelayer.Config{
		StripeSize:  cfg.StripeSize,
		AsyncWrites: cfg.AsyncUpload.Enabled,
	}, metricsResult.FileLayer)

	return &Built{
		FS:      raidfs.New(meta, file),
		Spool:   sp,
		Metrics: metricsResult,
	}, nil
}

// Bootstrap recovers any spool entries left by a previous crash, loads
// the persisted metadata snapshot, and verifies the configured backend
// list still matches the one this filesystem was created with. Call
// this once, before Spool.Start and before serving any request.
func Bootstrap(ctx context.Context, cfg *Config, built *Built) error {
	if _, err := built.Spool.Recover(); err != nil {
		return fmt.Errorf("failed to recover spool: %w", err)
	}
	if err := built.FS.LoadMeta(ctx); err != nil {
		return fmt.Errorf("failed to load metadata snapshot: %w", err)
	}
	if err := built.FS.VerifyBackendMapping(ComputeBackendStamp(cfg.Backends)); err != nil {
		return fmt.Errorf("backend mapping check: %w", err)
	}
	return nil
}
