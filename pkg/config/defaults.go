package config

import (
	"strings"
	"time"
)

// ApplyDefaults sets default values for any unspecified configuration
// fields. Called after unmarshalling, before validation.
func ApplyDefaults(cfg *Config) {
	if cfg.StripeSize == 0 {
		cfg.StripeSize = 4 * 1024 * 1024 // 4MB
	}
	applyLoggingDefaults(&cfg.Logging)
	applyServerDefaults(&cfg.Server)
	applyCacheDefaults(&cfg.Cache)
	applyChunkCacheDefaults(&cfg.ChunkCache)
	applyAsyncUploadDefaults(&cfg.AsyncUpload)
	applyBackendDefaults(cfg.Backends)
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)
}

func applyServerDefaults(cfg *ServerConfig) {
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9090
	}
}

func applyCacheDefaults(cfg *CacheConfig) {
	if cfg.MaxCacheSize == 0 {
		cfg.MaxCacheSize = 256 * 1024 * 1024 // 256MB
	}
	if cfg.MaxFileSize == 0 {
		cfg.MaxFileSize = 16 * 1024 * 1024 // 16MB
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
}

func applyChunkCacheDefaults(cfg *ChunkCacheConfig) {
	if cfg.MaxCacheSize == 0 {
		cfg.MaxCacheSize = 512 * 1024 * 1024 // 512MB
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
}

func applyAsyncUploadDefaults(cfg *AsyncUploadConfig) {
	if cfg.CacheDir == "" {
		cfg.CacheDir = "/var/lib/cloudraidfs/spool"
	}
	if cfg.WorkerThreads == 0 {
		cfg.WorkerThreads = 4
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 5
	}
	if cfg.RetryDelayMs == 0 {
		cfg.RetryDelayMs = 500
	}
	if cfg.MaxQueueSize == 0 {
		cfg.MaxQueueSize = 1024
	}
}

// applyBackendDefaults initializes any nil Options maps so factories can
// index into them without a nil check.
func applyBackendDefaults(backends []BackendConfig) {
	for i := range backends {
		if backends[i].Options == nil {
			backends[i].Options = make(map[string]any)
		}
	}
}

// GetDefaultConfig returns a Config with all default values applied,
// plus a starter shape for a config file: k=2, m=1 over three localfs
// backends under /var/lib/cloudraidfs.
func GetDefaultConfig() *Config {
	cfg := &Config{
		Mountpoint: "/mnt/cloudraidfs",
		K:          2,
		M:          1,
		StripeSize: 4 * 1024 * 1024,
		Backends: []BackendConfig{
			{Name: "local-0", Type: "localfs", Options: map[string]any{"path": "/var/lib/cloudraidfs/backend-0"}},
			{Name: "local-1", Type: "localfs", Options: map[string]any{"path": "/var/lib/cloudraidfs/backend-1"}},
			{Name: "local-2", Type: "localfs", Options: map[string]any{"path": "/var/lib/cloudraidfs/backend-2"}},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}
