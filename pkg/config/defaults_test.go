package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestApplyDefaults_Logging(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	assert.Equal(t, "INFO", cfg.Logging.Level)
}

func TestApplyDefaults_LoggingNormalizesCase(t *testing.T) {
	cfg := &Config{Logging: LoggingConfig{Level: "debug"}}
	ApplyDefaults(cfg)
	assert.Equal(t, "DEBUG", cfg.Logging.Level)
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{
		Cache:      CacheConfig{MaxCacheSize: 42},
		ChunkCache: ChunkCacheConfig{MaxCacheSize: 99},
	}
	ApplyDefaults(cfg)
	assert.Equal(t, uint64(42), cfg.Cache.MaxCacheSize)
	assert.Equal(t, uint64(99), cfg.ChunkCache.MaxCacheSize)
}

func TestApplyDefaults_ServerAndStripeSize(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 9090, cfg.Server.Metrics.Port)
	assert.Equal(t, uint64(4*1024*1024), cfg.StripeSize)
}

func TestApplyDefaults_AsyncUpload(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	assert.Equal(t, 4, cfg.AsyncUpload.WorkerThreads)
	assert.Equal(t, 5, cfg.AsyncUpload.MaxRetries)
	assert.NotEmpty(t, cfg.AsyncUpload.CacheDir)
}

func TestApplyDefaults_BackendOptionsNeverNil(t *testing.T) {
	cfg := &Config{Backends: []BackendConfig{{Name: "a", Type: "localfs"}}}
	ApplyDefaults(cfg)
	assert.NotNil(t, cfg.Backends[0].Options)
}

func TestGetDefaultConfig_PassesValidation(t *testing.T) {
	cfg := GetDefaultConfig()
	assert.NoError(t, Validate(cfg))
}
