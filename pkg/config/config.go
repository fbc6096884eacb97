// Package config loads and validates the daemon configuration: the
// mountpoint, erasure parameters, ordered backend list, cache and spool
// tuning, and logging level described in the external interface.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the complete cloudraidfs daemon configuration.
//
// Configuration sources (in order of precedence):
//  1. CLI flags (highest priority, applied by cmd/cloudraidfsd)
//  2. Environment variables (CLOUDRAIDFS_*)
//  3. Configuration file (YAML)
//  4. Default values (lowest priority)
type Config struct {
	// Mountpoint is the filesystem-adaptor location.
	Mountpoint string `mapstructure:"mountpoint" yaml:"mountpoint" validate:"required"`

	// K is the number of data shards per stripe.
	K int `mapstructure:"k" yaml:"k" validate:"required,gt=0"`

	// M is the number of parity shards per stripe.
	M int `mapstructure:"m" yaml:"m" validate:"required,gt=0"`

	// StripeSize is the number of logical bytes the file layer groups
	// into one stripe before encoding. Not named in the external
	// configuration table directly but implied by it: it is the unit
	// the file layer walks offsets in and the caches key by.
	StripeSize uint64 `mapstructure:"stripe_size" yaml:"stripe_size" validate:"required,gt=0"`

	// Backends is the ordered list of blob backends producing the k+m
	// backend handles. Order defines the shard→backend mapping and
	// must never change across restarts.
	Backends []BackendConfig `mapstructure:"backends" yaml:"backends" validate:"dive"`

	// Cache configures the whole-file cache sitting above the file
	// layer.
	Cache CacheConfig `mapstructure:"cache" yaml:"cache"`

	// ChunkCache configures the decoded-stripe cache sitting above the
	// stripe store.
	ChunkCache ChunkCacheConfig `mapstructure:"chunk_cache" yaml:"chunk_cache"`

	// AsyncUpload configures the upload spool and its worker pool.
	AsyncUpload AsyncUploadConfig `mapstructure:"async_upload" yaml:"async_upload"`

	// Logging controls log output behavior.
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Server contains daemon-wide settings (metrics, shutdown).
	Server ServerConfig `mapstructure:"server" yaml:"server"`
}

// BackendConfig describes one entry of the ordered backend list.
// Driver-specific fields (path, bucket, region, …) are captured in
// Options rather than declared per-type, since the set of recognized
// fields depends on Type.
type BackendConfig struct {
	Name string `mapstructure:"name" yaml:"name" validate:"required"`
	Type string `mapstructure:"type" yaml:"type" validate:"required,oneof=localfs s3"`

	Options map[string]any `mapstructure:",remain" yaml:",inline"`
}

// CacheConfig configures the whole-file cache (spec.md §6 "cache.*").
type CacheConfig struct {
	MaxCacheSize uint64        `mapstructure:"max_cache_size" yaml:"max_cache_size"`
	MaxFileSize  uint64        `mapstructure:"max_file_size" yaml:"max_file_size"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl"`
}

// ChunkCacheConfig configures the stripe cache (spec.md §6
// "chunk_cache.*").
type ChunkCacheConfig struct {
	MaxCacheSize uint64        `mapstructure:"max_cache_size" yaml:"max_cache_size"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl"`
}

// AsyncUploadConfig configures the spool and its worker pool (spec.md
// §6 "async_upload.*").
type AsyncUploadConfig struct {
	// Enabled selects the asynchronous write path. When false, writes
	// are durable on backends before the write call returns.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	CacheDir      string `mapstructure:"cache_dir" yaml:"cache_dir"`
	WorkerThreads int    `mapstructure:"worker_threads" yaml:"worker_threads" validate:"gte=0"`
	MaxRetries    int    `mapstructure:"max_retries" yaml:"max_retries" validate:"gte=0"`
	RetryDelayMs  int    `mapstructure:"retry_delay_ms" yaml:"retry_delay_ms" validate:"gte=0"`
	MaxQueueSize  int    `mapstructure:"max_queue_size" yaml:"max_queue_size" validate:"gte=0"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output.
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive).
	Level string `mapstructure:"level" yaml:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`
}

// ServerConfig contains daemon-wide settings.
type ServerConfig struct {
	// ShutdownTimeout is the maximum time to wait for Sync during
	// graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" validate:"required,gt=0"`

	// Metrics controls the Prometheus metrics HTTP endpoint.
	Metrics MetricsServerConfig `mapstructure:"metrics" yaml:"metrics"`
}

// MetricsServerConfig controls the optional metrics HTTP endpoint.
type MetricsServerConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	Port    int  `mapstructure:"port" yaml:"port"`
}

// Load loads configuration from file, environment, and defaults.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (CLOUDRAIDFS_*)
//  2. Configuration file
//  3. Default values
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	if err := readConfigFile(v, configPath); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// setupViper configures viper with environment variable and config file
// search settings.
func setupViper(v *viper.Viper, configPath string) {
	// CLOUDRAIDFS_K, CLOUDRAIDFS_CACHE_MAX_CACHE_SIZE, etc.
	v.SetEnvPrefix("CLOUDRAIDFS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}

	configDir := getConfigDir()
	v.AddConfigPath(configDir)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
}

// readConfigFile reads the configuration file if it exists.
func readConfigFile(v *viper.Viper, configPath string) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// getConfigDir returns the configuration directory path.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "cloudraidfs")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "cloudraidfs")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// ConfigExists checks if a config file exists at the default location.
func ConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// GetConfigDir returns the configuration directory path (exposed for
// the generate-config command).
func GetConfigDir() string {
	return getConfigDir()
}
