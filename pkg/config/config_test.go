package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
mountpoint: /mnt/cloudraidfs
k: 2
m: 1
stripe_size: 1048576
backends:
  - name: a
    type: localfs
    path: ` + filepath.Join(tmpDir, "a") + `
  - name: b
    type: localfs
    path: ` + filepath.Join(tmpDir, "b") + `
  - name: c
    type: localfs
    path: ` + filepath.Join(tmpDir, "c") + `
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0o644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "/mnt/cloudraidfs", cfg.Mountpoint)
	assert.Equal(t, 2, cfg.K)
	assert.Equal(t, 1, cfg.M)
	assert.Len(t, cfg.Backends, 3)
	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
}

func TestLoad_MissingFileFailsValidation(t *testing.T) {
	tmpDir := t.TempDir()
	// No mountpoint/k/m/backends configured anywhere: defaults alone
	// don't satisfy validation, so loading a nonexistent file should
	// fail validation rather than silently produce a bogus filesystem.
	_, err := Load(filepath.Join(tmpDir, "nonexistent.yaml"))
	require.Error(t, err)
}

func TestLoad_EnvironmentOverride(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	configContent := `
mountpoint: /mnt/cloudraidfs
k: 2
m: 1
stripe_size: 1048576
backends:
  - name: a
    type: localfs
    path: ` + filepath.Join(tmpDir, "a") + `
  - name: b
    type: localfs
    path: ` + filepath.Join(tmpDir, "b") + `
  - name: c
    type: localfs
    path: ` + filepath.Join(tmpDir, "c") + `
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0o644))

	t.Setenv("CLOUDRAIDFS_MOUNTPOINT", "/mnt/override")
	cfg, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, "/mnt/override", cfg.Mountpoint)
}

func TestGetDefaultConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdgtest")
	assert.Equal(t, "/tmp/xdgtest/cloudraidfs/config.yaml", GetDefaultConfigPath())
}
