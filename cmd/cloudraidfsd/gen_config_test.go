package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/cloudraidfs/cloudraidfs/pkg/config"
)

func TestWriteDefaultConfig_RoundTrips(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "config.yaml")

	require.NoError(t, writeDefaultConfig(outPath, false))

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)

	var cfg config.Config
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, config.GetDefaultConfig().Mountpoint, cfg.Mountpoint)
	assert.Equal(t, config.GetDefaultConfig().K, cfg.K)
	assert.Len(t, cfg.Backends, 3)
	assert.Equal(t, "local-0", cfg.Backends[0].Name)
}

func TestWriteDefaultConfig_RefusesToOverwriteWithoutForce(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, writeDefaultConfig(outPath, false))

	err := writeDefaultConfig(outPath, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestWriteDefaultConfig_ForceOverwrites(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, writeDefaultConfig(outPath, false))
	require.NoError(t, writeDefaultConfig(outPath, true))
}

func TestWriteDefaultConfig_CreatesParentDir(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "nested", "dir", "config.yaml")
	require.NoError(t, writeDefaultConfig(outPath, false))
	_, err := os.Stat(outPath)
	require.NoError(t, err)
}
