package config

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBackends_LocalfsOrderPreserved(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := &Config{
		Backends: []BackendConfig{
			{Name: "a", Type: "localfs", Options: map[string]any{"path": tmpDir + "/a"}},
			{Name: "b", Type: "localfs", Options: map[string]any{"path": tmpDir + "/b"}},
			{Name: "c", Type: "localfs", Options: map[string]any{"path": tmpDir + "/c"}},
		},
	}

	backends, err := CreateBackends(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, backends, 3)
	assert.Contains(t, backends[0].Name(), tmpDir+"/a")
	assert.Contains(t, backends[1].Name(), tmpDir+"/b")
	assert.Contains(t, backends[2].Name(), tmpDir+"/c")
}

func TestCreateBackends_LocalfsMissingPath(t *testing.T) {
	cfg := &Config{
		Backends: []BackendConfig{{Name: "a", Type: "localfs", Options: map[string]any{}}},
	}
	_, err := CreateBackends(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path is required")
}

func TestCreateBackends_UnknownType(t *testing.T) {
	cfg := &Config{
		Backends: []BackendConfig{{Name: "a", Type: "nfs"}},
	}
	_, err := CreateBackends(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown backend type")
}

func TestCreateBackends_S3MissingBucket(t *testing.T) {
	cfg := &Config{
		Backends: []BackendConfig{{Name: "a", Type: "s3", Options: map[string]any{"region": "us-east-1"}}},
	}
	_, err := CreateBackends(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket is required")
}

func TestCreateBackends_S3MissingRegion(t *testing.T) {
	cfg := &Config{
		Backends: []BackendConfig{{Name: "a", Type: "s3", Options: map[string]any{"bucket": "b"}}},
	}
	_, err := CreateBackends(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "region is required")
}
