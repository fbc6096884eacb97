package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeBackendStamp_StableForSameConfig(t *testing.T) {
	backends := []BackendConfig{
		{Name: "a", Type: "localfs", Options: map[string]any{"path": "/data/0"}},
		{Name: "b", Type: "localfs", Options: map[string]any{"path": "/data/1"}},
	}
	assert.Equal(t, ComputeBackendStamp(backends), ComputeBackendStamp(backends))
}

func TestComputeBackendStamp_ChangesWithPath(t *testing.T) {
	a := []BackendConfig{{Name: "a", Type: "localfs", Options: map[string]any{"path": "/data/0"}}}
	b := []BackendConfig{{Name: "a", Type: "localfs", Options: map[string]any{"path": "/data/1"}}}
	assert.NotEqual(t, ComputeBackendStamp(a), ComputeBackendStamp(b))
}

func TestComputeBackendStamp_ChangesWithOrder(t *testing.T) {
	a := []BackendConfig{
		{Name: "a", Type: "localfs", Options: map[string]any{"path": "/data/0"}},
		{Name: "b", Type: "localfs", Options: map[string]any{"path": "/data/1"}},
	}
	b := []BackendConfig{
		{Name: "b", Type: "localfs", Options: map[string]any{"path": "/data/1"}},
		{Name: "a", Type: "localfs", Options: map[string]any{"path": "/data/0"}},
	}
	assert.NotEqual(t, ComputeBackendStamp(a), ComputeBackendStamp(b))
}

func TestComputeBackendStamp_ChangesWithName(t *testing.T) {
	a := []BackendConfig{{Name: "a", Type: "localfs", Options: map[string]any{"path": "/data/0"}}}
	b := []BackendConfig{{Name: "renamed", Type: "localfs", Options: map[string]any{"path": "/data/0"}}}
	assert.NotEqual(t, ComputeBackendStamp(a), ComputeBackendStamp(b))
}
