package backendtest

import "testing"

func TestMemoryBackendConformance(t *testing.T) {
	Run(t, NewMemoryBackend("memory:test"))
}
