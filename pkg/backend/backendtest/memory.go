package backendtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/cloudraidfs/cloudraidfs/pkg/backend"
)

type shardKey struct {
	stripeID uint64
	shardID  uint32
}

// MemoryBackend is an in-memory backend.Backend used by tests that need a
// fast, dependency-free fake instead of touching the local filesystem or a
// real object store. It optionally injects failures to exercise retry and
// repair paths.
type MemoryBackend struct {
	mu      sync.Mutex
	name    string
	data    map[shardKey][]byte
	failing map[shardKey]error
}

func NewMemoryBackend(name string) *MemoryBackend {
	return &MemoryBackend{
		name:    name,
		data:    make(map[shardKey][]byte),
		failing: make(map[shardKey]error),
	}
}

func (m *MemoryBackend) Name() string { return m.name }

// FailNext arranges for the next operation against (stripeID, shardID) to
// return err instead of succeeding. The injection is consumed on first use.
func (m *MemoryBackend) FailNext(stripeID uint64, shardID uint32, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failing[shardKey{stripeID, shardID}] = err
}

func (m *MemoryBackend) Read(ctx context.Context, stripeID uint64, shardID uint32) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := shardKey{stripeID, shardID}
	if err, ok := m.failing[key]; ok {
		delete(m.failing, key)
		return nil, err
	}

	data, ok := m.data[key]
	if !ok {
		return nil, fmt.Errorf("memory backend %s: stripe %d shard %d: %w", m.name, stripeID, shardID, backend.ErrNotFound)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *MemoryBackend) Write(ctx context.Context, stripeID uint64, shardID uint32, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := shardKey{stripeID, shardID}
	if err, ok := m.failing[key]; ok {
		delete(m.failing, key)
		return err
	}

	stored := make([]byte, len(data))
	copy(stored, data)
	m.data[key] = stored
	return nil
}

func (m *MemoryBackend) Delete(ctx context.Context, stripeID uint64, shardID uint32) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := shardKey{stripeID, shardID}
	if err, ok := m.failing[key]; ok {
		delete(m.failing, key)
		return err
	}
	delete(m.data, key)
	return nil
}
