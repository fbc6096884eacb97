// Package stripestore maps one logical stripe onto k+m shards spread
// across a fixed set of blob backends. It owns the fan-out concurrency
// (every shard write or read starts simultaneously, not pipelined), the
// decode-on-read path, and the opportunistic repair of shards found
// missing during a successful read.
//
// Backend position is identity: backend i always stores shard i for
// every stripe. The mapping never changes for the life of a Store.
package stripestore

import (
	"fmt"

	"github.com/cloudraidfs/cloudraidfs/pkg/backend"
	"github.com/cloudraidfs/cloudraidfs/pkg/erasure"
	"github.com/cloudraidfs/cloudraidfs/pkg/metrics"
)

// Store fans a stripe out to k+m backends and reconstructs it from any
// k survivors. It is safe for concurrent use by multiple goroutines.
type Store struct {
	k, m     int
	backends []backend.Backend // len == k+m, position is shard identity
	alloc    *idAllocator
	metrics  *metrics.StripeMetrics
}

// New constructs a Store over backends, where len(backends) must equal
// k+m and backends[i] is permanently assigned shard i. The stripe-ID
// allocator starts seeded at 100 (the first non-reserved ID); call
// ObserveStripeID during metadata load to raise the watermark above any
// stripe ID already in use.
func New(backends []backend.Backend, k, m int, metricsImpl *metrics.StripeMetrics) (*Store, error) {
	if k < 1 || m < 1 || k+m > erasure.MaxTotalShards {
		return nil, erasure.ErrInvalidArgument
	}
	if len(backends) != k+m {
		return nil, fmt.Errorf("stripestore: got %d backends, want k+m=%d", len(backends), k+m)
	}
	for i, b := range backends {
		if b == nil {
			return nil, fmt.Errorf("stripestore: backend %d is nil", i)
		}
	}

	return &Store{
		k:        k,
		m:        m,
		backends: backends,
		alloc:    newIDAllocator(),
		metrics:  metricsImpl,
	}, nil
}

// K returns the data-shard count.
func (s *Store) K() int { return s.k }

// M returns the parity-shard count.
func (s *Store) M() int { return s.m }

// BackendNames returns the names of the k+m backends in shard order, for
// logging and diagnostics.
func (s *Store) BackendNames() []string {
	names := make([]string, len(s.backends))
	for i, b := range s.backends {
		names[i] = b.Name()
	}
	return names
}

// ObserveStripeID raises the user-data allocator's watermark so that a
// subsequent AllocateStripeID never returns an ID already in use. Callers
// (the metastore, on load) invoke this once per stripe ID found in
// persisted file metadata.
func (s *Store) ObserveStripeID(id uint64) {
	s.alloc.observe(id)
}

// AllocateStripeID returns the next unused user-data stripe ID. IDs below
// 100 are reserved for metadata and are never returned here.
func (s *Store) AllocateStripeID() uint64 {
	return s.alloc.allocate()
}
