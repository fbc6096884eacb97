package stripestore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cloudraidfs/cloudraidfs/pkg/backend"
)

// DeleteStripe concurrently deletes all k+m shards of a stripe.
// A backend reporting ErrNotFound counts as success, matching the
// blob-backend contract's idempotent-delete semantics.
func (s *Store) DeleteStripe(ctx context.Context, stripeID uint64) error {
	start := time.Now()

	var wg sync.WaitGroup
	errs := make([]error, len(s.backends))

	for i, b := range s.backends {
		wg.Add(1)
		go func(shardID int, be backend.Backend) {
			defer wg.Done()
			opStart := time.Now()
			err := be.Delete(ctx, stripeID, uint32(shardID))
			if errors.Is(err, backend.ErrNotFound) {
				err = nil
			}
			s.metrics.ObserveBackendOperation(be.Name(), "delete", time.Since(opStart), err)
			if err != nil {
				errs[shardID] = fmt.Errorf("shard %d on backend %q: %w", shardID, be.Name(), err)
			}
		}(i, b)
	}
	wg.Wait()

	var first error
	for _, e := range errs {
		if e != nil {
			first = e
			break
		}
	}

	if first != nil {
		s.metrics.ObserveOperation("delete", time.Since(start), ErrDeleteFailed)
		return fmt.Errorf("%w: %v", ErrDeleteFailed, first)
	}

	s.metrics.ObserveOperation("delete", time.Since(start), nil)
	return nil
}
