package stripestore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cloudraidfs/cloudraidfs/internal/logger"
	"github.com/cloudraidfs/cloudraidfs/pkg/backend"
	"github.com/cloudraidfs/cloudraidfs/pkg/erasure"
)

// WriteStripe encodes plaintext into k+m shards and writes all of them
// to their backends concurrently. Concurrency is fan-out, not
// pipelined: every shard write starts at once. Success requires all
// k+m writes to succeed; a single failed shard write fails the whole
// operation (the caller, typically the upload engine, retries).
func (s *Store) WriteStripe(ctx context.Context, stripeID uint64, plaintext []byte) error {
	start := time.Now()

	shards, err := erasure.Encode(s.k, s.m, plaintext)
	if err != nil {
		s.metrics.ObserveOperation("write", time.Since(start), err)
		return err
	}

	var wg sync.WaitGroup
	errs := make([]error, len(s.backends))

	for i, b := range s.backends {
		wg.Add(1)
		go func(shardID int, be backend.Backend, data []byte) {
			defer wg.Done()
			opStart := time.Now()
			werr := be.Write(ctx, stripeID, uint32(shardID), data)
			s.metrics.ObserveBackendOperation(be.Name(), "write", time.Since(opStart), werr)
			if werr != nil {
				errs[shardID] = fmt.Errorf("shard %d on backend %q: %w", shardID, be.Name(), werr)
			}
		}(i, b, shards[i])
	}
	wg.Wait()

	var failed int
	var first error
	for _, e := range errs {
		if e != nil {
			failed++
			if first == nil {
				first = e
			}
		}
	}

	if failed > 0 {
		logger.Warn("stripestore: write of stripe %d failed on %d/%d shards: %v", stripeID, failed, len(s.backends), first)
		s.metrics.ObserveOperation("write", time.Since(start), ErrWriteFailed)
		return fmt.Errorf("%w: %v", ErrWriteFailed, first)
	}

	s.metrics.ObserveOperation("write", time.Since(start), nil)
	s.metrics.RecordBytes("write", int64(len(plaintext)))
	return nil
}
