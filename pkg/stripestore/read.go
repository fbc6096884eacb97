package stripestore

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cloudraidfs/cloudraidfs/internal/logger"
	"github.com/cloudraidfs/cloudraidfs/pkg/backend"
	"github.com/cloudraidfs/cloudraidfs/pkg/erasure"
)

// shardResult is one backend's outcome for a single shard read.
type shardResult struct {
	data []byte
	err  error
}

// ReadStripe launches k+m concurrent shard reads, waits for all of them
// to complete, and decodes once at least k succeeded. If no shard is
// present it returns ErrStripeNotFound; if some but fewer than k shards
// are readable, it returns ErrInsufficientShards.
//
// After a successful decode in which any shard was absent (NotFound or
// PermanentIO) or errored, ReadStripe spawns a detached repair task that
// re-encodes the decoded plaintext and writes back only the missing
// shards, never touching survivors. A shard that failed with
// TransientIO is treated as indeterminate, not missing, and is not
// repaired — a transport hiccup must not trigger a spurious rewrite.
func (s *Store) ReadStripe(ctx context.Context, stripeID uint64) ([]byte, error) {
	start := time.Now()

	results := make([]shardResult, len(s.backends))
	var wg sync.WaitGroup
	for i, b := range s.backends {
		wg.Add(1)
		go func(shardID int, be backend.Backend) {
			defer wg.Done()
			opStart := time.Now()
			data, err := be.Read(ctx, stripeID, uint32(shardID))
			s.metrics.ObserveBackendOperation(be.Name(), "read", time.Since(opStart), err)
			results[shardID] = shardResult{data: data, err: err}
		}(i, b)
	}
	wg.Wait()

	shards := make([][]byte, len(s.backends))
	repairable := make([]bool, len(s.backends))
	present := 0
	for i, r := range results {
		if r.err == nil {
			shards[i] = r.data
			present++
			continue
		}
		if errors.Is(r.err, backend.ErrNotFound) || errors.Is(r.err, backend.ErrPermanentIO) {
			repairable[i] = true
		}
		// TransientIO (and any other error) leaves shards[i] nil but
		// repairable[i] false: indeterminate, not missing.
	}

	if present == 0 {
		logger.Debug("stripestore: read of stripe %d found no shards on any backend", stripeID)
		s.metrics.ObserveOperation("read", time.Since(start), ErrStripeNotFound)
		return nil, ErrStripeNotFound
	}
	if present < s.k {
		logger.Warn("stripestore: read of stripe %d found only %d/%d shards, need %d", stripeID, present, len(s.backends), s.k)
		s.metrics.ObserveOperation("read", time.Since(start), ErrInsufficientShards)
		return nil, ErrInsufficientShards
	}

	plaintext, err := erasure.Decode(s.k, s.m, shards)
	if err != nil {
		s.metrics.ObserveOperation("read", time.Since(start), err)
		if errors.Is(err, erasure.ErrInsufficientShards) {
			return nil, ErrInsufficientShards
		}
		return nil, err
	}

	s.metrics.ObserveOperation("read", time.Since(start), nil)
	s.metrics.RecordBytes("read", int64(len(plaintext)))

	var needsRepair []int
	for i, ok := range repairable {
		if ok {
			needsRepair = append(needsRepair, i)
		}
	}
	if len(needsRepair) > 0 {
		go s.repair(stripeID, plaintext, needsRepair)
	}

	return plaintext, nil
}

// repair re-encodes plaintext and writes back the shards named by
// indices, which the preceding read observed missing. It never touches
// surviving shards. Repair failures are logged, not surfaced: the
// read that triggered this has already returned data to its caller.
func (s *Store) repair(stripeID uint64, plaintext []byte, indices []int) {
	shards, err := erasure.Encode(s.k, s.m, plaintext)
	if err != nil {
		logger.Error("stripestore: repair of stripe %d could not re-encode: %v", stripeID, err)
		return
	}

	ctx := context.Background()
	for _, idx := range indices {
		be := s.backends[idx]
		err := be.Write(ctx, stripeID, uint32(idx), shards[idx])
		s.metrics.RecordRepair(be.Name(), err)
		if err != nil {
			logger.Warn("stripestore: repair of stripe %d shard %d on backend %q failed: %v", stripeID, idx, be.Name(), err)
			continue
		}
		logger.Debug("stripestore: repaired stripe %d shard %d on backend %q", stripeID, idx, be.Name())
	}
}
