package spool

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cloudraidfs/cloudraidfs/internal/logger"
	"github.com/cloudraidfs/cloudraidfs/pkg/erasure"
)

// spoolFileName is the on-disk name for one shard of one stripe:
// stripe_<stripe_id, 20 digits>_chunk_<shard_id, 2 digits>.dat.
func spoolFileName(stripeID uint64, shardID uint32) string {
	return fmt.Sprintf("stripe_%020d_chunk_%02d.dat", stripeID, shardID)
}

func (s *Spool) spoolPath(stripeID uint64, shardID uint32) string {
	return filepath.Join(s.cfg.Dir, spoolFileName(stripeID, shardID))
}

// writeSpoolFile persists one shard to disk via write-to-temp then
// rename, so a crash mid-write never leaves a partially written shard
// file for recovery to pick up.
func (s *Spool) writeSpoolFile(stripeID uint64, shardID uint32, data []byte) error {
	final := s.spoolPath(stripeID, shardID)
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("spool: write temp shard file: %w", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		return fmt.Errorf("spool: rename shard file into place: %w", err)
	}
	return nil
}

func (s *Spool) readSpoolFile(stripeID uint64, shardID uint32) ([]byte, error) {
	return os.ReadFile(s.spoolPath(stripeID, shardID))
}

func (s *Spool) removeSpoolFile(stripeID uint64, shardID uint32) {
	if err := os.Remove(s.spoolPath(stripeID, shardID)); err != nil && !os.IsNotExist(err) {
		logger.Warn("spool: failed to remove shard file for stripe %d shard %d: %v", stripeID, shardID, err)
	}
}

// WriteAsync erasure-encodes plaintext, persists every shard to the
// spool directory, marks the stripe pending, and enqueues one upload
// task per shard. It returns once every shard is durably on local
// disk; the backend uploads themselves happen on the worker pool.
func (s *Spool) WriteAsync(stripeID uint64, plaintext []byte) error {
	shards, err := erasure.Encode(s.k, s.m, plaintext)
	if err != nil {
		return err
	}

	s.queueMu.Lock()
	if len(s.queue)+len(shards) > s.cfg.MaxQueueSize {
		s.queueMu.Unlock()
		return ErrQueueFull
	}
	s.queueMu.Unlock()

	for i, shard := range shards {
		if err := s.writeSpoolFile(stripeID, uint32(i), shard); err != nil {
			return err
		}
	}

	s.pendingMu.Lock()
	s.pending[stripeID] = len(shards)
	s.pendingMu.Unlock()

	s.queueMu.Lock()
	for i := range shards {
		s.queue = append(s.queue, shardTask{stripeID: stripeID, shardID: uint32(i)})
	}
	depth := len(s.queue)
	s.nonEmpty.Broadcast()
	s.queueMu.Unlock()

	s.metrics.SetQueueDepth(depth)
	return nil
}
