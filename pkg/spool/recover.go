package spool

import (
	"fmt"
	"os"

	"github.com/cloudraidfs/cloudraidfs/internal/logger"
)

// Recover scans the spool directory for shard files left behind by a
// prior process, groups them by stripe, marks each such stripe
// pending with a counter equal to the number of shard files found for
// it, and enqueues one task per file. It must be called before Start
// so recovered tasks are queued before any worker begins draining the
// queue.
func (s *Spool) Recover() (int, error) {
	entries, err := os.ReadDir(s.cfg.Dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("spool: read spool dir: %w", err)
	}

	byStripe := make(map[uint64][]uint32)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		stripeID, shardID, ok := parseSpoolFileName(e.Name())
		if !ok {
			continue
		}
		byStripe[stripeID] = append(byStripe[stripeID], shardID)
	}

	if len(byStripe) == 0 {
		return 0, nil
	}

	s.pendingMu.Lock()
	for stripeID, shards := range byStripe {
		s.pending[stripeID] = len(shards)
	}
	s.pendingMu.Unlock()

	var recovered int
	s.queueMu.Lock()
	for stripeID, shards := range byStripe {
		for _, shardID := range shards {
			s.queue = append(s.queue, shardTask{stripeID: stripeID, shardID: shardID})
			recovered++
		}
	}
	s.nonEmpty.Broadcast()
	s.queueMu.Unlock()

	s.metrics.RecordRecovered(recovered)
	logger.Info("spool: recovered %d pending shard(s) across %d stripe(s) from %s", recovered, len(byStripe), s.cfg.Dir)
	return recovered, nil
}

// parseSpoolFileName parses "stripe_<20-digit id>_chunk_<2-digit
// shard>.dat", ignoring any other file (e.g. leftover .tmp files from
// an interrupted write).
func parseSpoolFileName(name string) (stripeID uint64, shardID uint32, ok bool) {
	var s uint64
	var c uint32
	n, err := fmt.Sscanf(name, "stripe_%020d_chunk_%02d.dat", &s, &c)
	if err != nil || n != 2 {
		return 0, 0, false
	}
	return s, c, true
}
