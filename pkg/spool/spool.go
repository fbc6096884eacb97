// Package spool implements the durable upload spool that sits between
// a stripe write and its backends. A write that must not block on slow
// or unreachable backends is first persisted to local disk as one file
// per shard, then handed to a bounded pool of worker goroutines that
// push each shard to its backend in the background, retrying with
// backoff on transient failure. A crash leaves the spool files in
// place; the next start's recovery scan rebuilds the queue from
// whatever is still on disk.
package spool

import (
	"sync"

	"github.com/cloudraidfs/cloudraidfs/pkg/backend"
	"github.com/cloudraidfs/cloudraidfs/pkg/metrics"
)

// Config configures a Spool.
type Config struct {
	// Dir is the directory holding pending shard files.
	Dir string
	// WorkerThreads is the number of goroutines draining the upload
	// queue concurrently.
	WorkerThreads int
	// MaxRetries is the number of attempts (including the first)
	// before a shard upload is abandoned and left on disk.
	MaxRetries int
	// RetryDelayMs is the base backoff in milliseconds; attempt N
	// sleeps RetryDelayMs * N before retrying.
	RetryDelayMs int
	// MaxQueueSize bounds the number of outstanding shard tasks.
	MaxQueueSize int
}

// shardTask identifies one shard of one stripe awaiting upload.
type shardTask struct {
	stripeID   uint64
	shardID    uint32
	retryCount int
}

// Spool is the durable, asynchronous counterpart to stripestore.Store:
// it accepts whole-stripe writes, persists every shard to local disk
// immediately, and uploads each shard to its backend on a worker pool.
type Spool struct {
	backends []backend.Backend // len == k+m, position is shard identity
	k, m     int
	cfg      Config
	metrics  *metrics.SpoolMetrics

	queueMu  sync.Mutex
	nonEmpty *sync.Cond // signaled when queue gains a task
	drained  *sync.Cond // signaled when queue becomes empty
	queue    []shardTask
	running  bool

	pendingMu   sync.Mutex
	pendingCond *sync.Cond // signaled when the pending map shrinks
	pending     map[uint64]int

	wg sync.WaitGroup
}

// New constructs a Spool over the given shard-indexed backends.
func New(backends []backend.Backend, k, m int, cfg Config, metricsImpl *metrics.SpoolMetrics) *Spool {
	s := &Spool{
		backends: backends,
		k:        k,
		m:        m,
		cfg:      cfg,
		metrics:  metricsImpl,
		pending:  make(map[uint64]int),
	}
	s.nonEmpty = sync.NewCond(&s.queueMu)
	s.drained = sync.NewCond(&s.queueMu)
	s.pendingCond = sync.NewCond(&s.pendingMu)
	return s
}

// Start launches the worker pool. Recover should be called before
// Start so recovered tasks are in the queue before workers begin
// draining it.
func (s *Spool) Start() {
	s.queueMu.Lock()
	s.running = true
	s.queueMu.Unlock()

	for i := 0; i < s.cfg.WorkerThreads; i++ {
		s.wg.Add(1)
		go s.worker()
	}
}

// Stop signals every worker to exit and waits for them to finish. A
// worker that is mid-upload finishes that single task, but does not
// go on to drain the rest of the queue; whatever remains is picked up
// by the next start's recovery scan. Callers that need every
// outstanding upload to complete before stopping should call Flush
// first.
func (s *Spool) Stop() {
	s.queueMu.Lock()
	s.running = false
	s.nonEmpty.Broadcast()
	s.queueMu.Unlock()

	s.wg.Wait()
}

func (s *Spool) isRunning() bool {
	s.queueMu.Lock()
	defer s.queueMu.Unlock()
	return s.running
}

// QueueLen returns the number of shard tasks currently queued.
func (s *Spool) QueueLen() int {
	s.queueMu.Lock()
	defer s.queueMu.Unlock()
	return len(s.queue)
}

// PendingStripeCount returns the number of stripes with at least one
// shard not yet confirmed uploaded.
func (s *Spool) PendingStripeCount() int {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	return len(s.pending)
}

// IsPending reports whether stripeID has any shard still awaiting
// upload or still queued.
func (s *Spool) IsPending(stripeID uint64) bool {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	_, ok := s.pending[stripeID]
	return ok
}

// WaitForStripe blocks until stripeID is no longer pending.
func (s *Spool) WaitForStripe(stripeID uint64) {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	for {
		if _, ok := s.pending[stripeID]; !ok {
			return
		}
		s.pendingCond.Wait()
	}
}

// Flush blocks until the upload queue and the pending-stripes map are
// both empty, i.e. every spooled shard has been confirmed uploaded or
// permanently abandoned.
func (s *Spool) Flush() {
	s.queueMu.Lock()
	for len(s.queue) > 0 {
		s.drained.Wait()
	}
	s.queueMu.Unlock()

	s.pendingMu.Lock()
	for len(s.pending) > 0 {
		s.pendingCond.Wait()
	}
	s.pendingMu.Unlock()
}

func (s *Spool) decrementPending(stripeID uint64) {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	n := s.pending[stripeID] - 1
	if n <= 0 {
		delete(s.pending, stripeID)
	} else {
		s.pending[stripeID] = n
	}
	s.pendingCond.Broadcast()
}
