package spool

import (
	"context"
	"time"

	"github.com/cloudraidfs/cloudraidfs/internal/logger"
)

func (s *Spool) worker() {
	defer s.wg.Done()
	for {
		if !s.isRunning() {
			return
		}

		s.queueMu.Lock()
		for len(s.queue) == 0 && s.running {
			s.nonEmpty.Wait()
		}
		if !s.running {
			s.queueMu.Unlock()
			return
		}
		task := s.queue[0]
		s.queue = s.queue[1:]
		depth := len(s.queue)
		if depth == 0 {
			s.drained.Broadcast()
		}
		s.queueMu.Unlock()

		s.metrics.SetQueueDepth(depth)
		s.processTask(task)
	}
}

func (s *Spool) processTask(task shardTask) {
	start := time.Now()
	data, err := s.readSpoolFile(task.stripeID, task.shardID)
	if err != nil {
		logger.Error("spool: could not read spooled shard for stripe %d shard %d: %v", task.stripeID, task.shardID, err)
		s.retryOrAbandon(task)
		return
	}

	be := s.backends[task.shardID]
	err = be.Write(context.Background(), task.stripeID, task.shardID, data)
	s.metrics.ObserveUpload(time.Since(start), err)
	if err == nil {
		s.removeSpoolFile(task.stripeID, task.shardID)
		s.decrementPending(task.stripeID)
		logger.Debug("spool: uploaded stripe %d shard %d to backend %q", task.stripeID, task.shardID, be.Name())
		return
	}

	logger.Warn("spool: upload of stripe %d shard %d to backend %q failed: %v", task.stripeID, task.shardID, be.Name(), err)
	s.retryOrAbandon(task)
}

func (s *Spool) retryOrAbandon(task shardTask) {
	task.retryCount++
	if task.retryCount >= s.cfg.MaxRetries {
		logger.Error("spool: abandoning stripe %d shard %d after %d attempts; shard file left on disk", task.stripeID, task.shardID, task.retryCount)
		s.decrementPending(task.stripeID)
		return
	}

	s.metrics.RecordRetry()
	delay := time.Duration(s.cfg.RetryDelayMs*task.retryCount) * time.Millisecond
	time.Sleep(delay)

	s.queueMu.Lock()
	s.queue = append(s.queue, task)
	depth := len(s.queue)
	s.nonEmpty.Signal()
	s.queueMu.Unlock()
	s.metrics.SetQueueDepth(depth)
}
