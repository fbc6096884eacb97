package spool

import "errors"

var (
	// ErrQueueFull indicates the bounded upload queue is saturated;
	// the caller should back off and retry, or fall back to a
	// synchronous stripe-store write.
	ErrQueueFull = errors.New("spool: upload queue is full")

	// ErrInsufficientShards indicates fewer than k spool files were
	// present when reading a pending stripe back from the spool.
	ErrInsufficientShards = errors.New("spool: insufficient shards recoverable from spool")

	// ErrStopped indicates an operation was attempted after Stop.
	ErrStopped = errors.New("spool: uploader is stopped")
)
