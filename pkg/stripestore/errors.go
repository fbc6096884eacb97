package stripestore

import "errors"

// Errors returned by Store operations, beyond those it passes through
// unwrapped from pkg/backend and pkg/erasure (backend.ErrNotFound,
// erasure.ErrInvalidArgument, and so on).
var (
	// ErrInsufficientShards indicates fewer than k of the k+m shards for a
	// stripe could be read, but at least one was present; the stripe was
	// written at some point and is now unrecoverable. It is a sentinel of
	// this package, distinct from erasure.ErrInsufficientShards, so
	// callers above this package only need to import one error set.
	ErrInsufficientShards = errors.New("stripestore: insufficient shards to decode stripe")

	// ErrStripeNotFound indicates none of the k+m shards for a stripe
	// exist on any backend. Unlike ErrInsufficientShards, this is not a
	// failure: it is the normal shape of a stripe ID that was allocated
	// (to keep a file's stripe vector dense) but never actually written,
	// such as an intermediate gap stripe in a sparse write. Callers above
	// this package zero-fill on this error instead of propagating it.
	ErrStripeNotFound = errors.New("stripestore: stripe has no shards present")

	// ErrWriteFailed indicates at least one of the k+m backend writes
	// failed. The spec treats a single failed shard write as a whole-stripe
	// failure; the caller (typically the upload engine) is expected to
	// retry.
	ErrWriteFailed = errors.New("stripestore: one or more shard writes failed")

	// ErrDeleteFailed indicates at least one of the k+m backend deletes
	// failed with something other than "already absent".
	ErrDeleteFailed = errors.New("stripestore: one or more shard deletes failed")
)
