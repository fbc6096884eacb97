// Package backend defines the uniform blob-backend contract that the
// stripe store and upload workers fan shard I/O out to. A backend is an
// opaque store of (stripeID, shardID) blobs — local directory, WebDAV
// server, or S3-compatible object store are all just implementations of
// this interface; the core never inspects a backend's internal naming.
package backend

import "context"

// Backend is the capability set every blob store driver implements.
// All three operations are synchronous and may block on I/O; callers
// that need concurrency across backends run them from separate
// goroutines (see pkg/stripestore).
type Backend interface {
	// Read fetches the shard for (stripeID, shardID). Returns
	// ErrNotFound if the shard does not exist, distinct from transport
	// failures, because the stripe store treats a missing shard as a
	// repair trigger and a transient/permanent I/O failure as merely
	// indeterminate.
	Read(ctx context.Context, stripeID uint64, shardID uint32) ([]byte, error)

	// Write persists data as the shard for (stripeID, shardID),
	// overwriting any existing shard at that address.
	Write(ctx context.Context, stripeID uint64, shardID uint32, data []byte) error

	// Delete removes the shard for (stripeID, shardID). A shard that is
	// already absent counts as success (ErrNotFound is not returned).
	Delete(ctx context.Context, stripeID uint64, shardID uint32) error

	// Name identifies the backend for logging and metrics (e.g.
	// "localfs:/data/raid0", "s3:my-bucket").
	Name() string
}
