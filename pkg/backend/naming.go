package backend

import "fmt"

// ObjectKey returns the canonical object naming discipline for a shard,
// shared by drivers that store shards under a path-like key (localfs,
// s3blob): stripes/<stripeID:08>/<shardID:02>.chunk. This is a
// convenience for drivers that choose to use it; the core never parses
// or otherwise interprets backend object names.
func ObjectKey(stripeID uint64, shardID uint32) string {
	return fmt.Sprintf("stripes/%08d/%02d.chunk", stripeID, shardID)
}
