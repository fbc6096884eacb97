package config

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// backendIdentity extracts the options that distinguish one backend
// instance from another of the same type, ignoring tuning knobs
// (retry counts, timeouts) that don't change what's on the other end.
func backendIdentity(cfg BackendConfig) string {
	switch cfg.Type {
	case "localfs":
		return fmt.Sprintf("localfs:%v", cfg.Options["path"])
	case "s3":
		return fmt.Sprintf("s3:%v:%v:%v:%v", cfg.Options["endpoint"], cfg.Options["bucket"], cfg.Options["region"], cfg.Options["key_prefix"])
	default:
		return cfg.Type
	}
}

// ComputeBackendStamp hashes the ordered backend list's identity
// (count, type, and driver-specific location) into a fixed digest.
// Two configurations producing the same stamp address the same set of
// backends in the same shard order; spec.md §6 requires that order to
// never change, and this stamp is what lets the daemon detect a
// violation instead of silently decoding garbage.
func ComputeBackendStamp(backends []BackendConfig) []byte {
	var b strings.Builder
	for i, bc := range backends {
		fmt.Fprintf(&b, "%d:%s:%s\n", i, bc.Name, backendIdentity(bc))
	}
	sum := sha256.Sum256([]byte(b.String()))
	return sum[:]
}
