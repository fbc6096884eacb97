package erasure

import "errors"

// Errors returned by Encode and Decode. These map directly onto the
// codec failure modes named in the erasure-coding specification; callers
// above this package (the stripe store) distinguish them to decide
// whether to retry, repair, or surface an I/O error.
var (
	// ErrInvalidArgument indicates k, m, or k+m are out of the codec's
	// supported range (1 <= k, 1 <= m, k+m <= 255).
	ErrInvalidArgument = errors.New("erasure: invalid k/m")

	// ErrInsufficientShards indicates fewer than k non-nil shards were
	// supplied to Decode.
	ErrInsufficientShards = errors.New("erasure: insufficient shards")

	// ErrDecodeFailed indicates the Gaussian elimination encountered a
	// singular submatrix. Unreachable with a Vandermonde matrix built
	// from k distinct evaluation points, but detected defensively.
	ErrDecodeFailed = errors.New("erasure: decode failed")

	// ErrCorruptHeader indicates shard 0's 8-byte length header is
	// truncated, or declares a length that exceeds the reconstructible
	// plaintext size.
	ErrCorruptHeader = errors.New("erasure: corrupt shard header")

	// ErrCorruptShard indicates a non-header shard is shorter than the
	// size implied by shard 0, so it cannot supply a byte at an offset
	// the linear system needs. Distinct from ErrCorruptHeader: the
	// problem is a truncated data shard, not shard 0's length prefix.
	ErrCorruptShard = errors.New("erasure: corrupt shard")
)
