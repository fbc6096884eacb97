package erasure

import "encoding/binary"

// HeaderSize is the width of the little-endian original-length prefix
// carried on shard 0.
const HeaderSize = 8

// MaxTotalShards is the field's evaluation-point budget: GF(2^8) offers
// 256 distinct non-zero points (1..256 mod field), so k+m cannot exceed
// it without reusing an evaluation point and losing the Vandermonde
// matrix's distinctness guarantee.
const MaxTotalShards = 255

// validateParams checks the (k, m) constraints shared by Encode and
// Decode.
func validateParams(k, m int) error {
	if k < 1 || m < 1 || k+m > MaxTotalShards {
		return ErrInvalidArgument
	}
	return nil
}

// ShardSize returns the per-shard payload length (excluding shard 0's
// header) that Encode will produce for a plaintext of length l under
// (k, m). Useful for callers sizing buffers ahead of a call.
func ShardSize(k int, l int) int {
	if k <= 0 {
		return 0
	}
	return (l + k - 1) / k
}

// Encode splits plaintext d into k+m equal-length shards using the
// systematic encoder matrix (see buildMatrix): shards 0..k-1 are the
// raw data columns verbatim, shards k..k+m-1 are Reed-Solomon parity.
// d is zero-padded to a multiple of k before splitting. Shard 0 is
// prefixed with an 8-byte little-endian encoding of len(d) so Decode
// can recover the pre-padding length without out-of-band information.
func Encode(k, m int, d []byte) ([][]byte, error) {
	if err := validateParams(k, m); err != nil {
		return nil, err
	}

	shardSize := ShardSize(k, len(d))
	padded := make([]byte, shardSize*k)
	copy(padded, d)

	matrix := buildMatrix(k, m)
	shards := make([][]byte, k+m)

	for row := 0; row < k+m; row++ {
		shard := make([]byte, shardSize)
		coeffs := matrix[row]
		for b := 0; b < shardSize; b++ {
			var acc byte
			for col := 0; col < k; col++ {
				acc ^= gfMul(coeffs[col], padded[col*shardSize+b])
			}
			shard[b] = acc
		}
		shards[row] = shard
	}

	header := make([]byte, HeaderSize, HeaderSize+shardSize)
	binary.LittleEndian.PutUint64(header, uint64(len(d)))
	shards[0] = append(header, shards[0]...)

	return shards, nil
}

// Decode reconstructs the original plaintext from shards, a length-(k+m)
// slice where a nil entry denotes a missing shard. It picks the first k
// non-nil indices, solves the resulting kxk linear system for each byte
// offset, and truncates the result to the original plaintext length
// recovered from shard 0's header.
//
// Shard 0 must be among the supplied shards: its 8-byte header is plain
// metadata stored only alongside that one physical blob, not part of
// the erasure-protected linear system, so it has no redundancy of its
// own. With fewer than k shards present, Decode returns
// ErrInsufficientShards; with at least k present but shard 0 absent, it
// returns ErrCorruptHeader rather than guessing the pre-padding length.
func Decode(k, m int, shards [][]byte) ([]byte, error) {
	if err := validateParams(k, m); err != nil {
		return nil, err
	}
	if len(shards) != k+m {
		return nil, ErrInvalidArgument
	}

	var valid []int
	for i, s := range shards {
		if s != nil {
			valid = append(valid, i)
			if len(valid) == k {
				break
			}
		}
	}
	if len(valid) < k {
		return nil, ErrInsufficientShards
	}

	if shards[0] == nil {
		return nil, ErrCorruptHeader
	}
	if len(shards[0]) < HeaderSize {
		return nil, ErrCorruptHeader
	}

	origLen := binary.LittleEndian.Uint64(shards[0][:HeaderSize])
	shardSize := len(shards[0]) - HeaderSize

	matrix := buildMatrix(k, m)
	mat := make([][]byte, k)
	for r, idx := range valid {
		mat[r] = append([]byte(nil), matrix[idx]...)
	}

	out := make([]byte, shardSize*k)

	for b := 0; b < shardSize; b++ {
		vec := make([]byte, k)
		for r, idx := range valid {
			off := b
			if idx == 0 {
				off = HeaderSize + b
			}
			if off >= len(shards[idx]) {
				return nil, ErrCorruptShard
			}
			vec[r] = shards[idx][off]
		}

		rowCopy := make([][]byte, k)
		for i, row := range mat {
			rowCopy[i] = append([]byte(nil), row...)
		}
		sol, err := solveLinearSystem(rowCopy, vec)
		if err != nil {
			return nil, err
		}
		for i := 0; i < k; i++ {
			out[i*shardSize+b] = sol[i]
		}
	}

	if uint64(len(out)) < origLen {
		return nil, ErrCorruptHeader
	}
	return out[:origLen], nil
}
