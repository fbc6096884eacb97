package erasure

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func randomBytes(t *testing.T, n int) []byte {
	t.Helper()
	b := make([]byte, n)
	_, err := rand.New(rand.NewSource(int64(n) + 1)).Read(b)
	require.NoError(t, err)
	return b
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	sizes := []int{0, 1, 7, 4096, 1<<20 + 37}
	for k := 1; k <= 6; k++ {
		for m := 1; m <= 3; m++ {
			for _, size := range sizes {
				data := randomBytes(t, size)
				shards, err := Encode(k, m, data)
				require.NoError(t, err)
				require.Len(t, shards, k+m)

				out, err := Decode(k, m, shards)
				require.NoError(t, err)
				require.True(t, bytes.Equal(data, out), "k=%d m=%d size=%d", k, m, size)
			}
		}
	}
}

func TestSystematicShardsAreRawData(t *testing.T) {
	k, m := 3, 2
	data := randomBytes(t, 300)
	shards, err := Encode(k, m, data)
	require.NoError(t, err)

	shardSize := ShardSize(k, len(data))
	padded := make([]byte, shardSize*k)
	copy(padded, data)

	for c := 0; c < k; c++ {
		var got []byte
		if c == 0 {
			got = shards[0][HeaderSize:]
		} else {
			got = shards[c]
		}
		require.Equal(t, padded[c*shardSize:(c+1)*shardSize], got, "data shard %d must be raw", c)
	}
}

func TestMFailureTolerance(t *testing.T) {
	for k := 1; k <= 5; k++ {
		for m := 1; m <= 3; m++ {
			data := randomBytes(t, 5000)
			shards, err := Encode(k, m, data)
			require.NoError(t, err)

			for _, subset := range subsetsUpTo(k+m, m) {
				if contains(subset, 0) {
					// Shard 0's header carries no erasure protection of its
					// own; see DESIGN.md "Known tension" note.
					continue
				}
				trial := append([][]byte(nil), shards...)
				for _, i := range subset {
					trial[i] = nil
				}
				out, err := Decode(k, m, trial)
				require.NoError(t, err, "k=%d m=%d subset=%v", k, m, subset)
				require.True(t, bytes.Equal(data, out))
			}
		}
	}
}

func TestInsufficientShardsRejected(t *testing.T) {
	k, m := 3, 2
	data := randomBytes(t, 1000)
	shards, err := Encode(k, m, data)
	require.NoError(t, err)

	for _, subset := range subsetsUpTo(k+m, m+1) {
		if len(subset) <= m {
			continue
		}
		trial := append([][]byte(nil), shards...)
		for _, i := range subset {
			trial[i] = nil
		}
		_, err := Decode(k, m, trial)
		require.ErrorIs(t, err, ErrInsufficientShards)
	}
}

func TestDecodeMissingShardZeroFails(t *testing.T) {
	k, m := 4, 1
	data := randomBytes(t, 4096)
	shards, err := Encode(k, m, data)
	require.NoError(t, err)

	shards[0] = nil
	_, err = Decode(k, m, shards)
	require.ErrorIs(t, err, ErrCorruptHeader)
}

func TestDecodeTruncatedHeaderRejected(t *testing.T) {
	k, m := 2, 1
	data := randomBytes(t, 128)
	shards, err := Encode(k, m, data)
	require.NoError(t, err)

	shards[0] = shards[0][:HeaderSize-1]
	_, err = Decode(k, m, shards)
	require.ErrorIs(t, err, ErrCorruptHeader)
}

func TestDecodeTruncatedDataShardRejected(t *testing.T) {
	k, m := 2, 1
	data := randomBytes(t, 128)
	shards, err := Encode(k, m, data)
	require.NoError(t, err)

	shards[1] = shards[1][:len(shards[1])-1]
	_, err = Decode(k, m, shards)
	require.ErrorIs(t, err, ErrCorruptShard)
}

func TestInvalidParams(t *testing.T) {
	_, err := Encode(0, 1, []byte("x"))
	require.True(t, errors.Is(err, ErrInvalidArgument))

	_, err = Encode(1, 0, []byte("x"))
	require.True(t, errors.Is(err, ErrInvalidArgument))

	_, err = Encode(200, 100, []byte("x"))
	require.True(t, errors.Is(err, ErrInvalidArgument))
}

// subsetsUpTo returns every subset of {0..n-1} with size 1..maxSize.
func subsetsUpTo(n, maxSize int) [][]int {
	var out [][]int
	for mask := 1; mask < (1 << n); mask++ {
		var subset []int
		for i := 0; i < n; i++ {
			if mask&(1<<i) != 0 {
				subset = append(subset, i)
			}
		}
		if len(subset) <= maxSize {
			out = append(out, subset)
		}
	}
	return out
}

func contains(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
