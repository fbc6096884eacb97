// Package backendtest is a conformance suite for backend.Backend
// implementations. It tests the interface contract, not implementation
// details, so the same suite runs against localfs, s3blob, and any future
// driver.
//
// Usage:
//
//	func TestStoreConformance(t *testing.T) {
//	    store, _ := New(t.TempDir())
//	    backendtest.Run(t, store)
//	}
package backendtest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cloudraidfs/cloudraidfs/pkg/backend"
)

func ctx() context.Context { return context.Background() }

// Run executes the full conformance suite against store.
func Run(t *testing.T, store backend.Backend) {
	t.Run("WriteThenRead", func(t *testing.T) { testWriteThenRead(t, store) })
	t.Run("ReadMissingIsNotFound", func(t *testing.T) { testReadMissingIsNotFound(t, store) })
	t.Run("WriteOverwrites", func(t *testing.T) { testWriteOverwrites(t, store) })
	t.Run("DeleteThenReadIsNotFound", func(t *testing.T) { testDeleteThenReadIsNotFound(t, store) })
	t.Run("DeleteMissingIsNoop", func(t *testing.T) { testDeleteMissingIsNoop(t, store) })
	t.Run("DistinctStripesAreIsolated", func(t *testing.T) { testDistinctStripesAreIsolated(t, store) })
	t.Run("DistinctShardsAreIsolated", func(t *testing.T) { testDistinctShardsAreIsolated(t, store) })
	t.Run("EmptyPayloadRoundTrips", func(t *testing.T) { testEmptyPayloadRoundTrips(t, store) })
}

func testWriteThenRead(t *testing.T, store backend.Backend) {
	data := []byte("the quick brown fox")
	require.NoError(t, store.Write(ctx(), 100, 0, data))

	got, err := store.Read(ctx(), 100, 0)
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func testReadMissingIsNotFound(t *testing.T, store backend.Backend) {
	_, err := store.Read(ctx(), 999999, 7)
	require.True(t, errors.Is(err, backend.ErrNotFound), "expected ErrNotFound, got %v", err)
}

func testWriteOverwrites(t *testing.T, store backend.Backend) {
	require.NoError(t, store.Write(ctx(), 101, 1, []byte("first")))
	require.NoError(t, store.Write(ctx(), 101, 1, []byte("second-longer-payload")))

	got, err := store.Read(ctx(), 101, 1)
	require.NoError(t, err)
	require.Equal(t, []byte("second-longer-payload"), got)
}

func testDeleteThenReadIsNotFound(t *testing.T, store backend.Backend) {
	require.NoError(t, store.Write(ctx(), 102, 2, []byte("gone soon")))
	require.NoError(t, store.Delete(ctx(), 102, 2))

	_, err := store.Read(ctx(), 102, 2)
	require.True(t, errors.Is(err, backend.ErrNotFound))
}

func testDeleteMissingIsNoop(t *testing.T, store backend.Backend) {
	require.NoError(t, store.Delete(ctx(), 103, 3))
	require.NoError(t, store.Delete(ctx(), 103, 3))
}

func testDistinctStripesAreIsolated(t *testing.T, store backend.Backend) {
	require.NoError(t, store.Write(ctx(), 200, 0, []byte("stripe-200")))
	require.NoError(t, store.Write(ctx(), 201, 0, []byte("stripe-201")))

	a, err := store.Read(ctx(), 200, 0)
	require.NoError(t, err)
	require.Equal(t, []byte("stripe-200"), a)

	b, err := store.Read(ctx(), 201, 0)
	require.NoError(t, err)
	require.Equal(t, []byte("stripe-201"), b)
}

func testDistinctShardsAreIsolated(t *testing.T, store backend.Backend) {
	require.NoError(t, store.Write(ctx(), 300, 0, []byte("shard-0")))
	require.NoError(t, store.Write(ctx(), 300, 1, []byte("shard-1")))

	a, err := store.Read(ctx(), 300, 0)
	require.NoError(t, err)
	require.Equal(t, []byte("shard-0"), a)

	b, err := store.Read(ctx(), 300, 1)
	require.NoError(t, err)
	require.Equal(t, []byte("shard-1"), b)
}

func testEmptyPayloadRoundTrips(t *testing.T, store backend.Backend) {
	require.NoError(t, store.Write(ctx(), 400, 0, []byte{}))

	got, err := store.Read(ctx(), 400, 0)
	require.NoError(t, err)
	require.Empty(t, got)
}
