package localfs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cloudraidfs/cloudraidfs/pkg/backend"
	"github.com/cloudraidfs/cloudraidfs/pkg/backend/backendtest"
)

func TestStoreConformance(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	require.NoError(t, err)

	backendtest.Run(t, store)
}

func TestWriteCreatesStripeDirectory(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Write(ctx, 42, 3, []byte("payload")))

	got, err := os.ReadFile(filepath.Join(dir, "stripes", "00000042", "03.chunk"))
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), got)
}

func TestReadMissingShardIsNotFound(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	require.NoError(t, err)

	_, err = store.Read(context.Background(), 1, 0)
	require.True(t, errors.Is(err, backend.ErrNotFound))
}

func TestDeleteIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Delete(ctx, 5, 5))
	require.NoError(t, store.Write(ctx, 5, 5, []byte("x")))
	require.NoError(t, store.Delete(ctx, 5, 5))
	require.NoError(t, store.Delete(ctx, 5, 5))

	_, err = store.Read(ctx, 5, 5)
	require.True(t, errors.Is(err, backend.ErrNotFound))
}

func TestNoTempFilesLeftBehindAfterWrite(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	require.NoError(t, err)

	require.NoError(t, store.Write(context.Background(), 7, 1, []byte("data")))

	entries, err := os.ReadDir(filepath.Join(dir, "stripes", "00000007"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "01.chunk", entries[0].Name())
}
