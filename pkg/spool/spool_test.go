package spool

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudraidfs/cloudraidfs/pkg/backend"
	"github.com/cloudraidfs/cloudraidfs/pkg/backend/backendtest"
)

func newTestSpool(t *testing.T, k, m int) (*Spool, []*backendtest.MemoryBackend) {
	t.Helper()
	dir := t.TempDir()
	backends := make([]*backendtest.MemoryBackend, k+m)
	ifaces := make([]backend.Backend, k+m)
	for i := 0; i < k+m; i++ {
		be := backendtest.NewMemoryBackend(fmt.Sprintf("memory-%d", i))
		backends[i] = be
		ifaces[i] = be
	}
	cfg := Config{
		Dir:           dir,
		WorkerThreads: 2,
		MaxRetries:    3,
		RetryDelayMs:  1,
		MaxQueueSize:  100,
	}
	s := New(ifaces, k, m, cfg, nil)
	return s, backends
}

func TestWriteAsyncPersistsShardsBeforeReturning(t *testing.T) {
	s, _ := newTestSpool(t, 3, 2)
	require.NoError(t, s.WriteAsync(100, []byte("hello world")))

	for i := 0; i < 5; i++ {
		_, err := os.Stat(s.spoolPath(100, uint32(i)))
		assert.NoError(t, err, "shard %d should be on disk", i)
	}
}

func TestWriteAsyncRejectsWhenQueueFull(t *testing.T) {
	s, _ := newTestSpool(t, 3, 2)
	s.cfg.MaxQueueSize = 4 // smaller than k+m=5

	err := s.WriteAsync(100, []byte("hello world"))
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestWorkersUploadThenRemoveSpoolFiles(t *testing.T) {
	s, backends := newTestSpool(t, 3, 2)
	require.NoError(t, s.WriteAsync(100, []byte("hello world")))

	s.Start()
	defer s.Stop()

	require.Eventually(t, func() bool {
		return !s.IsPending(100)
	}, time.Second, time.Millisecond, "stripe should stop being pending once every shard uploads")

	for i, be := range backends {
		_, err := be.Read(context.Background(), 100, uint32(i))
		assert.NoError(t, err, "shard %d should have reached its backend", i)
		_, statErr := os.Stat(s.spoolPath(100, uint32(i)))
		assert.True(t, os.IsNotExist(statErr), "shard %d spool file should be removed after upload", i)
	}
}

func TestWorkerRetriesTransientFailureThenSucceeds(t *testing.T) {
	s, backends := newTestSpool(t, 3, 2)
	backends[0].FailNext(100, 0, backend.ErrTransientIO)

	require.NoError(t, s.WriteAsync(100, []byte("hello world")))
	s.Start()
	defer s.Stop()

	require.Eventually(t, func() bool {
		return !s.IsPending(100)
	}, time.Second, time.Millisecond)

	_, err := backends[0].Read(context.Background(), 100, 0)
	assert.NoError(t, err)
}

func TestWorkerAbandonsAfterMaxRetries(t *testing.T) {
	s, backends := newTestSpool(t, 3, 2)
	s.cfg.MaxRetries = 1
	// MaxRetries=1 allows a single attempt, and it fails permanently on
	// shard 0. FailNext holds one pending failure per shard, so the
	// repeated calls re-arm that same failure.
	for i := 0; i < 10; i++ {
		backends[0].FailNext(100, 0, backend.ErrPermanentIO)
	}

	require.NoError(t, s.WriteAsync(100, []byte("hello world")))
	s.Start()
	defer s.Stop()

	require.Eventually(t, func() bool {
		return !s.IsPending(100)
	}, time.Second, time.Millisecond, "stripe should be dropped from pending once abandoned")

	_, statErr := os.Stat(s.spoolPath(100, 0))
	assert.NoError(t, statErr, "abandoned shard file should remain on disk for recovery")
}

func TestFlushWaitsForQueueAndPendingToDrain(t *testing.T) {
	s, _ := newTestSpool(t, 3, 2)
	require.NoError(t, s.WriteAsync(100, []byte("hello world")))
	require.NoError(t, s.WriteAsync(101, []byte("goodbye world")))

	s.Start()
	defer s.Stop()

	done := make(chan struct{})
	go func() {
		s.Flush()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("flush did not return once all uploads completed")
	}

	assert.Equal(t, 0, s.QueueLen())
	assert.Equal(t, 0, s.PendingStripeCount())
}

func TestRecoverRebuildsQueueFromSpoolDirectory(t *testing.T) {
	s, _ := newTestSpool(t, 3, 2)
	require.NoError(t, s.writeSpoolFile(100, 0, []byte("shard0")))
	require.NoError(t, s.writeSpoolFile(100, 1, []byte("shard1")))
	require.NoError(t, s.writeSpoolFile(101, 2, []byte("shard2")))

	n, err := s.Recover()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, s.QueueLen())
	assert.True(t, s.IsPending(100))
	assert.True(t, s.IsPending(101))
}

func TestRecoverOnEmptyDirectoryIsNoop(t *testing.T) {
	s, _ := newTestSpool(t, 3, 2)
	n, err := s.Recover()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestReadPendingReconstructsFromSpoolFiles(t *testing.T) {
	s, _ := newTestSpool(t, 3, 2)
	require.NoError(t, s.WriteAsync(100, []byte("hello, spooled world")))

	got, err := s.ReadPending(100)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello, spooled world"), got)
}

func TestReadPendingFailsWithFewerThanKShards(t *testing.T) {
	s, _ := newTestSpool(t, 3, 2)
	require.NoError(t, s.writeSpoolFile(100, 0, []byte("only one shard")))

	_, err := s.ReadPending(100)
	assert.ErrorIs(t, err, ErrInsufficientShards)
}

func TestParseSpoolFileNameRoundTrips(t *testing.T) {
	name := spoolFileName(12345, 7)
	stripeID, shardID, ok := parseSpoolFileName(name)
	require.True(t, ok)
	assert.Equal(t, uint64(12345), stripeID)
	assert.Equal(t, uint32(7), shardID)
}

func TestParseSpoolFileNameRejectsUnrelatedFiles(t *testing.T) {
	_, _, ok := parseSpoolFileName("not-a-spool-file.dat")
	assert.False(t, ok)
}
