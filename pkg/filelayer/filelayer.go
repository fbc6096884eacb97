// Package filelayer translates (path, offset, length) file I/O into
// stripe-aligned operations over the metadata store and stripe store:
// read-modify-write on partial stripe writes, gap-filling stripe
// allocation, whole-file cache short-circuiting, and lazy truncate.
package filelayer

import (
	"context"
	"errors"

	"github.com/cloudraidfs/cloudraidfs/pkg/cache"
	"github.com/cloudraidfs/cloudraidfs/pkg/metastore"
	"github.com/cloudraidfs/cloudraidfs/pkg/metrics"
	"github.com/cloudraidfs/cloudraidfs/pkg/spool"
	"github.com/cloudraidfs/cloudraidfs/pkg/stripestore"
)

// Config tunes a FileLayer.
type Config struct {
	// StripeSize is S, the fixed plaintext size of every stripe.
	StripeSize uint64
	// AsyncWrites routes Write through the upload spool instead of
	// writing to the stripe store inline. Defaults to false (the zero
	// value), so callers must opt in explicitly.
	AsyncWrites bool
}

// FileLayer is the component translating whole-file operations into
// stripe-aligned reads and writes. Safe for concurrent use: the
// metadata store, stripe store, spool, and caches it wraps are each
// independently safe for concurrent use, and FileLayer holds no
// mutable state of its own beyond them.
type FileLayer struct {
	meta        *metastore.Store
	stripes     *stripestore.Store
	spool       *spool.Spool
	fileCache   *cache.FileCache
	stripeCache *cache.StripeCache
	cfg         Config
	metrics     *metrics.FileLayerMetrics
}

// New constructs a FileLayer. fileCache, stripeCache, and sp may all be
// nil, in which case the corresponding optimization (whole-file cache,
// stripe cache, async writes) is simply skipped.
func New(meta *metastore.Store, stripes *stripestore.Store, sp *spool.Spool, fileCache *cache.FileCache, stripeCache *cache.StripeCache, cfg Config, metricsImpl *metrics.FileLayerMetrics) *FileLayer {
	return &FileLayer{
		meta:        meta,
		stripes:     stripes,
		spool:       sp,
		fileCache:   fileCache,
		stripeCache: stripeCache,
		cfg:         cfg,
		metrics:     metricsImpl,
	}
}

// MetaFileIO adapts fl to metastore.FileIO, binding ctx for the calls
// the metadata store makes on fl's behalf during self-persistence. The
// metadata store never imports this package; it is satisfied
// structurally.
func (fl *FileLayer) MetaFileIO(ctx context.Context) metastore.FileIO {
	return &metaFileIO{fl: fl, ctx: ctx}
}

type metaFileIO struct {
	fl  *FileLayer
	ctx context.Context
}

func (m *metaFileIO) Read(path string, offset uint64, length int) ([]byte, error) {
	return m.fl.readRange(m.ctx, path, offset, length)
}

func (m *metaFileIO) Write(path string, offset uint64, data []byte) error {
	return m.fl.SyncWrite(m.ctx, path, offset, data)
}

// ensureStripe returns the stripe ID backing stripeIndex of path,
// allocating it (and any intermediate gap stripes) if necessary so the
// file's stripe list stays dense.
func (fl *FileLayer) ensureStripe(path string, stripeIndex uint64) (uint64, error) {
	stripes, err := fl.meta.GetStripes(path)
	if err != nil {
		return 0, err
	}
	if stripeIndex < uint64(len(stripes)) {
		return stripes[stripeIndex], nil
	}
	for uint64(len(stripes)) <= stripeIndex {
		id := fl.stripes.AllocateStripeID()
		if err := fl.meta.AddStripe(path, id); err != nil {
			return 0, err
		}
		stripes = append(stripes, id)
	}
	return stripes[stripeIndex], nil
}

// readStripe returns the S-byte plaintext of stripeID: stripe cache,
// then spool (if the stripe is still pending durable upload), then the
// stripe store. A stripeID with no shards on any backend is not an
// error; it means the stripe was allocated to keep a file's stripe
// vector dense (a gap-filled or not-yet-uploaded stripe) but never
// actually written, and reads as all zeros. Any other stripe store
// error, including ErrInsufficientShards for a stripe that was written
// and has since lost more than m shards, is propagated: the data is
// gone, not absent, and must surface as an I/O error rather than a
// silent zero-fill.
func (fl *FileLayer) readStripe(ctx context.Context, stripeID uint64) ([]byte, error) {
	if fl.stripeCache != nil {
		if data, ok := fl.stripeCache.Get(stripeID); ok {
			return data, nil
		}
	}

	if fl.spool != nil && fl.spool.IsPending(stripeID) {
		if data, err := fl.spool.ReadPending(stripeID); err == nil {
			return data, nil
		}
	}

	data, err := fl.stripes.ReadStripe(ctx, stripeID)
	if err != nil {
		if errors.Is(err, stripestore.ErrStripeNotFound) {
			return make([]byte, fl.cfg.StripeSize), nil
		}
		return nil, err
	}
	if uint64(len(data)) < fl.cfg.StripeSize {
		padded := make([]byte, fl.cfg.StripeSize)
		copy(padded, data)
		data = padded
	}

	if fl.stripeCache != nil {
		fl.stripeCache.Put(stripeID, data)
	}
	return data, nil
}

// writeStripe durably persists an S-byte stripe through the write path
// named by async, and keeps the stripe cache coherent.
func (fl *FileLayer) writeStripe(ctx context.Context, stripeID uint64, data []byte, async bool) error {
	if fl.stripeCache != nil {
		fl.stripeCache.Invalidate(stripeID)
	}

	var err error
	if async && fl.spool != nil {
		err = fl.spool.WriteAsync(stripeID, data)
	} else {
		err = fl.stripes.WriteStripe(ctx, stripeID, data)
	}
	if err != nil {
		return err
	}

	if fl.stripeCache != nil {
		fl.stripeCache.Put(stripeID, data)
	}
	return nil
}

// Flush waits for every outstanding asynchronous upload to become
// durable. A no-op if the file layer was constructed without a spool.
func (fl *FileLayer) Flush() {
	if fl.spool != nil {
		fl.spool.Flush()
	}
}

// SyncWrite writes data at offset, bypassing the upload spool even if
// AsyncWrites is configured: every shard write completes against its
// backend before this returns. Used by metadata self-persistence,
// which must not risk losing the snapshot to an abandoned spool entry.
func (fl *FileLayer) SyncWrite(ctx context.Context, path string, offset uint64, data []byte) error {
	return fl.writeRange(ctx, path, offset, data, false)
}
