package filelayer

import (
	"context"
	"time"
)

// Truncate sets a file's logical size. No shard is ever deleted. When
// the file shrinks, stripes lying wholly past the new size are dropped
// from the file's stripe list (their shards stay on the backends,
// unreachable), and the part of the last kept stripe past the new size
// is overwritten with zeros, so a region re-exposed by later growing
// the file reads as zeros.
func (fl *FileLayer) Truncate(ctx context.Context, path string, newSize uint64) error {
	start := time.Now()

	if fl.fileCache != nil {
		fl.fileCache.Invalidate(path)
	}

	stripes, err := fl.meta.GetStripes(path)
	if err != nil {
		fl.metrics.ObserveOperation("truncate", time.Since(start), err)
		return err
	}
	if fl.stripeCache != nil {
		for _, stripeID := range stripes {
			fl.stripeCache.Invalidate(stripeID)
		}
	}

	if size, sizeErr := fl.meta.GetSize(path); sizeErr == nil && newSize < size {
		keep := (newSize + fl.cfg.StripeSize - 1) / fl.cfg.StripeSize
		if keep < uint64(len(stripes)) {
			err = fl.meta.SetStripes(path, stripes[:keep])
		}
		if tail := newSize % fl.cfg.StripeSize; err == nil && tail != 0 && keep <= uint64(len(stripes)) {
			err = fl.writeRange(ctx, path, newSize, make([]byte, fl.cfg.StripeSize-tail), fl.cfg.AsyncWrites)
		}
		if err != nil {
			fl.metrics.ObserveOperation("truncate", time.Since(start), err)
			return err
		}
	}

	if err := fl.meta.SetSize(path, newSize); err != nil {
		fl.metrics.ObserveOperation("truncate", time.Since(start), err)
		return err
	}

	fl.metrics.ObserveOperation("truncate", time.Since(start), nil)
	return nil
}
