package filelayer

import (
	"context"
	"time"
)

// Write stores data at offset, extending the file's logical size if
// the write runs past its current end. The target path must already
// exist in the metadata store (created via metastore.Store.CreateFile);
// Write itself never creates files.
func (fl *FileLayer) Write(ctx context.Context, path string, offset uint64, data []byte) error {
	start := time.Now()
	err := fl.writeRange(ctx, path, offset, data, fl.cfg.AsyncWrites)
	if err != nil {
		fl.metrics.ObserveOperation("write", time.Since(start), err)
		return err
	}
	fl.metrics.RecordBytes("write", int64(len(data)))
	fl.metrics.ObserveOperation("write", time.Since(start), nil)
	return nil
}

// writeRange performs the read-modify-write loop over every stripe
// spanning [offset, offset+len(data)), allocating stripes (including
// any intermediate gap) as needed, then updates the file's size.
func (fl *FileLayer) writeRange(ctx context.Context, path string, offset uint64, data []byte, async bool) error {
	if fl.fileCache != nil {
		fl.fileCache.Invalidate(path)
	}

	pos := offset
	remaining := data

	for len(remaining) > 0 {
		stripeIndex := pos / fl.cfg.StripeSize
		stripeOffset := pos % fl.cfg.StripeSize
		toWrite := remaining
		if room := fl.cfg.StripeSize - stripeOffset; uint64(len(toWrite)) > room {
			toWrite = toWrite[:room]
		}

		stripeID, err := fl.ensureStripe(path, stripeIndex)
		if err != nil {
			return err
		}

		stripeData, err := fl.readStripe(ctx, stripeID)
		if err != nil {
			return err
		}
		copy(stripeData[stripeOffset:], toWrite)

		if err := fl.writeStripe(ctx, stripeID, stripeData, async); err != nil {
			return err
		}

		pos += uint64(len(toWrite))
		remaining = remaining[len(toWrite):]
	}

	endPos := offset + uint64(len(data))
	size, err := fl.meta.GetSize(path)
	if err != nil {
		return err
	}
	if endPos > size {
		if err := fl.meta.SetSize(path, endPos); err != nil {
			return err
		}
	}

	return nil
}
