package filelayer

import (
	"context"
	"time"
)

// Read returns up to length bytes starting at offset, clipped to the
// file's current size. Reading at or past EOF returns an empty slice,
// not an error.
func (fl *FileLayer) Read(ctx context.Context, path string, offset uint64, length int) ([]byte, error) {
	start := time.Now()

	size, err := fl.meta.GetSize(path)
	if err != nil {
		fl.metrics.ObserveOperation("read", time.Since(start), err)
		return nil, err
	}
	if offset >= size {
		fl.metrics.ObserveOperation("read", time.Since(start), nil)
		return []byte{}, nil
	}
	if offset+uint64(length) > size {
		length = int(size - offset)
	}

	wholeFile := offset == 0 && uint64(length) == size
	if wholeFile && fl.fileCache != nil {
		if data, ok := fl.fileCache.Get(path); ok {
			fl.metrics.RecordWholeFileRead(true)
			fl.metrics.ObserveOperation("read", time.Since(start), nil)
			return data, nil
		}
		fl.metrics.RecordWholeFileRead(false)
	}

	data, err := fl.readRange(ctx, path, offset, length)
	if err != nil {
		fl.metrics.ObserveOperation("read", time.Since(start), err)
		return nil, err
	}

	if wholeFile && fl.fileCache != nil {
		fl.fileCache.Put(path, data)
	}

	fl.metrics.RecordBytes("read", int64(len(data)))
	fl.metrics.ObserveOperation("read", time.Since(start), nil)
	return data, nil
}

// readRange walks the stripes spanning [offset, offset+length),
// zero-filling any stripe index beyond the file's current stripe list.
// Shared by Read and by the metastore.FileIO adapter, which reads the
// self-persisted snapshot through the same stripe-aligned path.
func (fl *FileLayer) readRange(ctx context.Context, path string, offset uint64, length int) ([]byte, error) {
	stripes, err := fl.meta.GetStripes(path)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, length)
	pos := offset
	remaining := length

	for remaining > 0 {
		stripeIndex := pos / fl.cfg.StripeSize
		stripeOffset := pos % fl.cfg.StripeSize
		toRead := remaining
		if room := int(fl.cfg.StripeSize - stripeOffset); toRead > room {
			toRead = room
		}

		var stripeData []byte
		if stripeIndex < uint64(len(stripes)) {
			stripeData, err = fl.readStripe(ctx, stripes[stripeIndex])
			if err != nil {
				return nil, err
			}
		} else {
			stripeData = make([]byte, fl.cfg.StripeSize)
		}

		out = append(out, stripeData[stripeOffset:stripeOffset+uint64(toRead)]...)
		pos += uint64(toRead)
		remaining -= toRead
	}

	return out, nil
}
