// Package raidfs is the filesystem-adaptor facade: the one surface a
// protocol handler (FUSE, NFS, a CLI, …) talks to. It composes the
// metadata store and file layer into the POSIX-shaped operation set —
// lookup, list, create, remove, rename, read, write, truncate, sync —
// and enforces the one cross-cutting rule that belongs at this layer
// rather than inside either component: the reserved metadata path is
// invisible and immutable from here.
package raidfs

import (
	"bytes"
	"context"
	"path"

	"github.com/cloudraidfs/cloudraidfs/pkg/filelayer"
	"github.com/cloudraidfs/cloudraidfs/pkg/metastore"
)

// FS is the filesystem-adaptor contract described in spec.md §6.
// Paths are absolute, "/"-separated; callers must pre-canonicalize
// (no ".." resolution happens here).
type FS struct {
	meta *metastore.Store
	file *filelayer.FileLayer
}

// New constructs an FS over an already-wired metadata store and file
// layer. New does not load anything; LoadMeta brings the store to the
// last persisted snapshot.
func New(meta *metastore.Store, file *filelayer.FileLayer) *FS {
	return &FS{meta: meta, file: file}
}

// isReserved reports whether p names the metadata snapshot's own
// backing path, which must never be visible or mutable through this
// facade.
func isReserved(p string) bool {
	return path.Clean("/"+p) == metastore.MetaPath
}

// Lookup reports whether path is missing, a file, or a directory. The
// reserved metadata path always reports Missing.
func (fs *FS) Lookup(p string) metastore.LookupResult {
	if isReserved(p) {
		return metastore.LookupResult{Kind: metastore.Missing}
	}
	return fs.meta.Lookup(p)
}

// List returns the direct child names of a directory, with the
// reserved metadata path filtered out if it would otherwise appear as
// a child of the root.
func (fs *FS) List(p string) ([]string, error) {
	names, err := fs.meta.List(p)
	if err != nil {
		return nil, err
	}
	reservedName := metastore.MetaPath[1:]
	out := names[:0:0]
	for _, name := range names {
		if name == reservedName && path.Clean("/"+p) == "/" {
			continue
		}
		out = append(out, name)
	}
	return out, nil
}

// CreateFile registers path as a new, empty file.
func (fs *FS) CreateFile(p string) error {
	if isReserved(p) {
		return ErrAccessDenied
	}
	return fs.meta.CreateFile(p)
}

// CreateDir registers path as a new, empty directory.
func (fs *FS) CreateDir(p string) error {
	if isReserved(p) {
		return ErrAccessDenied
	}
	return fs.meta.CreateDir(p)
}

// Unlink removes a file.
func (fs *FS) Unlink(p string) error {
	if isReserved(p) {
		return ErrAccessDenied
	}
	return fs.meta.Unlink(p)
}

// Rmdir removes an empty directory.
func (fs *FS) Rmdir(p string) error {
	if isReserved(p) {
		return ErrAccessDenied
	}
	return fs.meta.Rmdir(p)
}

// Rename moves a file or directory (with all descendants) from one
// path to another.
func (fs *FS) Rename(from, to string) error {
	if isReserved(from) || isReserved(to) {
		return ErrAccessDenied
	}
	return fs.meta.Rename(from, to)
}

// Read returns up to length bytes of path starting at offset.
func (fs *FS) Read(ctx context.Context, p string, offset uint64, length int) ([]byte, error) {
	if isReserved(p) {
		return nil, metastore.ErrNotExist
	}
	return fs.file.Read(ctx, p, offset, length)
}

// Write stores data at offset in path, extending the file if needed.
func (fs *FS) Write(ctx context.Context, p string, offset uint64, data []byte) error {
	if isReserved(p) {
		return ErrAccessDenied
	}
	return fs.file.Write(ctx, p, offset, data)
}

// Truncate sets path's logical size.
func (fs *FS) Truncate(ctx context.Context, p string, size uint64) error {
	if isReserved(p) {
		return ErrAccessDenied
	}
	return fs.file.Truncate(ctx, p, size)
}

// LoadMeta loads the persisted metadata snapshot, bringing the store
// to the state it was in at the last successful Sync. Callers use
// this once at startup, after the spool has recovered any pending
// shards from a previous crash.
func (fs *FS) LoadMeta(ctx context.Context) error {
	return fs.meta.Load(fs.file.MetaFileIO(ctx))
}

// VerifyBackendMapping compares stamp against the backend-identity
// stamp recorded in the metadata snapshot loaded by LoadMeta. A fresh
// filesystem (no stamp ever recorded) adopts stamp and returns nil;
// the next Sync persists it. Any other filesystem must present the
// same stamp it was created with, since the ordered backend list
// defines the shard→backend mapping and stripes written under one
// mapping are unreadable under another.
func (fs *FS) VerifyBackendMapping(stamp []byte) error {
	existing := fs.meta.BackendStamp()
	if len(existing) == 0 {
		fs.meta.SetBackendStamp(stamp)
		return nil
	}
	if !bytes.Equal(existing, stamp) {
		return ErrBackendMappingChanged
	}
	return nil
}

// Sync flushes every outstanding asynchronous upload to durability,
// then persists the metadata snapshot. Callers use this for a
// filesystem-level fsync or before a clean shutdown.
func (fs *FS) Sync(ctx context.Context) error {
	fs.file.Flush()
	return fs.meta.Save(fs.file.MetaFileIO(ctx))
}
