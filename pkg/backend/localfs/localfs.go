// Package localfs implements the backend.Backend contract against a local
// directory tree. Shards are stored as plain files under
// <root>/stripes/<stripeID:08>/<shardID:02>.chunk, one directory per stripe.
package localfs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cloudraidfs/cloudraidfs/pkg/backend"
)

// Store stores shards as files on the local filesystem.
//
// Thread Safety:
// The underlying filesystem operations are thread-safe at the OS level.
// Concurrent writes to the same (stripeID, shardID) are serialized by the
// OS but not otherwise coordinated; callers should not write the same
// shard address concurrently from two goroutines.
type Store struct {
	root string
	name string
}

// New creates a local-directory backend rooted at root. The root directory
// is created if it does not already exist.
func New(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("localfs: create root %s: %w", root, err)
	}
	return &Store{root: root, name: "localfs:" + root}, nil
}

func (s *Store) Name() string { return s.name }

func (s *Store) shardPath(stripeID uint64, shardID uint32) string {
	return filepath.Join(s.root, "stripes", fmt.Sprintf("%08d", stripeID), fmt.Sprintf("%02d.chunk", shardID))
}

func (s *Store) Read(ctx context.Context, stripeID uint64, shardID uint32) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.shardPath(stripeID, shardID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("localfs: stripe %d shard %d: %w", stripeID, shardID, backend.ErrNotFound)
		}
		return nil, fmt.Errorf("localfs: read stripe %d shard %d: %w", stripeID, shardID, backend.ErrTransientIO)
	}
	return data, nil
}

// Write persists data at (stripeID, shardID). The containing stripe
// directory is created on demand. Writes land via a temp file renamed into
// place so a reader never observes a partially written shard.
func (s *Store) Write(ctx context.Context, stripeID uint64, shardID uint32, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Join(s.root, "stripes", fmt.Sprintf("%08d", stripeID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("localfs: ensure dir for stripe %d: %w", stripeID, backend.ErrPermanentIO)
	}

	tmp, err := os.CreateTemp(dir, fmt.Sprintf(".%02d.chunk.tmp-*", shardID))
	if err != nil {
		return fmt.Errorf("localfs: create temp for stripe %d shard %d: %w", stripeID, shardID, backend.ErrTransientIO)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("localfs: write stripe %d shard %d: %w", stripeID, shardID, backend.ErrTransientIO)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("localfs: sync stripe %d shard %d: %w", stripeID, shardID, backend.ErrTransientIO)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("localfs: close stripe %d shard %d: %w", stripeID, shardID, backend.ErrTransientIO)
	}

	if err := os.Rename(tmpName, s.shardPath(stripeID, shardID)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("localfs: rename stripe %d shard %d: %w", stripeID, shardID, backend.ErrPermanentIO)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, stripeID uint64, shardID uint32) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := os.Remove(s.shardPath(stripeID, shardID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("localfs: delete stripe %d shard %d: %w", stripeID, shardID, backend.ErrPermanentIO)
	}
	return nil
}
