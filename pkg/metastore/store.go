// Package metastore is the in-memory {path -> file} table and
// directory namespace backing the filesystem adaptor: file sizes and
// stripe lists, an explicit set of created-but-empty directories, and
// a trie for prefix lookup and readdir. It self-persists through the
// normal file path at a reserved range of low stripe IDs (see
// serialize.go), so it never needs its own storage driver.
package metastore

import (
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cloudraidfs/cloudraidfs/pkg/metrics"
)

// Kind is the result category of a Lookup.
type Kind int

const (
	Missing Kind = iota
	File
	Directory
)

// LookupResult is what a filesystem adaptor needs to answer a stat.
type LookupResult struct {
	Kind Kind
	Size uint64
}

// FileMeta is one file's metadata: its logical size and the ordered
// list of stripe IDs backing its bytes. FileMeta.Stripes[i] holds
// bytes [i*S, (i+1)*S) of the file.
type FileMeta struct {
	Size    uint64
	Stripes []uint64
}

// Store is the metadata namespace: files, explicit empty directories,
// and the trie tying them together. Safe for concurrent use.
type Store struct {
	mu           sync.RWMutex
	files        map[string]FileMeta
	trie         *trieNode
	metrics      *metrics.MetastoreMetrics
	stripeSize   uint64
	backendStamp []byte
}

// New constructs an empty Store. stripeSize is S, needed to compute
// how many reserved stripes the self-persisted snapshot occupies.
func New(stripeSize uint64, metricsImpl *metrics.MetastoreMetrics) *Store {
	return &Store{
		files:      make(map[string]FileMeta),
		trie:       newTrieNode(),
		metrics:    metricsImpl,
		stripeSize: stripeSize,
	}
}

func normalize(p string) string {
	if p == "" {
		return "/"
	}
	cleaned := path.Clean("/" + p)
	return cleaned
}

func parentOf(p string) string {
	return normalize(path.Dir(p))
}

// validateAncestorsAreDirs rejects paths whose parent chain passes
// through an existing file (a file cannot have children).
func (s *Store) validateAncestorsAreDirs(p string) error {
	parts := splitPath(p)
	cur := s.trie
	for i := 0; i < len(parts)-1; i++ {
		child, ok := cur.children[parts[i]]
		if !ok {
			return nil
		}
		if child.isFile {
			return ErrNotDir
		}
		cur = child
	}
	return nil
}

func (s *Store) observe(operation string, start time.Time, err error) {
	s.metrics.ObserveOperation(operation, time.Since(start), err)
}

func (s *Store) updateGauges() {
	s.metrics.SetFileCount(len(s.files))
	s.metrics.SetDirCount(countDirs(s.trie))
}

func countDirs(n *trieNode) int {
	total := 0
	if n.isDir {
		total++
	}
	for _, c := range n.children {
		total += countDirs(c)
	}
	return total
}

// Lookup reports whether path is missing, a file, or a directory.
func (s *Store) Lookup(p string) LookupResult {
	start := time.Now()
	p = normalize(p)
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p == "/" {
		s.observe("lookup", start, nil)
		return LookupResult{Kind: Directory}
	}
	if meta, ok := s.files[p]; ok {
		s.observe("lookup", start, nil)
		return LookupResult{Kind: File, Size: meta.Size}
	}
	node := s.trie.find(splitPath(p))
	if node != nil && node.actsAsDir() {
		s.observe("lookup", start, nil)
		return LookupResult{Kind: Directory}
	}
	s.observe("lookup", start, nil)
	return LookupResult{Kind: Missing}
}

// Exists reports whether path names a file or directory.
func (s *Store) Exists(p string) bool {
	return s.Lookup(p).Kind != Missing
}

// CreateFile registers path as an empty file, overwriting any prior
// file at that path. Fails if path is already a directory, or if an
// ancestor path component is a file.
func (s *Store) CreateFile(p string) error {
	start := time.Now()
	p = normalize(p)
	s.mu.Lock()
	defer s.mu.Unlock()

	if p == "/" {
		s.observe("create_file", start, ErrIsDir)
		return ErrIsDir
	}
	node := s.trie.find(splitPath(p))
	if node != nil && node.actsAsDir() {
		s.observe("create_file", start, ErrIsDir)
		return ErrIsDir
	}
	if err := s.validateAncestorsAreDirs(p); err != nil {
		s.observe("create_file", start, err)
		return err
	}

	s.files[p] = FileMeta{}
	s.trie.insertFile(p)
	s.updateGauges()
	s.observe("create_file", start, nil)
	return nil
}

// CreateDir registers path as an explicit, empty directory. Fails if
// path already exists as a file or directory.
func (s *Store) CreateDir(p string) error {
	start := time.Now()
	p = normalize(p)
	s.mu.Lock()
	defer s.mu.Unlock()

	if p == "/" {
		s.observe("create_dir", start, ErrExist)
		return ErrExist
	}
	if s.existsLocked(p) {
		s.observe("create_dir", start, ErrExist)
		return ErrExist
	}
	if err := s.validateAncestorsAreDirs(p); err != nil {
		s.observe("create_dir", start, err)
		return err
	}

	s.trie.insertDir(p)
	s.updateGauges()
	s.observe("create_dir", start, nil)
	return nil
}

func (s *Store) existsLocked(p string) bool {
	if _, ok := s.files[p]; ok {
		return true
	}
	node := s.trie.find(splitPath(p))
	return node != nil && node.actsAsDir()
}

// Unlink removes a file. Fails with ErrNotExist if absent, ErrIsDir if
// path is a directory.
func (s *Store) Unlink(p string) error {
	start := time.Now()
	p = normalize(p)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.files[p]; !ok {
		node := s.trie.find(splitPath(p))
		if node != nil && node.actsAsDir() {
			s.observe("unlink", start, ErrIsDir)
			return ErrIsDir
		}
		s.observe("unlink", start, ErrNotExist)
		return ErrNotExist
	}

	delete(s.files, p)
	s.trie.removeFile(p)
	s.updateGauges()
	s.observe("unlink", start, nil)
	return nil
}

// Rmdir removes an empty explicit directory.
func (s *Store) Rmdir(p string) error {
	start := time.Now()
	p = normalize(p)
	s.mu.Lock()
	defer s.mu.Unlock()

	if p == "/" {
		s.observe("rmdir", start, ErrNotEmpty)
		return ErrNotEmpty
	}
	node := s.trie.find(splitPath(p))
	if node == nil || !node.actsAsDir() {
		if _, ok := s.files[p]; ok {
			s.observe("rmdir", start, ErrNotDir)
			return ErrNotDir
		}
		s.observe("rmdir", start, ErrNotExist)
		return ErrNotExist
	}
	if len(node.children) > 0 {
		s.observe("rmdir", start, ErrNotEmpty)
		return ErrNotEmpty
	}

	s.trie.removeDir(p)
	s.updateGauges()
	s.observe("rmdir", start, nil)
	return nil
}

// List returns the direct child names of a directory, sorted for
// deterministic output.
func (s *Store) List(p string) ([]string, error) {
	start := time.Now()
	p = normalize(p)
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p != "/" {
		node := s.trie.find(splitPath(p))
		if node == nil || !node.actsAsDir() {
			if _, ok := s.files[p]; ok {
				s.observe("list", start, ErrNotDir)
				return nil, ErrNotDir
			}
			s.observe("list", start, ErrNotExist)
			return nil, ErrNotExist
		}
	}

	names := s.trie.listChildren(p)
	sort.Strings(names)
	s.observe("list", start, nil)
	return names, nil
}

// GetSize returns a file's logical size.
func (s *Store) GetSize(p string) (uint64, error) {
	p = normalize(p)
	s.mu.RLock()
	defer s.mu.RUnlock()
	meta, ok := s.files[p]
	if !ok {
		return 0, ErrNotExist
	}
	return meta.Size, nil
}

// SetSize updates a file's logical size, used by truncate and by
// write extending the file.
func (s *Store) SetSize(p string, size uint64) error {
	p = normalize(p)
	s.mu.Lock()
	defer s.mu.Unlock()
	meta, ok := s.files[p]
	if !ok {
		return ErrNotExist
	}
	meta.Size = size
	s.files[p] = meta
	return nil
}

// GetStripes returns a copy of a file's stripe ID list.
func (s *Store) GetStripes(p string) ([]uint64, error) {
	p = normalize(p)
	s.mu.RLock()
	defer s.mu.RUnlock()
	meta, ok := s.files[p]
	if !ok {
		return nil, ErrNotExist
	}
	out := make([]uint64, len(meta.Stripes))
	copy(out, meta.Stripes)
	return out, nil
}

// AddStripe appends a stripe ID to a file's stripe list.
func (s *Store) AddStripe(p string, stripeID uint64) error {
	p = normalize(p)
	s.mu.Lock()
	defer s.mu.Unlock()
	meta, ok := s.files[p]
	if !ok {
		return ErrNotExist
	}
	meta.Stripes = append(meta.Stripes, stripeID)
	s.files[p] = meta
	return nil
}

// SetStripes replaces a file's stripe ID list wholesale. Used by
// self-persistence to reassign the metadata file's own reserved
// stripe range on every save.
func (s *Store) SetStripes(p string, stripes []uint64) error {
	p = normalize(p)
	s.mu.Lock()
	defer s.mu.Unlock()
	meta, ok := s.files[p]
	if !ok {
		return ErrNotExist
	}
	meta.Stripes = stripes
	s.files[p] = meta
	return nil
}

// Rename moves a file or directory (with all descendants) from one
// path to another. The destination must not exist, unless it is an
// empty directory and the source is also a directory.
func (s *Store) Rename(from, to string) error {
	start := time.Now()
	from = normalize(from)
	to = normalize(to)
	s.mu.Lock()
	defer s.mu.Unlock()

	if from == "/" || to == "/" || from == to {
		s.observe("rename", start, ErrInvalidRename)
		return ErrInvalidRename
	}
	if strings.HasPrefix(to+"/", from+"/") {
		s.observe("rename", start, ErrInvalidRename)
		return ErrInvalidRename
	}

	srcMeta, srcIsFile := s.files[from]
	srcNode := s.trie.find(splitPath(from))
	if !srcIsFile && (srcNode == nil || !srcNode.actsAsDir()) {
		s.observe("rename", start, ErrNotExist)
		return ErrNotExist
	}

	if s.existsLocked(to) {
		dstNode := s.trie.find(splitPath(to))
		dstIsEmptyDir := dstNode != nil && dstNode.actsAsDir() && len(dstNode.children) == 0
		if srcIsFile || !dstIsEmptyDir {
			s.observe("rename", start, ErrExist)
			return ErrExist
		}
		// Destination is an empty directory and source is also a
		// directory: remove the destination placeholder first.
		s.trie.removeDir(to)
	}
	if err := s.validateAncestorsAreDirs(to); err != nil {
		s.observe("rename", start, err)
		return err
	}

	if srcIsFile {
		delete(s.files, from)
		s.trie.removeFile(from)
		s.files[to] = srcMeta
		s.trie.insertFile(to)
		s.observe("rename", start, nil)
		return nil
	}

	s.moveDirEntries(from, to)
	detached := s.trie.detach(from)
	if detached == nil {
		detached = newTrieNode()
	}
	detached.isDir = true
	s.trie.attach(to, detached)
	s.observe("rename", start, nil)
	return nil
}

// BackendStamp returns the backend-identity stamp recorded in the last
// loaded or set snapshot, or nil if none has ever been recorded.
func (s *Store) BackendStamp() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.backendStamp == nil {
		return nil
	}
	out := make([]byte, len(s.backendStamp))
	copy(out, s.backendStamp)
	return out
}

// SetBackendStamp records the backend-identity stamp to persist with
// the next Save.
func (s *Store) SetBackendStamp(stamp []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.backendStamp = append([]byte(nil), stamp...)
}

// moveDirEntries relocates every file entry under the "from" subtree
// to the corresponding path under "to".
func (s *Store) moveDirEntries(from, to string) {
	prefix := from + "/"
	for p, meta := range s.files {
		if p == from || strings.HasPrefix(p, prefix) {
			newPath := to + strings.TrimPrefix(p, from)
			delete(s.files, p)
			s.files[newPath] = meta
		}
	}
}
