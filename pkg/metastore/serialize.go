package metastore

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"
)

// MetaPath is the reserved path the filesystem adaptor must never
// expose: lookups return Missing, listings omit it, mutations fail
// with AccessDenied at the adaptor boundary.
const MetaPath = "/.__cloudraidfs_meta"

// metaMaxReadBytes bounds the initial load scan: enough headroom for
// any metadata snapshot this filesystem is expected to accumulate
// before the reserved stripe range [0, 100) is exhausted.
const metaMaxReadBytes = 16 * 1024 * 1024

// reservedStripeLimit mirrors stripestore's reserved range: stripe IDs
// below this are never handed out by the user-data allocator.
const reservedStripeLimit = 100

// FileIO is the minimal read/write surface Load and Save need from the
// file layer to treat the metadata snapshot as an ordinary file. It is
// satisfied by the adapter that filelayer.FileLayer.MetaFileIO returns,
// so this package never imports the file layer.
type FileIO interface {
	Read(path string, offset uint64, length int) ([]byte, error)
	Write(path string, offset uint64, data []byte) error
}

// serialize encodes every non-meta file entry as:
// u32 file_count, then per file: u32 path_len, path bytes, u64 size,
// u32 stripe_count, u64[] stripes.
// followed by u32 dir_count, then per dir: u32 path_len, path bytes,
// then u32 stamp_len and the backend stamp bytes.
// All integers are little-endian.
func (s *Store) serialize() []byte {
	var buf bytes.Buffer

	paths := make([]string, 0, len(s.files))
	for p := range s.files {
		if p == MetaPath {
			continue
		}
		paths = append(paths, p)
	}

	var fileCount uint32 = uint32(len(paths))
	writeU32(&buf, fileCount)
	for _, p := range paths {
		meta := s.files[p]
		writeU32(&buf, uint32(len(p)))
		buf.WriteString(p)
		writeU64(&buf, meta.Size)
		writeU32(&buf, uint32(len(meta.Stripes)))
		for _, stripeID := range meta.Stripes {
			writeU64(&buf, stripeID)
		}
	}

	dirs := collectDirs(s.trie, "")
	writeU32(&buf, uint32(len(dirs)))
	for _, p := range dirs {
		writeU32(&buf, uint32(len(p)))
		buf.WriteString(p)
	}

	writeU32(&buf, uint32(len(s.backendStamp)))
	buf.Write(s.backendStamp)

	return buf.Bytes()
}

func collectDirs(n *trieNode, prefix string) []string {
	var out []string
	if n.isDir && prefix != "" {
		out = append(out, prefix)
	}
	for name, child := range n.children {
		out = append(out, collectDirs(child, prefix+"/"+name)...)
	}
	return out
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeU64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}

type byteReader struct {
	data []byte
	pos  int
}

func (r *byteReader) readU32() (uint32, error) {
	if r.pos+4 > len(r.data) {
		return 0, ErrCorruptMeta
	}
	v := binary.LittleEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *byteReader) readU64() (uint64, error) {
	if r.pos+8 > len(r.data) {
		return 0, ErrCorruptMeta
	}
	v := binary.LittleEndian.Uint64(r.data[r.pos:])
	r.pos += 8
	return v, nil
}

func (r *byteReader) readString(n int) (string, error) {
	if r.pos+n > len(r.data) {
		return "", ErrCorruptMeta
	}
	s := string(r.data[r.pos : r.pos+n])
	r.pos += n
	return s, nil
}

// deserialize parses the format serialize produces into fresh file and
// directory tables plus the recorded backend stamp, without touching
// the receiver's current state.
func deserialize(data []byte) (map[string]FileMeta, *trieNode, []byte, error) {
	r := &byteReader{data: data}
	files := make(map[string]FileMeta)
	trie := newTrieNode()

	fileCount, err := r.readU32()
	if err != nil {
		return nil, nil, nil, err
	}
	for i := uint32(0); i < fileCount; i++ {
		pathLen, err := r.readU32()
		if err != nil {
			return nil, nil, nil, err
		}
		p, err := r.readString(int(pathLen))
		if err != nil {
			return nil, nil, nil, err
		}
		size, err := r.readU64()
		if err != nil {
			return nil, nil, nil, err
		}
		stripeCount, err := r.readU32()
		if err != nil {
			return nil, nil, nil, err
		}
		stripes := make([]uint64, stripeCount)
		for j := range stripes {
			stripes[j], err = r.readU64()
			if err != nil {
				return nil, nil, nil, err
			}
		}
		files[p] = FileMeta{Size: size, Stripes: stripes}
		trie.insertFile(p)
	}

	dirCount, err := r.readU32()
	if err != nil {
		return nil, nil, nil, err
	}
	for i := uint32(0); i < dirCount; i++ {
		pathLen, err := r.readU32()
		if err != nil {
			return nil, nil, nil, err
		}
		p, err := r.readString(int(pathLen))
		if err != nil {
			return nil, nil, nil, err
		}
		trie.insertDir(p)
	}

	var stamp []byte
	stampLen, err := r.readU32()
	if err != nil {
		return nil, nil, nil, err
	}
	if stampLen > 0 {
		s, err := r.readString(int(stampLen))
		if err != nil {
			return nil, nil, nil, err
		}
		stamp = []byte(s)
	}

	return files, trie, stamp, nil
}

// reservedStripeCount returns how many S-byte stripes a snapshot of
// length n occupies, starting at stripe 0.
func (s *Store) reservedStripeCount(n int) uint64 {
	if n == 0 {
		return 0
	}
	return (uint64(n) + s.stripeSize - 1) / s.stripeSize
}

// Load reads the self-persisted snapshot through fileIO at MetaPath,
// replacing the in-memory tables on success. If nothing readable is
// found, the store starts (or remains) empty. Load pre-registers
// MetaPath with a fixed reserved stripe range before reading, so the
// read goes through the normal file path rather than needing its own
// code path.
func (s *Store) Load(fileIO FileIO) error {
	start := time.Now()
	maxStripes := (uint64(metaMaxReadBytes) + s.stripeSize - 1) / s.stripeSize
	reserved := make([]uint64, maxStripes)
	for i := range reserved {
		reserved[i] = uint64(i)
	}

	s.mu.Lock()
	s.files[MetaPath] = FileMeta{Size: uint64(metaMaxReadBytes), Stripes: reserved}
	s.mu.Unlock()

	data, err := fileIO.Read(MetaPath, 0, metaMaxReadBytes)
	if err != nil || len(data) == 0 {
		s.observe("load", start, nil)
		return nil
	}

	files, trie, stamp, err := deserialize(data)
	if err != nil {
		s.observe("load", start, nil)
		return nil
	}

	s.mu.Lock()
	s.files = files
	s.trie = trie
	s.backendStamp = stamp
	// Re-register the metadata file's own stripes: load only needs
	// enough of them to read up to metaMaxReadBytes; save recomputes
	// the exact count every time it runs.
	s.files[MetaPath] = FileMeta{Size: uint64(len(data)), Stripes: reserved}
	s.updateGauges()
	s.mu.Unlock()

	s.observe("load", start, nil)
	return nil
}

// Save serializes every non-meta entry and writes it back through
// fileIO at MetaPath, reassigning the reserved stripe range to fit the
// new snapshot exactly.
func (s *Store) Save(fileIO FileIO) error {
	start := time.Now()
	s.mu.Lock()
	data := s.serialize()
	needed := s.reservedStripeCount(len(data))
	if needed > reservedStripeLimit {
		s.mu.Unlock()
		err := fmt.Errorf("metastore: snapshot needs %d stripes, exceeds reserved range of %d", needed, reservedStripeLimit)
		s.observe("save", start, err)
		return err
	}
	reserved := make([]uint64, needed)
	for i := range reserved {
		reserved[i] = uint64(i)
	}
	s.files[MetaPath] = FileMeta{Size: uint64(len(data)), Stripes: reserved}
	s.mu.Unlock()

	if err := fileIO.Write(MetaPath, 0, data); err != nil {
		s.observe("save", start, err)
		return err
	}

	s.metrics.ObservePersist(time.Since(start), int64(len(data)))
	s.observe("save", start, nil)
	return nil
}
