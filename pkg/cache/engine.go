// Package cache implements the TTL + heat-scored in-memory caches
// sitting above the stripe store: StripeCache holds decoded stripe
// bytes keyed by stripe ID, FileCache holds whole small files keyed by
// path. Both share one design (get/put/invalidate, a byte budget, a
// per-entry TTL, ascending-heat eviction) parameterized only by key
// type and heat function, so the shared machinery lives once in this
// unexported generic engine.
package cache

import (
	"sort"
	"sync"
	"time"

	"github.com/cloudraidfs/cloudraidfs/pkg/metrics"
)

// entry is one cached blob plus the bookkeeping needed to score and
// expire it.
type entry[K comparable] struct {
	key         K
	data        []byte
	expireAt    time.Time
	accessCount uint64
}

// heatFunc scores an entry for eviction preference; lower is more
// evictable. An expired entry always scores -1, so eviction always
// clears expired entries first regardless of what else is present.
type heatFunc[K comparable] func(e *entry[K], now time.Time) float64

// engine is the shared cache monitor: one lock per instance, get/put
// serialized against each other but never held across caller I/O
// (callers only ever hand engine raw bytes already in hand).
type engine[K comparable] struct {
	mu           sync.Mutex
	maxCacheSize uint64
	ttl          time.Duration
	entries      map[K]*entry[K]
	currentSize  uint64
	heat         heatFunc[K]
	metrics      *metrics.CacheMetrics
}

func newEngine[K comparable](maxCacheSize uint64, ttl time.Duration, heat heatFunc[K], m *metrics.CacheMetrics) *engine[K] {
	return &engine[K]{
		maxCacheSize: maxCacheSize,
		ttl:          ttl,
		entries:      make(map[K]*entry[K]),
		heat:         heat,
		metrics:      m,
	}
}

// get returns a copy of the cached bytes for key. A hit extends the
// entry's expiry by ttl and increments its access count.
func (e *engine[K]) get(key K) ([]byte, bool) {
	start := time.Now()
	e.mu.Lock()
	defer e.mu.Unlock()

	ent, ok := e.entries[key]
	if !ok {
		e.metrics.ObserveGet(false, time.Since(start))
		return nil, false
	}

	now := time.Now()
	if now.After(ent.expireAt) {
		e.removeLocked(key)
		e.metrics.ObserveGet(false, time.Since(start))
		return nil, false
	}

	ent.expireAt = now.Add(e.ttl)
	ent.accessCount++

	out := make([]byte, len(ent.data))
	copy(out, ent.data)
	e.metrics.ObserveGet(true, time.Since(start))
	return out, true
}

// put inserts data under key, evicting the existing entry for key
// first (not counted against heat), then purging expired entries and,
// if that is still not enough room, evicting by ascending heat score.
// Returns false if data does not fit even after eviction.
func (e *engine[K]) put(key K, data []byte) bool {
	start := time.Now()
	e.mu.Lock()
	defer e.mu.Unlock()

	size := uint64(len(data))
	if size > e.maxCacheSize {
		return false
	}

	if _, ok := e.entries[key]; ok {
		e.removeLocked(key)
	}

	if !e.makeRoomLocked(size) {
		return false
	}

	stored := make([]byte, len(data))
	copy(stored, data)
	e.entries[key] = &entry[K]{
		key:         key,
		data:        stored,
		expireAt:    time.Now().Add(e.ttl),
		accessCount: 1,
	}
	e.currentSize += size

	e.metrics.SetEntryCount(len(e.entries))
	e.metrics.SetBytesCached(int64(e.currentSize))
	e.metrics.ObservePut(time.Since(start))
	return true
}

// invalidate removes key's entry, if any. Callers use this on any
// write to the underlying object and on truncate.
func (e *engine[K]) invalidate(key K) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.removeLocked(key)
	e.metrics.SetEntryCount(len(e.entries))
	e.metrics.SetBytesCached(int64(e.currentSize))
}

func (e *engine[K]) currentSizeBytes() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentSize
}

func (e *engine[K]) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.entries)
}

func (e *engine[K]) removeLocked(key K) {
	ent, ok := e.entries[key]
	if !ok {
		return
	}
	e.currentSize -= uint64(len(ent.data))
	delete(e.entries, key)
}

func (e *engine[K]) makeRoomLocked(needed uint64) bool {
	now := time.Now()
	for k, ent := range e.entries {
		if now.After(ent.expireAt) {
			e.removeLocked(k)
			e.metrics.RecordEviction("expired")
		}
	}

	if e.currentSize+needed <= e.maxCacheSize {
		return true
	}

	type scoredKey struct {
		key   K
		score float64
	}
	scores := make([]scoredKey, 0, len(e.entries))
	for k, ent := range e.entries {
		scores = append(scores, scoredKey{k, e.heat(ent, now)})
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].score < scores[j].score })

	for _, s := range scores {
		if e.currentSize+needed <= e.maxCacheSize {
			break
		}
		e.removeLocked(s.key)
		e.metrics.RecordEviction("heat")
	}

	return e.currentSize+needed <= e.maxCacheSize
}
