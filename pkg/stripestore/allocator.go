package stripestore

import "sync"

// reservedStripeIDs is the exclusive upper bound of the metadata-reserved
// stripe-ID range; user data never uses IDs below it.
const reservedStripeIDs = 100

// idAllocator hands out monotonically increasing user-data stripe IDs,
// starting above the reserved metadata range. The source initializes
// this to a hardcoded 100 regardless of what metadata already exists on
// disk; that is a bug if metadata contains higher IDs. This allocator
// instead starts at 100 and is raised by observe() during metadata load
// to max(100, highest existing ID + 1), per the corrected invariant.
type idAllocator struct {
	mu   sync.Mutex
	next uint64
}

func newIDAllocator() *idAllocator {
	return &idAllocator{next: reservedStripeIDs}
}

// observe raises the watermark so that allocate() will never return id
// or anything below it.
func (a *idAllocator) observe(id uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if id+1 > a.next {
		a.next = id + 1
	}
}

func (a *idAllocator) allocate() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := a.next
	a.next++
	return id
}
