package ds

import (
	"sync"
)

// CoarseTable guards every bucket with one table-wide lock: all writes across
// the table are linearized.
type CoarseTable struct {
	state
	buckets []bucket
	mu      sync.RWMutex // covers every bucket
}

func NewCoarseTable(opts Options) *CoarseTable {
	opts = opts.normalize()
	t := &CoarseTable{buckets: make([]bucket, opts.Capacity)}
	t.init(KindCoarse, opts)
	return t
}

func (t *CoarseTable) getBucket(key []byte) *bucket {
	return &t.buckets[t.bucketIndex(key)]
}

// Set holds the table lock over the whole find-then-link sequence.
func (t *CoarseTable) Set(key []byte, value uint32) {
	t.mustBeAlive("Set")
	t.mu.Lock()
	defer t.mu.Unlock()
	t.getBucket(key).upsert(key, value)
}

func (t *CoarseTable) Get(key []byte) uint32 {
	t.mustBeAlive("Get")
	if t.syncReads {
		t.mu.RLock()
		defer t.mu.RUnlock()
	}
	return t.mustGet(t.getBucket(key), key)
}

func (t *CoarseTable) Lookup(key []byte) (uint32, bool) {
	t.mustBeAlive("Lookup")
	if t.syncReads {
		t.mu.RLock()
		defer t.mu.RUnlock()
	}
	return lookup(t.getBucket(key), key)
}

func (t *CoarseTable) Has(key []byte) bool {
	_, ok := t.Lookup(key)
	return ok
}

func (t *CoarseTable) Len() int {
	return t.Stats().Entries
}

func (t *CoarseTable) Stats() Stats {
	t.mustBeAlive("Stats")
	s := Stats{Capacity: len(t.buckets), Guards: 1}
	for i := range t.buckets {
		s.add(&t.buckets[i])
	}
	return s
}

func (t *CoarseTable) Destroy() {
	t.markDestroyed()
	for i := range t.buckets {
		t.buckets[i].drop()
	}
	t.buckets = nil
}
