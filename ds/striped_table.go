package ds

import (
	"sync"
)

// StripedTable shares a fixed set of locks between the buckets: bucket i is
// covered by stripe i % len(stripes).
type StripedTable struct {
	state
	buckets []bucket
	stripes []sync.RWMutex
}

func NewStripedTable(opts Options) *StripedTable {
	opts = opts.normalize()
	t := &StripedTable{
		buckets: make([]bucket, opts.Capacity),
		stripes: make([]sync.RWMutex, opts.Stripes),
	}
	t.init(KindStriped, opts)
	return t
}

// getBucket returns the bucket of key and the stripe covering it.
func (t *StripedTable) getBucket(key []byte) (*bucket, *sync.RWMutex) {
	idx := t.bucketIndex(key)
	return &t.buckets[idx], &t.stripes[idx%uint32(len(t.stripes))]
}

func (t *StripedTable) Set(key []byte, value uint32) {
	t.mustBeAlive("Set")
	b, mu := t.getBucket(key)
	mu.Lock()
	defer mu.Unlock()
	b.upsert(key, value)
}

func (t *StripedTable) Get(key []byte) uint32 {
	t.mustBeAlive("Get")
	b, mu := t.getBucket(key)
	if t.syncReads {
		mu.RLock()
		defer mu.RUnlock()
	}
	return t.mustGet(b, key)
}

func (t *StripedTable) Lookup(key []byte) (uint32, bool) {
	t.mustBeAlive("Lookup")
	b, mu := t.getBucket(key)
	if t.syncReads {
		mu.RLock()
		defer mu.RUnlock()
	}
	return lookup(b, key)
}

func (t *StripedTable) Has(key []byte) bool {
	_, ok := t.Lookup(key)
	return ok
}

func (t *StripedTable) Len() int {
	return t.Stats().Entries
}

func (t *StripedTable) Stats() Stats {
	t.mustBeAlive("Stats")
	s := Stats{Capacity: len(t.buckets), Guards: len(t.stripes)}
	for i := range t.buckets {
		s.add(&t.buckets[i])
	}
	return s
}

func (t *StripedTable) Destroy() {
	t.markDestroyed()
	for i := range t.buckets {
		t.buckets[i].drop()
	}
	t.buckets = nil
	t.stripes = nil
}
