package ds

import (
	"sync"
)

// lockedBucket is a bucket with its own guard.
type lockedBucket struct {
	bucket
	sync.RWMutex // r&w lock for every bucket
}

// FineTable gives every bucket its own lock. Writes to different buckets never
// block each other; writes to the same bucket are serialized.
type FineTable struct {
	state
	buckets []*lockedBucket
}

func NewFineTable(opts Options) *FineTable {
	opts = opts.normalize()
	t := &FineTable{buckets: make([]*lockedBucket, opts.Capacity)}
	for i := range t.buckets {
		t.buckets[i] = &lockedBucket{}
	}
	t.init(KindFine, opts)
	return t
}

// getBucket returns the bucket under the given key.
func (t *FineTable) getBucket(key []byte) *lockedBucket {
	return t.buckets[t.bucketIndex(key)]
}

// getBucketByWriting returns the bucket under the given key after Locking.
// Remember to unlock the bucket!
func (t *FineTable) getBucketByWriting(key []byte) *lockedBucket {
	b := t.getBucket(key)
	b.Lock()
	return b
}

// Set locks only the bucket key hashes to. No other bucket lock is ever held,
// so there is no lock ordering between buckets.
func (t *FineTable) Set(key []byte, value uint32) {
	t.mustBeAlive("Set")
	b := t.getBucketByWriting(key)
	defer b.Unlock()
	b.upsert(key, value)
}

func (t *FineTable) Get(key []byte) uint32 {
	t.mustBeAlive("Get")
	b := t.getBucket(key)
	if t.syncReads {
		b.RLock()
		defer b.RUnlock()
	}
	return t.mustGet(&b.bucket, key)
}

func (t *FineTable) Lookup(key []byte) (uint32, bool) {
	t.mustBeAlive("Lookup")
	b := t.getBucket(key)
	if t.syncReads {
		b.RLock()
		defer b.RUnlock()
	}
	return lookup(&b.bucket, key)
}

func (t *FineTable) Has(key []byte) bool {
	_, ok := t.Lookup(key)
	return ok
}

func (t *FineTable) Len() int {
	return t.Stats().Entries
}

func (t *FineTable) Stats() Stats {
	t.mustBeAlive("Stats")
	s := Stats{Capacity: len(t.buckets), Guards: len(t.buckets)}
	for _, b := range t.buckets {
		s.add(&b.bucket)
	}
	return s
}

// Destroy drops every chain together with its bucket and guard.
func (t *FineTable) Destroy() {
	t.markDestroyed()
	for i, b := range t.buckets {
		b.drop()
		t.buckets[i] = nil
	}
	t.buckets = nil
}
