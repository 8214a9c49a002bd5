package ds

import (
	"sync/atomic"

	"lockhash/util"
)

// entry is one key/value pair of a bucket chain. key and next never change
// once the entry is reachable from a bucket head; only value is rewritten.
type entry struct {
	key   string
	value atomic.Uint32
	next  *entry
}

// bucket is an unordered singly-linked chain of entries, newest first.
//
// Writers must hold the guard covering the bucket. Readers may walk the chain
// without it: a new entry is fully built before it is stored into head, so an
// unguarded reader sees either the old chain or the new one.
type bucket struct {
	head atomic.Pointer[entry]
}

// find scans the chain for key. It never locks.
func (b *bucket) find(key []byte) *entry {
	k := util.ByteToString(key)
	for e := b.head.Load(); e != nil; e = e.next {
		if e.key == k {
			return e
		}
	}
	return nil
}

// upsert overwrites the value of key or links a new entry at the head of the
// chain. It reports whether a new entry was linked. The caller holds the guard.
func (b *bucket) upsert(key []byte, value uint32) bool {
	if e := b.find(key); e != nil {
		e.value.Store(value)
		return false
	}
	e := &entry{key: string(key), next: b.head.Load()}
	e.value.Store(value)
	b.head.Store(e)
	return true
}

// size counts the entries of the chain.
func (b *bucket) size() int {
	n := 0
	for e := b.head.Load(); e != nil; e = e.next {
		n++
	}
	return n
}

// drop unlinks the whole chain and returns the number of entries released.
func (b *bucket) drop() int {
	n := b.size()
	b.head.Store(nil)
	return n
}
