package ds

//go:generate mockgen -source=table.go -destination=mock_table.go -package=ds

import (
	"errors"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"lockhash/logutil"
	"lockhash/util"
)

const (
	DefaultCapacity = 4096
	DefaultStripes  = 64
)

var ErrUnknownKind = errors.New("unknown hash table kind")

// Kind selects the locking discipline of a table.
type Kind uint8

const (
	// KindBase takes no lock at all and is only valid from a single goroutine.
	KindBase Kind = iota
	// KindCoarse serializes every write behind one table-wide lock.
	KindCoarse
	// KindFine gives every bucket its own lock.
	KindFine
	// KindStriped shares a fixed number of locks between the buckets.
	KindStriped
)

var kindNames = map[Kind]string{
	KindBase:    "base",
	KindCoarse:  "v1",
	KindFine:    "v2",
	KindStriped: "striped",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseKind accepts the kind names plus the aliases "coarse" and "fine".
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(name) {
	case "base":
		return KindBase, nil
	case "v1", "coarse":
		return KindCoarse, nil
	case "v2", "fine":
		return KindFine, nil
	case "striped", "v3":
		return KindStriped, nil
	}
	return 0, ErrUnknownKind
}

// Table is a fixed-capacity hash table from byte-string keys to uint32 values.
//
// Set is the only mutator. Has, Get and Lookup do not take any lock unless the
// table was built with Options.SyncReads. Calling Get for an absent key or any
// method after Destroy is a contract violation: it is logged and panics.
type Table interface {
	// Set inserts key or overwrites its value. The key is copied.
	Set(key []byte, value uint32)
	// Get returns the value of a key known to be present.
	Get(key []byte) uint32
	// Lookup returns the value of key and whether it is present.
	Lookup(key []byte) (uint32, bool)
	// Has reports whether key is present.
	Has(key []byte) bool
	// Len counts the entries by walking every chain.
	Len() int
	Stats() Stats
	Kind() Kind
	// Destroy releases every entry. The table must not be used afterwards.
	Destroy()
}

type Options struct {
	Capacity  int           // number of buckets, fixed for the table's lifetime
	Stripes   int           // number of locks of a striped table
	Hasher    util.HashFunc // Bernstein if nil
	SyncReads bool          // take the covering lock in read mode on Has/Get/Lookup
}

func DefaultOptions() Options {
	return Options{
		Capacity: DefaultCapacity,
		Stripes:  DefaultStripes,
		Hasher:   util.Bernstein,
	}
}

func (o Options) normalize() Options {
	if o.Capacity <= 0 {
		o.Capacity = DefaultCapacity
	}
	if o.Stripes <= 0 {
		o.Stripes = DefaultStripes
	}
	if o.Stripes > o.Capacity {
		o.Stripes = o.Capacity
	}
	if o.Hasher == nil {
		o.Hasher = util.Bernstein
	}
	return o
}

// New creates an empty table of the given kind.
func New(kind Kind, opts Options) (Table, error) {
	switch kind {
	case KindBase:
		return NewBaseTable(opts), nil
	case KindCoarse:
		return NewCoarseTable(opts), nil
	case KindFine:
		return NewFineTable(opts), nil
	case KindStriped:
		return NewStripedTable(opts), nil
	}
	return nil, ErrUnknownKind
}

// Stats describes the chain layout of a table at one instant.
type Stats struct {
	Capacity int // buckets
	Entries  int // entries over all chains
	Occupied int // buckets with a non-empty chain
	MaxChain int // length of the longest chain
	Guards   int // locks owned by the table
}

// LoadFactor is the average chain length.
func (s Stats) LoadFactor() float64 {
	if s.Capacity == 0 {
		return 0
	}
	return float64(s.Entries) / float64(s.Capacity)
}

func (s *Stats) add(b *bucket) {
	n := b.size()
	s.Entries += n
	if n > 0 {
		s.Occupied++
	}
	if n > s.MaxChain {
		s.MaxChain = n
	}
}

// state is the part shared by every kind: bucket addressing and the lifecycle.
type state struct {
	kind      Kind
	capacity  uint32
	hash      util.HashFunc
	syncReads bool
	destroyed atomic.Bool
}

// init must run before the table is shared; opts must be normalized.
func (s *state) init(kind Kind, opts Options) {
	s.kind = kind
	s.capacity = uint32(opts.Capacity)
	s.hash = opts.Hasher
	s.syncReads = opts.SyncReads
}

func (s *state) Kind() Kind {
	return s.kind
}

func (s *state) bucketIndex(key []byte) uint32 {
	return s.hash(key) % s.capacity
}

// mustBeAlive panics when the table has been destroyed.
func (s *state) mustBeAlive(op string) {
	if s.destroyed.Load() {
		logutil.Panic("hash table used after destroy",
			zap.Stringer("kind", s.kind), zap.String("op", op))
	}
}

// markDestroyed panics on a second Destroy.
func (s *state) markDestroyed() {
	if !s.destroyed.CompareAndSwap(false, true) {
		logutil.Panic("hash table destroyed twice", zap.Stringer("kind", s.kind))
	}
}

// mustGet returns the value of key from b; an absent key is a contract violation.
func (s *state) mustGet(b *bucket, key []byte) uint32 {
	e := b.find(key)
	if e == nil {
		logutil.Panic("get of absent key",
			zap.Stringer("kind", s.kind), zap.ByteString("key", key))
	}
	return e.value.Load()
}

func lookup(b *bucket, key []byte) (uint32, bool) {
	if e := b.find(key); e != nil {
		return e.value.Load(), true
	}
	return 0, false
}
