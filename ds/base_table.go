package ds

// BaseTable is the unsynchronized reference table. It must only be used from
// one goroutine at a time; the tester runs it sequentially to get a baseline.
type BaseTable struct {
	state
	buckets []bucket
}

func NewBaseTable(opts Options) *BaseTable {
	opts = opts.normalize()
	t := &BaseTable{buckets: make([]bucket, opts.Capacity)}
	t.init(KindBase, opts)
	return t
}

func (t *BaseTable) getBucket(key []byte) *bucket {
	return &t.buckets[t.bucketIndex(key)]
}

func (t *BaseTable) Set(key []byte, value uint32) {
	t.mustBeAlive("Set")
	t.getBucket(key).upsert(key, value)
}

func (t *BaseTable) Get(key []byte) uint32 {
	t.mustBeAlive("Get")
	return t.mustGet(t.getBucket(key), key)
}

func (t *BaseTable) Lookup(key []byte) (uint32, bool) {
	t.mustBeAlive("Lookup")
	return lookup(t.getBucket(key), key)
}

func (t *BaseTable) Has(key []byte) bool {
	_, ok := t.Lookup(key)
	return ok
}

func (t *BaseTable) Len() int {
	return t.Stats().Entries
}

func (t *BaseTable) Stats() Stats {
	t.mustBeAlive("Stats")
	s := Stats{Capacity: len(t.buckets)}
	for i := range t.buckets {
		s.add(&t.buckets[i])
	}
	return s
}

func (t *BaseTable) Destroy() {
	t.markDestroyed()
	for i := range t.buckets {
		t.buckets[i].drop()
	}
	t.buckets = nil
}
