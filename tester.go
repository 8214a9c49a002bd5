package lockhash

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RoaringBitmap/roaring"
	hll "github.com/axiomhq/hyperloglog"
	"github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"lockhash/ds"
	"lockhash/logutil"
	"lockhash/util"
)

// now is the tester clock.
var now = time.Now

// Tester inserts threads*size generated keys into each configured table,
// timing the insert phase and verifying the contents afterwards.
type Tester struct {
	cfg     Config
	opts    ds.Options
	kinds   []ds.Kind
	seed    int64
	keygen  KeyGenerator
	metrics *metrics

	keys            [][]byte // the value of keys[i] is i
	generation      time.Duration
	distinctDigests uint64
}

func NewTester(cfg Config) (*Tester, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	kinds, _ := cfg.kinds()
	seed := cfg.Seed
	if seed == 0 {
		seed = now().UnixNano()
	}
	keygen, err := newKeyGenerator(&cfg, seed)
	if err != nil {
		return nil, err
	}
	return &Tester{
		cfg:     cfg,
		opts:    cfg.Options(),
		kinds:   kinds,
		seed:    seed,
		keygen:  keygen,
		metrics: newMetrics(),
	}, nil
}

// Generate produces the keys of every run. It must be called before Run.
func (t *Tester) Generate() (time.Duration, error) {
	start := now()
	keys, err := t.keygen.Generate(t.cfg.Threads * t.cfg.Size)
	if err != nil {
		return 0, errors.Wrap(err, "generate keys")
	}
	t.keys = keys
	t.generation = now().Sub(start)
	t.distinctDigests = estimateDistinctDigests(keys, t.opts.Hasher)
	logutil.Info("keys generated",
		zap.Int("keys", len(keys)),
		zap.String("keygen", t.cfg.KeyGen),
		zap.Int64("seed", t.seed),
		zap.Uint64("distinct-digests", t.distinctDigests),
		logutil.Elapsed(t.generation))
	return t.generation, nil
}

// estimateDistinctDigests approximates how many distinct 32-bit digests the
// keys hash to; the shortfall from len(keys) is the number of full collisions.
func estimateDistinctDigests(keys [][]byte, hash util.HashFunc) uint64 {
	sk := hll.New()
	var buf [4]byte
	for _, key := range keys {
		binary.BigEndian.PutUint32(buf[:], hash(key))
		sk.Insert(buf[:])
	}
	return sk.Estimate()
}

// RunAll runs every configured kind in order.
func (t *Tester) RunAll(ctx context.Context) ([]*Result, error) {
	results := make([]*Result, 0, len(t.kinds))
	for _, kind := range t.kinds {
		res, err := t.Run(ctx, kind)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// Run times the insert phase of a fresh table of the given kind and verifies it.
func (t *Tester) Run(ctx context.Context, kind ds.Kind) (*Result, error) {
	tb, err := ds.New(kind, t.opts)
	if err != nil {
		return nil, errors.Wrapf(err, "create %s table", kind)
	}
	return t.runOn(ctx, tb)
}

func (t *Tester) runOn(ctx context.Context, tb ds.Table) (*Result, error) {
	defer tb.Destroy()
	if t.keys == nil {
		return nil, ErrNotGenerated
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	kind := tb.Kind()
	before, usageErr := util.ReadUsage()
	if usageErr != nil {
		logutil.Debug("resource usage unavailable", zap.Error(usageErr))
	}

	// the base table is single threaded: no workers, no readers
	var reads ReadStats
	var err error
	start := now()
	if kind == ds.KindBase {
		t.insertRange(tb, 0, len(t.keys))
	} else {
		stop := t.startReaders(tb, &reads)
		err = t.insertConcurrently(tb)
		stop()
	}
	elapsed := now().Sub(start)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Kind:    kind,
		Elapsed: elapsed,
		Missing: t.verify(tb),
		Stats:   tb.Stats(),
		Reads:   reads,
	}
	if after, err := util.ReadUsage(); usageErr == nil && err == nil {
		res.Usage = after.Sub(before)
	}
	t.metrics.observe(res)
	logutil.Info("run finished",
		zap.Stringer("kind", kind),
		logutil.Elapsed(elapsed),
		zap.Uint64("missing", res.MissingCount()),
		zap.Int("max-chain", res.Stats.MaxChain),
		zap.Int64("reader-hits", reads.Hits),
		zap.Int64("reader-misses", reads.Misses))
	if n := res.MissingCount(); n > 0 {
		logutil.Warn("hash table lost entries",
			zap.Stringer("kind", kind),
			zap.Uint64("missing", n),
			zap.Uint32("first", res.Missing.Minimum()))
	}
	return res, nil
}

func (t *Tester) insertRange(tb ds.Table, lo, hi int) {
	for i := lo; i < hi; i++ {
		tb.Set(t.keys[i], uint32(i))
	}
}

// insertConcurrently gives each of the threads workers its own disjoint slice of keys.
func (t *Tester) insertConcurrently(tb ds.Table) error {
	// a panicking insert is a broken table: crash the process, not only the worker
	pool, err := ants.NewPool(t.cfg.Threads, ants.WithPanicHandler(func(v interface{}) {
		panic(v)
	}))
	if err != nil {
		return errors.Wrap(err, "create insert pool")
	}
	defer pool.Release()

	wg := sync.WaitGroup{}
	for w := 0; w < t.cfg.Threads; w++ {
		lo, hi := w*t.cfg.Size, (w+1)*t.cfg.Size
		wg.Add(1)
		err = pool.Submit(func() {
			defer wg.Done()
			t.insertRange(tb, lo, hi)
		})
		if err != nil {
			wg.Done()
			err = errors.Wrapf(err, "submit insert task %d", w)
			break
		}
	}
	wg.Wait()
	return err
}

// startReaders launches the configured readers, which call Has on random keys
// while the insert phase runs. The returned function stops them and stores
// their counts into reads.
func (t *Tester) startReaders(tb ds.Table, reads *ReadStats) func() {
	if t.cfg.Readers == 0 {
		return func() {}
	}
	var stop atomic.Bool
	var hits, misses atomic.Int64
	wg := sync.WaitGroup{}
	for r := 0; r < t.cfg.Readers; r++ {
		wg.Add(1)
		rnd := rand.New(rand.NewSource(t.seed + int64(r)))
		go func() {
			defer wg.Done()
			for !stop.Load() {
				if tb.Has(t.keys[rnd.Intn(len(t.keys))]) {
					hits.Add(1)
				} else {
					misses.Add(1)
				}
			}
		}()
	}
	return func() {
		stop.Store(true)
		wg.Wait()
		reads.Hits, reads.Misses = hits.Load(), misses.Load()
	}
}

// verify returns the indexes of keys that are absent or carry a wrong value.
func (t *Tester) verify(tb ds.Table) *roaring.Bitmap {
	missing := roaring.New()
	for i, key := range t.keys {
		if v, ok := tb.Lookup(key); !ok || v != uint32(i) {
			missing.AddInt(i)
		}
	}
	return missing
}

// Report writes the generation time and every result, then the ranking.
func (t *Tester) Report(w io.Writer, results []*Result) error {
	_, err := fmt.Fprintf(w, "Generation: %s usec\n  - %d keys, ~%d distinct digests\n",
		usec(t.generation), len(t.keys), t.distinctDigests)
	if err != nil {
		return err
	}
	for _, r := range results {
		if err := writeResult(w, r); err != nil {
			return err
		}
	}
	if len(results) < 2 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Ranking:"); err != nil {
		return err
	}
	for i, r := range Rank(results) {
		if _, err := fmt.Fprintf(w, "  %d. %s %s usec\n", i+1, r.Kind, usec(r.Elapsed)); err != nil {
			return err
		}
	}
	return nil
}

// WriteMetrics dumps the metrics of every run so far in the Prometheus text format.
func (t *Tester) WriteMetrics(w io.Writer) error {
	return t.metrics.write(w)
}

// CheckResults returns ErrMissingEntries when any run lost a key.
func CheckResults(results []*Result) error {
	for _, r := range results {
		if n := r.MissingCount(); n > 0 {
			return errors.Wrapf(ErrMissingEntries, "%s: %d missing", r.Kind, n)
		}
	}
	return nil
}
