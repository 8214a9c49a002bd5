package lockhash

import (
	"bytes"
	"testing"
	"time"

	"github.com/RoaringBitmap/roaring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lockhash/ds"
	"lockhash/util"
)

func TestUsec(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{d: 0, want: "0"},
		{d: 999 * time.Nanosecond, want: "0"},
		{d: 12 * time.Microsecond, want: "12"},
		{d: 999 * time.Microsecond, want: "999"},
		{d: time.Millisecond, want: "1,000"},
		{d: 1234567 * time.Microsecond, want: "1,234,567"},
		{d: -45678 * time.Microsecond, want: "-45,678"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, usec(tt.d))
	}
}

func TestRank(t *testing.T) {
	results := []*Result{
		{Kind: ds.KindBase, Elapsed: 30 * time.Millisecond},
		{Kind: ds.KindCoarse, Elapsed: 50 * time.Millisecond},
		{Kind: ds.KindFine, Elapsed: 10 * time.Millisecond},
		{Kind: ds.KindStriped, Elapsed: 30 * time.Millisecond},
	}
	ranked := Rank(results)
	require.Equal(t, 4, len(ranked))
	var kinds []ds.Kind
	for _, r := range ranked {
		kinds = append(kinds, r.Kind)
	}
	// ties keep run order
	assert.Equal(t, []ds.Kind{ds.KindFine, ds.KindBase, ds.KindStriped, ds.KindCoarse}, kinds)
	assert.Empty(t, Rank(nil))
}

func TestWriteResult(t *testing.T) {
	missing := roaring.New()
	missing.AddMany([]uint32{4, 8})
	r := &Result{
		Kind:    ds.KindStriped,
		Elapsed: 2500 * time.Microsecond,
		Missing: missing,
		Stats:   ds.Stats{Capacity: 4, Entries: 10, Occupied: 3, MaxChain: 5, Guards: 2},
		Reads:   ReadStats{Hits: 7, Misses: 3},
		Usage:   util.Usage{User: 2 * time.Millisecond, System: time.Millisecond, MaxRSS: 4 << 20},
	}
	buf := &bytes.Buffer{}
	require.Nil(t, writeResult(buf, r))
	assert.Equal(t, "Hash table striped: 2,500 usec\n"+
		"  - 2 missing\n"+
		"  - chains: 3/4 occupied, longest 5, load 2.50, 2 guards\n"+
		"  - readers: 7 hits, 3 misses\n"+
		"  - cpu: 2,000 usec user, 1,000 usec sys, max rss 4096 KiB\n", buf.String())

	buf.Reset()
	require.Nil(t, writeResult(buf, &Result{Kind: ds.KindBase}))
	assert.Equal(t, "Hash table base: 0 usec\n  - 0 missing\n"+
		"  - chains: 0/0 occupied, longest 0, load 0.00, 0 guards\n", buf.String())
}

func TestMetrics_observe(t *testing.T) {
	m := newMetrics()
	m.observe(&Result{Kind: ds.KindCoarse, Elapsed: time.Millisecond, Reads: ReadStats{Hits: 5, Misses: 2}})
	m.observe(&Result{Kind: ds.KindCoarse, Elapsed: time.Millisecond, Reads: ReadStats{Hits: 1}})

	buf := &bytes.Buffer{}
	require.Nil(t, m.write(buf))
	out := buf.String()
	assert.Contains(t, out, `lockhash_run_duration_seconds_count{kind="v1"} 2`)
	assert.Contains(t, out, `lockhash_reader_lookups_total{kind="v1",result="hit"} 6`)
	assert.Contains(t, out, `lockhash_reader_lookups_total{kind="v1",result="miss"} 2`)
}
