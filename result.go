package lockhash

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/RoaringBitmap/roaring"
	"github.com/gansidui/skiplist"

	"lockhash/ds"
	"lockhash/util"
)

// ReadStats counts the lookups of the concurrent readers of one run.
type ReadStats struct {
	Hits   int64
	Misses int64
}

// Result is the outcome of one table run.
type Result struct {
	Kind    ds.Kind
	Elapsed time.Duration   // insert phase only
	Missing *roaring.Bitmap // indexes of keys absent or wrong after the insert phase
	Stats   ds.Stats
	Reads   ReadStats
	Usage   util.Usage // resources consumed by the run
}

func (r *Result) MissingCount() uint64 {
	if r.Missing == nil {
		return 0
	}
	return r.Missing.GetCardinality()
}

// rankNode orders results by elapsed time, then by run order.
type rankNode struct {
	elapsed time.Duration
	order   int
	result  *Result
}

func (n *rankNode) Less(other interface{}) bool {
	o := other.(*rankNode)
	if n.elapsed != o.elapsed {
		return n.elapsed < o.elapsed
	}
	return n.order < o.order
}

// Rank returns results from fastest to slowest.
func Rank(results []*Result) []*Result {
	skl := skiplist.New()
	for i, r := range results {
		skl.Insert(&rankNode{elapsed: r.Elapsed, order: i, result: r})
	}
	ranked := make([]*Result, 0, skl.Len())
	if skl.Len() == 0 {
		return ranked
	}
	for e := skl.GetElementByRank(1); e != nil; e = e.Next() {
		ranked = append(ranked, e.Value.(*rankNode).result)
	}
	return ranked
}

// usec formats d in microseconds with thousands separators.
func usec(d time.Duration) string {
	s := strconv.FormatInt(d.Microseconds(), 10)
	neg := s[0] == '-'
	if neg {
		s = s[1:]
	}
	out := make([]byte, 0, len(s)+len(s)/3)
	for i := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}

func writeResult(w io.Writer, r *Result) error {
	s := r.Stats
	_, err := fmt.Fprintf(w, "Hash table %s: %s usec\n  - %d missing\n  - chains: %d/%d occupied, longest %d, load %.2f, %d guards\n",
		r.Kind, usec(r.Elapsed), r.MissingCount(), s.Occupied, s.Capacity, s.MaxChain, s.LoadFactor(), s.Guards)
	if err != nil {
		return err
	}
	if r.Reads.Hits+r.Reads.Misses > 0 {
		if _, err := fmt.Fprintf(w, "  - readers: %d hits, %d misses\n", r.Reads.Hits, r.Reads.Misses); err != nil {
			return err
		}
	}
	if r.Usage.User+r.Usage.System > 0 {
		if _, err := fmt.Fprintf(w, "  - cpu: %s usec user, %s usec sys, max rss %d KiB\n",
			usec(r.Usage.User), usec(r.Usage.System), r.Usage.MaxRSS>>10); err != nil {
			return err
		}
	}
	return nil
}
