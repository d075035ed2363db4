package records

import (
	"sort"
	"strings"

	"github.com/sagar9995/shipcrop/internal/common"
)

// Table is the in-memory table of per-page records. Construction order is
// merged-document page order; record order is independent of PageIndex once
// Sort has been applied.
type Table struct {
	recs []PageRecord
}

// NewTable wraps records in a table. The caller hands over ownership of the
// slice.
func NewTable(recs []PageRecord) *Table {
	return &Table{recs: recs}
}

func (t *Table) Len() int { return len(t.recs) }

// Records returns the backing slice in current table order. Read-only by
// convention.
func (t *Table) Records() []PageRecord { return t.recs }

// Filter returns a new table holding the records matching pred, preserving
// current order.
func (t *Table) Filter(pred func(PageRecord) bool) *Table {
	out := make([]PageRecord, 0, len(t.recs))
	for _, r := range t.recs {
		if pred(r) {
			out = append(out, r)
		}
	}
	return &Table{recs: out}
}

// ErrorPages returns the page indexes of records whose SKU extraction
// failed, in ascending page order.
func (t *Table) ErrorPages() []int {
	var idx []int
	for _, r := range t.recs {
		if r.IsErrorPage() {
			idx = append(idx, r.PageIndex)
		}
	}
	sort.Ints(idx)
	return idx
}

// Permutation returns the current record order as a permutation of page
// indexes over the merged document.
func (t *Table) Permutation() []int {
	perm := make([]int, len(t.recs))
	for i, r := range t.recs {
		perm[i] = r.PageIndex
	}
	return perm
}

// Sort orders the table by the composite, configuration-driven key:
// IsMulti always first (direction per opts.MultiFirst), then each toggled
// secondary key in fixed precedence sku > courier > soldBy, each with its
// own direction. The sort is stable, so ties keep original PageIndex order.
func (t *Table) Sort(opts common.Options) {
	sort.SliceStable(t.recs, func(i, j int) bool {
		a, b := t.recs[i], t.recs[j]

		if a.IsMulti != b.IsMulti {
			if opts.MultiFirst {
				return a.IsMulti
			}
			return b.IsMulti
		}

		if opts.SKUSort {
			as, bs := strings.ToLower(a.SKU), strings.ToLower(b.SKU)
			if as != bs {
				if opts.SKUAscending {
					return as < bs
				}
				return as > bs
			}
		}
		if opts.CourierSort && a.Courier != b.Courier {
			if opts.CourierAscending {
				return a.Courier < b.Courier
			}
			return a.Courier > b.Courier
		}
		if opts.SoldBySort && a.SoldBy != b.SoldBy {
			if opts.SoldByAscending {
				return a.SoldBy < b.SoldBy
			}
			return a.SoldBy > b.SoldBy
		}
		return false
	})
}
