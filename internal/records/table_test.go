package records

import (
	"reflect"
	"testing"

	"github.com/sagar9995/shipcrop/internal/common"
)

func sampleRecords() []PageRecord {
	return []PageRecord{
		{PageIndex: 0, SKU: "ABC123", Quantity: 2, IsMulti: true, Courier: "valmo", SoldBy: "acme"},
		{PageIndex: 1, SKU: "", Quantity: 1, Courier: "valmo", SoldBy: "acme"},
		{PageIndex: 2, SKU: "ABC123", Quantity: 1, Courier: "valmo", SoldBy: "acme"},
	}
}

func TestSortMultiFirstScenario(t *testing.T) {
	// 3-page document: page 0 multi (qty 2), page 1 unparsable SKU,
	// page 2 same SKU qty 1. Multi pages group first.
	tbl := NewTable(sampleRecords())
	opts := common.DefaultOptions()
	tbl.Sort(opts)

	perm := tbl.Permutation()
	if perm[0] != 0 {
		t.Errorf("multi page should sort first, got permutation %v", perm)
	}

	errs := tbl.ErrorPages()
	if !reflect.DeepEqual(errs, []int{1}) {
		t.Errorf("expected error pages [1], got %v", errs)
	}
}

func TestSortDeterminism(t *testing.T) {
	opts := common.DefaultOptions()
	opts.SKUAscending = true

	a := NewTable(sampleRecords())
	a.Sort(opts)
	first := a.Permutation()

	a.Sort(opts)
	second := a.Permutation()

	if !reflect.DeepEqual(first, second) {
		t.Errorf("sorting twice diverged: %v vs %v", first, second)
	}

	b := NewTable(sampleRecords())
	b.Sort(opts)
	if !reflect.DeepEqual(first, b.Permutation()) {
		t.Errorf("fresh table sorted differently: %v vs %v", first, b.Permutation())
	}
}

func TestSortStableUnderTies(t *testing.T) {
	recs := []PageRecord{
		{PageIndex: 0, SKU: "same", Quantity: 1, Courier: "valmo", SoldBy: "x"},
		{PageIndex: 1, SKU: "same", Quantity: 1, Courier: "valmo", SoldBy: "x"},
		{PageIndex: 2, SKU: "same", Quantity: 1, Courier: "valmo", SoldBy: "x"},
	}
	tbl := NewTable(recs)
	tbl.Sort(common.DefaultOptions())
	if got := tbl.Permutation(); !reflect.DeepEqual(got, []int{0, 1, 2}) {
		t.Errorf("tied records must keep original page order, got %v", got)
	}
}

func TestSortDirections(t *testing.T) {
	recs := []PageRecord{
		{PageIndex: 0, SKU: "bbb", Courier: "ekart", SoldBy: "s1"},
		{PageIndex: 1, SKU: "aaa", Courier: "valmo", SoldBy: "s2"},
		{PageIndex: 2, SKU: "CCC", Courier: "dhl", SoldBy: "s3"},
	}

	opts := common.DefaultOptions()
	opts.SKUSort = true
	opts.SKUAscending = true
	opts.CourierSort = false
	opts.SoldBySort = false

	tbl := NewTable(append([]PageRecord(nil), recs...))
	tbl.Sort(opts)
	if got := tbl.Permutation(); !reflect.DeepEqual(got, []int{1, 0, 2}) {
		t.Errorf("sku ascending (case-insensitive): want [1 0 2], got %v", got)
	}

	opts.SKUAscending = false
	tbl = NewTable(append([]PageRecord(nil), recs...))
	tbl.Sort(opts)
	if got := tbl.Permutation(); !reflect.DeepEqual(got, []int{2, 0, 1}) {
		t.Errorf("sku descending: want [2 0 1], got %v", got)
	}

	opts.SKUSort = false
	opts.CourierSort = true
	opts.CourierAscending = true
	tbl = NewTable(append([]PageRecord(nil), recs...))
	tbl.Sort(opts)
	if got := tbl.Permutation(); !reflect.DeepEqual(got, []int{2, 0, 1}) {
		t.Errorf("courier ascending: want [2 0 1], got %v", got)
	}
}

func TestMultiLast(t *testing.T) {
	opts := common.DefaultOptions()
	opts.MultiFirst = false
	opts.SKUSort = false
	opts.CourierSort = false
	opts.SoldBySort = false

	tbl := NewTable(sampleRecords())
	tbl.Sort(opts)
	perm := tbl.Permutation()
	if perm[len(perm)-1] != 0 {
		t.Errorf("multi page should sort last with multi_first=false, got %v", perm)
	}
}

func TestFilter(t *testing.T) {
	tbl := NewTable(sampleRecords())
	multi := tbl.Filter(func(r PageRecord) bool { return r.IsMulti })
	if multi.Len() != 1 || multi.Records()[0].PageIndex != 0 {
		t.Errorf("filter returned wrong rows: %+v", multi.Records())
	}
	// source table untouched
	if tbl.Len() != 3 {
		t.Errorf("filter must not mutate source table")
	}
}
