package report

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/sagar9995/shipcrop/internal/records"
)

func fixtureTable() *records.Table {
	return records.NewTable([]records.PageRecord{
		{PageIndex: 0, SKU: "ABC123", Quantity: 2, IsMulti: true, Courier: "valmo", SoldBy: "acme", Color: "red"},
		{PageIndex: 1, SKU: "ABC123", Quantity: 2, IsMulti: true, Courier: "valmo", SoldBy: "acme", Color: "red"},
		{PageIndex: 2, SKU: "xyz", Quantity: 1, Courier: "ekart", SoldBy: "acme"},
		{PageIndex: 3, SKU: "DEF", Quantity: 1, Courier: "valmo", SoldBy: "bright"},
	})
}

func TestSKUBlockOrdering(t *testing.T) {
	b := skuBlock(fixtureTable())
	if len(b.rows) != 3 {
		t.Fatalf("expected 3 aggregate rows, got %d", len(b.rows))
	}
	// highest count first
	if b.rows[0][3] != "ABC123" || b.rows[0][4] != 2 {
		t.Errorf("top row should be ABC123 count 2, got %v", b.rows[0])
	}
	// ties broken by lowercase sku ascending
	if b.rows[1][3] != "DEF" || b.rows[2][3] != "xyz" {
		t.Errorf("tie order wrong: %v / %v", b.rows[1], b.rows[2])
	}
}

func TestCourierBlocks(t *testing.T) {
	b := courierBlock(fixtureTable())
	want := [][]any{{"valmo", 3}, {"ekart", 1}}
	if !reflect.DeepEqual(b.rows, want) {
		t.Errorf("courier rows: got %v want %v", b.rows, want)
	}

	cs := courierSoldByBlock(fixtureTable())
	if cs.rows[0][0] != "valmo" || cs.rows[0][1] != "acme" || cs.rows[0][2] != 2 {
		t.Errorf("courier+soldBy top row wrong: %v", cs.rows[0])
	}
}

func TestAggregationIdempotent(t *testing.T) {
	tbl := fixtureTable()
	first := skuBlock(tbl)
	second := skuBlock(tbl)
	if !reflect.DeepEqual(first, second) {
		t.Error("running aggregation twice must produce identical rows")
	}
	if !reflect.DeepEqual(courierSoldByBlock(tbl), courierSoldByBlock(tbl)) {
		t.Error("courier+soldBy aggregation not idempotent")
	}
	if !reflect.DeepEqual(soldByBlock(tbl), soldByBlock(tbl)) {
		t.Error("soldBy aggregation not idempotent")
	}
}

func TestWriteSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.xlsx")
	svc := NewService(nil)
	if err := svc.WriteSummary(fixtureTable(), path); err != nil {
		t.Fatalf("write summary: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	got, err := f.GetCellValue("Summary", "A1")
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if got != "SKU REPORT" {
		t.Errorf("first block title: got %q", got)
	}

	rows, err := f.GetRows("Summary")
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	var titles []string
	for _, r := range rows {
		if len(r) == 1 {
			titles = append(titles, r[0])
		}
	}
	want := []string{"SKU REPORT", "COURIER + SOLD BY REPORT", "COURIER", "SOLD BY REPORT"}
	if !reflect.DeepEqual(titles, want) {
		t.Errorf("block titles: got %v want %v", titles, want)
	}

	// first data row of the first block (row 1 title, row 2 headers)
	styleID, err := f.GetCellStyle("Summary", "A3")
	if err != nil {
		t.Fatalf("read cell style: %v", err)
	}
	st, err := f.GetStyle(styleID)
	if err != nil {
		t.Fatalf("resolve style: %v", err)
	}
	if st.Alignment == nil || !st.Alignment.WrapText {
		t.Error("data cells should wrap text")
	}
}
