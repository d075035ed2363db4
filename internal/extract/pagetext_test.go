package extract

import (
	"testing"

	gopdf "github.com/dslipak/pdf"
)

func chunk(s string, x, y, w float64) gopdf.Text {
	return gopdf.Text{S: s, X: x, Y: y, W: w}
}

func TestAssembleRowsGroupsByBaseline(t *testing.T) {
	rows := assembleRows([]gopdf.Text{
		chunk("INVOICE", 60, 700.5, 50),
		chunk("TAX", 20, 700, 24),
		chunk("KURTI-RED-M-77", 20, 650, 90),
	})
	if len(rows) != 2 {
		t.Fatalf("chunks within baseline tolerance must share a row: got %d rows", len(rows))
	}
	if rows[0].Text != "TAX INVOICE" {
		t.Errorf("row 0: got %q", rows[0].Text)
	}
	if rows[1].Text != "KURTI-RED-M-77" {
		t.Errorf("row 1: got %q", rows[1].Text)
	}
}

func TestAssembleRowsTopToBottom(t *testing.T) {
	rows := assembleRows([]gopdf.Text{
		chunk("bottom", 10, 100, 30),
		chunk("top", 10, 800, 20),
		chunk("middle", 10, 400, 35),
	})
	want := []string{"top", "middle", "bottom"}
	for i, w := range want {
		if rows[i].Text != w {
			t.Errorf("row %d: got %q want %q", i, rows[i].Text, w)
		}
	}
	if rows[0].Y < rows[1].Y || rows[1].Y < rows[2].Y {
		t.Errorf("row Y must descend top to bottom: %v %v %v", rows[0].Y, rows[1].Y, rows[2].Y)
	}
}

func TestAssembleRowsLeftToRightWithinRow(t *testing.T) {
	rows := assembleRows([]gopdf.Text{
		chunk("Qty", 300, 500, 20),
		chunk("SKU", 20, 500, 24),
		chunk("Size", 150, 500, 26),
	})
	if len(rows) != 1 {
		t.Fatalf("got %d rows", len(rows))
	}
	if rows[0].Text != "SKU Size Qty" {
		t.Errorf("items must be ordered by X: got %q", rows[0].Text)
	}
}

func TestAssembleRowsGapSpacing(t *testing.T) {
	// adjacent glyph runs (gap <= 1pt) join without a space, distant ones
	// with one
	rows := assembleRows([]gopdf.Text{
		chunk("KUR", 20, 500, 18),
		chunk("TI-77", 38.5, 500, 30),
		chunk("Red", 120, 500, 20),
	})
	if len(rows) != 1 {
		t.Fatalf("got %d rows", len(rows))
	}
	if rows[0].Text != "KURTI-77 Red" {
		t.Errorf("got %q", rows[0].Text)
	}
}

func TestAssembleRowsDropsBlankChunks(t *testing.T) {
	rows := assembleRows([]gopdf.Text{
		chunk("  ", 10, 500, 5),
		chunk("", 30, 500, 0),
	})
	if len(rows) != 0 {
		t.Errorf("whitespace-only chunks must not form rows: got %v", rows)
	}
}
