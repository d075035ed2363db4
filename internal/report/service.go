package report

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/sagar9995/shipcrop/internal/records"
)

const (
	sheetName   = "Summary"
	maxColWidth = 30
)

// Service renders the record table's aggregate views as one formatted
// spreadsheet: four titled, headered blocks on a single sheet.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

type block struct {
	title   string
	headers []string
	rows    [][]any
}

// WriteSummary aggregates the table and writes the workbook to path.
// Aggregation is pure over the table, so repeated calls produce identical
// row ordering and counts.
func (s *Service) WriteSummary(t *records.Table, path string) error {
	start := time.Now()

	blocks := []block{
		skuBlock(t),
		courierSoldByBlock(t),
		courierBlock(t),
		soldByBlock(t),
	}

	f := excelize.NewFile()
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("new sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 12}})
	if err != nil {
		return fmt.Errorf("title style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEEFF"}},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	dataStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return fmt.Errorf("data style: %w", err)
	}

	write := func(row, col int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheetName, cell, v)
	}
	style := func(row, col, styleID int) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellStyle(sheetName, cell, cell, styleID)
	}

	// widest content per column across all blocks, for capped auto-sizing
	colWidths := map[int]int{}
	note := func(col int, v any) {
		if n := len(fmt.Sprint(v)); n > colWidths[col] {
			colWidths[col] = n
		}
	}

	row := 1
	for _, b := range blocks {
		write(row, 1, b.title)
		style(row, 1, titleStyle)
		row++

		for c, h := range b.headers {
			write(row, c+1, h)
			style(row, c+1, headerStyle)
			note(c+1, h)
		}
		row++

		for _, r := range b.rows {
			for c, v := range r {
				write(row, c+1, v)
				style(row, c+1, dataStyle)
				note(c+1, v)
			}
			row++
		}
		row += 2
	}

	for col, width := range colWidths {
		name, _ := excelize.ColumnNumberToName(col)
		w := float64(width + 2)
		if w > maxColWidth {
			w = maxColWidth
		}
		_ = f.SetColWidth(sheetName, name, name, w)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("report.xlsx.ok",
		"path", path,
		"records", t.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// skuBlock counts pages per (quantity, seller, color, SKU) tuple, sorted by
// count descending, then SKU ascending (case-insensitive), then quantity
// ascending.
func skuBlock(t *records.Table) block {
	type key struct {
		qty           int
		soldBy, color string
		sku           string
	}
	counts := map[key]int{}
	for _, r := range t.Records() {
		counts[key{r.Quantity, r.SoldBy, r.Color, r.SKU}]++
	}

	type row struct {
		key
		count int
	}
	rows := make([]row, 0, len(counts))
	for k, n := range counts {
		rows = append(rows, row{k, n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].count != rows[j].count {
			return rows[i].count > rows[j].count
		}
		a, b := strings.ToLower(rows[i].sku), strings.ToLower(rows[j].sku)
		if a != b {
			return a < b
		}
		return rows[i].qty < rows[j].qty
	})

	out := make([][]any, len(rows))
	for i, r := range rows {
		out[i] = []any{r.qty, r.soldBy, r.color, r.sku, r.count}
	}
	return block{
		title:   "SKU REPORT",
		headers: []string{"Qty", "SoldBy", "Color", "SKU", "Count"},
		rows:    out,
	}
}

// courierSoldByBlock counts packages per (courier, seller) pair, sorted by
// count descending then courier ascending.
func courierSoldByBlock(t *records.Table) block {
	type key struct{ courier, soldBy string }
	counts := map[key]int{}
	for _, r := range t.Records() {
		counts[key{r.Courier, r.SoldBy}]++
	}

	type row struct {
		key
		count int
	}
	rows := make([]row, 0, len(counts))
	for k, n := range counts {
		rows = append(rows, row{k, n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].count != rows[j].count {
			return rows[i].count > rows[j].count
		}
		if rows[i].courier != rows[j].courier {
			return rows[i].courier < rows[j].courier
		}
		return rows[i].soldBy < rows[j].soldBy
	})

	out := make([][]any, len(rows))
	for i, r := range rows {
		out[i] = []any{r.courier, r.soldBy, r.count}
	}
	return block{
		title:   "COURIER + SOLD BY REPORT",
		headers: []string{"Courier", "SoldBy", "Packages"},
		rows:    out,
	}
}

func courierBlock(t *records.Table) block {
	rows := countBy(t, func(r records.PageRecord) string { return r.Courier })
	return block{
		title:   "COURIER",
		headers: []string{"Courier", "Packages"},
		rows:    rows,
	}
}

func soldByBlock(t *records.Table) block {
	rows := countBy(t, func(r records.PageRecord) string { return r.SoldBy })
	return block{
		title:   "SOLD BY REPORT",
		headers: []string{"SoldBy", "Packages"},
		rows:    rows,
	}
}

func countBy(t *records.Table, keyOf func(records.PageRecord) string) [][]any {
	counts := map[string]int{}
	for _, r := range t.Records() {
		counts[keyOf(r)]++
	}
	type row struct {
		key   string
		count int
	}
	rows := make([]row, 0, len(counts))
	for k, n := range counts {
		rows = append(rows, row{k, n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].count != rows[j].count {
			return rows[i].count > rows[j].count
		}
		return rows[i].key < rows[j].key
	})
	out := make([][]any, len(rows))
	for i, r := range rows {
		out[i] = []any{r.key, r.count}
	}
	return out
}
