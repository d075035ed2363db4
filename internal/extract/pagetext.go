package extract

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	gopdf "github.com/dslipak/pdf"
)

// rowYTolerance groups positioned text chunks whose baselines differ by less
// than this many points into the same row.
const rowYTolerance = 2.0

// Document is a read-only page-text view over a PDF file. Page text is
// produced lazily per page; a single page's failure yields empty output for
// that page and never aborts the sequence.
type Document struct {
	path   string
	reader *gopdf.Reader
	logger *slog.Logger
}

// Open opens path for text extraction.
func Open(path string, logger *slog.Logger) (*Document, error) {
	if logger == nil {
		logger = slog.Default()
	}
	r, err := gopdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf for text extraction: %w", err)
	}
	return &Document{path: path, reader: r, logger: logger}, nil
}

// PageCount returns the document's own page count.
func (d *Document) PageCount() int {
	return d.reader.NumPage()
}

// Rows returns the assembled text rows of page i (0-based), top of page
// first. Chunks are grouped into rows by baseline proximity and ordered
// left to right within a row. Returns nil when the page cannot be read.
func (d *Document) Rows(i int) (rows []Row) {
	// The underlying parser panics on some malformed content streams; treat
	// that the same as any other per-page failure.
	defer func() {
		if rec := recover(); rec != nil {
			d.logger.Warn("extract.page_failed", "page", i, "error", fmt.Sprint(rec))
			rows = nil
		}
	}()

	if i < 0 || i >= d.reader.NumPage() {
		return nil
	}
	page := d.reader.Page(i + 1)
	if page.V.IsNull() {
		d.logger.Warn("extract.page_missing", "page", i)
		return nil
	}

	content := page.Content()
	return assembleRows(content.Text)
}

// Text returns the plain text of page i, rows joined by newlines. Empty
// string on failure.
func (d *Document) Text(i int) string {
	rows := d.Rows(i)
	if len(rows) == 0 {
		return ""
	}
	parts := make([]string, len(rows))
	for n, r := range rows {
		parts[n] = r.Text
	}
	return strings.Join(parts, "\n")
}

type rowBuild struct {
	y     float64
	items []gopdf.Text
}

func assembleRows(texts []gopdf.Text) []Row {
	var builds []rowBuild
	for _, t := range texts {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		placed := false
		for n := range builds {
			if abs(builds[n].y-t.Y) < rowYTolerance {
				builds[n].items = append(builds[n].items, t)
				placed = true
				break
			}
		}
		if !placed {
			builds = append(builds, rowBuild{y: t.Y, items: []gopdf.Text{t}})
		}
	}

	// PDF user space: larger Y is higher on the page.
	sort.Slice(builds, func(a, b int) bool { return builds[a].y > builds[b].y })

	rows := make([]Row, 0, len(builds))
	for _, b := range builds {
		sort.Slice(b.items, func(a, c int) bool { return b.items[a].X < b.items[c].X })

		var sb strings.Builder
		var prevEnd float64
		for n, it := range b.items {
			if n > 0 && it.X-prevEnd > 1.0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(it.S)
			prevEnd = it.X + it.W
		}
		rows = append(rows, Row{Y: b.y, Text: sb.String()})
	}
	return rows
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
