package extract

// Row is one assembled line of page text with its vertical position in PDF
// user space (origin bottom-left, units points).
type Row struct {
	Y    float64
	Text string
}

// PageSource provides per-page plain text and positioned rows for a
// document. Implementations are read-only and restartable: pages may be
// requested repeatedly and in any order.
type PageSource interface {
	PageCount() int
	// Text returns the plain text of page i (0-based). A page whose
	// extraction fails yields the empty string, never an error.
	Text(i int) string
	// Rows returns the positioned rows of page i, top row first. Nil when
	// extraction fails.
	Rows(i int) []Row
}

// Field is the typed outcome of extracting one string field. Found is false
// when the anchoring rule did not match; the caller applies the default.
type Field struct {
	Value string
	Found bool
}

// QtyField is the typed outcome of quantity extraction. Value is the first
// integer found; Lines counts the quantity-shaped lines seen before the next
// section marker, and more than one marks the page multi-item regardless of
// the value.
type QtyField struct {
	Value int
	Lines int
	Found bool
}
