package records

// PageRecord is the structured result of field extraction for one page of
// the merged document. PageIndex is the page's zero-based position in the
// merged document and is the stable identity key; every other field may
// carry an extraction-failure default.
type PageRecord struct {
	PageIndex int
	SKU       string // empty = extraction failed (error page)
	Quantity  int    // defaults to 1 when unparsable
	IsMulti   bool   // quantity > 1 or multiple quantity lines
	Courier   string // normalized, never empty after courier normalization
	SoldBy    string
	Size      string
	Color     string
}

// IsErrorPage reports whether SKU extraction failed for this page. Error
// pages stay in the table (they participate in counts) but are also
// collected into a reviewable side document.
func (r PageRecord) IsErrorPage() bool {
	return r.SKU == ""
}
