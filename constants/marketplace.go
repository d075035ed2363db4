package constants

import "strings"

// Marketplace identifies the label format a folder of PDFs was produced by.
type Marketplace string

const (
	Meesho   Marketplace = "meesho"
	Flipkart Marketplace = "flipkart"
	JioMart  Marketplace = "jiomart"
)

// ExtractionStyle selects how field values are anchored in the page text.
type ExtractionStyle string

const (
	// StyleNextLine: the marker occupies its own line; the value is the next
	// non-empty line.
	StyleNextLine ExtractionStyle = "next-line"
	// StyleInlineRegex: marker and value share a line, matched by an ordered
	// list of labeled patterns.
	StyleInlineRegex ExtractionStyle = "inline-regex"
)

// AnchorProfile carries the per-marketplace anchor phrases and the padding
// constants that seed crop boundaries. Padding values differ between formats
// with no common rationale, so they live here per variant rather than as one
// universal constant.
type AnchorProfile struct {
	Style ExtractionStyle

	// LabelAnchor marks the top of the invoice region; the label region ends
	// just above it.
	LabelAnchor string
	// TrailingAnchor marks the bottom of the invoice region when present.
	TrailingAnchor string

	LabelPad         float64 // subtracted from the label anchor's top
	InvoiceTopPad    float64 // subtracted from the label anchor's top for the invoice start
	InvoiceBottomPad float64 // added below the trailing anchor's top

	LabelTopMargin  float64
	LabelSideMargin float64
}

var profiles = map[Marketplace]AnchorProfile{
	Meesho: {
		Style:            StyleNextLine,
		LabelAnchor:      "TAX INVOICE",
		TrailingAnchor:   "for online payments (as applicable)",
		LabelPad:         1,
		InvoiceTopPad:    18,
		InvoiceBottomPad: 20,
	},
	Flipkart: {
		Style:            StyleInlineRegex,
		LabelAnchor:      "Order Id:",
		TrailingAnchor:   "TAX INVOICE",
		LabelPad:         10,
		InvoiceTopPad:    10,
		InvoiceBottomPad: 0,
		LabelTopMargin:   15,
		LabelSideMargin:  185,
	},
	JioMart: {
		Style:            StyleInlineRegex,
		LabelAnchor:      "TAX INVOICE",
		TrailingAnchor:   "for online payments (as applicable)",
		LabelPad:         10,
		InvoiceTopPad:    18,
		InvoiceBottomPad: 20,
	},
}

// ProfileFor returns the anchor profile for a marketplace token, falling back
// to the Meesho profile for unknown values.
func ProfileFor(m Marketplace) AnchorProfile {
	if p, ok := profiles[Marketplace(strings.ToLower(strings.TrimSpace(string(m))))]; ok {
		return p
	}
	return profiles[Meesho]
}
