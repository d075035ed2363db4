package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sagar9995/shipcrop/constants"
	"github.com/sagar9995/shipcrop/internal/common"
	"github.com/sagar9995/shipcrop/internal/records"
)

var (
	// Control bytes (except newline) and DEL; embedded NULs fall in this
	// class too.
	ctrlBytes  = regexp.MustCompile("[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]")
	hspaceRuns = regexp.MustCompile(`[ \t]+`)
	firstInt   = regexp.MustCompile(`\d+`)
)

// Ordered pattern variants per field for the inline-regex anchoring style.
// First match wins, tried line by line top to bottom.
var (
	skuPatterns = compilePatterns(
		`SKU[:\s]*([A-Za-z0-9\-]+)`,
		`Shipment SKU[:\s]*([A-Za-z0-9\-]+)`,
		`Item Code[:\s]*([A-Za-z0-9\-]+)`,
		`Product Code[:\s]*([A-Za-z0-9\-]+)`,
	)
	qtyPatterns = compilePatterns(
		`Qty[:\s]*(\d+)`,
		`Quantity[:\s]*(\d+)`,
		`Shipment Qty[:\s]*(\d+)`,
	)
	courierPatterns = compilePatterns(
		`Shipping Agent[:\s]*([A-Za-z ]+)`,
		`Courier[:\s]*([A-Za-z ]+)`,
		`Delivery Partner[:\s]*([A-Za-z ]+)`,
		`Pickup[:\s]*([A-Za-z ]+)`,
	)
	soldByPatterns = compilePatterns(
		`Sold By[:\s]*([A-Za-z ]+)`,
		`Seller[:\s]*([A-Za-z ]+)`,
		`Vendor[:\s]*([A-Za-z ]+)`,
		`Merchant[:\s]*([A-Za-z ]+)`,
	)
	returnToPattern = compilePatterns(
		`If undelivered, return to[:\s]*(.+)`,
	)
)

// qtySectionMarkers end the quantity-shaped line scan in the next-line
// style.
var qtySectionMarkers = []string{"SKU", "SOLD BY", "COLOR", "SIZE"}

func compilePatterns(pats ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(pats))
	for i, p := range pats {
		out[i] = regexp.MustCompile(`(?i)` + p)
	}
	return out
}

// Fields parses one page's text into a PageRecord using keyword-anchored
// line scanning. Pure: no I/O, no shared state, deterministic per page.
// PageIndex is left zero for the caller to tag.
func Fields(text string, opts common.Options) records.PageRecord {
	profile := constants.ProfileFor(constants.Marketplace(opts.Marketplace))
	lines := NormalizeLines(text)

	var sku, courier, soldBy Field
	var qty QtyField

	switch profile.Style {
	case constants.StyleInlineRegex:
		sku = inlineValue(lines, skuPatterns)
		qty = inlineQuantity(lines)
		courier = inlineValue(lines, courierPatterns)
		if !courier.Found {
			courier = courierKeywordSweep(lines)
		}
		soldBy = inlineValue(lines, soldByPatterns)
		if !soldBy.Found {
			soldBy = inlineValue(lines, returnToPattern)
		}
	default:
		sku = nextLineValue(lines, "sku")
		qty = nextLineQuantity(lines)
		courier = nextLineValue(lines, "pickup")
		soldBy = nextLineValue(lines, "if undelivered, return to:")
	}

	// Size and color are their-own-line fields in every format that carries
	// them.
	size := nextLineValue(lines, "size")
	color := nextLineValue(lines, "color")

	quantity := qty.Value
	if !qty.Found || quantity < 1 {
		quantity = 1
	}

	return records.PageRecord{
		SKU:      strings.TrimSpace(sku.Value),
		Quantity: quantity,
		IsMulti:  quantity > 1 || qty.Lines > 1,
		Courier:  constants.NormalizeCourier(courier.Value),
		SoldBy:   strings.TrimSpace(soldBy.Value),
		Size:     strings.TrimSpace(size.Value),
		Color:    strings.TrimSpace(color.Value),
	}
}

// NormalizeLines strips control bytes (keeping newlines), collapses
// horizontal whitespace runs, and splits into trimmed non-empty lines.
func NormalizeLines(text string) []string {
	text = ctrlBytes.ReplaceAllString(text, "")
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		l = strings.TrimSpace(hspaceRuns.ReplaceAllString(l, " "))
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// nextLineValue finds the first line containing marker (case-insensitive)
// and returns the following line as the value.
func nextLineValue(lines []string, marker string) Field {
	marker = strings.ToLower(marker)
	for i, l := range lines {
		if strings.Contains(strings.ToLower(l), marker) {
			if i+1 < len(lines) {
				return Field{Value: lines[i+1], Found: true}
			}
			return Field{}
		}
	}
	return Field{}
}

// nextLineQuantity locates the quantity marker line and scans the following
// lines up to the next section marker. The value is the first integer-only
// line; further integer-only lines only raise the line count (multi-item
// signal). With no integer-only lines it falls back to the first integer on
// the line after the marker.
func nextLineQuantity(lines []string) QtyField {
	start := -1
	for i, l := range lines {
		u := strings.ToUpper(l)
		if strings.Contains(u, "QTY") || strings.Contains(u, "QUANTITY") {
			start = i
			break
		}
	}
	if start < 0 {
		return QtyField{}
	}

	first, count := 0, 0
	for _, l := range lines[start+1:] {
		if isSectionMarker(l) {
			break
		}
		if n, err := strconv.Atoi(strings.TrimSpace(l)); err == nil {
			if count == 0 {
				first = n
			}
			count++
		}
	}
	if count > 0 {
		return QtyField{Value: first, Lines: count, Found: true}
	}

	if start+1 < len(lines) {
		if m := firstInt.FindString(lines[start+1]); m != "" {
			if n, err := strconv.Atoi(m); err == nil {
				return QtyField{Value: n, Lines: 1, Found: true}
			}
		}
	}
	return QtyField{}
}

func isSectionMarker(line string) bool {
	u := strings.ToUpper(line)
	for _, m := range qtySectionMarkers {
		if strings.Contains(u, m) {
			return true
		}
	}
	return false
}

// inlineValue tries each pattern against each line in order; the first
// capture wins.
func inlineValue(lines []string, pats []*regexp.Regexp) Field {
	for _, p := range pats {
		for _, l := range lines {
			if m := p.FindStringSubmatch(l); m != nil {
				return Field{Value: strings.TrimSpace(m[1]), Found: true}
			}
		}
	}
	return Field{}
}

func inlineQuantity(lines []string) QtyField {
	f := inlineValue(lines, qtyPatterns)
	if !f.Found {
		return QtyField{}
	}
	n, err := strconv.Atoi(f.Value)
	if err != nil {
		return QtyField{}
	}
	return QtyField{Value: n, Lines: 1, Found: true}
}

// courierKeywordSweep looks for a known carrier name anywhere in the page
// text when no labeled courier field matched.
func courierKeywordSweep(lines []string) Field {
	page := strings.ToLower(strings.Join(lines, "\n"))
	for _, c := range constants.KnownCouriers {
		if strings.Contains(page, c) {
			return Field{Value: c, Found: true}
		}
	}
	return Field{}
}
