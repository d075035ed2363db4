package constants

import "strings"

// DefaultCourier is the canonical carrier substituted for blank or
// placeholder courier tokens on the label.
const DefaultCourier = "valmo"

// courierPlaceholders are tokens some labels print where the carrier name
// should be. They all mean "default carrier".
var courierPlaceholders = map[string]struct{}{
	"":       {},
	"c":      {},
	"lsh-r0": {},
	"lhs-r0": {},
}

// KnownCouriers maps carrier keywords that may appear anywhere in the page
// text to their canonical names. Used as a last-resort sweep when no labeled
// courier field matches.
var KnownCouriers = []string{
	"delhivery",
	"dhl",
	"fedex",
	"bluedart",
	"ekart",
	"xpressbees",
	"shadowfax",
	"valmo",
}

// NormalizeCourier lowercases and trims a courier token and collapses
// placeholders to DefaultCourier. Any other token is returned as-is after
// normalization, never remapped.
func NormalizeCourier(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if _, ok := courierPlaceholders[s]; ok {
		return DefaultCourier
	}
	return s
}
