package crop

import (
	"fmt"
	"strings"

	"github.com/sagar9995/shipcrop/constants"
	"github.com/sagar9995/shipcrop/internal/common"
	"github.com/sagar9995/shipcrop/internal/extract"
)

// Rect is a crop rectangle in page coordinate space: top-left origin, units
// PDF points. Conversion to PDF user space happens only at materialization.
type Rect struct {
	X0, Y0, X1, Y1 float64
}

func (r Rect) Width() float64  { return r.X1 - r.X0 }
func (r Rect) Height() float64 { return r.Y1 - r.Y0 }

// Valid reports a non-degenerate rectangle.
func (r Rect) Valid() bool { return r.Width() > 0 && r.Height() > 0 }

// Spec is the derived crop layout for one page. Invoice is nil unless
// invoice retention is configured. Created and consumed entirely at crop
// time, never persisted.
type Spec struct {
	Label   Rect
	Invoice *Rect
}

// Dim is a page size in points.
type Dim struct {
	Width  float64
	Height float64
}

// anchorTop returns the top-origin Y of the first row containing phrase,
// compared case-insensitively with whitespace runs collapsed.
func anchorTop(rows []extract.Row, pageH float64, phrase string) (float64, bool) {
	needle := foldSpace(phrase)
	if needle == "" {
		return 0, false
	}
	for _, r := range rows {
		if strings.Contains(foldSpace(r.Text), needle) {
			return pageH - r.Y, true
		}
	}
	return 0, false
}

func foldSpace(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// DeriveSpec computes the crop layout for one page from its positioned rows.
// Missing anchors degrade to the configured fallback ratio, then to half and
// quarter page height; the label rectangle is always clamped non-degenerate.
// An error is returned only when no usable rectangle exists at all, which
// sends the page down the unmodified-copy path.
func DeriveSpec(rows []extract.Row, dim Dim, opts common.Options, profile constants.AnchorProfile) (Spec, error) {
	if dim.Width <= 0 || dim.Height <= 0 {
		return Spec{}, fmt.Errorf("degenerate page size %.2fx%.2f", dim.Width, dim.Height)
	}

	pad := profile.LabelPad
	if opts.AnchorPad > 0 {
		pad = opts.AnchorPad
	}
	topMargin := profile.LabelTopMargin
	if opts.LabelTopMargin > 0 {
		topMargin = opts.LabelTopMargin
	}
	sideMargin := profile.LabelSideMargin
	if opts.LabelSideMargin > 0 {
		sideMargin = opts.LabelSideMargin
	}

	labelAnchorTop, labelAnchorFound := anchorTop(rows, dim.Height, profile.LabelAnchor)

	labelBottom := dim.Height * opts.LabelFallbackRatio
	if labelAnchorFound {
		labelBottom = labelAnchorTop - pad
	}
	// Last-resort ladder keeps the rectangle positive and non-degenerate.
	if labelBottom <= topMargin+1 {
		labelBottom = dim.Height / 2
	}
	if labelBottom <= topMargin+1 {
		labelBottom = dim.Height / 4
	}
	if labelBottom > dim.Height {
		labelBottom = dim.Height
	}

	label := Rect{X0: sideMargin, Y0: topMargin, X1: dim.Width - sideMargin, Y1: labelBottom}
	if label.X1 <= label.X0 {
		// side margins wider than this page; crop full width instead
		label.X0, label.X1 = 0, dim.Width
	}
	if !label.Valid() {
		return Spec{}, fmt.Errorf("label rect collapsed: %+v on %.2fx%.2f page", label, dim.Width, dim.Height)
	}

	spec := Spec{Label: label}

	if opts.KeepInvoice {
		invTop := dim.Height * opts.InvoiceFallbackRatio
		if labelAnchorFound {
			invTop = labelAnchorTop - profile.InvoiceTopPad
		}
		if invTop < 0 {
			invTop = 0
		}

		invBottom := dim.Height
		if trailTop, ok := anchorTop(rows, dim.Height, profile.TrailingAnchor); ok {
			if b := trailTop + profile.InvoiceBottomPad; b < invBottom {
				invBottom = b
			}
		}
		if invBottom <= invTop {
			// collapsed: fall back to the lower half of the page
			invTop, invBottom = dim.Height/2, dim.Height
		}
		spec.Invoice = &Rect{X0: 0, Y0: invTop, X1: dim.Width, Y1: invBottom}
	}

	return spec, nil
}
