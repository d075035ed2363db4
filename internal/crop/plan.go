package crop

import (
	"log/slog"

	"github.com/sagar9995/shipcrop/constants"
	"github.com/sagar9995/shipcrop/internal/common"
	"github.com/sagar9995/shipcrop/internal/extract"
)

// PageOut is one output-page instruction: copy Source (0-based page of the
// merged document), optionally clipped to Rect. Rect == nil means a full
// unmodified copy. The output document is materialized from this list only
// at the final write step.
type PageOut struct {
	Source int
	Rect   *Rect
	Stamp  bool
}

// Plan walks the sorted page permutation and derives per-page output
// instructions. Pages whose spec derivation fails unrecoverably fall back to
// a full copy appended after all cropped pages; their indexes are returned
// for reporting. Page content is never touched here.
func Plan(rows func(i int) []extract.Row, dims []Dim, perm []int, opts common.Options, logger *slog.Logger) ([]PageOut, []int) {
	if logger == nil {
		logger = slog.Default()
	}
	profile := constants.ProfileFor(constants.Marketplace(opts.Marketplace))

	outs := make([]PageOut, 0, len(perm))
	var fallback []int

	for _, p := range perm {
		if p < 0 || p >= len(dims) {
			logger.Warn("crop.plan.page_out_of_range", "page", p, "pages", len(dims))
			fallback = append(fallback, p)
			continue
		}
		spec, err := DeriveSpec(rows(p), dims[p], opts, profile)
		if err != nil {
			logger.Warn("crop.plan.fallback", "page", p, "error", err)
			fallback = append(fallback, p)
			continue
		}

		label := spec.Label
		outs = append(outs, PageOut{Source: p, Rect: &label, Stamp: opts.AddDateOnTop})
		if spec.Invoice != nil {
			inv := *spec.Invoice
			outs = append(outs, PageOut{Source: p, Rect: &inv})
		}
	}

	// Documented reordering side effect: fallback pages go to the end, not
	// interleaved.
	for _, p := range fallback {
		if p < 0 || p >= len(dims) {
			continue
		}
		outs = append(outs, PageOut{Source: p})
	}
	return outs, fallback
}
