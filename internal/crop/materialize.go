package crop

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/sagar9995/shipcrop/internal/common"
)

// stampLayout places the generation timestamp at a fixed top-left point on
// label pages.
const stampLayout = "font:Helvetica, points:11, scale:1 abs, pos:tl, off:12 -10, rot:0"

// Materialize writes the planned output document: pages of mergedPath copied
// in instruction order, each clipped to its rectangle, optionally stamped
// with the generation timestamp, optionally composed label-over-invoice onto
// single sheets. A page whose crop op fails is left as a full copy in place
// and reported in the returned slice; the batch never aborts on a page.
func Materialize(mergedPath string, outs []PageOut, dims []Dim, outPath string, opts common.Options, now time.Time, logger *slog.Logger) ([]int, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(outs) == 0 {
		return nil, common.NewAppError("CROP_EMPTY", "no output pages planned", common.ErrEmptyFolder)
	}

	// Copy source pages in instruction order (duplicates allowed).
	pages := make([]string, len(outs))
	for i, out := range outs {
		pages[i] = strconv.Itoa(out.Source + 1)
	}
	if err := api.CollectFile(mergedPath, outPath, pages, nil); err != nil {
		return nil, fmt.Errorf("collect pages: %w", err)
	}

	var failed []int
	var failedIdx []int
	for i, out := range outs {
		if out.Rect == nil {
			continue
		}
		if err := cropPage(outPath, i+1, *out.Rect, dims[out.Source].Height); err != nil {
			logger.Warn("crop.page_failed", "output_page", i+1, "source_page", out.Source, "error", err)
			failed = append(failed, out.Source)
			failedIdx = append(failedIdx, i)
		}
	}

	if opts.AddDateOnTop {
		var stampPages []string
		for i, out := range outs {
			if out.Stamp {
				stampPages = append(stampPages, strconv.Itoa(i+1))
			}
		}
		if len(stampPages) > 0 {
			text := now.Format("02-01-06 03:04 PM")
			if err := api.AddTextWatermarksFile(outPath, "", stampPages, true, text, stampLayout, nil); err != nil {
				// stamping is cosmetic; keep the document
				logger.Warn("crop.stamp_failed", "error", err)
			}
		}
	}

	// Pages left uncropped by a failed op join the planned full copies at the
	// tail instead of sitting interleaved.
	if len(failedIdx) > 0 {
		tmp := outPath + ".reorder.pdf"
		if err := api.CollectFile(outPath, tmp, tailOrder(len(outs), failedIdx), nil); err != nil {
			logger.Warn("crop.reorder_failed", "error", err)
		} else if err := os.Rename(tmp, outPath); err != nil {
			return failed, fmt.Errorf("replace reordered document: %w", err)
		}
	}

	if opts.CombinedSheet && opts.KeepInvoice {
		if err := composeSheets(outPath); err != nil {
			return failed, fmt.Errorf("compose combined sheets: %w", err)
		}
	}

	return failed, nil
}

// tailOrder returns the 1-based page selection that keeps all pages except
// the given 0-based positions in place and appends those positions at the
// end, preserving relative order within both groups.
func tailOrder(n int, tail []int) []string {
	move := make(map[int]bool, len(tail))
	for _, i := range tail {
		move[i] = true
	}
	order := make([]string, 0, n)
	for i := 0; i < n; i++ {
		if !move[i] {
			order = append(order, strconv.Itoa(i+1))
		}
	}
	for _, i := range tail {
		if i >= 0 && i < n {
			order = append(order, strconv.Itoa(i+1))
		}
	}
	return order
}

// cropPage applies one rectangle to one page, converting from top-left page
// coordinates to PDF user space (bottom-left origin).
func cropPage(path string, pageNum int, r Rect, pageH float64) error {
	llx, lly := r.X0, pageH-r.Y1
	urx, ury := r.X1, pageH-r.Y0
	box, err := api.Box(fmt.Sprintf("[%.2f %.2f %.2f %.2f]", llx, lly, urx, ury), types.POINTS)
	if err != nil {
		return fmt.Errorf("build crop box: %w", err)
	}
	if err := api.CropFile(path, "", []string{strconv.Itoa(pageNum)}, box, nil); err != nil {
		return fmt.Errorf("apply crop box: %w", err)
	}
	return nil
}

// composeSheets stacks each label page above its invoice page on a single
// sheet (one column, two rows).
func composeSheets(path string) error {
	nup, err := api.PDFGridConfig(2, 1, "margin:0, border:off", nil)
	if err != nil {
		return fmt.Errorf("grid config: %w", err)
	}
	tmp := path + ".grid.pdf"
	if err := api.NUpFile([]string{path}, tmp, nil, nup, nil); err != nil {
		return fmt.Errorf("grid compose: %w", err)
	}
	return os.Rename(tmp, path)
}
