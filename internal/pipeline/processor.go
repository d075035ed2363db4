package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"golang.org/x/sync/errgroup"

	"github.com/sagar9995/shipcrop/constants"
	"github.com/sagar9995/shipcrop/internal/common"
	"github.com/sagar9995/shipcrop/internal/crop"
	"github.com/sagar9995/shipcrop/internal/extract"
	"github.com/sagar9995/shipcrop/internal/ingest"
	"github.com/sagar9995/shipcrop/internal/ledger"
	"github.com/sagar9995/shipcrop/internal/records"
	"github.com/sagar9995/shipcrop/internal/report"
)

// timestampLayout names run artifacts uniquely per folder run.
const timestampLayout = "2006-01-02_15-04-05"

// FolderResult summarizes one processed folder.
type FolderResult struct {
	JobID        uuid.UUID
	Folder       string
	Pages        int
	ErrorPages   []int
	FailedCrops  []int
	SkippedFiles []string
	ResultPath   string
	ReportPath   string
	ErrorPDFPath string
	Elapsed      time.Duration
}

// Processor coordinates merge, field extraction, sort, crop and report for
// one input folder per call. A single Processor is safe for concurrent use.
type Processor struct {
	Logger *slog.Logger
	Opts   common.Options
	Ledger *ledger.Store
	Now    func() time.Time
}

func NewProcessor(opts common.Options, store *ledger.Store, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{Logger: logger, Opts: opts, Ledger: store, Now: time.Now}
}

// ProcessFolder processes every PDF directly inside inDir and writes the run
// artifacts into outDir. A fatal error is also appended to outDir/error.log
// so a failed run leaves a trace next to its outputs.
func (p *Processor) ProcessFolder(ctx context.Context, inDir, outDir string) (FolderResult, error) {
	start := p.Now()
	res := FolderResult{JobID: uuid.New(), Folder: inDir}
	logger := p.Logger.With("job_id", res.JobID, "folder", inDir)

	if p.Ledger != nil {
		if err := p.Ledger.Start(ctx, res.JobID, inDir); err != nil {
			logger.Warn("pipeline.ledger.start_failed", "error", err)
		}
	}

	err := p.run(ctx, inDir, outDir, start, logger, &res)
	res.Elapsed = p.Now().Sub(start)

	status, errMsg := constants.JobStatusOK, ""
	if err != nil {
		status, errMsg = constants.JobStatusFailed, err.Error()
		p.writeErrorLog(outDir, err, logger)
		logger.Error("pipeline.folder.failed", "error", err)
	} else {
		logger.Info("pipeline.folder.ok",
			"pages", res.Pages,
			"error_pages", len(res.ErrorPages),
			"elapsed", res.Elapsed.Round(time.Millisecond),
		)
	}
	if p.Ledger != nil {
		if lerr := p.Ledger.Finish(ctx, res.JobID, status, res.Pages, len(res.ErrorPages), errMsg); lerr != nil {
			logger.Warn("pipeline.ledger.finish_failed", "error", lerr)
		}
	}
	return res, err
}

func (p *Processor) run(ctx context.Context, inDir, outDir string, start time.Time, logger *slog.Logger, res *FolderResult) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output folder: %w", err)
	}
	tmpDir, err := os.MkdirTemp("", "shipcrop-*")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	scan, err := ingest.ScanFolder(inDir, logger)
	if err != nil {
		return err
	}
	res.SkippedFiles = scan.Skipped

	merged := filepath.Join(tmpDir, "merged.pdf")
	if err := ingest.Merge(scan.Valid, merged); err != nil {
		return err
	}
	logger.Info("pipeline.merge.ok", "files", len(scan.Valid))

	doc, err := extract.Open(merged, logger)
	if err != nil {
		return err
	}

	pageDims, err := api.PageDimsFile(merged)
	if err != nil {
		return fmt.Errorf("read page dimensions: %w", err)
	}
	if len(pageDims) == 0 {
		return common.NewAppError("NO_PAGES", "merged document has no pages", common.ErrEmptyFolder)
	}
	dims := make([]crop.Dim, len(pageDims))
	for i, d := range pageDims {
		dims[i] = crop.Dim{Width: d.Width, Height: d.Height}
	}
	pageCount := len(dims)
	if n := doc.PageCount(); n < pageCount {
		pageCount = n
	}
	res.Pages = pageCount

	recs, rowCache := p.extractPages(ctx, doc, pageCount)
	table := records.NewTable(recs)

	res.ErrorPages = table.ErrorPages()
	if len(res.ErrorPages) > 0 {
		errPDF := filepath.Join(outDir, "error_pages_"+start.Format(timestampLayout)+".pdf")
		if err := writePageSubset(merged, errPDF, res.ErrorPages); err != nil {
			logger.Warn("pipeline.error_pages.write_failed", "error", err)
		} else {
			res.ErrorPDFPath = errPDF
			logger.Info("pipeline.error_pages.ok", "pages", len(res.ErrorPages), "path", errPDF)
		}
	}

	table.Sort(p.Opts)
	perm := table.Permutation()

	rowsFor := func(i int) []extract.Row {
		if i >= 0 && i < len(rowCache) {
			return rowCache[i]
		}
		return nil
	}
	outs, planFallback := crop.Plan(rowsFor, dims, perm, p.Opts, logger)

	cropped := filepath.Join(tmpDir, "cropped.pdf")
	failed, err := crop.Materialize(merged, outs, dims, cropped, p.Opts, start, logger)
	if err != nil {
		return err
	}
	res.FailedCrops = append(planFallback, failed...)

	resultPath := filepath.Join(outDir, "result_pdf_"+start.Format(timestampLayout)+".pdf")
	if err := copyFile(cropped, resultPath); err != nil {
		return fmt.Errorf("write result document: %w", err)
	}
	res.ResultPath = resultPath
	logger.Info("pipeline.result.ok", "path", resultPath, "output_pages", len(outs))

	reportPath := filepath.Join(outDir, "summary_report_"+start.Format(timestampLayout)+".xlsx")
	if err := report.NewService(logger).WriteSummary(table, reportPath); err != nil {
		return err
	}
	res.ReportPath = reportPath
	return nil
}

// extractPages reads every page's rows and parses its fields, fanning the
// work out across workers. Slot i always holds page i's record, so page
// identity survives the concurrency.
func (p *Processor) extractPages(ctx context.Context, src extract.PageSource, pageCount int) ([]records.PageRecord, [][]extract.Row) {
	recs := make([]records.PageRecord, pageCount)
	rowCache := make([][]extract.Row, pageCount)

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(p.Opts.EffectiveWorkers())
	for i := 0; i < pageCount; i++ {
		i := i
		g.Go(func() error {
			rows := src.Rows(i)
			rowCache[i] = rows
			rec := extract.Fields(rowsText(rows), p.Opts)
			rec.PageIndex = i
			recs[i] = rec
			return nil
		})
	}
	// workers only write their own slot and never return errors
	_ = g.Wait()
	return recs, rowCache
}

func rowsText(rows []extract.Row) string {
	if len(rows) == 0 {
		return ""
	}
	out := make([]byte, 0, 256)
	for n, r := range rows {
		if n > 0 {
			out = append(out, '\n')
		}
		out = append(out, r.Text...)
	}
	return string(out)
}

// writePageSubset copies the given 0-based pages of src into dst in order.
func writePageSubset(src, dst string, pages []int) error {
	sel := make([]string, len(pages))
	for i, p := range pages {
		sel[i] = strconv.Itoa(p + 1)
	}
	return api.CollectFile(src, dst, sel, nil)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// writeErrorLog appends the fatal error to error.log in the output folder so
// a failed run is diagnosable without the process logs.
func (p *Processor) writeErrorLog(outDir string, runErr error, logger *slog.Logger) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		logger.Warn("pipeline.errorlog.mkdir_failed", "error", err)
		return
	}
	f, err := os.OpenFile(filepath.Join(outDir, "error.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		logger.Warn("pipeline.errorlog.open_failed", "error", err)
		return
	}
	defer f.Close()
	fmt.Fprintf(f, "%s %v\n", p.Now().Format(time.RFC3339), runErr)
}
