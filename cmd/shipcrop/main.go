package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/sagar9995/shipcrop/internal/async"
	"github.com/sagar9995/shipcrop/internal/common"
	"github.com/sagar9995/shipcrop/internal/ledger"
	"github.com/sagar9995/shipcrop/internal/lock"
	"github.com/sagar9995/shipcrop/internal/pipeline"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		in      = flag.String("in", "", "root folder whose subfolders each hold one batch of label PDFs (required)")
		out     = flag.String("out", "", "output folder (defaults to <in>/output)")
		cfgPath = flag.String("config", "", "JSON options file (defaults to <in>/config.json)")
		workers = flag.Int("workers", 2, "number of folders processed concurrently")
		lockURL = flag.String("lock-url", lock.DefaultURL, "remote kill-switch status URL (empty to skip the check)")
	)
	flag.Parse()

	if *in == "" {
		printError("Error: --in is required\n")
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join(*in, "output")
	}
	if *cfgPath == "" {
		*cfgPath = filepath.Join(*in, "config.json")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()

	opts, err := common.LoadOptions(*cfgPath, logger)
	if err != nil {
		logger.Error("failed to load options", "path", *cfgPath, "error", err)
		os.Exit(1)
	}

	if *lockURL != "" {
		if err := lock.NewClient(*lockURL, nil, logger).Enabled(ctx); err != nil {
			logger.Error("service check failed", "error", err)
			printError("Error: processing is currently disabled: %v\n", err)
			os.Exit(1)
		}
	}

	batches, err := discoverBatches(*in, *out)
	if err != nil {
		logger.Error("failed to scan input root", "dir", *in, "error", err)
		os.Exit(1)
	}
	if len(batches) == 0 {
		printError("Error: no batch subfolders found under %s\n", *in)
		os.Exit(1)
	}
	if err := os.MkdirAll(*out, 0o755); err != nil {
		logger.Error("failed to create output folder", "dir", *out, "error", err)
		os.Exit(1)
	}

	store, err := ledger.Open(filepath.Join(*out, "shipcrop_runs.db"), logger)
	if err != nil {
		logger.Error("failed to open run ledger", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	proc := pipeline.NewProcessor(opts, store, logger)
	queue := async.NewFolderQueue(proc, logger,
		async.WithWorkers(*workers),
		async.WithQueueSize(len(batches)),
	)

	logger.Info("starting batch run", "batches", len(batches), "marketplace", opts.Marketplace, "workers", *workers)
	for _, b := range batches {
		if err := queue.Enqueue(ctx, b); err != nil {
			logger.Error("failed to enqueue folder", "folder", b.InDir, "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, time.Hour)
	defer cancel()
	queue.Shutdown(shutdownCtx)

	processed, failures, pages, errorPages := 0, 0, 0, 0
	for res := range queue.Results() {
		if res.Err != nil {
			failures++
			continue
		}
		processed++
		pages += res.Res.Pages
		errorPages += len(res.Res.ErrorPages)
	}

	logger.Info("batch run complete",
		"folders_processed", processed,
		"failures", failures,
		"pages", pages,
		"error_pages", errorPages,
		"output", *out)

	fmt.Printf("Label cropping complete!\n")
	fmt.Printf("- Folders processed: %d\n", processed)
	fmt.Printf("- Failures: %d\n", failures)
	fmt.Printf("- Pages: %d\n", pages)
	fmt.Printf("- Error pages: %d\n", errorPages)
	fmt.Printf("- Output: %s\n", *out)

	if failures > 0 {
		os.Exit(1)
	}
}

// discoverBatches lists the immediate subfolders of root; each becomes one
// job writing into its own subfolder of outRoot. The output root itself is
// never treated as a batch.
func discoverBatches(root, outRoot string) ([]async.Job, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var jobs []async.Job
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		inDir := filepath.Join(root, e.Name())
		if inDir == outRoot {
			continue
		}
		jobs = append(jobs, async.Job{
			InDir:  inDir,
			OutDir: filepath.Join(outRoot, e.Name()),
		})
	}
	return jobs, nil
}
