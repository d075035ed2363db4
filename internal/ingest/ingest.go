package ingest

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/sagar9995/shipcrop/internal/common"
)

// pdfSignature is the required first four bytes of a valid input file.
var pdfSignature = []byte("%PDF")

// FolderScan is the result of validating one input folder.
type FolderScan struct {
	Valid   []string // paths accepted for merging, sorted by name
	Skipped []string // paths skipped (bad signature, unreadable)
}

// ScanFolder lists the .pdf files of dir and keeps those whose first four
// bytes match the PDF signature. Invalid or unreadable files are skipped
// with a warning, never fatal.
func ScanFolder(dir string, logger *slog.Logger) (FolderScan, error) {
	if logger == nil {
		logger = slog.Default()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return FolderScan{}, fmt.Errorf("read folder: %w", err)
	}

	var scan FolderScan
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		ok, err := hasPDFSignature(path)
		if err != nil {
			logger.Warn("ingest.unreadable_file", "path", path, "error", err)
			scan.Skipped = append(scan.Skipped, path)
			continue
		}
		if !ok {
			logger.Warn("ingest.invalid_signature", "path", path)
			scan.Skipped = append(scan.Skipped, path)
			continue
		}
		scan.Valid = append(scan.Valid, path)
	}
	sort.Strings(scan.Valid)
	return scan, nil
}

func hasPDFSignature(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	header := make([]byte, len(pdfSignature))
	if _, err := io.ReadFull(f, header); err != nil {
		return false, err
	}
	return string(header) == string(pdfSignature), nil
}

// Merge concatenates the validated input PDFs, in order, into one document
// at outPath.
func Merge(paths []string, outPath string) error {
	if len(paths) == 0 {
		return common.NewAppError("MERGE_EMPTY", "nothing to merge", common.ErrEmptyFolder)
	}
	if err := api.MergeCreateFile(paths, outPath, false, nil); err != nil {
		return fmt.Errorf("merge %d files: %w", len(paths), err)
	}
	return nil
}
