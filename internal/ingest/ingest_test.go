package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sagar9995/shipcrop/internal/common"
)

func writeFile(t *testing.T, dir, name string, body []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, body, 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestScanFolderSignatureCheck(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "labels.pdf", []byte("%PDF-1.7 rest"))
	writeFile(t, dir, "fake.pdf", []byte("not a pdf at all"))
	writeFile(t, dir, "tiny.pdf", []byte("%P"))
	writeFile(t, dir, "notes.txt", []byte("%PDF but wrong extension"))

	scan, err := ScanFolder(dir, nil)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(scan.Valid) != 1 || scan.Valid[0] != good {
		t.Errorf("valid: got %v", scan.Valid)
	}
	if len(scan.Skipped) != 2 {
		t.Errorf("skipped: got %v", scan.Skipped)
	}
}

func TestScanFolderCaseInsensitiveExt(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "UPPER.PDF", []byte("%PDF-1.4"))

	scan, err := ScanFolder(dir, nil)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(scan.Valid) != 1 {
		t.Errorf(".PDF extension should be accepted, got %v", scan.Valid)
	}
}

func TestScanFolderSortedOutput(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.pdf", []byte("%PDF-1.4"))
	writeFile(t, dir, "a.pdf", []byte("%PDF-1.4"))

	scan, err := ScanFolder(dir, nil)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(scan.Valid) != 2 || filepath.Base(scan.Valid[0]) != "a.pdf" {
		t.Errorf("valid files must be name-sorted, got %v", scan.Valid)
	}
}

func TestMergeEmpty(t *testing.T) {
	err := Merge(nil, filepath.Join(t.TempDir(), "out.pdf"))
	if !errors.Is(err, common.ErrEmptyFolder) {
		t.Errorf("empty merge should wrap ErrEmptyFolder, got %v", err)
	}
}
