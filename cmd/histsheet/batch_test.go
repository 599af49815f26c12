package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/histsheet/internal/config"
	"github.com/nao1215/histsheet/internal/report"
)

// TestNewBatchCmd tests the batch command creation.
func TestNewBatchCmd(t *testing.T) {
	t.Parallel()

	cmd := NewBatchCmd()

	t.Run("has output-dir flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("output-dir")
		if flag == nil {
			t.Fatal("expected output-dir flag")
		}
		if flag.Shorthand != "o" {
			t.Errorf("expected shorthand 'o', got %q", flag.Shorthand)
		}
	})

	t.Run("has batch flag with default concurrency", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("batch")
		if flag == nil {
			t.Fatal("expected batch flag")
		}
		if flag.DefValue != "4" {
			t.Errorf("expected default 4, got %q", flag.DefValue)
		}
	})

	t.Run("shares conversion flags", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{"encoding", "strict", "no-history", "json", "report"} {
			if cmd.Flags().Lookup(name) == nil {
				t.Errorf("expected %s flag", name)
			}
		}
	})
}

// TestRunBatchCmd tests batch conversion end to end.
func TestRunBatchCmd(t *testing.T) {
	t.Parallel()

	t.Run("converts every input", func(t *testing.T) {
		t.Parallel()

		a := writeExport(t, "alpha.txt", sampleExport)
		b := writeExport(t, "beta.txt", sampleExport)
		outDir := filepath.Join(t.TempDir(), "sheets")

		stdout, _, err := executeRoot(t, "batch", "-o", outDir, "-e", "utf-8", "--no-history", a, b)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		for _, name := range []string{"alpha", "beta"} {
			rows := readRows(t, filepath.Join(outDir, name+".xlsx"), name)
			if len(rows) != 3 {
				t.Errorf("%s: expected header and 2 rows, got %d", name, len(rows))
			}
		}
		if !strings.Contains(stdout, "Converted 2 of 2 files") {
			t.Errorf("expected total line, got %q", stdout)
		}
	})

	t.Run("inputs with the same name get distinct outputs", func(t *testing.T) {
		t.Parallel()

		a := writeExport(t, "history.txt", sampleExport)
		b := writeExport(t, "history.txt", sampleExport)
		outDir := t.TempDir()

		if _, _, err := executeRoot(t, "batch", "-o", outDir, "-e", "utf-8", "--no-history", a, b); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		for _, name := range []string{"history.xlsx", "history-2.xlsx"} {
			if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
				t.Errorf("expected %s: %v", name, err)
			}
		}
	})

	t.Run("a failed input does not stop the others", func(t *testing.T) {
		t.Parallel()

		good := writeExport(t, "good.txt", sampleExport)
		bad := writeExport(t, "bad.txt", "URL: https://example.com\nTitle: A\nVisited On: yesterday\n")
		outDir := t.TempDir()

		stdout, _, err := executeRoot(t, "batch", "-o", outDir, "-e", "utf-8", "--no-history", good, bad)
		if !errors.Is(err, errConversionsFailed) {
			t.Fatalf("expected errConversionsFailed, got %v", err)
		}

		if _, err := os.Stat(filepath.Join(outDir, "good.xlsx")); err != nil {
			t.Errorf("expected good.xlsx: %v", err)
		}
		if _, err := os.Stat(filepath.Join(outDir, "bad.xlsx")); !os.IsNotExist(err) {
			t.Error("expected no bad.xlsx")
		}
		if !strings.Contains(stdout, "[FAIL] "+bad) {
			t.Errorf("expected failure line, got %q", stdout)
		}
		if !strings.Contains(stdout, "Converted 1 of 2 files, 1 failed") {
			t.Errorf("expected total line, got %q", stdout)
		}
	})

	t.Run("json report file lists all conversions", func(t *testing.T) {
		t.Parallel()

		a := writeExport(t, "a.txt", sampleExport)
		b := writeExport(t, "b.txt", sampleExport)
		dir := t.TempDir()
		reportPath := filepath.Join(dir, "batch.json")

		if _, _, err := executeRoot(t, "batch", "-o", dir, "-e", "utf-8", "--no-history", "-j", "-r", reportPath, a, b); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		content, err := os.ReadFile(reportPath)
		if err != nil {
			t.Fatalf("failed to read report: %v", err)
		}
		var got report.JSONBatchReport
		if err := json.Unmarshal(content, &got); err != nil {
			t.Fatalf("report is not JSON: %v", err)
		}
		if got.Total != 2 || got.Failed != 0 || len(got.Conversions) != 2 {
			t.Errorf("unexpected batch report %+v", got)
		}
	})

	t.Run("missing output directory fails", func(t *testing.T) {
		t.Parallel()

		a := writeExport(t, "a.txt", sampleExport)
		_, _, err := executeRoot(t, "batch", "--no-history", a)
		if !errors.Is(err, config.ErrNoOutput) {
			t.Errorf("expected ErrNoOutput, got %v", err)
		}
	})

	t.Run("zero concurrency fails", func(t *testing.T) {
		t.Parallel()

		a := writeExport(t, "a.txt", sampleExport)
		_, _, err := executeRoot(t, "batch", "-o", t.TempDir(), "-b", "0", "--no-history", a)
		if !errors.Is(err, config.ErrInvalidBatchSize) {
			t.Errorf("expected ErrInvalidBatchSize, got %v", err)
		}
	})

	t.Run("requires at least one input", func(t *testing.T) {
		t.Parallel()

		if _, _, err := executeRoot(t, "batch", "-o", t.TempDir()); err == nil {
			t.Error("expected error without inputs")
		}
	})
}
