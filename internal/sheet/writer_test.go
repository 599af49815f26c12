package sheet

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nao1215/histsheet/internal/model"
)

// testRecords returns n records with distinct values.
func testRecords(n int) []model.HistoryRecord {
	records := make([]model.HistoryRecord, n)
	for i := range records {
		records[i] = model.HistoryRecord{
			URL:       "https://example.com/" + string(rune('a'+i)),
			Title:     "Сторінка " + string(rune('A'+i)),
			VisitedAt: time.Date(2023, 1, 1+i, 10, 0, 0, 0, time.UTC),
		}
	}
	return records
}

// newTestWriter returns a Writer that logs into a buffer.
func newTestWriter() *Writer {
	var buf bytes.Buffer
	return NewWriter(WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
}

// openWorkbook opens path and registers cleanup.
func openWorkbook(t *testing.T, path string) *excelize.File {
	t.Helper()

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("failed to open workbook: %v", err)
	}
	t.Cleanup(func() { _ = f.Close() })
	return f
}

// TestWriter_Write tests workbook content.
func TestWriter_Write(t *testing.T) {
	t.Parallel()

	t.Run("header plus one row per record", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "out.xlsx")
		records := testRecords(3)

		if err := newTestWriter().Write(context.Background(), path, "history", records); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		f := openWorkbook(t, path)

		sheets := f.GetSheetList()
		if len(sheets) != 1 || sheets[0] != "history" {
			t.Fatalf("expected single sheet 'history', got %v", sheets)
		}

		rows, err := f.GetRows("history")
		if err != nil {
			t.Fatalf("failed to read rows: %v", err)
		}
		if len(rows) != len(records)+1 {
			t.Fatalf("expected %d rows, got %d", len(records)+1, len(rows))
		}
		for i, h := range Headers {
			if rows[0][i] != h {
				t.Errorf("header %d: expected %q, got %q", i, h, rows[0][i])
			}
		}
		for i, r := range records {
			want := r.Row()
			for j := range want {
				if rows[i+1][j] != want[j] {
					t.Errorf("row %d col %d: expected %q, got %q", i+2, j, want[j], rows[i+1][j])
				}
			}
		}
	})

	t.Run("end to end example row", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "out.xlsx")
		records := []model.HistoryRecord{{
			URL:       "https://example.com",
			Title:     "Example Domain",
			VisitedAt: time.Date(2023, 1, 1, 10, 0, 0, 0, time.UTC),
		}}

		if err := newTestWriter().Write(context.Background(), path, "history", records); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		rows, err := openWorkbook(t, path).GetRows("history")
		if err != nil {
			t.Fatalf("failed to read rows: %v", err)
		}
		want := []string{"https://example.com", "Example Domain", "2023-01-01 10:00:00"}
		if len(rows) != 2 {
			t.Fatalf("expected 2 rows, got %d", len(rows))
		}
		for i := range want {
			if rows[1][i] != want[i] {
				t.Errorf("col %d: expected %q, got %q", i, want[i], rows[1][i])
			}
		}
	})

	t.Run("no records writes only the header", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "out.xlsx")
		if err := newTestWriter().Write(context.Background(), path, "empty", nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		rows, err := openWorkbook(t, path).GetRows("empty")
		if err != nil {
			t.Fatalf("failed to read rows: %v", err)
		}
		if len(rows) != 1 {
			t.Errorf("expected 1 row, got %d", len(rows))
		}
	})

	t.Run("creates missing output directories", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "nested", "dir", "out.xlsx")
		if err := newTestWriter().Write(context.Background(), path, "history", testRecords(1)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected output file: %v", err)
		}
	})

	t.Run("overwrites an existing file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "out.xlsx")
		if err := os.WriteFile(path, []byte("not a workbook"), 0600); err != nil {
			t.Fatalf("failed to seed file: %v", err)
		}

		if err := newTestWriter().Write(context.Background(), path, "history", testRecords(2)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		rows, err := openWorkbook(t, path).GetRows("history")
		if err != nil {
			t.Fatalf("failed to read rows: %v", err)
		}
		if len(rows) != 3 {
			t.Errorf("expected 3 rows, got %d", len(rows))
		}
	})

	t.Run("invalid sheet name leaves no file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "out.xlsx")
		err := newTestWriter().Write(context.Background(), path, "bad/name", testRecords(1))
		if err == nil {
			t.Fatal("expected error for invalid sheet name")
		}
		entries, _ := os.ReadDir(dir) //nolint:errcheck // empty list is fine on failure
		if len(entries) != 0 {
			t.Errorf("expected empty directory, found %d entries", len(entries))
		}
	})

	t.Run("cancelled context leaves no file", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		path := filepath.Join(t.TempDir(), "out.xlsx")
		if err := newTestWriter().Write(ctx, path, "history", testRecords(1)); err == nil {
			t.Fatal("expected error for cancelled context")
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("expected no output file, stat returned %v", err)
		}
	})
}

// TestWriter_WriteFileMode tests the permission bits of saved workbooks.
func TestWriter_WriteFileMode(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("unix permission bits")
	}

	tests := []struct {
		name     string
		existing os.FileMode
		want     os.FileMode
	}{
		{name: "new workbook is readable by others", want: defaultFileMode},
		{name: "overwritten workbook keeps a restrictive mode", existing: 0640, want: 0640},
		{name: "overwritten workbook keeps a wide mode", existing: 0664, want: 0664},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "out.xlsx")
			if tt.existing != 0 {
				if err := os.WriteFile(path, []byte("old"), 0600); err != nil {
					t.Fatalf("failed to write existing file: %v", err)
				}
				if err := os.Chmod(path, tt.existing); err != nil {
					t.Fatalf("failed to chmod existing file: %v", err)
				}
			}

			if err := newTestWriter().Write(context.Background(), path, "history", testRecords(1)); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			info, err := os.Stat(path)
			if err != nil {
				t.Fatalf("failed to stat workbook: %v", err)
			}
			if got := info.Mode().Perm(); got != tt.want {
				t.Errorf("expected mode %v, got %v", tt.want, got)
			}
		})
	}
}

// TestWriter_Styles tests the presentation constants.
func TestWriter_Styles(t *testing.T) {
	t.Parallel()

	f, err := newTestWriter().Build("history", testRecords(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer f.Close()

	t.Run("column widths", func(t *testing.T) {
		want := map[string]float64{"A": URLColumnWidth, "B": TitleColumnWidth, "C": DateColumnWidth}
		for col, width := range want {
			got, err := f.GetColWidth("history", col)
			if err != nil {
				t.Fatalf("failed to read width: %v", err)
			}
			if got != width {
				t.Errorf("column %s: expected width %v, got %v", col, width, got)
			}
		}
	})

	styleOf := func(t *testing.T, cell string) *excelize.Style {
		t.Helper()
		id, err := f.GetCellStyle("history", cell)
		if err != nil {
			t.Fatalf("failed to read style id of %s: %v", cell, err)
		}
		style, err := f.GetStyle(id)
		if err != nil {
			t.Fatalf("failed to read style of %s: %v", cell, err)
		}
		return style
	}

	t.Run("header cells are bold, large, filled and bordered", func(t *testing.T) {
		for _, cell := range []string{"A1", "B1", "C1"} {
			style := styleOf(t, cell)
			if style.Font == nil || !style.Font.Bold || style.Font.Size != HeaderFontSize {
				t.Errorf("%s: unexpected font %+v", cell, style.Font)
			}
			if style.Fill.Pattern != fillPatternSolid {
				t.Errorf("%s: expected solid fill, got pattern %d", cell, style.Fill.Pattern)
			}
			if style.Alignment == nil || style.Alignment.Horizontal != "center" {
				t.Errorf("%s: expected centered alignment", cell)
			}
			if len(style.Border) != 4 {
				t.Errorf("%s: expected 4 borders, got %d", cell, len(style.Border))
			}
		}
	})

	t.Run("data cells are smaller, centered, wrapped and bordered", func(t *testing.T) {
		for _, cell := range []string{"A2", "B2", "C3"} {
			style := styleOf(t, cell)
			if style.Font == nil || style.Font.Bold || style.Font.Size != DataFontSize {
				t.Errorf("%s: unexpected font %+v", cell, style.Font)
			}
			if style.Alignment == nil || style.Alignment.Horizontal != "center" || !style.Alignment.WrapText {
				t.Errorf("%s: expected centered wrapped alignment", cell)
			}
			if len(style.Border) != 4 {
				t.Errorf("%s: expected 4 borders, got %d", cell, len(style.Border))
			}
		}
	})
}
