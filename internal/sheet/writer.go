package sheet

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/nao1215/histsheet/internal/model"
)

// Writer builds and saves history workbooks.
type Writer struct {
	// logger for structured logging.
	logger *slog.Logger
}

// Option configures a Writer.
type Option func(*Writer)

// WithLogger sets a custom logger for the writer.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Writer) {
		w.logger = logger
	}
}

// NewWriter creates a Writer.
func NewWriter(opts ...Option) *Writer {
	w := &Writer{}

	for _, opt := range opts {
		opt(w)
	}

	if w.logger == nil {
		w.logger = slog.Default()
	}

	return w
}

// Build creates an in-memory workbook with a header row and one row per record.
// The caller must Close the returned file.
func (w *Writer) Build(sheetName string, records []model.HistoryRecord) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := w.fill(f, sheetName, records); err != nil {
		_ = f.Close() //nolint:errcheck // Best effort cleanup
		return nil, err
	}

	return f, nil
}

// fill renames the default sheet and writes header, rows and styles.
func (w *Writer) fill(f *excelize.File, sheetName string, records []model.HistoryRecord) error {
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("failed to name sheet %q: %w", sheetName, err)
	}

	widths := []struct {
		col   string
		width float64
	}{
		{"A", URLColumnWidth},
		{"B", TitleColumnWidth},
		{"C", DateColumnWidth},
	}
	for _, cw := range widths {
		if err := f.SetColWidth(sheetName, cw.col, cw.col, cw.width); err != nil {
			return fmt.Errorf("failed to set width of column %s: %w", cw.col, err)
		}
	}

	header := make([]interface{}, len(Headers))
	for i, h := range Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{r.URL, r.Title, r.VisitedOn()}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	headerID, err := f.NewStyle(headerStyle())
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetCellStyle(sheetName, "A1", "C1", headerID); err != nil {
		return fmt.Errorf("failed to style header row: %w", err)
	}

	if len(records) > 0 {
		dataID, err := f.NewStyle(dataStyle())
		if err != nil {
			return fmt.Errorf("failed to create data style: %w", err)
		}
		lastCell, err := excelize.CoordinatesToCellName(len(Headers), len(records)+1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheetName, "A2", lastCell, dataID); err != nil {
			return fmt.Errorf("failed to style data rows: %w", err)
		}
	}

	return nil
}

// defaultFileMode is the permission of a newly created workbook.
const defaultFileMode os.FileMode = 0644

// outputFileMode returns the permission bits of the file at path, or
// defaultFileMode when path does not name a regular file yet.
func outputFileMode(path string) os.FileMode {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return defaultFileMode
	}
	return info.Mode().Perm()
}

// Write builds the workbook and saves it to path, replacing any existing file.
// The file is written to a temporary name in the same directory and renamed
// into place, so path is either untouched or complete. An overwritten
// workbook keeps its permission bits.
func (w *Writer) Write(ctx context.Context, path, sheetName string, records []model.HistoryRecord) error {
	f, err := w.Build(sheetName, records)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	tmp, err := os.CreateTemp(dir, ".histsheet-*.xlsx")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	tmpName := tmp.Name()

	if err := tmp.Chmod(outputFileMode(path)); err != nil {
		_ = tmp.Close()        //nolint:errcheck // Best effort cleanup
		_ = os.Remove(tmpName) //nolint:errcheck // Best effort cleanup
		return fmt.Errorf("failed to set output file mode: %w", err)
	}

	if _, err := f.WriteTo(tmp); err != nil {
		_ = tmp.Close()        //nolint:errcheck // Best effort cleanup
		_ = os.Remove(tmpName) //nolint:errcheck // Best effort cleanup
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName) //nolint:errcheck // Best effort cleanup
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName) //nolint:errcheck // Best effort cleanup
		return fmt.Errorf("failed to save workbook to %s: %w", path, err)
	}

	w.logger.Debug("workbook saved",
		"path", path,
		"sheet", sheetName,
		"rows", len(records)+1,
	)

	return nil
}
