package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/nao1215/histsheet/internal/model"
)

// Preview column widths in terminal cells.
const (
	previewURLWidth   = 48
	previewTitleWidth = 32
)

// SimpleWriter outputs human-readable text.
// Without details it prints only the confirmation line
// "Data from <input> was written to <output> in sheet '<sheet>'".
//
// Design decision: We use plain text without ANSI colors so the output
// can be piped to files or other tools unchanged.
type SimpleWriter struct {
	baseWriter

	// details adds encoding, size, visit range and a preview of the rows.
	details bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithDetails enables the detail block after the confirmation line.
func WithDetails(details bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.details = details
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Confirmation returns the one-line success message for s.
func Confirmation(s *model.Summary) string {
	return fmt.Sprintf("Data from %s was written to %s in sheet '%s'", s.InputPath, s.OutputPath, s.SheetName)
}

// Write outputs the summary of a single conversion.
func (w *SimpleWriter) Write(s *model.Summary) (int, error) {
	var sb strings.Builder

	if !s.Succeeded() {
		fmt.Fprintf(&sb, "Conversion of %s failed: %s\n", s.InputPath, s.Error)
		return io.WriteString(w.output, sb.String())
	}

	sb.WriteString(Confirmation(s))
	sb.WriteString("\n")

	if s.Incomplete > 0 {
		fmt.Fprintf(&sb, "Skipped %s\n", pluralEntries(s.Incomplete))
	}

	if w.details {
		w.writeDetails(&sb, s)
	}

	return io.WriteString(w.output, sb.String())
}

// WriteBatch outputs one line per conversion and a total.
func (w *SimpleWriter) WriteBatch(summaries []*model.Summary) (int, error) {
	var sb strings.Builder

	for _, s := range summaries {
		if !s.Succeeded() {
			fmt.Fprintf(&sb, "[FAIL] %s: %s\n", s.InputPath, s.Error)
			continue
		}
		fmt.Fprintf(&sb, "[ OK ] %s -> %s (%s)\n", s.InputPath, s.OutputPath, pluralRecords(s.RecordCount))
		if w.details && s.Incomplete > 0 {
			fmt.Fprintf(&sb, "       skipped %s\n", pluralEntries(s.Incomplete))
		}
	}

	failed := countFailed(summaries)
	fmt.Fprintf(&sb, "Converted %d of %d files", len(summaries)-failed, len(summaries))
	if failed > 0 {
		fmt.Fprintf(&sb, ", %d failed", failed)
	}
	sb.WriteString("\n")

	return io.WriteString(w.output, sb.String())
}

// writeDetails writes encoding, size, range and preview.
func (w *SimpleWriter) writeDetails(sb *strings.Builder, s *model.Summary) {
	sb.WriteString("\n")
	fmt.Fprintf(sb, "  Records:    %d\n", s.RecordCount)
	fmt.Fprintf(sb, "  Encoding:   %s\n", encodingText(s.Encoding))
	fmt.Fprintf(sb, "  Input size: %s\n", humanize.Bytes(uint64(max(s.InputSize, 0))))
	if s.FirstVisit != nil && s.LastVisit != nil {
		fmt.Fprintf(sb, "  Visits:     %s .. %s\n",
			s.FirstVisit.Format(timeLayout), s.LastVisit.Format(timeLayout))
	}
	fmt.Fprintf(sb, "  Took:       %s\n", s.Duration.Round(time.Millisecond))

	if len(s.TopHosts) > 0 {
		sb.WriteString("\n  Top hosts:\n")
		for _, h := range s.TopHosts {
			fmt.Fprintf(sb, "    %6s  %s\n", humanize.Comma(int64(h.Visits)), h.Host)
		}
	}

	if len(s.Preview) > 0 {
		sb.WriteString("\n  Preview:\n")
		for _, r := range s.Preview {
			fmt.Fprintf(sb, "    %s  %s  %s\n",
				r.VisitedOn(),
				runewidth.FillRight(runewidth.Truncate(r.URL, previewURLWidth, "..."), previewURLWidth),
				runewidth.Truncate(r.Title, previewTitleWidth, "..."),
			)
		}
		if s.RecordCount > len(s.Preview) {
			fmt.Fprintf(sb, "    ... and %s more\n", humanize.Comma(int64(s.RecordCount-len(s.Preview))))
		}
	}
}

// encodingText describes how the input was decoded.
func encodingText(e model.Encoding) string {
	if e.Charset == "" {
		return "unknown"
	}
	text := fmt.Sprintf("%s (%s", e.Charset, e.Source)
	if e.Source == model.EncodingSourceDetected {
		text += fmt.Sprintf(", %d%% confidence", e.Confidence)
	}
	if e.Language != "" {
		text += ", language " + e.Language
	}
	return text + ")"
}

func pluralRecords(n int) string {
	if n == 1 {
		return "1 record"
	}
	return humanize.Comma(int64(n)) + " records"
}

func pluralEntries(n int) string {
	if n == 1 {
		return "1 incomplete entry"
	}
	return humanize.Comma(int64(n)) + " incomplete entries"
}
