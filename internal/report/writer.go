package report

import (
	"io"

	"github.com/nao1215/histsheet/internal/model"
)

// Writer defines the interface for summary output.
//
// Design decision: We use an interface so the same summary can go to the
// terminal, a report file, or both, in any format, with the same API.
type Writer interface {
	// Write outputs the summary of a single conversion.
	// Returns the number of bytes written and any error encountered.
	Write(summary *model.Summary) (int, error)

	// WriteBatch outputs the summaries of a batch conversion in input order.
	WriteBatch(summaries []*model.Summary) (int, error)
}

// Format names a summary output format.
type Format string

const (
	// FormatText is the human-readable format.
	FormatText Format = "text"
	// FormatJSON is the JSON format.
	FormatJSON Format = "json"
	// FormatMarkdown is the Markdown format.
	FormatMarkdown Format = "markdown"
)

// NewWriter returns the Writer for format writing to output.
// Unknown formats fall back to FormatText.
func NewWriter(format Format, output io.Writer, version string) Writer {
	switch format {
	case FormatJSON:
		return NewJSONWriter(output, WithPrettyPrint(), WithVersion(version))
	case FormatMarkdown:
		return NewMarkdownWriter(output)
	default:
		return NewSimpleWriter(output, WithDetails(true))
	}
}

// MultiWriter writes to multiple Writers in turn.
// This is used to print the confirmation to the terminal while a report
// file receives the full summary.
//
// Design decision: We implement this as a separate type rather than using
// io.MultiWriter because each destination may use a different format.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the summary to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(summary *model.Summary) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(summary)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteBatch outputs the batch summaries to all configured Writers.
func (m *MultiWriter) WriteBatch(summaries []*model.Summary) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteBatch(summaries)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// countFailed returns the number of failed conversions.
func countFailed(summaries []*model.Summary) int {
	failed := 0
	for _, s := range summaries {
		if !s.Succeeded() {
			failed++
		}
	}
	return failed
}

// timeLayout is used for all times shown in reports.
const timeLayout = "2006-01-02 15:04:05"
