package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/histsheet/internal/model"
)

// JSONWriter outputs summaries in JSON format.
// This format is designed for tool integration and programmatic processing.
//
// Design decision: We use standard encoding/json because the summary is a
// plain struct tree and the output must match what any consumer's decoder
// expects, with no extra dependency.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string

	// version is the histsheet version recorded in the output.
	version string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// WithVersion records the histsheet version in the output.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// JSONReport wraps a single conversion summary with metadata.
type JSONReport struct {
	// Version is the histsheet version that produced this report.
	Version string `json:"version,omitempty"`

	// Conversion is the conversion summary.
	Conversion *model.Summary `json:"conversion"`
}

// JSONBatchReport wraps the summaries of a batch conversion.
type JSONBatchReport struct {
	Version     string           `json:"version,omitempty"`
	Total       int              `json:"total"`
	Failed      int              `json:"failed"`
	Conversions []*model.Summary `json:"conversions"`
}

// Write outputs the summary in JSON format.
func (w *JSONWriter) Write(summary *model.Summary) (int, error) {
	return w.writeJSON(&JSONReport{
		Version:    w.version,
		Conversion: summary,
	})
}

// WriteBatch outputs the batch summaries in JSON format.
func (w *JSONWriter) WriteBatch(summaries []*model.Summary) (int, error) {
	if summaries == nil {
		summaries = make([]*model.Summary, 0)
	}
	return w.writeJSON(&JSONBatchReport{
		Version:     w.version,
		Total:       len(summaries),
		Failed:      countFailed(summaries),
		Conversions: summaries,
	})
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}
