package extract

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/nao1215/histsheet/internal/model"
)

// Field labels recognized in exports.
const (
	LabelURL       = "URL"
	LabelTitle     = "Title"
	LabelVisitedOn = "Visited On"
)

var (
	// fieldLine matches a labeled line. "URL Length : 23" does not match URL
	// because only whitespace may sit between the label and the colon.
	fieldLine = regexp.MustCompile(`^\s*(URL|Title|Visited On)\s*:\s*(.*?)\s*$`)

	// separatorLine matches the rules exporters put between entries.
	separatorLine = regexp.MustCompile(`^\s*(?:={3,}|-{3,})\s*$`)
)

// Result is the outcome of an extraction.
type Result struct {
	// Records are the complete entries in order of appearance.
	Records []model.HistoryRecord

	// Incomplete is the number of entries dropped for a missing field.
	Incomplete int
}

// Extractor pulls visit records out of export text.
type Extractor struct {
	// strict turns incomplete entries into an error.
	strict bool

	// logger receives a warning for each dropped entry.
	logger *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithStrict makes incomplete entries fail the extraction.
func WithStrict(strict bool) Option {
	return func(x *Extractor) {
		x.strict = strict
	}
}

// WithLogger sets the logger used for dropped-entry warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(x *Extractor) {
		x.logger = logger
	}
}

// NewExtractor creates an Extractor.
func NewExtractor(opts ...Option) *Extractor {
	x := &Extractor{}

	for _, opt := range opts {
		opt(x)
	}

	if x.logger == nil {
		x.logger = slog.Default()
	}

	return x
}

// entry accumulates the fields of one visit entry.
type entry struct {
	url, title, visitedOn    string
	hasURL, hasTitle, hasVis bool

	// line is where the entry started, for diagnostics.
	line int

	// visitedLine is the line of the Visited On field.
	visitedLine int
}

func (e *entry) empty() bool {
	return !e.hasURL && !e.hasTitle && !e.hasVis
}

func (e *entry) complete() bool {
	return e.hasURL && e.hasTitle && e.hasVis
}

// has reports whether the entry already holds the given label.
func (e *entry) has(label string) bool {
	switch label {
	case LabelURL:
		return e.hasURL
	case LabelTitle:
		return e.hasTitle
	default:
		return e.hasVis
	}
}

func (e *entry) set(label, value string, line int) {
	if e.empty() {
		e.line = line
	}
	switch label {
	case LabelURL:
		e.url, e.hasURL = value, true
	case LabelTitle:
		e.title, e.hasTitle = value, true
	default:
		e.visitedOn, e.hasVis = value, true
		e.visitedLine = line
	}
}

// missing lists the labels the entry lacks.
func (e *entry) missing() []string {
	var labels []string
	if !e.hasURL {
		labels = append(labels, LabelURL)
	}
	if !e.hasTitle {
		labels = append(labels, LabelTitle)
	}
	if !e.hasVis {
		labels = append(labels, LabelVisitedOn)
	}
	return labels
}

// Extract parses text and returns the visit records it contains.
// A malformed timestamp aborts the extraction.
func (x *Extractor) Extract(ctx context.Context, text string) (*Result, error) {
	result := &Result{Records: make([]model.HistoryRecord, 0)}

	var cur entry
	flush := func() error {
		defer func() { cur = entry{} }()

		if cur.empty() {
			return nil
		}
		if !cur.complete() {
			if x.strict {
				return fmt.Errorf("%w at line %d: missing %s",
					ErrIncompleteEntry, cur.line, strings.Join(cur.missing(), ", "))
			}
			result.Incomplete++
			x.logger.Warn("dropping incomplete history entry",
				"line", cur.line,
				"url", cur.url,
				"missing", cur.missing(),
			)
			return nil
		}

		visitedAt, err := ParseVisitedOn(cur.visitedOn)
		if err != nil {
			return fmt.Errorf("line %d: %w", cur.visitedLine, err)
		}
		result.Records = append(result.Records, model.HistoryRecord{
			URL:       cur.url,
			Title:     cur.title,
			VisitedAt: visitedAt,
		})
		return nil
	}

	scanner := bufio.NewScanner(strings.NewReader(normalizeNewlines(text)))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		line := scanner.Text()

		if separatorLine.MatchString(line) {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}

		m := fieldLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		label, value := m[1], m[2]
		if cur.has(label) {
			if err := flush(); err != nil {
				return nil, err
			}
		}
		cur.set(label, value, lineNo)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read export text: %w", err)
	}

	if err := flush(); err != nil {
		return nil, err
	}

	x.logger.Debug("extraction finished",
		"records", len(result.Records),
		"incomplete", result.Incomplete,
		"lines", lineNo,
	)

	return result, nil
}

const (
	// maxLineSize bounds a single line; titles and URLs can be long.
	maxLineSize = 4 * 1024 * 1024

	// cancelCheckInterval is how many lines pass between context checks.
	cancelCheckInterval = 4096
)

// normalizeNewlines converts CRLF and lone CR line endings to LF.
func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
