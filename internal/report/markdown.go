package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/histsheet/internal/model"
)

// MarkdownWriter outputs summaries in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation, which gives us tables, GitHub alerts and mermaid charts
// without hand-escaping.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the summary in Markdown format.
func (w *MarkdownWriter) Write(s *model.Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("History Conversion")
	md.PlainText("")

	w.writeProperties(md, s)
	w.writeAlert(md, s)

	if s.Succeeded() {
		w.writeHosts(md, s)
		w.writePreview(md, s)
	}

	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteBatch outputs the batch summaries in Markdown format.
func (w *MarkdownWriter) WriteBatch(summaries []*model.Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Batch History Conversion")
	md.PlainText("")

	rows := make([][]string, len(summaries))
	for i, s := range summaries {
		status := "✅ Converted"
		if !s.Succeeded() {
			status = "❌ " + s.Error
		}
		rows[i] = []string{
			"`" + s.InputPath + "`",
			"`" + s.OutputPath + "`",
			strconv.Itoa(s.RecordCount),
			strconv.Itoa(s.Incomplete),
			status,
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Input", "Output", "Records", "Skipped", "Status"},
		Rows:   rows,
	})
	md.PlainText("")

	failed := countFailed(summaries)
	if failed > 0 {
		md.Cautionf("%d of %d conversions failed.", failed, len(summaries))
	} else {
		md.Tip(fmt.Sprintf("All %d conversions succeeded.", len(summaries)))
	}
	md.PlainText("")

	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeProperties writes the conversion property table.
func (w *MarkdownWriter) writeProperties(md *markdown.Markdown, s *model.Summary) {
	rows := [][]string{
		{"Input", "`" + s.InputPath + "`"},
		{"Output", "`" + s.OutputPath + "`"},
		{"Sheet", s.SheetName},
		{"Records", strconv.Itoa(s.RecordCount)},
		{"Skipped entries", strconv.Itoa(s.Incomplete)},
		{"Encoding", encodingText(s.Encoding)},
		{"Input size", humanize.Bytes(uint64(max(s.InputSize, 0)))},
		{"Started", s.StartedAt.Format(timeLayout)},
	}
	if s.FirstVisit != nil && s.LastVisit != nil {
		rows = append(rows,
			[]string{"First visit", s.FirstVisit.Format(timeLayout)},
			[]string{"Last visit", s.LastVisit.Format(timeLayout)},
		)
	}
	rows = append(rows, []string{"Status", statusText(s)})

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// statusText returns the status cell text.
func statusText(s *model.Summary) string {
	if !s.Succeeded() {
		return "❌ Error - " + s.Error
	}
	return "✅ Complete"
}

// writeAlert writes an alert matching the outcome.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, s *model.Summary) {
	switch {
	case !s.Succeeded():
		md.Cautionf("The conversion failed and no workbook was written: %s", s.Error)
	case s.Incomplete > 0:
		md.Warningf("%s without a URL, title or visit time were skipped.", pluralEntries(s.Incomplete))
	case !s.HasRecords():
		md.Note("The export contained no history entries. The workbook has only the header row.")
	default:
		md.Tip("All history entries were converted.")
	}
	md.PlainText("")
}

// writeHosts writes the most visited hosts as a pie chart and a table.
func (w *MarkdownWriter) writeHosts(md *markdown.Markdown, s *model.Summary) {
	if len(s.TopHosts) == 0 {
		return
	}

	md.H2("Top Hosts")
	md.PlainText("")

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Visits by host"),
		piechart.WithShowData(true),
	)
	rows := make([][]string, len(s.TopHosts))
	for i, h := range s.TopHosts {
		chart.LabelAndIntValue(h.Host, uint64(h.Visits))
		rows[i] = []string{h.Host, strconv.Itoa(h.Visits)}
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Host", "Visits"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writePreview writes the first rows of the workbook.
func (w *MarkdownWriter) writePreview(md *markdown.Markdown, s *model.Summary) {
	if len(s.Preview) == 0 {
		return
	}

	md.H2("Preview")
	md.PlainText("")

	rows := make([][]string, len(s.Preview))
	for i, r := range s.Preview {
		rows[i] = []string{r.VisitedOn(), truncateString(r.URL, 60), truncateString(r.Title, 40)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Visited On", "URL", "Title"},
		Rows:   rows,
	})
	md.PlainText("")

	if more := s.RecordCount - len(s.Preview); more > 0 {
		md.PlainTextf("*... and %d more rows in the workbook.*", more)
		md.PlainText("")
	}
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [histsheet](https://github.com/nao1215/histsheet)*")
}

// truncateString truncates s to maxLen runes with an ellipsis.
// URLs and titles are often non-ASCII, so runes are counted, not bytes.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
