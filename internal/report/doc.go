// Package report provides conversion summary output.
//
// This package contains writers for different output formats:
//   - SimpleWriter: the confirmation line, plus details for terminal display
//   - JSONWriter: Structured JSON output for tool integration
//   - MarkdownWriter: Markdown for sharing and documentation
//
// Design decision: We separate summary writing from the summary data
// (model.Summary) so a new output format never touches the model.
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output.
package report
