// Package model defines the core data structures used throughout histsheet.
//
// This package contains the following main types:
//   - HistoryRecord: One visit entry (URL, page title, visit time)
//   - Conversion: The state and result of converting one history export
//   - Summary: A flat, report-friendly view of a Conversion
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. The extract, sheet, pipeline, report and database packages all
// need these types, so centralizing them prevents import cycles.
package model
