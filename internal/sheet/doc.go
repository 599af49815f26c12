// Package sheet writes visit records to a styled xlsx workbook.
//
// The workbook always has exactly one worksheet: a bold, grey header row
// followed by one row per record. Styling values are fixed presentation
// constants. Workbooks are built in memory and written to disk in a single
// step at the end, so a failure never leaves a half-written file behind.
package sheet
