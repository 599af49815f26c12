// Package main provides the entry point for the histsheet CLI.
//
// histsheet converts a browser-history text export, made of labeled
// "URL:", "Title:" and "Visited On:" lines, into a styled xlsx workbook.
//
// Usage:
//
//	histsheet <input.txt> <output.xlsx>
//	histsheet batch -o <dir> <input.txt>...
//
// See --help for all available options.
package main

// main is the entry point for histsheet.
func main() {
	Execute()
}
