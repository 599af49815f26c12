// Package textenc detects and decodes the character encoding of history exports.
//
// Exports are written by whatever tool and locale the user had, so the same
// text may arrive as UTF-8, UTF-16 with a byte order mark, or a legacy code
// page such as windows-1251 or KOI8-R. Detection works in three stages:
//
//  1. A configured charset, when present, wins and skips detection.
//  2. A byte order mark identifies UTF-8, UTF-16 and UTF-32 exactly.
//  3. Otherwise statistical detection (github.com/saintfish/chardet) guesses.
//
// Detected charsets can be restricted by an allow-list and a minimum
// confidence so that a poor guess fails with a clear message instead of
// producing mojibake in the workbook.
//
// Decoding resolves charset names with the WHATWG label table from
// golang.org/x/net/html/charset and converts to UTF-8 with golang.org/x/text.
package textenc
