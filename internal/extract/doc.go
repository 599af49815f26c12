// Package extract turns decoded history-export text into visit records.
//
// Exports consist of labeled lines such as:
//
//	URL        : https://example.com
//	Title      : Example Domain
//	Visited On : 01.01.2023 10:00:00
//
// Extraction is label-driven and happens in a single pass. Fields are
// collected into the current entry until a label repeats or a separator line
// is met, so a missing field can never shift values into a neighbouring
// entry. Entries lacking any of the three fields are dropped and counted.
package extract
