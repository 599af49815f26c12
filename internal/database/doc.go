// Package database provides SQLite-based storage of conversion history.
//
// Every successful conversion can be recorded as one row in the conversions
// table plus one row per visit in the visits table. The history lets a user
// list earlier runs, read back the visits of a run without the workbook, and
// notice that an input file was already converted, using its content
// fingerprint.
//
// Design decision: We use SQLite (via modernc.org/sqlite) because the
// history is a single local file, the driver is CGO-free for easy
// cross-compilation, and WAL mode keeps readers unblocked while a batch
// conversion is writing.
package database
