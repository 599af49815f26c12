// Package pipeline provides a framework for executing conversion steps in
// sequence.
//
// A conversion passes through reading, encoding detection, decoding,
// record extraction and workbook writing, optionally followed by recording
// the run in the history database. Each stage is implemented as a Step that
// receives the current model.Conversion and fills in its part.
//
// Design decision: We use a pipeline pattern instead of direct function
// calls so stages can be added or left out (history recording) without
// touching the others, and so cancellation and logging are handled in one
// place between steps.
//
// The pipeline supports both single conversions and batch processing with
// concurrency control using errgroup.
package pipeline
