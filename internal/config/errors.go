package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoInput is returned when no input history export is specified.
	ErrNoInput = errors.New("no input specified: provide the path of a history text export")

	// ErrNoOutput is returned when neither an output workbook path nor an
	// output directory is specified.
	ErrNoOutput = errors.New("no output specified: provide the path of the xlsx file to write")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one summary format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidConfidence is returned when the minimum detection confidence
	// is outside 0-100.
	ErrInvalidConfidence = errors.New("invalid minimum confidence: must be between 0 and 100")

	// ErrSameInputOutput is returned when the output path equals the input
	// path, which would overwrite the export with the workbook.
	ErrSameInputOutput = errors.New("output path must differ from input path")
)
