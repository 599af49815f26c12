package model

import (
	"time"

	"github.com/google/uuid"
)

// Conversion holds the state of converting one history export into a workbook.
// Pipeline steps fill it in as they run.
//
// Design decision: Like a scan report, a single struct travels through every
// pipeline step. Steps read what earlier steps produced and add their own
// results, which keeps the step signatures uniform.
type Conversion struct {
	// RunID identifies this conversion across logs and the history database.
	RunID string `json:"run_id"`

	// InputPath is the path of the text export.
	InputPath string `json:"input_path"`

	// OutputPath is the path of the workbook to write.
	OutputPath string `json:"output_path"`

	// SheetName is the name of the single worksheet.
	SheetName string `json:"sheet_name"`

	// StartedAt is when the conversion began.
	StartedAt time.Time `json:"started_at"`

	// Duration is how long the conversion took.
	Duration time.Duration `json:"duration"`

	// Raw is the raw input content. Not serialized.
	Raw []byte `json:"-"`

	// InputSize is the size of the input in bytes.
	InputSize int64 `json:"input_size"`

	// Fingerprint is the hex BLAKE2b-256 digest of the raw input.
	Fingerprint string `json:"fingerprint"`

	// Encoding is the character encoding used to decode the input.
	Encoding Encoding `json:"encoding"`

	// Text is the decoded input. Not serialized.
	Text string `json:"-"`

	// Records are the extracted visit entries in order of appearance.
	Records []HistoryRecord `json:"records"`

	// Incomplete is the number of entries dropped because a field was missing.
	Incomplete int `json:"incomplete"`

	// PerformedSteps lists the pipeline steps that ran, in order.
	PerformedSteps []string `json:"performed_steps"`

	// Error is the error that aborted the conversion, if any.
	Error error `json:"-"`

	// ErrorMessage is the string form of Error for serialization.
	ErrorMessage string `json:"error,omitempty"`
}

// NewConversion creates a Conversion for the given input and output paths.
func NewConversion(inputPath, outputPath string) *Conversion {
	return &Conversion{
		RunID:          uuid.NewString(),
		InputPath:      inputPath,
		OutputPath:     outputPath,
		StartedAt:      time.Now(),
		Records:        make([]HistoryRecord, 0),
		PerformedSteps: make([]string, 0),
	}
}

// Failed reports whether the conversion ended with an error.
func (c *Conversion) Failed() bool {
	return c.Error != nil || c.ErrorMessage != ""
}

// SetError records err as the conversion's failure.
func (c *Conversion) SetError(err error) {
	c.Error = err
	if err != nil {
		c.ErrorMessage = err.Error()
	}
}

// Finish stamps the conversion duration.
func (c *Conversion) Finish() {
	c.Duration = time.Since(c.StartedAt)
}
