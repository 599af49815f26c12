package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "histsheet"

	// DefaultBatchSize is the number of conversions run at once in batch mode.
	// Conversions are CPU and disk bound, so a small number is enough.
	DefaultBatchSize = 4

	// DefaultMinConfidence accepts any detection result, matching the
	// behavior of decoding with whatever the detector returned.
	DefaultMinConfidence = 0

	// MaxConfidence is the upper bound of detection confidence.
	MaxConfidence = 100
)

// Config holds all configuration options for histsheet.
// This struct is populated from the configuration file and CLI flags and is
// passed through the application rather than kept in global state.
type Config struct {
	// InputPath is the history text export to convert.
	InputPath string

	// OutputPath is the xlsx workbook to write.
	OutputPath string

	// Inputs is the list of exports converted in batch mode.
	Inputs []string

	// OutputDir is where batch mode writes one workbook per input.
	OutputDir string

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// LogJSON switches log output from text to JSON lines.
	LogJSON bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches .histsheet in the current directory, then
	// config.yaml in the XDG config directory and .histsheet in the home directory.
	ConfigFilePath string

	// Encoding forces the input charset and skips detection when non-empty.
	Encoding string

	// AllowedEncodings restricts which detected charsets are accepted.
	// Empty accepts any charset.
	AllowedEncodings []string

	// MinConfidence is the lowest accepted detection confidence (0-100).
	MinConfidence int

	// Strict makes entries with a missing field abort the conversion instead
	// of being dropped with a warning.
	Strict bool

	// SaveHistory records each conversion in the history database.
	SaveHistory bool

	// DBDir is the directory of the history database.
	// Defaults to XDG data directory (~/.local/share/histsheet on Linux).
	DBDir string

	// JSONReport prints the conversion summary as JSON.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport prints the conversion summary as Markdown.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the summary.
	// When set, the summary is written to this file instead of stdout.
	ReportFile string

	// BatchSize is the number of concurrent conversions in batch mode.
	BatchSize int
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		MinConfidence: DefaultMinConfidence,
		SaveHistory:   true,
		DBDir:         XDGDataDir(),
		BatchSize:     DefaultBatchSize,
	}
}

// XDGDataDir returns the XDG data directory for histsheet.
// On Linux: ~/.local/share/histsheet
// On macOS: ~/Library/Application Support/histsheet
// On Windows: %LOCALAPPDATA%\histsheet
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for histsheet.
// On Linux: ~/.config/histsheet
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// ApplyFile copies the values set in the configuration file onto c.
// Zero values in the file leave c unchanged.
func (c *Config) ApplyFile(f *File) {
	if f == nil {
		return
	}
	if f.Encoding != "" {
		c.Encoding = f.Encoding
	}
	if len(f.AllowedEncodings) > 0 {
		c.AllowedEncodings = f.AllowedEncodings
	}
	if f.MinConfidence != 0 {
		c.MinConfidence = f.MinConfidence
	}
	if f.Strict {
		c.Strict = true
	}
	if f.History != nil {
		c.SaveHistory = *f.History
	}
	if f.DBDir != "" {
		c.DBDir = f.DBDir
	}
}

// Validate checks the options shared by single and batch conversions.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.MinConfidence < 0 || c.MinConfidence > MaxConfidence {
		return ErrInvalidConfidence
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	return nil
}

// ValidateSingle checks a single-file conversion.
func (c *Config) ValidateSingle() error {
	if c.InputPath == "" {
		return ErrNoInput
	}
	if c.OutputPath == "" {
		return ErrNoOutput
	}
	if filepath.Clean(c.InputPath) == filepath.Clean(c.OutputPath) {
		return ErrSameInputOutput
	}
	return c.Validate()
}

// ValidateBatch checks a batch conversion.
func (c *Config) ValidateBatch() error {
	if len(c.Inputs) == 0 {
		return ErrNoInput
	}
	if c.OutputDir == "" {
		return ErrNoOutput
	}
	return c.Validate()
}
