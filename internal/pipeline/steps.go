package pipeline

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/crypto/blake2b"

	"github.com/nao1215/histsheet/internal/config"
	"github.com/nao1215/histsheet/internal/database"
	"github.com/nao1215/histsheet/internal/extract"
	"github.com/nao1215/histsheet/internal/model"
	"github.com/nao1215/histsheet/internal/sheet"
	"github.com/nao1215/histsheet/internal/textenc"
)

// Step names as recorded in model.Conversion.PerformedSteps.
const (
	StepRead    = "read"
	StepDetect  = "detect_encoding"
	StepDecode  = "decode"
	StepExtract = "extract"
	StepWrite   = "write_sheet"
	StepHistory = "record_history"
)

// ReadStep loads the input file and fingerprints its content.
type ReadStep struct {
	logger *slog.Logger
}

// NewReadStep creates a ReadStep.
func NewReadStep(logger *slog.Logger) *ReadStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReadStep{logger: logger}
}

// Name returns the step name.
func (s *ReadStep) Name() string {
	return StepRead
}

// Do reads conv.InputPath into conv.Raw.
func (s *ReadStep) Do(_ context.Context, conv *model.Conversion) error {
	data, err := os.ReadFile(conv.InputPath)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	sum := blake2b.Sum256(data)
	conv.Raw = data
	conv.InputSize = int64(len(data))
	conv.Fingerprint = hex.EncodeToString(sum[:])

	s.logger.Debug("input loaded",
		"input", conv.InputPath,
		"bytes", conv.InputSize,
	)
	return nil
}

// DetectEncodingStep determines the charset of the raw input.
type DetectEncodingStep struct {
	detector *textenc.Detector
	logger   *slog.Logger
}

// NewDetectEncodingStep creates a DetectEncodingStep using detector.
func NewDetectEncodingStep(detector *textenc.Detector, logger *slog.Logger) *DetectEncodingStep {
	if detector == nil {
		detector = textenc.NewDetector()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DetectEncodingStep{detector: detector, logger: logger}
}

// Name returns the step name.
func (s *DetectEncodingStep) Name() string {
	return StepDetect
}

// Do sets conv.Encoding.
func (s *DetectEncodingStep) Do(_ context.Context, conv *model.Conversion) error {
	enc, err := s.detector.Detect(conv.Raw)
	if err != nil {
		return fmt.Errorf("%s: %w", conv.InputPath, err)
	}
	conv.Encoding = enc

	s.logger.Debug("encoding chosen",
		"input", conv.InputPath,
		"encoding", enc.Charset,
		"confidence", enc.Confidence,
		"source", string(enc.Source),
	)
	return nil
}

// DecodeStep turns the raw input into text using the chosen charset.
type DecodeStep struct{}

// NewDecodeStep creates a DecodeStep.
func NewDecodeStep() *DecodeStep {
	return &DecodeStep{}
}

// Name returns the step name.
func (s *DecodeStep) Name() string {
	return StepDecode
}

// Do sets conv.Text and releases conv.Raw.
func (s *DecodeStep) Do(_ context.Context, conv *model.Conversion) error {
	text, err := textenc.Decode(conv.Raw, conv.Encoding.Charset)
	if err != nil {
		return fmt.Errorf("%s: %w", conv.InputPath, err)
	}
	conv.Text = text
	conv.Raw = nil
	return nil
}

// ExtractStep builds history records from the decoded text.
type ExtractStep struct {
	extractor *extract.Extractor
}

// NewExtractStep creates an ExtractStep using extractor.
func NewExtractStep(extractor *extract.Extractor) *ExtractStep {
	if extractor == nil {
		extractor = extract.NewExtractor()
	}
	return &ExtractStep{extractor: extractor}
}

// Name returns the step name.
func (s *ExtractStep) Name() string {
	return StepExtract
}

// Do sets conv.Records and conv.Incomplete.
func (s *ExtractStep) Do(ctx context.Context, conv *model.Conversion) error {
	result, err := s.extractor.Extract(ctx, conv.Text)
	if err != nil {
		return fmt.Errorf("%s: %w", conv.InputPath, err)
	}
	conv.Records = result.Records
	conv.Incomplete = result.Incomplete
	return nil
}

// WriteSheetStep saves the records as a styled workbook.
type WriteSheetStep struct {
	writer *sheet.Writer
}

// NewWriteSheetStep creates a WriteSheetStep using writer.
func NewWriteSheetStep(writer *sheet.Writer) *WriteSheetStep {
	if writer == nil {
		writer = sheet.NewWriter()
	}
	return &WriteSheetStep{writer: writer}
}

// Name returns the step name.
func (s *WriteSheetStep) Name() string {
	return StepWrite
}

// Do writes conv.OutputPath. The sheet name is derived from the input path
// unless one was already set.
func (s *WriteSheetStep) Do(ctx context.Context, conv *model.Conversion) error {
	if conv.SheetName == "" {
		conv.SheetName = sheet.SheetName(conv.InputPath)
	}
	return s.writer.Write(ctx, conv.OutputPath, conv.SheetName, conv.Records)
}

// HistoryStore persists finished conversions.
// *database.HistoryDB implements it.
type HistoryStore interface {
	SaveConversion(ctx context.Context, c *model.Conversion) (int64, error)
	FindByFingerprint(ctx context.Context, fingerprint string) ([]database.ConversionRecord, error)
}

// RecordHistoryStep stores the finished conversion in the history database.
//
// Design decision: the workbook already exists when this step runs, so a
// database failure is logged and does not fail the conversion.
type RecordHistoryStep struct {
	store  HistoryStore
	logger *slog.Logger
}

// NewRecordHistoryStep creates a RecordHistoryStep writing to store.
func NewRecordHistoryStep(store HistoryStore, logger *slog.Logger) *RecordHistoryStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordHistoryStep{store: store, logger: logger}
}

// Name returns the step name.
func (s *RecordHistoryStep) Name() string {
	return StepHistory
}

// Do saves conv and notes earlier conversions of the same content.
func (s *RecordHistoryStep) Do(ctx context.Context, conv *model.Conversion) error {
	previous, err := s.store.FindByFingerprint(ctx, conv.Fingerprint)
	if err != nil {
		s.logger.Warn("failed to look up conversion history", "error", err)
	} else if len(previous) > 0 {
		s.logger.Info("input was converted before",
			"input", conv.InputPath,
			"times", len(previous),
			"last_id", previous[0].ID,
			"last_output", previous[0].OutputPath,
		)
	}

	id, err := s.store.SaveConversion(ctx, conv)
	if err != nil {
		s.logger.Warn("failed to record conversion history",
			"input", conv.InputPath,
			"error", err,
		)
		return nil
	}

	s.logger.Debug("conversion recorded", "id", id, "run_id", conv.RunID)
	return nil
}

// DefaultPipeline creates the conversion pipeline for cfg.
// A nil store leaves out history recording.
func DefaultPipeline(cfg *config.Config, logger *slog.Logger, store HistoryStore) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}

	detectorOpts := []textenc.Option{
		textenc.WithMinConfidence(cfg.MinConfidence),
	}
	if cfg.Encoding != "" {
		detectorOpts = append(detectorOpts, textenc.WithForcedEncoding(cfg.Encoding))
	}
	if len(cfg.AllowedEncodings) > 0 {
		detectorOpts = append(detectorOpts, textenc.WithAllowedEncodings(cfg.AllowedEncodings...))
	}

	p := New(WithLogger(logger))
	p.AddSteps(
		NewReadStep(logger),
		NewDetectEncodingStep(textenc.NewDetector(detectorOpts...), logger),
		NewDecodeStep(),
		NewExtractStep(extract.NewExtractor(
			extract.WithStrict(cfg.Strict),
			extract.WithLogger(logger),
		)),
		NewWriteSheetStep(sheet.NewWriter(sheet.WithLogger(logger))),
	)
	if store != nil {
		p.AddStep(NewRecordHistoryStep(store, logger))
	}

	return p
}
