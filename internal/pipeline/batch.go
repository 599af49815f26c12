package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/histsheet/internal/config"
	"github.com/nao1215/histsheet/internal/model"
	"github.com/nao1215/histsheet/internal/sheet"
)

// BatchProcessor converts several exports concurrently.
// It uses errgroup to manage goroutines and respect concurrency limits.
//
// Design decision: We use a separate BatchProcessor rather than adding batch
// functionality to Pipeline because it keeps the Pipeline focused on a
// single conversion and keeps output path planning in one place.
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each conversion.
	pipelineFactory func() *Pipeline

	// outputDir receives one workbook per input.
	outputDir string

	// concurrency is the maximum number of concurrent conversions.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger

	// results stores completed conversions in input order.
	results []*model.Conversion
	mu      sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent conversions.
// Non-positive values keep config.DefaultBatchSize.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor writing into outputDir.
//
// The pipelineFactory function is called for each conversion so pipeline
// state never leaks between conversions.
func NewBatchProcessor(pipelineFactory func() *Pipeline, outputDir string, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		outputDir:       outputDir,
		concurrency:     config.DefaultBatchSize,
		results:         make([]*model.Conversion, 0),
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// OutputPaths returns the workbook path for each input: the input's sheet
// name plus ".xlsx" inside dir. When two inputs map to the same file name,
// later ones get a "-2", "-3" suffix so concurrent conversions never write
// the same path. Names are compared case-insensitively.
func OutputPaths(inputs []string, dir string) []string {
	paths := make([]string, len(inputs))
	taken := make(map[string]bool, len(inputs))

	for i, in := range inputs {
		base := sheet.SheetName(in)
		name := base
		for n := 2; taken[strings.ToLower(name)]; n++ {
			name = fmt.Sprintf("%s-%d", base, n)
		}
		taken[strings.ToLower(name)] = true
		paths[i] = filepath.Join(dir, name+".xlsx")
	}

	return paths
}

// ProcessBatch converts the inputs concurrently and returns one conversion
// per input in input order, including failed ones. A failed conversion does
// not stop the others; its error is recorded in the returned conversion.
// The returned error is only set when ctx was cancelled, in which case
// inputs that never started have a nil entry.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, inputs []string) ([]*model.Conversion, error) {
	bp.mu.Lock()
	bp.results = make([]*model.Conversion, len(inputs))
	bp.mu.Unlock()

	err := bp.ProcessBatchWithCallback(ctx, inputs, func(conv *model.Conversion, index int) {
		bp.mu.Lock()
		bp.results[index] = conv
		bp.mu.Unlock()
	})

	bp.mu.Lock()
	defer bp.mu.Unlock()
	return bp.results, err
}

// ProcessBatchWithCallback converts the inputs and calls callback for each
// finished conversion. This is useful for streaming results.
//
// The callback is called from the goroutine that ran the conversion, so it
// must be safe for concurrent use.
//
// Design decision: We use errgroup.SetLimit rather than a worker pool
// because errgroup handles the limit and the wait in one place. Each input
// gets its own goroutine, but only 'concurrency' run simultaneously.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	inputs []string,
	callback func(conv *model.Conversion, index int),
) error {
	bp.logger.Info("starting batch conversion",
		"total_inputs", len(inputs),
		"concurrency", bp.concurrency,
		"output_dir", bp.outputDir,
	)

	startTime := time.Now()
	outputs := OutputPaths(inputs, bp.outputDir)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, input := range inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			conv := model.NewConversion(input, outputs[i])
			if err := bp.pipelineFactory().Execute(ctx, conv); err != nil {
				// The error is recorded in conv; other inputs continue.
				bp.logger.Warn("conversion failed",
					"input", input,
					"error", err,
				)
			} else {
				bp.logger.Info("conversion completed",
					"input", input,
					"output", conv.OutputPath,
					"records", len(conv.Records),
				)
			}

			callback(conv, i)
			return nil
		})
	}

	err := g.Wait()

	bp.logger.Info("batch conversion complete",
		"total_inputs", len(inputs),
		"elapsed", time.Since(startTime),
	)

	return err
}
