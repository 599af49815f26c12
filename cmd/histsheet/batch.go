package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/nao1215/histsheet/internal/config"
	"github.com/nao1215/histsheet/internal/model"
	"github.com/nao1215/histsheet/internal/pipeline"
	"github.com/nao1215/histsheet/internal/report"
	"github.com/spf13/cobra"
)

// NewBatchCmd creates the batch command.
func NewBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch -o <dir> <input.txt>...",
		Short: "Convert several history exports at once",
		Long: `Batch converts every given export into its own workbook.

Each workbook is written to <dir>/<sheet name>.xlsx, where the sheet name
is derived from the input file name. Inputs that would produce the same
file name get a numeric suffix. A failed conversion does not stop the
others; the command exits with an error if any conversion failed.

Examples:
  # Convert all exports in the current directory
  histsheet batch -o sheets *.txt

  # Limit the number of concurrent conversions
  histsheet batch -o sheets -b 2 a.txt b.txt c.txt

  # Write a JSON summary of the whole batch
  histsheet batch -o sheets -j -r batch.json *.txt`,
		Args:          cobra.MinimumNArgs(1),
		RunE:          runBatchCmd,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().StringP("output-dir", "o", "",
		"Directory that receives the workbooks (required)")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent conversions")

	addConversionFlags(cmd)

	return cmd
}

// runBatchCmd executes the batch command.
func runBatchCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	cfg.Inputs = args
	if cfg.OutputDir, err = cmd.Flags().GetString("output-dir"); err != nil {
		return err
	}
	if cfg.BatchSize, err = cmd.Flags().GetInt("batch"); err != nil {
		return err
	}

	if err := cfg.ValidateBatch(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	return runBatch(ctx, cmd.OutOrStdout(), cfg, logger)
}

// runBatch converts cfg.Inputs concurrently and prints the batch summary.
func runBatch(ctx context.Context, out io.Writer, cfg *config.Config, logger *slog.Logger) error {
	fmt.Fprintf(out, "Starting batch conversion of %d files (concurrency: %d)...\n\n",
		len(cfg.Inputs), cfg.BatchSize)

	startTime := time.Now()

	// The database handle is shared; it serializes writes itself.
	store, closeStore := openHistory(cfg, logger)
	defer closeStore()

	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			return pipeline.DefaultPipeline(cfg, logger, store)
		},
		cfg.OutputDir,
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	conversions, batchErr := bp.ProcessBatch(ctx, cfg.Inputs)

	summaries := make([]*model.Summary, 0, len(conversions))
	failed := 0
	for _, conv := range conversions {
		// Inputs that never started after cancellation have no conversion.
		if conv == nil {
			continue
		}
		if conv.Failed() {
			failed++
		}
		summaries = append(summaries, model.NewSummary(conv))
	}

	if err := outputBatchSummary(out, cfg, summaries); err != nil {
		logger.Error("summary output failed", "error", err)
	}

	fmt.Fprintf(out, "\nBatch conversion completed in %s\n", time.Since(startTime).Round(time.Millisecond))

	if batchErr != nil {
		return fmt.Errorf("batch conversion interrupted: %w", batchErr)
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", errConversionsFailed, failed, len(cfg.Inputs))
	}
	return nil
}

// outputBatchSummary writes the summary of a batch. The terminal always
// gets the per-file result lines so failures stay visible.
func outputBatchSummary(out io.Writer, cfg *config.Config, summaries []*model.Summary) error {
	file, closeFile, err := createReportFile(cfg.ReportFile)
	if err != nil {
		return err
	}
	defer closeFile()

	format := reportFormat(cfg)
	writers := []report.Writer{}

	if file == nil && format != report.FormatText {
		writers = append(writers, report.NewWriter(format, out, getVersion()))
	} else {
		writers = append(writers, report.NewSimpleWriter(out, report.WithDetails(cfg.Verbose)))
	}
	if file != nil {
		writers = append(writers, report.NewWriter(format, file, getVersion()))
	}

	_, err = report.NewMultiWriter(writers...).WriteBatch(summaries)
	return err
}
