package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/nao1215/histsheet/internal/config"
	"github.com/nao1215/histsheet/internal/database"
	"github.com/nao1215/histsheet/internal/log"
	"github.com/nao1215/histsheet/internal/model"
	"github.com/nao1215/histsheet/internal/pipeline"
	"github.com/nao1215/histsheet/internal/report"
	"github.com/spf13/cobra"
)

// addConversionFlags registers the flags shared by every command that
// converts exports.
func addConversionFlags(cmd *cobra.Command) {
	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .histsheet in current or home directory)")

	// Encoding flags
	cmd.Flags().StringP("encoding", "e", "",
		"Force the input encoding and skip detection (e.g., windows-1251)")
	cmd.Flags().StringSlice("allowed-encodings", nil,
		"Comma-separated list of accepted detected encodings (default: any)")
	cmd.Flags().Int("min-confidence", config.DefaultMinConfidence,
		"Minimum encoding detection confidence (0-100)")

	// Extraction flags
	cmd.Flags().Bool("strict", false,
		"Fail on entries with a missing URL, Title or Visited On line")

	// History flags
	cmd.Flags().Bool("no-history", false,
		"Do not record the conversion in the history database")
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON summary (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown summary (mutually exclusive with --json)")
	cmd.Flags().StringP("report", "r", "",
		"Write summary to specified file path (creates directories if needed)")
}

// runConvertCmd executes a single conversion.
func runConvertCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	cfg.InputPath = args[0]
	cfg.OutputPath = args[1]

	if err := cfg.ValidateSingle(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	return runConvert(ctx, cmd.OutOrStdout(), cfg, logger)
}

// runConvert converts cfg.InputPath into cfg.OutputPath and prints the summary.
func runConvert(ctx context.Context, out io.Writer, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting conversion",
		"input", cfg.InputPath,
		"output", cfg.OutputPath,
		"saveHistory", cfg.SaveHistory,
	)

	store, closeStore := openHistory(cfg, logger)
	defer closeStore()

	conv := model.NewConversion(cfg.InputPath, cfg.OutputPath)
	convErr := pipeline.DefaultPipeline(cfg, logger, store).Execute(ctx, conv)

	if err := outputSummary(out, cfg, model.NewSummary(conv)); err != nil {
		logger.Error("summary output failed", "error", err)
		if convErr == nil {
			return err
		}
	}

	if convErr != nil {
		return fmt.Errorf("failed to convert %s: %w", cfg.InputPath, convErr)
	}
	return nil
}

// getPersistentBool retrieves a global boolean flag from the command or its parent.
func getPersistentBool(cmd *cobra.Command, name string) bool {
	value, err := cmd.Flags().GetBool(name)
	if err != nil {
		value, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return value
}

// buildConfig creates a Config from defaults, the configuration file and
// the command flags, in that order of precedence.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getPersistentBool(cmd, "verbose")
	cfg.LogJSON = getPersistentBool(cmd, "log-json")

	var err error

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use defaults if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		fileCfg, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.ApplyFile(fileCfg)
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	// Flags only override the file when the user set them.
	flags := cmd.Flags()

	if flags.Changed("encoding") {
		if cfg.Encoding, err = flags.GetString("encoding"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("allowed-encodings") {
		if cfg.AllowedEncodings, err = flags.GetStringSlice("allowed-encodings"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("min-confidence") {
		if cfg.MinConfidence, err = flags.GetInt("min-confidence"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("strict") {
		if cfg.Strict, err = flags.GetBool("strict"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("no-history") {
		noHistory, err := flags.GetBool("no-history")
		if err != nil {
			return nil, err
		}
		cfg.SaveHistory = !noHistory
	}
	if flags.Changed("db-dir") {
		if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
			return nil, err
		}
	}

	cfg.JSONReport, err = flags.GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = flags.GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = flags.GetString("report")
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// setupLogger creates a structured logger from the verbosity and format settings.
// Log records pass through the privacy handler, so visited URLs keep their
// host and path but lose query strings and credentials.
func setupLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	if cfg.LogJSON {
		return log.NewJSONLogger(w, cfg.Verbose)
	}
	return log.NewLogger(w, cfg.Verbose)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigCh)
		cancel()
	}
}

// openHistory opens the history database when history is enabled.
// A database that cannot be opened disables history for this run instead
// of failing the conversion.
func openHistory(cfg *config.Config, logger *slog.Logger) (pipeline.HistoryStore, func()) {
	noop := func() {}
	if !cfg.SaveHistory {
		return nil, noop
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		logger.Warn("conversion history disabled",
			"dir", cfg.DBDir,
			"error", err,
		)
		return nil, noop
	}
	logger.Debug("history database opened", "path", db.Path())

	return db, func() {
		if err := db.Close(); err != nil {
			logger.Warn("failed to close history database", "error", err)
		}
	}
}

// reportFormat returns the summary format selected by the flags.
func reportFormat(cfg *config.Config) report.Format {
	switch {
	case cfg.JSONReport:
		return report.FormatJSON
	case cfg.MarkdownReport:
		return report.FormatMarkdown
	default:
		return report.FormatText
	}
}

// summaryWriter returns the Writer for a conversion summary.
//
// The terminal gets the confirmation line unless a machine-readable format
// replaces it on stdout. A report file always gets the selected format.
// Failures skip the terminal text because the error itself is printed on exit.
func summaryWriter(out, file io.Writer, cfg *config.Config, succeeded bool) report.Writer {
	format := reportFormat(cfg)
	writers := make([]report.Writer, 0, 2)

	if file == nil && format != report.FormatText {
		writers = append(writers, report.NewWriter(format, out, getVersion()))
	} else if succeeded {
		writers = append(writers, report.NewSimpleWriter(out, report.WithDetails(cfg.Verbose)))
	}

	if file != nil {
		writers = append(writers, report.NewWriter(format, file, getVersion()))
	}

	return report.NewMultiWriter(writers...)
}

// outputSummary writes the summary of a single conversion.
func outputSummary(out io.Writer, cfg *config.Config, summary *model.Summary) error {
	file, closeFile, err := createReportFile(cfg.ReportFile)
	if err != nil {
		return err
	}
	defer closeFile()

	_, err = summaryWriter(out, file, cfg, summary.Succeeded()).Write(summary)
	return err
}

// createReportFile creates the report file when path is set.
// It returns a nil writer when path is empty.
func createReportFile(path string) (io.Writer, func(), error) {
	if path == "" {
		return nil, func() {}, nil
	}

	// Create directories if they don't exist
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	// Summaries list visited URLs, so only the owner may read them.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-provided report path is intentional
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create report file: %w", err)
	}

	return f, func() { _ = f.Close() }, nil
}

// errConversionsFailed is returned by batch runs with failed conversions.
var errConversionsFailed = errors.New("one or more conversions failed")
