package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/nao1215/histsheet/internal/config"
	"github.com/nao1215/histsheet/internal/database"
	"github.com/nao1215/histsheet/internal/model"
	"github.com/spf13/cobra"
)

// Column widths of the visit listing in terminal cells.
const (
	historyURLWidth   = 50
	historyTitleWidth = 30
)

// NewHistoryCmd creates the history command.
// This command reads the conversions recorded in the history database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded conversions",
		Long: `History lists the conversions recorded in the history database.

Every successful conversion is recorded unless --no-history is given.
Use --show to print the visits extracted by one conversion.

Examples:
  # List the latest conversions
  histsheet history

  # List the latest 50 conversions
  histsheet history --limit 50

  # Show the visits of conversion 3
  histsheet history --show 3

  # Output in JSON format
  histsheet history --json`,
		Args:          cobra.NoArgs,
		RunE:          runHistoryCmd,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().Int64P("show", "s", 0,
		"Show the visits of the conversion with this ID (use the list to see IDs)")
	cmd.Flags().IntP("limit", "n", database.DefaultListLimit,
		"Maximum number of conversions to list")
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")
	cmd.Flags().BoolP("json", "j", false,
		"Output in JSON format")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	showID, err := cmd.Flags().GetInt64("show")
	if err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	// Validate arguments before opening database
	if limit <= 0 {
		return errors.New("limit must be positive")
	}
	if showID < 0 {
		return errors.New("conversion ID must be positive")
	}

	dbDir, err := historyDBDir(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	// Reading history must never create an empty database.
	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		if errors.Is(err, database.ErrDatabaseNotFound) {
			fmt.Fprintln(out, "No conversions have been recorded yet.")
			fmt.Fprintln(out, "\nUse 'histsheet <input.txt> <output.xlsx>' to convert an export.")
			return nil
		}
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	if showID > 0 {
		return showConversion(ctx, out, db, showID, jsonOutput)
	}
	return listConversions(ctx, out, db, limit, jsonOutput)
}

// historyDBDir returns the database directory: the flag, then the
// configuration file, then the XDG data directory.
func historyDBDir(cmd *cobra.Command) (string, error) {
	if cmd.Flags().Changed("db-dir") {
		return cmd.Flags().GetString("db-dir")
	}

	cfg := config.NewConfig()
	if configPath := config.FindConfigFile(""); configPath != "" {
		fileCfg, err := config.LoadConfigFile(configPath)
		if err != nil {
			return "", fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.ApplyFile(fileCfg)
	}
	return cfg.DBDir, nil
}

// listConversions prints the latest recorded conversions.
func listConversions(ctx context.Context, out io.Writer, db *database.HistoryDB, limit int, jsonOutput bool) error {
	records, err := db.ListConversions(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list conversions: %w", err)
	}

	if jsonOutput {
		return writeJSON(out, records)
	}

	if len(records) == 0 {
		fmt.Fprintln(out, "No conversions have been recorded yet.")
		return nil
	}

	fmt.Fprintf(out, "Recorded conversions (%d):\n\n", len(records))
	fmt.Fprintf(out, "  %-6s  %-20s  %-8s  %-14s  %s\n", "ID", "Date", "Records", "Encoding", "Input -> Output")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 78))

	for _, r := range records {
		fmt.Fprintf(out, "  %-6d  %-20s  %-8d  %-14s  %s -> %s\n",
			r.ID,
			r.Timestamp.Local().Format(model.CanonicalTimeLayout),
			r.RecordCount,
			r.Encoding,
			r.InputPath,
			r.OutputPath,
		)
	}

	fmt.Fprintln(out, "\nUse 'histsheet history --show <id>' to see the visits of a conversion.")

	return nil
}

// conversionDetail is the JSON form of one conversion with its visits.
type conversionDetail struct {
	Conversion *database.ConversionRecord `json:"conversion"`
	Visits     []database.Visit           `json:"visits"`
}

// showConversion prints one conversion and its visits.
func showConversion(ctx context.Context, out io.Writer, db *database.HistoryDB, id int64, jsonOutput bool) error {
	record, err := db.GetConversion(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrConversionNotFound) {
			return fmt.Errorf("conversion with ID %d not found", id)
		}
		return fmt.Errorf("failed to get conversion %d: %w", id, err)
	}

	visits, err := db.GetVisits(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get visits of conversion %d: %w", id, err)
	}

	if jsonOutput {
		return writeJSON(out, conversionDetail{Conversion: record, Visits: visits})
	}

	fmt.Fprintf(out, "Conversion %d (%s)\n", record.ID, record.RunID)
	fmt.Fprintf(out, "  Input:    %s\n", record.InputPath)
	fmt.Fprintf(out, "  Output:   %s\n", record.OutputPath)
	fmt.Fprintf(out, "  Sheet:    %s\n", record.SheetName)
	fmt.Fprintf(out, "  Encoding: %s (confidence %d)\n", record.Encoding, record.Confidence)
	fmt.Fprintf(out, "  Date:     %s\n", record.Timestamp.Local().Format(model.CanonicalTimeLayout))
	fmt.Fprintf(out, "  Records:  %d", record.RecordCount)
	if record.IncompleteCount > 0 {
		fmt.Fprintf(out, " (%d incomplete skipped)", record.IncompleteCount)
	}
	fmt.Fprintln(out)

	if len(visits) == 0 {
		return nil
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %-19s  %s  %s\n",
		"Visited On",
		runewidth.FillRight("URL", historyURLWidth),
		"Title",
	)
	fmt.Fprintln(out, "  "+strings.Repeat("-", 19+2+historyURLWidth+2+historyTitleWidth))
	for _, v := range visits {
		fmt.Fprintf(out, "  %-19s  %s  %s\n",
			v.VisitedAt.Format(model.CanonicalTimeLayout),
			runewidth.FillRight(runewidth.Truncate(v.URL, historyURLWidth, "..."), historyURLWidth),
			runewidth.Truncate(v.Title, historyTitleWidth, "..."),
		)
	}

	return nil
}

// writeJSON writes v as indented JSON.
func writeJSON(out io.Writer, v any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
