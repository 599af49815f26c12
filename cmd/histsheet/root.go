package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for histsheet.
// The root command itself performs a single conversion.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "histsheet <input.txt> <output.xlsx>",
		Short: "Convert a browser-history text export into an xlsx workbook",
		Long: `histsheet reads a browser-history export made of labeled lines

  URL: <address>
  Title: <page title>
  Visited On: <DD.MM.YYYY HH:MM:SS>

and writes one styled worksheet with the columns address, page title and
visit time. The sheet is named after the input file up to its first dot.

The character encoding of the input is detected automatically. Use
--encoding to force one when detection guesses wrong.

Examples:
  # Convert one export
  histsheet history.txt history.xlsx

  # Force the encoding of an old Windows export
  histsheet -e windows-1251 history.txt history.xlsx

  # Fail instead of skipping entries with a missing field
  histsheet --strict history.txt history.xlsx

  # Write a Markdown summary next to the workbook
  histsheet -m -r summary.md history.txt history.xlsx`,
		Version:       getVersion(),
		Args:          cobra.ExactArgs(2),
		RunE:          runConvertCmd,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write log output as JSON lines")

	addConversionFlags(cmd)

	// Add subcommands
	cmd.AddCommand(NewBatchCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
