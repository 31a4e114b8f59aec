// =============================================================================
// NF-e Comparator - Columns Command
// =============================================================================
//
// Prints the header row of one or more files so the user can pick the
// column names for the compare flags or a mapping profile.
//
// COMMAND USAGE:
//   nfecompare columns FILE... [--delimiter ;] [--encoding UTF-8] [--sheet NAME]
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/nfe-compare/internal/comparator"
	"github.com/ginjaninja78/nfe-compare/internal/config"
)

var columnsSettings config.CSVSettings

var columnsCmd = &cobra.Command{
	Use:   "columns FILE...",
	Short: "List the column names of CSV or XLSX files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runColumns(cmd.OutOrStdout(), args)
	},
}

func init() {
	rootCmd.AddCommand(columnsCmd)

	columnsCmd.Flags().StringVar(&columnsSettings.Delimiter, "delimiter", "", "Field delimiter (default from config)")
	columnsCmd.Flags().StringVar(&columnsSettings.Encoding, "encoding", "", "File encoding (default from config)")
	columnsCmd.Flags().StringVar(&columnsSettings.Sheet, "sheet", "", "Worksheet for XLSX files")
}

func runColumns(out io.Writer, files []string) error {
	base := config.DefaultMainConfig().CSVSettings
	if mainConfig != nil {
		base = mainConfig.CSVSettings
	}

	// Reuse the profile merge so flags fall back to the config values.
	profile := config.Profile{Source: config.DatasetProfile{CSVSettings: columnsSettings}}
	profile.ApplyDefaults(base)
	settings := profile.Source.CSVSettings

	for i, file := range files {
		headers, err := comparator.ReadHeaders(file, settings)
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}

		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "%s (%d columns)\n", file, len(headers))
		for n, h := range headers {
			fmt.Fprintf(out, "  %2d. %s\n", n+1, h)
		}
	}
	return nil
}
