// =============================================================================
// NF-e Comparator - Compare Command
// =============================================================================
//
// This file defines the 'compare' command, the main command of the tool. It
// lists every invoice in the SEFAZ export that the client export lacks.
//
// COMMAND USAGE:
//   nfecompare compare --source FILE --target FILE [flags]
//
// FLAGS:
//   --source-key/--target-key        : columns holding CHAVE_NFE
//   --source-number/--target-number  : columns holding the invoice number
//   --source-tax-id/--target-tax-id  : columns holding the CNPJ
//   --source-name                    : column holding the company name
//   --mode                           : auto, key or number
//   --profile                        : saved mapping (flags override it)
//   --save-profile                   : write the effective mapping to YAML
//   --output-dir/--output/--sheet    : where the report goes
//   --dry-run                        : compare and print, write nothing
//   --strict                         : every mapping warning blocks the run
//   --summary                        : also write comparison_summary_*.txt
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/nfe-compare/internal/comparator"
	"github.com/ginjaninja78/nfe-compare/internal/config"
	"github.com/ginjaninja78/nfe-compare/internal/matcher"
	"github.com/ginjaninja78/nfe-compare/internal/validation"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var compareFlags mappingFlags

var (
	outputDir   string
	outputFile  string
	sheetName   string
	saveProfile string
	dryRun      bool
	strict      bool
	summary     bool
	printLimit  int
)

// =============================================================================
// COMPARE COMMAND DEFINITION
// =============================================================================

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "List SEFAZ invoices missing from the client export",
	Long: `The compare command loads the SEFAZ export (--source) and the client export
(--target), checks the column mapping and writes a spreadsheet with every
SEFAZ invoice that has no counterpart in the client file.

Matching mode:
  key     compare by CHAVE_NFE (both --source-key and --target-key set)
  number  compare by invoice number plus issuer CNPJ
  auto    key when both key columns are mapped, number otherwise

Each missing invoice is listed once, in SEFAZ file order, with the company
name taken from --source-name when it is mapped.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runCompare(cmd.OutOrStdout())
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.AddCommand(compareCmd)

	compareFlags.register(compareCmd)

	flags := compareCmd.Flags()
	flags.StringVar(&outputDir, "output-dir", "", "Directory for the report (default from config)")
	flags.StringVarP(&outputFile, "output", "o", "", "Report file path, overrides --output-dir")
	flags.StringVar(&sheetName, "sheet", "", "Report sheet name (default \"Notas Faltantes\")")
	flags.StringVar(&saveProfile, "save-profile", "", "Write the effective mapping to this YAML file")
	flags.BoolVar(&dryRun, "dry-run", false, "Compare and print the result without writing files")
	flags.BoolVar(&strict, "strict", false, "Treat every mapping warning as an error")
	flags.BoolVar(&summary, "summary", false, "Write a text summary next to the report")
	flags.IntVar(&printLimit, "print", 20, "Print at most this many missing invoices (0 for none, -1 for all)")
}

// =============================================================================
// MAIN COMPARE FUNCTION
// =============================================================================

func runCompare(out io.Writer) error {
	cfg := mainConfig
	if cfg == nil {
		cfg = config.DefaultMainConfig()
	}

	profile, mapping, err := compareFlags.resolve(cfg.CSVSettings)
	if err != nil {
		return err
	}

	options := comparator.Options{
		SourcePath:       compareFlags.source,
		TargetPath:       compareFlags.target,
		SourceSettings:   profile.Source.CSVSettings,
		TargetSettings:   profile.Target.CSVSettings,
		Mapping:          mapping,
		OutputDir:        firstNonEmpty(outputDir, cfg.OutputDir),
		OutputFile:       outputFile,
		OutputFileFormat: cfg.OutputFileFormat,
		SheetName:        firstNonEmpty(sheetName, cfg.SheetName),
		DryRun:           dryRun,
		Strict:           strict,
		WriteSummary:     summary && !dryRun,
	}

	fmt.Fprintln(out, "=== NF-e Comparator ===")
	fmt.Fprintf(out, "Source: %s\n", options.SourcePath)
	fmt.Fprintf(out, "Target: %s\n", options.TargetPath)

	result := comparator.New(options, slog.Default()).Run()

	if result.Validation != nil && len(result.Validation.Errors) > 0 {
		fmt.Fprintln(out, "\nMapping problems:")
		fmt.Fprint(out, validation.FormatErrors(result.Validation.Errors))
	}

	if result.Error != nil {
		return result.Error
	}

	printReport(out, result.Report, printLimit)

	fmt.Fprintln(out, "\n=== Comparison Complete ===")
	fmt.Fprintf(out, "Mode:            %s\n", result.Report.Mode)
	fmt.Fprintf(out, "Source rows:     %d (skipped %d)\n", result.Report.SourceRows, result.Report.SkippedSource)
	fmt.Fprintf(out, "Target rows:     %d (skipped %d)\n", result.Report.TargetRows, result.Report.SkippedTarget)
	fmt.Fprintf(out, "Missing:         %d\n", len(result.Report.Missing))
	fmt.Fprintf(out, "Time elapsed:    %s\n", result.Stats.ProcessingTime)

	if result.OutputFile != "" {
		fmt.Fprintf(out, "Report:          %s\n", result.OutputFile)
	} else {
		fmt.Fprintln(out, "Report:          (dry run, nothing written)")
	}
	if result.SummaryFile != "" {
		fmt.Fprintf(out, "Summary:         %s\n", result.SummaryFile)
	}

	if saveProfile != "" {
		// Store the resolved mode so the profile does not depend on auto.
		profile.Mode = string(result.Report.Mode)
		if err := config.SaveProfile(saveProfile, profile); err != nil {
			return err
		}
		fmt.Fprintf(out, "Profile saved:   %s\n", saveProfile)
	}

	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// printReport prints up to limit missing invoices as an aligned table.
// A negative limit prints all of them.
func printReport(out io.Writer, report *matcher.Report, limit int) {
	if limit == 0 || len(report.Missing) == 0 {
		return
	}

	rows := report.Rows()
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	fmt.Fprintln(out)
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(report.Columns(), "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	tw.Flush()

	if hidden := len(report.Missing) - len(rows); hidden > 0 {
		fmt.Fprintf(out, "... and %d more\n", hidden)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
