// =============================================================================
// NF-e Comparator - Validate Command
// =============================================================================
//
// Checks a column mapping against the two files without comparing them.
// Useful to test a new mapping profile before the monthly run.
//
// COMMAND USAGE:
//   nfecompare validate --source FILE --target FILE [--profile mapping.yaml]
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/nfe-compare/internal/comparator"
	"github.com/ginjaninja78/nfe-compare/internal/config"
	"github.com/ginjaninja78/nfe-compare/internal/validation"
)

var validateFlags mappingFlags

var validateStrict bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a column mapping against the input files",
	Long: `The validate command loads both files and reports mapped columns that do
not exist and roles the chosen mode needs but that are not mapped. Nothing
is compared and nothing is written.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateFlags.register(validateCmd)
	validateCmd.Flags().BoolVar(&validateStrict, "strict", false, "Treat every warning as an error")
}

func runValidate(out io.Writer) error {
	cfg := mainConfig
	if cfg == nil {
		cfg = config.DefaultMainConfig()
	}

	profile, mapping, err := validateFlags.resolve(cfg.CSVSettings)
	if err != nil {
		return err
	}

	source, err := comparator.LoadDataset(validateFlags.source, profile.Source.CSVSettings)
	if err != nil {
		return fmt.Errorf("failed to read source file %s: %w", validateFlags.source, err)
	}
	target, err := comparator.LoadDataset(validateFlags.target, profile.Target.CSVSettings)
	if err != nil {
		return fmt.Errorf("failed to read target file %s: %w", validateFlags.target, err)
	}

	validator := validation.NewValidatorWithOptions(validation.ValidationOptions{
		TreatWarningsAsErrors: validateStrict,
	})
	result := validator.Validate(mapping, source, target)

	fmt.Fprintf(out, "Mode:     %s\n", result.Mode)
	fmt.Fprintf(out, "Errors:   %d\n", result.ErrorCount)
	fmt.Fprintf(out, "Warnings: %d\n", result.WarningCount)

	if len(result.Errors) > 0 {
		fmt.Fprintln(out)
		fmt.Fprint(out, validation.FormatErrors(result.Errors))
	}

	if !result.IsValid {
		return comparator.ErrInvalidMapping
	}

	fmt.Fprintln(out, "\n✓ Mapping is valid")
	return nil
}
