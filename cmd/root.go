// =============================================================================
// NF-e Comparator - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. All other commands
// are attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (nfecompare)
//   ├── compareCmd  (nfecompare compare)
//   ├── columnsCmd  (nfecompare columns)
//   ├── validateCmd (nfecompare validate)
//   └── versionCmd  (nfecompare version)
//
// The root command owns the global flags, loads config.yaml and sets up
// logging before any subcommand runs.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/nfe-compare/internal/config"
	"github.com/ginjaninja78/nfe-compare/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// mainConfig is loaded by the root command before any subcommand runs.
var mainConfig *config.MainConfig

const defaultConfigFile = "config.yaml"

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "nfecompare",
	Short: "NF-e Comparator - find SEFAZ invoices missing from a client export",

	Long: `NF-e Comparator compares the invoice export downloaded from SEFAZ with the
export of a client's books and lists every invoice present at SEFAZ but
missing from the client file.

Invoices are matched either by access key (CHAVE_NFE) or by invoice number
plus issuer CNPJ. Both sides are normalized the same way before comparing:
punctuation is dropped, CNPJs are zero-padded to 14 digits and leading zeros
of invoice numbers are ignored.

Example Usage:
  nfecompare columns sefaz.csv cliente.csv
  nfecompare compare --source sefaz.csv --target cliente.csv \
      --source-key CHAVE_NFE --target-key Chave --source-name "Razao Social"
  nfecompare compare --profile acme.yaml --source sefaz.csv --target cliente.xlsx`,

	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A config.yaml is optional unless the user pointed at one.
		optional := !cmd.Flags().Changed("config")

		cfg, err := config.LoadMainConfig(cfgFile, optional)
		if err != nil {
			return fmt.Errorf("failed to load main config: %w", err)
		}
		mainConfig = cfg

		level := cfg.LogLevel
		if verbose {
			level = "debug"
		}
		logging.Setup(level, cfg.LogFormat)

		return nil
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		defaultConfigFile,
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}
