// =============================================================================
// NF-e Comparator - Main Entry Point
// =============================================================================
//
// Entry point of the nfecompare CLI. All commands live in the cmd package.
//
// USAGE:
//   nfecompare compare   - List SEFAZ invoices missing from a client export
//   nfecompare columns   - Show the column names of input files
//   nfecompare validate  - Check a column mapping without comparing
//   nfecompare version   - Display the application version
//
// LAYOUT:
//   cmd/       : Cobra command definitions
//   internal/  : loaders, normalization, matching, report writer
//   pkg/       : shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/nfe-compare/cmd"
)

func main() {
	cmd.Execute()
}
