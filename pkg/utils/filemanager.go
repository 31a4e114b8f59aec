// =============================================================================
// NF-e Comparator - File Manager Utility
// =============================================================================
//
// This module provides the file utilities around a comparison run:
//   - Output directory creation
//   - Report file naming (placeholders, uuid, timestamps)
//   - A plain-text summary written next to the report
//
// Input files are never moved or modified.
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDir creates dir (and parents) if it does not exist.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// =============================================================================
// FILE NAMING
// =============================================================================

// GenerateOutputFileName generates an output file name from a format string.
//
// PARAMETERS:
//   - format: The format string for the file name.
//             Placeholders:
//               {uuid}      - A random UUID
//               {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//               {date}      - Current date (YYYYMMDD)
//               {time}      - Current time (HHMMSS)
//   - params: Extra placeholder values, e.g. {"source": "sefaz"}.
//
// EXAMPLE:
//   format: "faltantes_{source}_{date}.xlsx"
//   params: {"source": "sefaz"}
//   output: "faltantes_sefaz_20240115.xlsx"
func GenerateOutputFileName(format string, params map[string]string) string {
	return generateOutputFileName(format, params, time.Now())
}

func generateOutputFileName(format string, params map[string]string, now time.Time) string {
	replacements := map[string]string{
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
		"{time}":      now.Format("150405"),
	}

	for key, value := range params {
		replacements["{"+key+"}"] = value
	}

	result := format
	if strings.Contains(result, "{uuid}") {
		result = strings.ReplaceAll(result, "{uuid}", uuid.New().String())
	}
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	if !strings.HasSuffix(strings.ToLower(result), ".xlsx") {
		result += ".xlsx"
	}

	return result
}

// =============================================================================
// COMPARISON SUMMARY
// =============================================================================

// ComparisonSummary contains summary information about a comparison run.
type ComparisonSummary struct {
	RunID      string
	StartTime  time.Time
	EndTime    time.Time
	SourceFile string
	TargetFile string
	Mode       string
	OutputFile string

	SourceRows    int
	TargetRows    int
	TargetKeys    int
	SkippedSource int
	SkippedTarget int
	MissingCount  int
}

// WriteSummaryLog writes a comparison summary to a text file in outputDir.
//
// RETURNS:
//   - The path to the summary file.
//   - An error if writing fails.
func WriteSummaryLog(summary ComparisonSummary, outputDir string) (string, error) {
	timestamp := summary.EndTime.Format("20060102_150405")
	summaryPath := filepath.Join(outputDir, fmt.Sprintf("comparison_summary_%s.txt", timestamp))

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	output := summary.OutputFile
	if output == "" {
		output = "(dry run, not written)"
	}

	fmt.Fprintf(writer, "NF-e Comparator - Comparison Summary\n"+
		"================================================================================\n\n"+
		"Run Information:\n"+
		"  Run ID:         %s\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n\n"+
		"Files:\n"+
		"  Source (SEFAZ): %s\n"+
		"  Target:         %s\n"+
		"  Report:         %s\n\n"+
		"Statistics:\n"+
		"  Match Mode:          %s\n"+
		"  Source Rows:         %d\n"+
		"  Target Rows:         %d\n"+
		"  Distinct Target Keys: %d\n"+
		"  Skipped Source Rows: %d\n"+
		"  Skipped Target Rows: %d\n"+
		"  Missing Documents:   %d\n\n",
		summary.RunID,
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Sub(summary.StartTime).String(),
		summary.SourceFile,
		summary.TargetFile,
		output,
		summary.Mode,
		summary.SourceRows,
		summary.TargetRows,
		summary.TargetKeys,
		summary.SkippedSource,
		summary.SkippedTarget,
		summary.MissingCount)

	writer.WriteString("================================================================================\n" +
		"End of Summary\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}

	return summaryPath, nil
}
