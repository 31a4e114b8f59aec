// =============================================================================
// NF-e Comparator - Comparison Run
// =============================================================================
//
// This module orchestrates one comparison, from the two input files to the
// report spreadsheet.
//
// PIPELINE:
//   1. Load the SEFAZ export (source) and the client export (target)
//   2. Validate the column mapping against both header rows
//   3. Match: report source documents absent from the target
//   4. Write the report workbook (skipped on dry run)
//   5. Optionally write a text summary next to the report
//
// A failure in steps 1-2 aborts the run before any comparison happens.
//
// =============================================================================

package comparator

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ginjaninja78/nfe-compare/internal/config"
	"github.com/ginjaninja78/nfe-compare/internal/csvparser"
	"github.com/ginjaninja78/nfe-compare/internal/matcher"
	"github.com/ginjaninja78/nfe-compare/internal/types"
	"github.com/ginjaninja78/nfe-compare/internal/validation"
	"github.com/ginjaninja78/nfe-compare/internal/xlsxparser"
	"github.com/ginjaninja78/nfe-compare/internal/xlsxwriter"
	"github.com/ginjaninja78/nfe-compare/pkg/utils"
)

// ErrInvalidMapping is returned when the column mapping does not pass
// validation. The details are in Result.Validation.
var ErrInvalidMapping = errors.New("invalid column mapping")

// =============================================================================
// OPTIONS AND RESULT
// =============================================================================

// Options describes one comparison run.
type Options struct {
	SourcePath     string
	TargetPath     string
	SourceSettings config.CSVSettings
	TargetSettings config.CSVSettings

	Mapping matcher.Mapping

	// OutputDir receives the report and the summary.
	OutputDir string

	// OutputFile is an explicit report path. When empty the name is built
	// from OutputFileFormat inside OutputDir.
	OutputFile       string
	OutputFileFormat string
	SheetName        string

	// DryRun compares but writes nothing.
	DryRun bool

	// Strict makes every mapping warning block the run.
	Strict bool

	// WriteSummary writes comparison_summary_*.txt into OutputDir.
	WriteSummary bool
}

// Result represents the outcome of a comparison run.
type Result struct {
	RunID string

	Report     *matcher.Report
	Validation *validation.ValidationResult

	// OutputFile is the written report, empty on dry run or failure.
	OutputFile  string
	SummaryFile string

	Success bool
	Error   error

	Stats Stats
}

// Stats contains timing information about the run.
type Stats struct {
	LoadTime       time.Duration
	CompareTime    time.Duration
	ProcessingTime time.Duration
}

// =============================================================================
// COMPARATOR
// =============================================================================

// Comparator runs a single comparison.
type Comparator struct {
	options Options
	logger  *slog.Logger
	runID   string
}

// New creates a Comparator. A nil logger uses slog.Default().
func New(options Options, logger *slog.Logger) *Comparator {
	if logger == nil {
		logger = slog.Default()
	}
	runID := uuid.New().String()
	return &Comparator{
		options: options,
		logger:  logger.With("run_id", runID),
		runID:   runID,
	}
}

// Run executes the pipeline and returns its result. Result.Error is set
// whenever Result.Success is false.
func (c *Comparator) Run() Result {
	startTime := time.Now()
	result := Result{RunID: c.runID}

	// =========================================================================
	// STEP 1: LOAD INPUT FILES
	// =========================================================================

	c.logger.Info("loading files", "source", c.options.SourcePath, "target", c.options.TargetPath)

	source, err := LoadDataset(c.options.SourcePath, c.options.SourceSettings)
	if err != nil {
		result.Error = fmt.Errorf("failed to read source file %s: %w", c.options.SourcePath, err)
		return result
	}

	target, err := LoadDataset(c.options.TargetPath, c.options.TargetSettings)
	if err != nil {
		result.Error = fmt.Errorf("failed to read target file %s: %w", c.options.TargetPath, err)
		return result
	}

	result.Stats.LoadTime = time.Since(startTime)
	c.logger.Debug("files loaded", "source_rows", source.Len(), "target_rows", target.Len())

	// =========================================================================
	// STEP 2: VALIDATE MAPPING
	// =========================================================================

	validator := validation.NewValidatorWithOptions(validation.ValidationOptions{
		TreatWarningsAsErrors: c.options.Strict,
	})
	result.Validation = validator.Validate(c.options.Mapping, source, target)

	for _, problem := range result.Validation.Errors {
		c.logger.Warn("mapping problem", "dataset", problem.Dataset, "role", problem.Role, "rule", problem.Rule, "detail", problem.Message)
	}

	if !result.Validation.IsValid {
		result.Error = fmt.Errorf("%w: %d problem(s)", ErrInvalidMapping, len(result.Validation.Errors))
		return result
	}

	// =========================================================================
	// STEP 3: COMPARE
	// =========================================================================

	compareStart := time.Now()
	report := matcher.Compare(source, target, c.options.Mapping)
	result.Report = report
	result.Stats.CompareTime = time.Since(compareStart)

	if report.SkippedSource > 0 || report.SkippedTarget > 0 {
		c.logger.Debug("rows without a usable key were skipped",
			"source", report.SkippedSource, "target", report.SkippedTarget)
	}
	c.logger.Info("comparison finished", "mode", report.Mode, "missing", len(report.Missing))

	// =========================================================================
	// STEP 4: WRITE REPORT
	// =========================================================================

	if !c.options.DryRun {
		outputPath, err := c.writeReport(report)
		if err != nil {
			result.Error = fmt.Errorf("failed to write report: %w", err)
			return result
		}
		result.OutputFile = outputPath
		c.logger.Info("report written", "path", outputPath)
	}

	// =========================================================================
	// STEP 5: SUMMARY
	// =========================================================================

	if c.options.WriteSummary {
		summaryPath, err := c.writeSummary(startTime, report, result.OutputFile)
		if err != nil {
			// The report is already on disk; a missing summary is not fatal.
			c.logger.Warn("failed to write summary", "error", err)
		} else {
			result.SummaryFile = summaryPath
		}
	}

	result.Success = true
	result.Stats.ProcessingTime = time.Since(startTime)

	return result
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// LoadDataset loads a CSV or XLSX file, chosen by extension.
func LoadDataset(path string, settings config.CSVSettings) (*types.Dataset, error) {
	if xlsxparser.IsWorkbook(path) {
		return xlsxparser.ParseFile(path, settings.Sheet)
	}
	return csvparser.ParseFile(path, settings)
}

// ReadHeaders returns the column names of a CSV or XLSX file.
func ReadHeaders(path string, settings config.CSVSettings) ([]string, error) {
	if xlsxparser.IsWorkbook(path) {
		return xlsxparser.ReadHeaders(path, settings.Sheet)
	}
	return csvparser.ReadHeaders(path, settings)
}

// outputPath resolves where the report is written.
func (c *Comparator) outputPath() string {
	if c.options.OutputFile != "" {
		return c.options.OutputFile
	}

	format := c.options.OutputFileFormat
	if format == "" {
		format = "notas_faltantes.xlsx"
	}

	base := filepath.Base(c.options.SourcePath)
	name := utils.GenerateOutputFileName(format, map[string]string{
		"source": strings.TrimSuffix(base, filepath.Ext(base)),
	})
	return filepath.Join(c.options.OutputDir, name)
}

func (c *Comparator) writeReport(report *matcher.Report) (string, error) {
	path := c.outputPath()

	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return "", err
	}

	options := xlsxwriter.DefaultGenerateOptions()
	if c.options.SheetName != "" {
		options.SheetName = c.options.SheetName
	}

	if err := xlsxwriter.WriteFile(path, report, options); err != nil {
		return "", err
	}
	return path, nil
}

func (c *Comparator) writeSummary(start time.Time, report *matcher.Report, outputFile string) (string, error) {
	dir := c.options.OutputDir
	if dir == "" {
		dir = "."
	}
	if err := utils.EnsureDir(dir); err != nil {
		return "", err
	}

	return utils.WriteSummaryLog(utils.ComparisonSummary{
		RunID:         c.runID,
		StartTime:     start,
		EndTime:       time.Now(),
		SourceFile:    c.options.SourcePath,
		TargetFile:    c.options.TargetPath,
		Mode:          string(report.Mode),
		OutputFile:    outputFile,
		SourceRows:    report.SourceRows,
		TargetRows:    report.TargetRows,
		TargetKeys:    report.TargetKeys,
		SkippedSource: report.SkippedSource,
		SkippedTarget: report.SkippedTarget,
		MissingCount:  len(report.Missing),
	}, dir)
}
