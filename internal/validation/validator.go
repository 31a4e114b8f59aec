// =============================================================================
// NF-e Comparator - Mapping Validation
// =============================================================================
//
// This module checks a column mapping against the two loaded datasets before
// any comparison runs. It catches the mistakes that would otherwise produce a
// silently wrong report:
//   - A mapped column that does not exist in the file (typo, wrong export)
//   - A role the selected mode needs that was left unmapped
//   - The company-name column left unmapped (report names come out empty)
//
// ERROR HANDLING:
//   - Problems are collected, not returned one at a time
//   - "error" severity always blocks the comparison
//   - "warning" severity blocks only for required roles, or when
//     TreatWarningsAsErrors is set
//
// =============================================================================

package validation

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/nfe-compare/internal/matcher"
	"github.com/ginjaninja78/nfe-compare/internal/types"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Rules.
const (
	RuleUnknownColumn   = "unknown_column"
	RuleRequiredMapping = "required_mapping"
	RuleOptionalMapping = "optional_mapping"
)

// ValidationError represents a single mapping problem.
type ValidationError struct {
	Severity string

	// Dataset is "source" or "target".
	Dataset string

	// Role is the mapping role: key, number, tax_id or name.
	Role string

	// Column is the mapped column name, empty when the role is unmapped.
	Column string

	Rule    string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s %s: %s", strings.ToUpper(e.Severity), e.Dataset, e.Role, e.Message)
}

// Blocking reports whether the problem prevents the comparison on its own.
func (e *ValidationError) Blocking() bool {
	return e.Severity == SeverityError || e.Rule == RuleRequiredMapping
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult contains the results of validation.
type ValidationResult struct {
	// IsValid is true if the comparison may run.
	IsValid bool

	// Mode is the resolved match mode the mapping was checked for.
	Mode matcher.Mode

	Errors       []*ValidationError
	ErrorCount   int
	WarningCount int
}

// =============================================================================
// VALIDATOR
// =============================================================================

// ValidationOptions contains options for validation.
type ValidationOptions struct {
	// TreatWarningsAsErrors makes every warning block the comparison.
	TreatWarningsAsErrors bool
}

// Validator checks column mappings.
type Validator struct {
	options ValidationOptions
}

// NewValidator creates a new Validator with default options.
func NewValidator() *Validator {
	return &Validator{}
}

// NewValidatorWithOptions creates a new Validator with custom options.
func NewValidatorWithOptions(options ValidationOptions) *Validator {
	return &Validator{options: options}
}

// ValidateMapping validates with default options; warnings other than
// required_mapping do not block.
func ValidateMapping(mapping matcher.Mapping, source, target *types.Dataset) *ValidationResult {
	return NewValidator().Validate(mapping, source, target)
}

// Validate checks mapping against the headers of source and target.
func (v *Validator) Validate(mapping matcher.Mapping, source, target *types.Dataset) *ValidationResult {
	mode := mapping.Resolve()
	result := &ValidationResult{
		IsValid: true,
		Mode:    mode,
		Errors:  make([]*ValidationError, 0),
	}

	var problems []*ValidationError
	problems = append(problems, checkDataset("source", mapping.Source, source, mode, true)...)
	problems = append(problems, checkDataset("target", mapping.Target, target, mode, false)...)

	for _, problem := range problems {
		result.Errors = append(result.Errors, problem)

		if problem.Severity == SeverityError {
			result.ErrorCount++
		} else {
			result.WarningCount++
		}

		if problem.Blocking() || v.options.TreatWarningsAsErrors {
			result.IsValid = false
		}
	}

	return result
}

// checkDataset validates the roles of one side of the mapping.
func checkDataset(side string, cols matcher.Columns, data *types.Dataset, mode matcher.Mode, isSource bool) []*ValidationError {
	var problems []*ValidationError

	type role struct {
		name     string
		column   string
		required bool
	}

	roles := []role{
		{"key", cols.Key, mode == matcher.ModeKey},
		{"number", cols.Number, mode == matcher.ModeNumber},
		{"tax_id", cols.TaxID, mode == matcher.ModeNumber},
	}
	if isSource {
		roles = append(roles, role{"name", cols.Name, false})
	}

	for _, r := range roles {
		if r.column == "" {
			switch {
			case r.required:
				problems = append(problems, &ValidationError{
					Severity: SeverityWarning,
					Dataset:  side,
					Role:     r.name,
					Rule:     RuleRequiredMapping,
					Message:  fmt.Sprintf("select the %s column to compare by %s", r.name, mode),
				})
			case r.name == "name":
				problems = append(problems, &ValidationError{
					Severity: SeverityWarning,
					Dataset:  side,
					Role:     r.name,
					Rule:     RuleOptionalMapping,
					Message:  "no name column selected; the report name column will be empty",
				})
			}
			continue
		}

		if !data.HasColumn(r.column) {
			problems = append(problems, &ValidationError{
				Severity: SeverityError,
				Dataset:  side,
				Role:     r.name,
				Column:   r.column,
				Rule:     RuleUnknownColumn,
				Message:  fmt.Sprintf("column %q not found (available: %s)", r.column, strings.Join(headersOf(data), ", ")),
			})
		}
	}

	return problems
}

func headersOf(data *types.Dataset) []string {
	if data == nil {
		return nil
	}
	return data.Headers
}

// =============================================================================
// ERROR FORMATTING
// =============================================================================

// FormatErrors formats validation problems for display.
func FormatErrors(errors []*ValidationError) string {
	if len(errors) == 0 {
		return "Mapping is valid."
	}

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Mapping check found %d problem(s):\n", len(errors)))

	for i, err := range errors {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
	}

	return builder.String()
}
