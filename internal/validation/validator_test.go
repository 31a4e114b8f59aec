package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/nfe-compare/internal/matcher"
	"github.com/ginjaninja78/nfe-compare/internal/types"
)

var (
	sefaz   = &types.Dataset{Headers: []string{"CHAVE_NFE", "nNF", "CNPJ", "Razao"}}
	cliente = &types.Dataset{Headers: []string{"Chave", "Nota", "CNPJ Fornecedor"}}
)

func TestValidate_KeyMappingValid(t *testing.T) {
	result := ValidateMapping(matcher.Mapping{
		Source: matcher.Columns{Key: "CHAVE_NFE", Name: "Razao"},
		Target: matcher.Columns{Key: "Chave"},
	}, sefaz, cliente)

	assert.True(t, result.IsValid)
	assert.Equal(t, matcher.ModeKey, result.Mode)
	assert.Empty(t, result.Errors)
	assert.Equal(t, "Mapping is valid.", FormatErrors(result.Errors))
}

func TestValidate_UnknownColumn(t *testing.T) {
	result := ValidateMapping(matcher.Mapping{
		Mode:   matcher.ModeNumber,
		Source: matcher.Columns{Number: "nNF", TaxID: "CNPJ", Name: "Razao"},
		Target: matcher.Columns{Number: "Numero", TaxID: "CNPJ Fornecedor"},
	}, sefaz, cliente)

	assert.False(t, result.IsValid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, RuleUnknownColumn, result.Errors[0].Rule)
	assert.Equal(t, "target", result.Errors[0].Dataset)
	assert.Contains(t, result.Errors[0].Error(), "Nota")
	assert.Equal(t, 1, result.ErrorCount)
}

func TestValidate_MissingRequiredMappingBlocks(t *testing.T) {
	result := ValidateMapping(matcher.Mapping{
		Mode:   matcher.ModeNumber,
		Source: matcher.Columns{Number: "nNF", Name: "Razao"},
		Target: matcher.Columns{Number: "Nota", TaxID: "CNPJ Fornecedor"},
	}, sefaz, cliente)

	assert.False(t, result.IsValid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, SeverityWarning, result.Errors[0].Severity)
	assert.Equal(t, RuleRequiredMapping, result.Errors[0].Rule)
	assert.True(t, result.Errors[0].Blocking())
	assert.Equal(t, 0, result.ErrorCount)
	assert.Equal(t, 1, result.WarningCount)
}

func TestValidate_MissingNameIsOnlyAWarning(t *testing.T) {
	mapping := matcher.Mapping{
		Source: matcher.Columns{Key: "CHAVE_NFE"},
		Target: matcher.Columns{Key: "Chave"},
	}

	lenient := ValidateMapping(mapping, sefaz, cliente)
	assert.True(t, lenient.IsValid)
	require.Len(t, lenient.Errors, 1)
	assert.Equal(t, RuleOptionalMapping, lenient.Errors[0].Rule)
	assert.False(t, lenient.Errors[0].Blocking())

	strict := NewValidatorWithOptions(ValidationOptions{TreatWarningsAsErrors: true}).Validate(mapping, sefaz, cliente)
	assert.False(t, strict.IsValid)
}

func TestValidate_AutoFallsBackToNumber(t *testing.T) {
	result := ValidateMapping(matcher.Mapping{
		Source: matcher.Columns{Key: "CHAVE_NFE", Name: "Razao"},
	}, sefaz, cliente)

	assert.Equal(t, matcher.ModeNumber, result.Mode)
	assert.False(t, result.IsValid)
	assert.Equal(t, 4, result.WarningCount, "number and tax_id on both sides")
	assert.Contains(t, FormatErrors(result.Errors), "4 problem(s)")
}
