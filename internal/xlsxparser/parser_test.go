package xlsxparser

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/nfe-compare/internal/csvparser"
)

func buildWorkbook(t *testing.T, sheet string, rows [][]interface{}) string {
	t.Helper()

	wb := excelize.NewFile()
	defer wb.Close()

	if sheet != "Sheet1" {
		require.NoError(t, wb.SetSheetName("Sheet1", sheet))
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		if err := wb.SetSheetRow(sheet, cell, &r); err != nil {
			t.Fatalf("SetSheetRow %s failed: %v", sheet, err)
		}
	}

	path := filepath.Join(t.TempDir(), "cliente.xlsx")
	require.NoError(t, wb.SaveAs(path))
	return path
}

func TestParseFile_FirstSheet(t *testing.T) {
	path := buildWorkbook(t, "Notas", [][]interface{}{
		{" Nota ", "CNPJ Fornecedor"},
		{123, "12.345.678/0001-90"},
		{nil, nil},
		{"000456", "1234567000190"},
	})

	data, err := ParseFile(path, "")
	require.NoError(t, err)

	assert.Equal(t, path, data.SourceFile)
	assert.Equal(t, []string{"Nota", "CNPJ Fornecedor"}, data.Headers)
	require.Len(t, data.Records, 2)
	assert.Equal(t, "123", data.Records[0]["Nota"])
	assert.Equal(t, "000456", data.Records[1]["Nota"])
}

func TestParseFile_NamedSheet(t *testing.T) {
	path := buildWorkbook(t, "Dados", [][]interface{}{{"Chave"}, {"3524"}})

	data, err := ParseFile(path, "Dados")
	require.NoError(t, err)
	assert.Equal(t, 1, data.Len())

	_, err = ParseFile(path, "Outra")
	assert.Error(t, err)
}

func TestParseFile_EmptySheet(t *testing.T) {
	path := buildWorkbook(t, "Sheet1", nil)

	_, err := ParseFile(path, "")
	assert.ErrorIs(t, err, csvparser.ErrEmptyFile)
}

func TestReadHeaders(t *testing.T) {
	path := buildWorkbook(t, "Sheet1", [][]interface{}{{"A", "", "A"}})

	headers, err := ReadHeaders(path, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "Column_2", "A.1"}, headers)
}

func TestIsWorkbook(t *testing.T) {
	assert.True(t, IsWorkbook("clientes.XLSX"))
	assert.False(t, IsWorkbook("sefaz.csv"))
}
