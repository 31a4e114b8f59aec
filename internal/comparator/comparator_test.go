package comparator

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/nfe-compare/internal/config"
	"github.com/ginjaninja78/nfe-compare/internal/csvparser"
	"github.com/ginjaninja78/nfe-compare/internal/matcher"
)

const sefazCSV = "\ufeffCHAVE_NFE ; nNF ; CNPJ Emitente ; Razao Social\n" +
	"3524-0001;000123;12.345.678/0001-90;ACME LTDA\n" +
	"3524-0002;456;1234567000190;BETA SA\n" +
	"3524-0003;789;11222333000144;GAMA ME\n"

const clienteCSV = "Chave;Nota;CNPJ Fornecedor\n" +
	"35240001;123;12345678000190\n" +
	"35240002;0456;01.234.567/0001-90\n" +
	"35240002;0456;01.234.567/0001-90\n"

func writeInputs(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	source := filepath.Join(dir, "sefaz.csv")
	target := filepath.Join(dir, "cliente.csv")
	require.NoError(t, os.WriteFile(source, []byte(sefazCSV), 0o644))
	require.NoError(t, os.WriteFile(target, []byte(clienteCSV), 0o644))
	return source, target
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func baseOptions(t *testing.T, source, target string) Options {
	settings := config.CSVSettings{Delimiter: ";", Encoding: "UTF-8"}
	return Options{
		SourcePath:     source,
		TargetPath:     target,
		SourceSettings: settings,
		TargetSettings: settings,
		OutputDir:      filepath.Join(t.TempDir(), "out"),
		SheetName:      "Notas Faltantes",
		Mapping: matcher.Mapping{
			Source: matcher.Columns{Key: "CHAVE_NFE", Number: "nNF", TaxID: "CNPJ Emitente", Name: "Razao Social"},
			Target: matcher.Columns{Key: "Chave", Number: "Nota", TaxID: "CNPJ Fornecedor"},
		},
	}
}

func TestRun_KeyModeWritesReport(t *testing.T) {
	source, target := writeInputs(t)
	opts := baseOptions(t, source, target)
	opts.WriteSummary = true

	result := New(opts, quietLogger()).Run()
	require.NoError(t, result.Error)
	require.True(t, result.Success)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, matcher.ModeKey, result.Report.Mode)
	require.Len(t, result.Report.Missing, 1)
	assert.Equal(t, "35240003", result.Report.Missing[0].Key.Key)
	assert.Equal(t, filepath.Join(opts.OutputDir, "notas_faltantes.xlsx"), result.OutputFile)
	assert.FileExists(t, result.SummaryFile)

	wb, err := excelize.OpenFile(result.OutputFile)
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows("Notas Faltantes")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"CHAVE_NFE", "RAZAO_SOCIAL"}, {"35240003", "GAMA ME"}}, rows)
}

func TestRun_NumberModeDryRun(t *testing.T) {
	source, target := writeInputs(t)
	opts := baseOptions(t, source, target)
	opts.Mapping.Mode = matcher.ModeNumber
	opts.DryRun = true

	result := New(opts, quietLogger()).Run()
	require.NoError(t, result.Error)

	assert.Equal(t, matcher.ModeNumber, result.Report.Mode)
	require.Len(t, result.Report.Missing, 1)
	assert.Equal(t, matcher.MatchKey{Number: "789", TaxID: "11222333000144"}, result.Report.Missing[0].Key)
	assert.Equal(t, 2, result.Report.TargetKeys)
	assert.Empty(t, result.OutputFile)
	assert.NoDirExists(t, opts.OutputDir)
}

func TestRun_InvalidMappingAbortsBeforeCompare(t *testing.T) {
	source, target := writeInputs(t)
	opts := baseOptions(t, source, target)
	opts.Mapping = matcher.Mapping{
		Mode:   matcher.ModeNumber,
		Source: matcher.Columns{Number: "nNF", Name: "Razao Social"},
		Target: matcher.Columns{Number: "Nota", TaxID: "CNPJ Fornecedor"},
	}

	result := New(opts, quietLogger()).Run()

	assert.False(t, result.Success)
	assert.ErrorIs(t, result.Error, ErrInvalidMapping)
	assert.Nil(t, result.Report)
	require.NotNil(t, result.Validation)
	assert.Len(t, result.Validation.Errors, 1)
}

func TestRun_StrictBlocksOnMissingName(t *testing.T) {
	source, target := writeInputs(t)
	opts := baseOptions(t, source, target)
	opts.Mapping.Source.Name = ""
	opts.Strict = true

	result := New(opts, quietLogger()).Run()
	assert.ErrorIs(t, result.Error, ErrInvalidMapping)
}

func TestRun_UnreadableFile(t *testing.T) {
	source, _ := writeInputs(t)
	empty := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))

	opts := baseOptions(t, source, empty)
	result := New(opts, quietLogger()).Run()

	assert.False(t, result.Success)
	assert.ErrorIs(t, result.Error, csvparser.ErrEmptyFile)

	opts = baseOptions(t, filepath.Join(t.TempDir(), "missing.csv"), empty)
	result = New(opts, quietLogger()).Run()
	assert.Error(t, result.Error)
}

func TestRun_WorkbookTarget(t *testing.T) {
	source, _ := writeInputs(t)

	wb := excelize.NewFile()
	rows := [][]interface{}{{"Chave"}, {"35240001"}, {"35240002"}, {"35240003"}}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		r := row
		require.NoError(t, wb.SetSheetRow("Sheet1", cell, &r))
	}
	target := filepath.Join(t.TempDir(), "cliente.xlsx")
	require.NoError(t, wb.SaveAs(target))
	require.NoError(t, wb.Close())

	opts := baseOptions(t, source, target)
	opts.Mapping.Target = matcher.Columns{Key: "Chave"}
	opts.OutputFile = filepath.Join(t.TempDir(), "custom.xlsx")

	result := New(opts, quietLogger()).Run()
	require.NoError(t, result.Error)
	assert.Empty(t, result.Report.Missing)
	assert.Equal(t, opts.OutputFile, result.OutputFile)
	assert.FileExists(t, opts.OutputFile)
}

func TestReadHeaders(t *testing.T) {
	source, _ := writeInputs(t)
	headers, err := ReadHeaders(source, config.CSVSettings{})
	require.NoError(t, err)
	assert.Equal(t, []string{"CHAVE_NFE", "nNF", "CNPJ Emitente", "Razao Social"}, headers)
}

func TestRun_SourceRowSkipsBlankLines(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "sefaz.csv")
	target := filepath.Join(dir, "cliente.csv")
	require.NoError(t, os.WriteFile(source, []byte("CHAVE_NFE;Razao Social\n1;ACME\n\n;;\n2;BETA\n"), 0o644))
	require.NoError(t, os.WriteFile(target, []byte("Chave\n1\n"), 0o644))

	opts := baseOptions(t, source, target)
	opts.Mapping = matcher.Mapping{
		Source: matcher.Columns{Key: "CHAVE_NFE", Name: "Razao Social"},
		Target: matcher.Columns{Key: "Chave"},
	}
	opts.DryRun = true

	result := New(opts, quietLogger()).Run()
	require.NoError(t, result.Error)
	require.Len(t, result.Report.Missing, 1)
	assert.Equal(t, "BETA", result.Report.Missing[0].Name)
	assert.Equal(t, 2, result.Report.Missing[0].SourceRow)
}
