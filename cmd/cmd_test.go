package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/nfe-compare/internal/config"
	"github.com/ginjaninja78/nfe-compare/internal/matcher"
)

func defaultSettings() config.CSVSettings {
	return config.DefaultMainConfig().CSVSettings
}

func TestResolve_FlagsOnly(t *testing.T) {
	f := mappingFlags{
		sourceCols: config.ColumnRoles{Key: "CHAVE_NFE", Name: "Razao Social"},
		targetCols: config.ColumnRoles{Key: "Chave"},
		delimiter:  ",",
	}

	profile, mapping, err := f.resolve(defaultSettings())
	require.NoError(t, err)

	assert.Equal(t, matcher.ModeAuto, mapping.Mode)
	assert.Equal(t, matcher.ModeKey, mapping.Resolve())
	assert.Equal(t, matcher.Columns{Key: "CHAVE_NFE", Name: "Razao Social"}, mapping.Source)
	assert.Equal(t, ",", profile.Source.CSVSettings.Delimiter)
	assert.Equal(t, ",", profile.Target.CSVSettings.Delimiter)
	assert.Equal(t, "UTF-8", profile.Target.CSVSettings.Encoding)
}

func TestResolve_FlagsOverrideProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "acme.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: acme
mode: number
source:
  columns: {number: "nNF", tax_id: "CNPJ Emitente", name: "Razao Social"}
target:
  csv_settings: {encoding: Windows-1252}
  columns: {number: "NF", tax_id: "CNPJ"}
`), 0o644))

	f := mappingFlags{
		profile:    path,
		targetCols: config.ColumnRoles{Number: "Nota"},
	}

	profile, mapping, err := f.resolve(defaultSettings())
	require.NoError(t, err)

	assert.Equal(t, matcher.ModeNumber, mapping.Mode)
	assert.Equal(t, matcher.Columns{Number: "Nota", TaxID: "CNPJ"}, mapping.Target)
	assert.Equal(t, "nNF", mapping.Source.Number)
	assert.Equal(t, "Windows-1252", profile.Target.CSVSettings.Encoding)
	assert.Equal(t, "UTF-8", profile.Source.CSVSettings.Encoding)
}

func TestResolve_Errors(t *testing.T) {
	_, _, err := (&mappingFlags{mode: "fuzzy"}).resolve(defaultSettings())
	assert.Error(t, err)

	_, _, err = (&mappingFlags{profile: filepath.Join(t.TempDir(), "none.yaml")}).resolve(defaultSettings())
	assert.Error(t, err)
}

func TestPrintReport(t *testing.T) {
	report := &matcher.Report{
		Mode: matcher.ModeKey,
		Missing: []matcher.MissingRecord{
			{Key: matcher.MatchKey{Key: "111"}, Name: "ACME"},
			{Key: matcher.MatchKey{Key: "222"}, Name: "BETA"},
			{Key: matcher.MatchKey{Key: "333"}, Name: "GAMA"},
		},
	}

	var buf bytes.Buffer
	printReport(&buf, report, 2)
	out := buf.String()
	assert.Contains(t, out, "CHAVE_NFE")
	assert.Contains(t, out, "222")
	assert.NotContains(t, out, "333")
	assert.Contains(t, out, "... and 1 more")

	buf.Reset()
	printReport(&buf, report, 0)
	assert.Empty(t, buf.String())

	buf.Reset()
	printReport(&buf, report, -1)
	assert.Contains(t, buf.String(), "GAMA")
}

func TestRunColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sefaz.csv")
	require.NoError(t, os.WriteFile(path, []byte("CHAVE_NFE; nNF ;CNPJ\n1;2;3\n"), 0o644))

	var buf bytes.Buffer
	require.NoError(t, runColumns(&buf, []string{path}))
	assert.Contains(t, buf.String(), "(3 columns)")
	assert.Contains(t, buf.String(), " 2. nNF")

	assert.Error(t, runColumns(&buf, []string{filepath.Join(t.TempDir(), "missing.csv")}))
}
