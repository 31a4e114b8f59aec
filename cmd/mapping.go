package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/nfe-compare/internal/config"
	"github.com/ginjaninja78/nfe-compare/internal/matcher"
)

// mappingFlags are the flags shared by compare and validate: the input
// files, the column roles on each side and an optional saved profile.
// Explicit flags win over the profile.
type mappingFlags struct {
	source  string
	target  string
	profile string
	mode    string

	sourceCols config.ColumnRoles
	targetCols config.ColumnRoles

	sourceEncoding string
	targetEncoding string
	delimiter      string
	sourceSheet    string
	targetSheet    string
}

func (f *mappingFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.StringVar(&f.source, "source", "", "SEFAZ export (CSV or XLSX)")
	flags.StringVar(&f.target, "target", "", "Client export (CSV or XLSX)")
	flags.StringVar(&f.profile, "profile", "", "YAML mapping profile")
	flags.StringVar(&f.mode, "mode", "", "Match mode: auto, key or number (default auto)")

	flags.StringVar(&f.sourceCols.Key, "source-key", "", "SEFAZ column holding CHAVE_NFE")
	flags.StringVar(&f.sourceCols.Number, "source-number", "", "SEFAZ column holding the invoice number")
	flags.StringVar(&f.sourceCols.TaxID, "source-tax-id", "", "SEFAZ column holding the issuer CNPJ")
	flags.StringVar(&f.sourceCols.Name, "source-name", "", "SEFAZ column holding the company name")

	flags.StringVar(&f.targetCols.Key, "target-key", "", "Client column holding CHAVE_NFE")
	flags.StringVar(&f.targetCols.Number, "target-number", "", "Client column holding the invoice number")
	flags.StringVar(&f.targetCols.TaxID, "target-tax-id", "", "Client column holding the supplier CNPJ")

	flags.StringVar(&f.delimiter, "delimiter", "", "Field delimiter for both files (default ;)")
	flags.StringVar(&f.sourceEncoding, "source-encoding", "", "Encoding of the SEFAZ file (default UTF-8)")
	flags.StringVar(&f.targetEncoding, "target-encoding", "", "Encoding of the client file (default UTF-8)")
	flags.StringVar(&f.sourceSheet, "source-sheet", "", "Worksheet to read when the SEFAZ file is XLSX")
	flags.StringVar(&f.targetSheet, "target-sheet", "", "Worksheet to read when the client file is XLSX")

	cmd.MarkFlagRequired("source")
	cmd.MarkFlagRequired("target")
}

// resolve merges the profile (if any), the main config and the flags.
func (f *mappingFlags) resolve(base config.CSVSettings) (*config.Profile, matcher.Mapping, error) {
	profile := &config.Profile{}
	if f.profile != "" {
		loaded, err := config.LoadProfile(f.profile, base)
		if err != nil {
			return nil, matcher.Mapping{}, err
		}
		profile = loaded
	}

	overrideRoles(&profile.Source.Columns, f.sourceCols)
	overrideRoles(&profile.Target.Columns, f.targetCols)

	overrideString(&profile.Mode, f.mode)
	overrideString(&profile.Source.CSVSettings.Delimiter, f.delimiter)
	overrideString(&profile.Target.CSVSettings.Delimiter, f.delimiter)
	overrideString(&profile.Source.CSVSettings.Encoding, f.sourceEncoding)
	overrideString(&profile.Target.CSVSettings.Encoding, f.targetEncoding)
	overrideString(&profile.Source.CSVSettings.Sheet, f.sourceSheet)
	overrideString(&profile.Target.CSVSettings.Sheet, f.targetSheet)

	profile.ApplyDefaults(base)

	mode, err := matcher.ParseMode(profile.Mode)
	if err != nil {
		return nil, matcher.Mapping{}, err
	}

	mapping := matcher.Mapping{
		Mode:   mode,
		Source: toColumns(profile.Source.Columns),
		Target: toColumns(profile.Target.Columns),
	}
	return profile, mapping, nil
}

func overrideString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func overrideRoles(dst *config.ColumnRoles, flags config.ColumnRoles) {
	overrideString(&dst.Key, flags.Key)
	overrideString(&dst.Number, flags.Number)
	overrideString(&dst.TaxID, flags.TaxID)
	overrideString(&dst.Name, flags.Name)
}

func toColumns(roles config.ColumnRoles) matcher.Columns {
	return matcher.Columns{
		Key:    roles.Key,
		Number: roles.Number,
		TaxID:  roles.TaxID,
		Name:   roles.Name,
	}
}
