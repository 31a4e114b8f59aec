// =============================================================================
// NF-e Comparator - Configuration Module
// =============================================================================
//
// This module loads the two kinds of YAML files the comparator understands.
//
// CONFIGURATION FILES:
//   1. Main Config (config.yaml): output location, naming, logging and the
//      default CSV settings. Optional: defaults are used when it is absent.
//   2. Mapping Profiles (--profile): which columns of the SEFAZ and client
//      exports hold the document key, number, CNPJ and company name. A
//      profile is written once per client layout and reused every month.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// OutputDir is the directory where report spreadsheets are written.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// OutputFileFormat is the report file name.
	// Placeholders:
	//   {uuid}      - A random UUID
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {date}      - Current date (YYYYMMDD)
	// Default: "notas_faltantes.xlsx"
	OutputFileFormat string `yaml:"output_file_format"`

	// SheetName is the name of the single sheet in the report.
	// Default: "Notas Faltantes"
	SheetName string `yaml:"sheet_name"`

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogFormat is "text" or "json".
	// Default: "text"
	LogFormat string `yaml:"log_format"`

	// CSVSettings are used for both files unless a profile overrides them.
	CSVSettings CSVSettings `yaml:"csv_settings"`
}

// =============================================================================
// CSV SETTINGS STRUCTURE
// =============================================================================

// CSVSettings contains settings for parsing delimited files.
type CSVSettings struct {
	// Delimiter is the character used to separate fields.
	// Common values: ";" (semicolon), "," (comma), "|" (pipe), "tab"
	// Default: ";"
	Delimiter string `yaml:"delimiter"`

	// Encoding is the character encoding of the file, by IANA name.
	// Common values: "UTF-8", "ISO-8859-1", "Windows-1252"
	// A byte-order mark always wins over this setting.
	// Default: "UTF-8"
	Encoding string `yaml:"encoding"`

	// Sheet selects the worksheet when the file is an .xlsx workbook.
	// Default: the first sheet.
	Sheet string `yaml:"sheet,omitempty"`
}

// merge returns s with the empty fields filled from base.
func (s CSVSettings) merge(base CSVSettings) CSVSettings {
	if s.Delimiter == "" {
		s.Delimiter = base.Delimiter
	}
	if s.Encoding == "" {
		s.Encoding = base.Encoding
	}
	if s.Sheet == "" {
		s.Sheet = base.Sheet
	}
	return s
}

// =============================================================================
// MAPPING PROFILE STRUCTURE
// =============================================================================

// Profile is a saved column mapping.
//
// Example:
//
//	name: cliente-acme
//	mode: number
//	source:
//	  columns: {number: "Número", tax_id: "CNPJ Emitente", name: "Razão Social"}
//	target:
//	  csv_settings: {encoding: Windows-1252}
//	  columns: {number: "NF", tax_id: "CNPJ Fornecedor"}
type Profile struct {
	Name string `yaml:"name"`

	// Mode is "auto", "key" or "number". Default: "auto"
	Mode string `yaml:"mode"`

	Source DatasetProfile `yaml:"source"`
	Target DatasetProfile `yaml:"target"`
}

// DatasetProfile describes one side of the comparison.
type DatasetProfile struct {
	CSVSettings CSVSettings `yaml:"csv_settings"`
	Columns     ColumnRoles `yaml:"columns"`
}

// ColumnRoles names the columns that hold each role. Empty means unmapped.
type ColumnRoles struct {
	Key    string `yaml:"key"`
	Number string `yaml:"number"`
	TaxID  string `yaml:"tax_id"`
	Name   string `yaml:"name"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// DefaultMainConfig returns the configuration used when no file is present.
func DefaultMainConfig() *MainConfig {
	config := &MainConfig{}
	applyMainConfigDefaults(config)
	return config
}

// LoadMainConfig loads the main configuration from a YAML file.
//
// When the file does not exist and optional is true, the defaults are
// returned instead. This lets the CLI run without any config.yaml while
// still failing loudly on a path the user typed explicitly.
func LoadMainConfig(configPath string, optional bool) (*MainConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return DefaultMainConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config MainConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyMainConfigDefaults(&config)

	if err := validateMainConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.OutputFileFormat == "" {
		config.OutputFileFormat = "notas_faltantes.xlsx"
	}
	if config.SheetName == "" {
		config.SheetName = "Notas Faltantes"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.LogFormat == "" {
		config.LogFormat = "text"
	}
	applyCSVDefaults(&config.CSVSettings)
}

// applyCSVDefaults fills the CSV settings the exports use in practice.
func applyCSVDefaults(settings *CSVSettings) {
	if settings.Delimiter == "" {
		settings.Delimiter = ";"
	}
	if settings.Encoding == "" {
		settings.Encoding = "UTF-8"
	}
}

// validateMainConfig validates the main configuration.
func validateMainConfig(config *MainConfig) error {
	switch config.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be text or json, got %q", config.LogFormat)
	}

	// Excel rejects longer sheet names.
	if len([]rune(config.SheetName)) > 31 {
		return fmt.Errorf("sheet_name %q is longer than 31 characters", config.SheetName)
	}

	return nil
}

// LoadProfile loads a mapping profile. Its CSV settings inherit from base
// wherever the profile leaves them empty.
func LoadProfile(profilePath string, base CSVSettings) (*Profile, error) {
	data, err := os.ReadFile(profilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	var profile Profile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}

	profile.ApplyDefaults(base)
	return &profile, nil
}

// ApplyDefaults fills empty profile settings from base.
func (p *Profile) ApplyDefaults(base CSVSettings) {
	applyCSVDefaults(&base)
	p.Source.CSVSettings = p.Source.CSVSettings.merge(base)
	p.Target.CSVSettings = p.Target.CSVSettings.merge(base)
	if p.Mode == "" {
		p.Mode = "auto"
	}
}

// SaveProfile writes a profile as YAML so a mapping chosen on the command
// line can be reused.
func SaveProfile(profilePath string, profile *Profile) error {
	data, err := yaml.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	if err := os.WriteFile(profilePath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}
	return nil
}
