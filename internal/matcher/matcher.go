// =============================================================================
// NF-e Comparator - Matcher
// =============================================================================
//
// The matcher finds the documents present in the SEFAZ export (source) that
// are absent from the client export (target).
//
// MATCHING MODES:
//   - key    : CHAVE_NFE digits on both sides
//   - number : (document number without leading zeros, 14-digit CNPJ)
//   - auto   : key when both sides map a key column, number otherwise
//
// ALGORITHM:
//   1. Normalize every target row into a MatchKey and collect them in a set
//      (duplicates collapse).
//   2. Walk the source rows in file order. A key that is not in the target
//      set is reported once, with the name of the first row carrying it.
//   3. Rows whose key cannot be formed are skipped on both sides.
//
// =============================================================================

package matcher

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/nfe-compare/internal/normalize"
	"github.com/ginjaninja78/nfe-compare/internal/types"
)

// =============================================================================
// MODE
// =============================================================================

// Mode selects how rows are keyed.
type Mode string

const (
	ModeAuto   Mode = "auto"
	ModeKey    Mode = "key"
	ModeNumber Mode = "number"
)

// ParseMode accepts the CLI/YAML spelling of a mode. Empty means auto.
func ParseMode(value string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "auto":
		return ModeAuto, nil
	case "key", "chave", "chave_nfe":
		return ModeKey, nil
	case "number", "numero", "number+cnpj", "numero+cnpj":
		return ModeNumber, nil
	default:
		return "", fmt.Errorf("unknown match mode %q (want auto, key or number)", value)
	}
}

// =============================================================================
// MAPPING
// =============================================================================

// Columns names the columns of one dataset that play each role.
// An empty string means the role is not mapped.
type Columns struct {
	Key    string `yaml:"key"`
	Number string `yaml:"number"`
	TaxID  string `yaml:"tax_id"`
	Name   string `yaml:"name"`
}

// Mapping is the column mapping for both datasets.
type Mapping struct {
	Mode   Mode
	Source Columns
	Target Columns
}

// Resolve returns the concrete mode (key or number) used for matching.
func (m Mapping) Resolve() Mode {
	switch m.Mode {
	case ModeKey, ModeNumber:
		return m.Mode
	}
	if m.Source.Key != "" && m.Target.Key != "" {
		return ModeKey
	}
	return ModeNumber
}

// =============================================================================
// MATCH KEY
// =============================================================================

// MatchKey is the normalized identity of a document.
// In key mode only Key is set; in number mode Number and TaxID are set.
type MatchKey struct {
	Key    string
	Number string
	TaxID  string
}

// String renders the key the way it is shown in logs.
func (k MatchKey) String() string {
	if k.Key != "" {
		return k.Key
	}
	return k.Number + "-" + k.TaxID
}

// keyOf builds the MatchKey for a record. ok is false when a field needed by
// the mode holds no digit, in which case the row does not take part in the
// comparison.
func keyOf(record types.Record, cols Columns, mode Mode) (MatchKey, bool) {
	if mode == ModeKey {
		key, ok := normalize.Key(record[cols.Key])
		return MatchKey{Key: key}, ok
	}

	number, ok := normalize.ParseNumber(record[cols.Number])
	if !ok {
		return MatchKey{}, false
	}
	taxID := normalize.TaxID(record[cols.TaxID])
	if taxID == "" {
		return MatchKey{}, false
	}
	return MatchKey{Number: number, TaxID: taxID}, true
}

// =============================================================================
// REPORT
// =============================================================================

// MissingRecord is a source document not found in the target.
type MissingRecord struct {
	Key  MatchKey
	Name string

	// SourceRow is the 1-based position among the non-blank data rows of
	// the source. Blank lines are not counted, so it is not a file line.
	SourceRow int
}

// Report is the result of a comparison.
type Report struct {
	Mode    Mode
	Missing []MissingRecord

	SourceRows    int
	TargetRows    int
	TargetKeys    int
	SkippedSource int
	SkippedTarget int
}

// Report column headers.
const (
	ColumnKey    = "CHAVE_NFE"
	ColumnNumber = "NUMERO"
	ColumnTaxID  = "CNPJ"
	ColumnName   = "RAZAO_SOCIAL"
)

// Columns returns the report headers for the report mode.
func (r *Report) Columns() []string {
	if r.Mode == ModeKey {
		return []string{ColumnKey, ColumnName}
	}
	return []string{ColumnNumber, ColumnTaxID, ColumnName}
}

// Rows returns the report body, aligned with Columns.
func (r *Report) Rows() [][]string {
	rows := make([][]string, 0, len(r.Missing))
	for _, m := range r.Missing {
		if r.Mode == ModeKey {
			rows = append(rows, []string{m.Key.Key, m.Name})
		} else {
			rows = append(rows, []string{m.Key.Number, m.Key.TaxID, m.Name})
		}
	}
	return rows
}

// =============================================================================
// COMPARE
// =============================================================================

// Compare reports the source documents whose key is absent from target.
// The mapping must already be validated against both datasets; unknown
// columns read as empty cells.
func Compare(source, target *types.Dataset, mapping Mapping) *Report {
	mode := mapping.Resolve()
	report := &Report{
		Mode:       mode,
		Missing:    []MissingRecord{},
		SourceRows: source.Len(),
		TargetRows: target.Len(),
	}

	present := make(map[MatchKey]struct{}, target.Len())
	for _, record := range target.Records {
		key, ok := keyOf(record, mapping.Target, mode)
		if !ok {
			report.SkippedTarget++
			continue
		}
		present[key] = struct{}{}
	}
	report.TargetKeys = len(present)

	reported := make(map[MatchKey]struct{})
	for i, record := range source.Records {
		key, ok := keyOf(record, mapping.Source, mode)
		if !ok {
			report.SkippedSource++
			continue
		}
		if _, found := present[key]; found {
			continue
		}
		if _, dup := reported[key]; dup {
			continue
		}
		reported[key] = struct{}{}

		var name string
		if mapping.Source.Name != "" {
			name = record[mapping.Source.Name]
		}
		report.Missing = append(report.Missing, MissingRecord{
			Key:       key,
			Name:      name,
			SourceRow: i + 1,
		})
	}

	return report
}
