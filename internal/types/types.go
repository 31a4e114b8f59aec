// =============================================================================
// NF-e Comparator - Shared Types
// =============================================================================
//
// This package contains the tabular types shared by the loaders, the
// validator and the matcher. Keeping them here avoids import cycles between:
//   - csvparser / xlsxparser (producers)
//   - validation / matcher   (consumers)
//
// =============================================================================

package types

// =============================================================================
// RECORD TYPES
// =============================================================================

// Record is a single data row: column name -> raw cell value, exactly as it
// was loaded from the file (only surrounding whitespace removed).
type Record map[string]string

// Dataset is a loaded table.
type Dataset struct {
	// Headers are the cleaned column names, in file order.
	Headers []string

	// Records are the data rows, in file order. Blank lines are not present.
	Records []Record

	// SourceFile is the path the dataset was loaded from.
	// Empty when the dataset was built in memory.
	SourceFile string
}

// Len returns the number of data rows.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// HasColumn reports whether name is one of the dataset headers.
func (d *Dataset) HasColumn(name string) bool {
	if d == nil {
		return false
	}
	for _, header := range d.Headers {
		if header == name {
			return true
		}
	}
	return false
}
