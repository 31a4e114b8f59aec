// =============================================================================
// NF-e Comparator - XLSX Parser
// =============================================================================
//
// Client exports often arrive as workbooks instead of CSV. This module reads
// one worksheet into the same Dataset the CSV parser produces:
//
//   | Row 1      | header row, cleaned exactly like a CSV header |
//   | Row 2..N   | data rows, blank rows skipped                  |
//
// Cells are read as their formatted text so that a document number stored
// as a number and one stored as text both reach the normalizer as digits.
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/nfe-compare/internal/csvparser"
	"github.com/ginjaninja78/nfe-compare/internal/types"
)

// IsWorkbook reports whether path looks like an Excel workbook.
func IsWorkbook(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return true
	}
	return false
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// ParseFile reads sheet from the workbook at path.
// An empty sheet name selects the first sheet.
func ParseFile(path, sheet string) (*types.Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	data, err := parseSheet(f, sheet)
	if err != nil {
		return nil, err
	}
	data.SourceFile = path
	return data, nil
}

// Parse reads sheet from a workbook stream.
func Parse(r io.Reader, sheet string) (*types.Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return parseSheet(f, sheet)
}

// ReadHeaders returns the cleaned header row of sheet.
func ReadHeaders(path, sheet string) ([]string, error) {
	data, err := ParseFile(path, sheet)
	if err != nil {
		return nil, err
	}
	return data.Headers, nil
}

// parseSheet parses a single sheet from an open workbook.
func parseSheet(f *excelize.File, sheetName string) (*types.Dataset, error) {
	if sheetName == "" {
		sheetName = f.GetSheetName(0)
		if sheetName == "" {
			return nil, fmt.Errorf("workbook has no sheets")
		}
	} else if idx, err := f.GetSheetIndex(sheetName); err != nil || idx < 0 {
		return nil, fmt.Errorf("sheet %q not found (available: %s)", sheetName, strings.Join(f.GetSheetList(), ", "))
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	// Skip leading blank rows; the first non-blank row is the header.
	start := 0
	for start < len(rows) && isRowEmpty(rows[start]) {
		start++
	}
	if start == len(rows) {
		return nil, fmt.Errorf("sheet %q: %w", sheetName, csvparser.ErrEmptyFile)
	}

	headers := csvparser.CleanHeaders(rows[start])

	return &types.Dataset{
		Headers: headers,
		Records: csvparser.BuildRecords(rows[start+1:], headers),
	}, nil
}

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
