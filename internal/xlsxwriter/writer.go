// =============================================================================
// NF-e Comparator - XLSX Report Writer
// =============================================================================
//
// This module turns a comparison report into a workbook with exactly one
// sheet:
//
//   | NUMERO | CNPJ           | RAZAO_SOCIAL |     (number mode)
//   | CHAVE_NFE            | RAZAO_SOCIAL |       (key mode)
//
// Every cell is written as text. CNPJs and document keys are identifiers,
// not quantities: stored as numbers Excel would drop their leading zeros and
// render 44-digit keys in scientific notation.
//
// =============================================================================

package xlsxwriter

import (
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/nfe-compare/internal/matcher"
)

// DefaultSheetName is the sheet used when none is configured.
const DefaultSheetName = "Notas Faltantes"

// =============================================================================
// GENERATION OPTIONS
// =============================================================================

// GenerateOptions contains options for report generation.
type GenerateOptions struct {
	// SheetName is the name of the only sheet.
	SheetName string

	// HeaderFill is the background color of the header row.
	HeaderFill string

	// MinColumnWidth and MaxColumnWidth bound the computed column widths.
	MinColumnWidth float64
	MaxColumnWidth float64
}

// DefaultGenerateOptions returns the default generation options.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		SheetName:      DefaultSheetName,
		HeaderFill:     "#E2E8F0",
		MinColumnWidth: 12,
		MaxColumnWidth: 60,
	}
}

// =============================================================================
// MAIN GENERATION FUNCTION
// =============================================================================

// Generate builds the report workbook. The caller owns the returned file and
// must Close it.
func Generate(report *matcher.Report, options GenerateOptions) (*excelize.File, error) {
	if options.SheetName == "" {
		options.SheetName = DefaultSheetName
	}

	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", options.SheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	sheet := options.SheetName

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{options.HeaderFill}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	textStyle, err := f.NewStyle(&excelize.Style{NumFmt: 49})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create text style: %w", err)
	}

	columns := report.Columns()
	rows := report.Rows()
	widths := make([]int, len(columns))

	if err := writeRow(f, sheet, 1, columns, widths); err != nil {
		f.Close()
		return nil, err
	}

	for i, row := range rows {
		if err := writeRow(f, sheet, i+2, row, widths); err != nil {
			f.Close()
			return nil, err
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(columns))
	lastRow := len(rows) + 1

	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to style header: %w", err)
	}
	if lastRow > 1 {
		if err := f.SetCellStyle(sheet, "A2", fmt.Sprintf("%s%d", lastCol, lastRow), textStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to style body: %w", err)
		}
	}

	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, col, col, clampWidth(float64(w)+2, options)); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	return f, nil
}

// writeRow writes values as text cells starting at column A and tracks the
// widest value per column.
func writeRow(f *excelize.File, sheet string, rowNum int, values []string, widths []int) error {
	for i, value := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, rowNum)
		if err != nil {
			return err
		}
		if err := f.SetCellStr(sheet, cell, value); err != nil {
			return fmt.Errorf("failed to write %s: %w", cell, err)
		}
		if n := utf8.RuneCountInString(value); i < len(widths) && n > widths[i] {
			widths[i] = n
		}
	}
	return nil
}

func clampWidth(w float64, options GenerateOptions) float64 {
	if w < options.MinColumnWidth {
		return options.MinColumnWidth
	}
	if options.MaxColumnWidth > 0 && w > options.MaxColumnWidth {
		return options.MaxColumnWidth
	}
	return w
}

// =============================================================================
// OUTPUT
// =============================================================================

// Write generates the report and streams the workbook to w.
func Write(w io.Writer, report *matcher.Report, options GenerateOptions) error {
	f, err := Generate(report, options)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// WriteFile generates the report and saves it at path.
func WriteFile(path string, report *matcher.Report, options GenerateOptions) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}

	if err := Write(file, report, options); err != nil {
		file.Close()
		os.Remove(path)
		return err
	}

	return file.Close()
}
