// =============================================================================
// NF-e Comparator - CSV Parser Module
// =============================================================================
//
// This module loads the delimited exports produced by the SEFAZ portal and by
// the client's ERP. It handles:
//   - Different delimiters (semicolon by default, comma, pipe, tab)
//   - Different encodings (UTF-8, ISO-8859-1, Windows-1252, ...)
//   - A leading byte-order mark, whatever the configured encoding
//   - Header names padded with whitespace, blank or repeated
//   - Ragged rows and stray quotes
//
// Every cell is kept as a string. Nothing is converted here: normalization
// belongs to the matcher so that both sides go through the same code.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/ginjaninja78/nfe-compare/internal/config"
	"github.com/ginjaninja78/nfe-compare/internal/types"
)

// ErrEmptyFile is returned when a file has no header row.
var ErrEmptyFile = errors.New("file is empty")

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// ParseFile opens filePath and parses it with the given settings.
func ParseFile(filePath string, settings config.CSVSettings) (*types.Dataset, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	data, err := Parse(file, settings)
	if err != nil {
		return nil, err
	}
	data.SourceFile = filePath
	return data, nil
}

// Parse reads a delimited file and returns the parsed dataset.
//
// PARSING PROCESS:
//   1. Decode the byte stream to UTF-8 (BOM stripped)
//   2. Configure the CSV reader with the configured delimiter
//   3. Read and clean the header row
//   4. Convert each non-blank data row to a Record
func Parse(r io.Reader, settings config.CSVSettings) (*types.Dataset, error) {
	decoded, err := decodeReader(bufio.NewReader(r), settings.Encoding)
	if err != nil {
		return nil, err
	}

	csvReader := csv.NewReader(decoded)
	if err := configureReader(csvReader, settings); err != nil {
		return nil, err
	}

	allRows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	if len(allRows) == 0 {
		return nil, ErrEmptyFile
	}

	headers := CleanHeaders(allRows[0])
	if len(headers) == 0 {
		return nil, ErrEmptyFile
	}

	return &types.Dataset{
		Headers: headers,
		Records: BuildRecords(allRows[1:], headers),
	}, nil
}

// decodeReader wraps r so that it yields UTF-8 regardless of the source
// encoding. A byte-order mark overrides the configured encoding and is
// removed, which covers "UTF-8 with BOM" exports from Excel.
func decodeReader(r io.Reader, encodingName string) (io.Reader, error) {
	enc, err := lookupEncoding(encodingName)
	if err != nil {
		return nil, err
	}
	return transform.NewReader(r, unicode.BOMOverride(enc.NewDecoder())), nil
}

// lookupEncoding resolves an encoding name through the IANA registry.
// An empty name means UTF-8.
func lookupEncoding(name string) (encoding.Encoding, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return unicode.UTF8, nil
	}

	switch strings.ToLower(name) {
	case "utf8", "utf-8", "utf-8-sig":
		return unicode.UTF8, nil
	case "latin1", "latin-1":
		name = "ISO-8859-1"
	case "cp1252":
		name = "windows-1252"
	}

	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
	return enc, nil
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings config.CSVSettings) error {
	comma, err := Delimiter(settings.Delimiter)
	if err != nil {
		return err
	}
	reader.Comma = comma

	// Exports are not always rectangular.
	reader.FieldsPerRecord = -1

	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	return nil
}

// Delimiter maps the configured delimiter to a rune. Names are matched
// case-insensitively; anything else must be a single character.
// Semicolon is the default, as produced by spreadsheet exports in pt-BR.
func Delimiter(value string) (rune, error) {
	switch strings.ToLower(value) {
	case "\\t", "\t", "tab":
		return '\t', nil
	case "|", "pipe":
		return '|', nil
	case ",", "comma":
		return ',', nil
	case "", ";", "semicolon":
		return ';', nil
	}

	if utf8.RuneCountInString(value) != 1 {
		return 0, fmt.Errorf("unknown delimiter %q (want a single character or tab, pipe, comma, semicolon)", value)
	}
	r, _ := utf8.DecodeRuneInString(value)
	if r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		return 0, fmt.Errorf("invalid delimiter %q", value)
	}
	return r, nil
}

// CleanHeaders trims header names and makes them usable as map keys.
//
// CLEANING OPERATIONS:
//   - Trim whitespace
//   - Blank headers become Column_N (1-based)
//   - Repeated headers get a ".1", ".2", ... suffix, skipping any suffixed
//     name that is already taken or appears elsewhere in the row
//
// A header row made only of blank cells yields nil.
func CleanHeaders(headers []string) []string {
	if isRowEmpty(headers) {
		return nil
	}

	names := make([]string, len(headers))
	present := make(map[string]bool, len(headers))
	for i, header := range headers {
		header = strings.TrimSpace(header)
		if header == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}
		names[i] = header
		present[header] = true
	}

	cleaned := make([]string, len(names))
	used := make(map[string]bool, len(names))
	suffix := make(map[string]int)

	for i, name := range names {
		if !used[name] {
			used[name] = true
			cleaned[i] = name
			continue
		}

		candidate := name
		for n := suffix[name] + 1; ; n++ {
			candidate = fmt.Sprintf("%s.%d", name, n)
			if !used[candidate] && !present[candidate] {
				suffix[name] = n
				break
			}
		}
		used[candidate] = true
		cleaned[i] = candidate
	}

	return cleaned
}

// BuildRecords converts raw rows to records keyed by header.
// Blank rows are dropped; missing trailing cells read as "".
func BuildRecords(rows [][]string, headers []string) []types.Record {
	records := make([]types.Record, 0, len(rows))

	for _, row := range rows {
		if isRowEmpty(row) {
			continue
		}

		record := make(types.Record, len(headers))
		for colIndex, header := range headers {
			if colIndex < len(row) {
				record[header] = strings.TrimSpace(row[colIndex])
			} else {
				record[header] = ""
			}
		}

		records = append(records, record)
	}

	return records
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ReadHeaders returns only the cleaned header row of a file.
// Used to list the columns available for mapping without loading the data.
func ReadHeaders(filePath string, settings config.CSVSettings) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	decoded, err := decodeReader(bufio.NewReader(file), settings.Encoding)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(decoded)
	if err := configureReader(reader, settings); err != nil {
		return nil, err
	}

	row, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}

	headers := CleanHeaders(row)
	if len(headers) == 0 {
		return nil, ErrEmptyFile
	}
	return headers, nil
}
