// Package normalize canonicalizes the identifier fields used to match fiscal
// documents across exports.
//
// Every function here is applied identically to both sides of a comparison.
// Exports disagree on punctuation ("12.345.678/0001-90" vs "12345678000190"),
// on zero padding ("000123" vs "123") and on cell types, so the only thing
// that survives is the digit sequence.
package normalize

import "strings"

// TaxIDLength is the canonical width of a CNPJ.
const TaxIDLength = 14

// Digits strips every character that is not an ASCII digit.
func Digits(value string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, value)
}

// TaxID returns the digits of value left-padded with zeros to TaxIDLength.
// An input without digits yields "". Values already longer than
// TaxIDLength are returned as digits only, never truncated.
func TaxID(value string) string {
	digits := Digits(value)
	if digits == "" {
		return ""
	}
	if len(digits) >= TaxIDLength {
		return digits
	}
	return strings.Repeat("0", TaxIDLength-len(digits)) + digits
}

// Number returns the digits of value with leading zeros removed.
// "00045" -> "45", "000" -> "".
func Number(value string) string {
	return strings.TrimLeft(Digits(value), "0")
}

// ParseNumber is Number with a missing sentinel: ok is false when value holds
// no digit at all and therefore cannot be read as a document number.
func ParseNumber(value string) (string, bool) {
	digits := Digits(value)
	if digits == "" {
		return "", false
	}
	return strings.TrimLeft(digits, "0"), true
}

// Key returns the digits of a document key, or ok=false when it has none.
func Key(value string) (string, bool) {
	digits := Digits(value)
	return digits, digits != ""
}
