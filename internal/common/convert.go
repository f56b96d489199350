package common

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ScrapeDateLayout is the date format used on fund detail pages (DD/MM/YYYY).
const ScrapeDateLayout = "02/01/2006"

// ErrConversion indicates that scraped text could not be converted to a typed value.
var ErrConversion = fmt.Errorf("conversion failed")

// ToDecimal converts scraped Brazilian-locale text to a decimal.
// Strips the currency marker and percent sign, and converts the comma
// decimal separator to a dot before parsing.
func ToDecimal(text string) (decimal.Decimal, error) {
	normalized := strings.TrimSpace(text)
	normalized = strings.ReplaceAll(normalized, "R$", "")
	normalized = strings.ReplaceAll(normalized, "%", "")
	normalized = strings.ReplaceAll(normalized, ",", ".")
	normalized = strings.TrimSpace(normalized)

	value, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a decimal", ErrConversion, text)
	}

	return value, nil
}

// ToDecimalOrNil is the soft variant of ToDecimal: any conversion failure
// degrades to nil instead of propagating, so one garbled optional field
// does not abort an entire record.
func ToDecimalOrNil(text string) *decimal.Decimal {
	value, err := ToDecimal(text)
	if err != nil {
		return nil
	}
	return &value
}

// ToDateOrNil parses a DD/MM/YYYY date, returning nil on any failure
// (malformed text, impossible calendar date). Never returns an error.
func ToDateOrNil(text string) *time.Time {
	parsed, err := time.Parse(ScrapeDateLayout, strings.TrimSpace(text))
	if err != nil {
		return nil
	}
	return &parsed
}
