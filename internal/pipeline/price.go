package pipeline

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidPrice = errors.New("invalid price")

// CurrencySymbols are stripped from price fields before parsing. Longer spellings come
// first so that "Rs." is not left with a dangling dot.
var CurrencySymbols = []string{"NRs.", "NRs", "Rs.", "Rs", "रू.", "रू", "$"}

// ThousandsSeparator is removed from price fields before parsing.
const ThousandsSeparator = ","

// ParsePrice turns a raw price field such as "Rs 1,250.50" into a number.
// Devanagari digits are accepted. Empty, negative and non-finite values are rejected.
func ParsePrice(value string) (float64, error) {
	cleaned := cleanPrice(value)
	if cleaned == "" {
		return 0, fmt.Errorf("%w: %q has no digits", ErrInvalidPrice, value)
	}

	price, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidPrice, value, err)
	}

	if price.IsNegative() {
		return 0, fmt.Errorf("%w: %q is negative", ErrInvalidPrice, value)
	}

	result := price.InexactFloat64()
	if math.IsInf(result, 0) || math.IsNaN(result) {
		return 0, fmt.Errorf("%w: %q is out of range", ErrInvalidPrice, value)
	}

	return result, nil
}

// FormatPrice renders a price as a plain decimal with at least one fractional digit.
func FormatPrice(value float64) string {
	price := decimal.NewFromFloat(value)
	if price.Exponent() >= 0 {
		return price.StringFixed(1)
	}

	return price.String()
}

func cleanPrice(value string) string {
	cleaned := normalizeText(value)
	for _, symbol := range CurrencySymbols {
		cleaned = strings.ReplaceAll(cleaned, symbol, "")
	}
	cleaned = strings.ReplaceAll(cleaned, ThousandsSeparator, "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")

	return strings.Map(asciiDigit, cleaned)
}

// asciiDigit maps Devanagari digits to their ASCII form.
func asciiDigit(r rune) rune {
	if r >= '०' && r <= '९' {
		return '0' + (r - '०')
	}

	return r
}
