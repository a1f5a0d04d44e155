package pipeline

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// DateLayout is the layout of dates in the cleaned dataset.
const DateLayout = "2006-01-02"

var ErrInvalidDate = errors.New("invalid date")

// compactDateLength is the length of the only digits-only form accepted, YYYYMMDD.
const compactDateLength = 8

// ParseDate parses a source date in any common layout and drops the time of day.
// Ambiguous numeric dates are read month first. Bare numbers other than YYYYMMDD, such as
// unix timestamps or prices, are rejected.
func ParseDate(value string) (time.Time, error) {
	if IsMissing(value) {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrInvalidDate)
	}

	value = normalizeText(value)
	if isDigits(value) && len(value) != compactDateLength {
		return time.Time{}, fmt.Errorf("%w: %q: bare number", ErrInvalidDate, value)
	}

	parsed, err := dateparse.ParseIn(value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %v", ErrInvalidDate, value, err)
	}

	return time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC), nil
}

func isDigits(value string) bool {
	return strings.IndexFunc(value, func(r rune) bool { return r < '0' || r > '9' }) == -1
}
