package pipeline

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// missingMarkers are the spellings exports use for an absent value.
var missingMarkers = map[string]struct{}{
	"":      {},
	"na":    {},
	"n/a":   {},
	"#n/a":  {},
	"<na>":  {},
	"nan":   {},
	"-nan":  {},
	"null":  {},
	"none":  {},
	"nil":   {},
	"-":     {},
	"--":    {},
	"#na":   {},
	"#null": {},
}

// IsMissing reports whether the value stands for an absent field.
func IsMissing(value string) bool {
	_, ok := missingMarkers[strings.ToLower(strings.TrimSpace(value))]
	return ok
}

// normalizeText composes the string to NFC and collapses runs of whitespace.
func normalizeText(value string) string {
	return strings.Join(strings.Fields(norm.NFC.String(value)), " ")
}
