package pipeline

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrUnknownUnit   = errors.New("unknown unit")
	ErrMissingValue  = errors.New("missing value")
	ErrUnknownPolicy = errors.New("unknown unit policy")
)

// UnknownUnitPolicy decides what happens to a unit that has no entry in the table.
type UnknownUnitPolicy string

const (
	// UnknownUnitKeep passes the unit through unchanged.
	UnknownUnitKeep UnknownUnitPolicy = "keep"
	// UnknownUnitDrop filters the row out.
	UnknownUnitDrop UnknownUnitPolicy = "drop"
	// UnknownUnitFail aborts the run.
	UnknownUnitFail UnknownUnitPolicy = "fail"
)

// ParseUnknownUnitPolicy validates a policy name. An empty name means keep.
func ParseUnknownUnitPolicy(name string) (UnknownUnitPolicy, error) {
	switch policy := UnknownUnitPolicy(strings.ToLower(strings.TrimSpace(name))); policy {
	case "":
		return UnknownUnitKeep, nil
	case UnknownUnitKeep, UnknownUnitDrop, UnknownUnitFail:
		return policy, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
	}
}

// DefaultUnits maps raw unit spellings found in market exports to the normalized vocabulary.
var DefaultUnits = map[string]string{
	"Kg":        "Kg",
	"KG":        "Kg",
	"1 Kg":      "Kg",
	"1 Pc":      "Per piece",
	"Each":      "Per piece",
	"Piece":     "Per piece",
	"Per Piece": "Per piece",
	"Per dozen": "Per dozen",
	"Per Dozen": "Per dozen",
	"Dozen":     "Per dozen",

	// spellings published on the market's daily price page
	"के.जी.":      "Kg",
	"केजी":        "Kg",
	"किलो":        "Kg",
	"प्रति गोटा":  "Per piece",
	"गोटा":        "Per piece",
	"प्रति दर्जन": "Per dozen",
	"दर्जन":       "Per dozen",
}

// UnitNormalizer maps raw unit labels to the normalized vocabulary.
type UnitNormalizer struct {
	exact  map[string]string
	folded map[string]string
	policy UnknownUnitPolicy
}

// NewUnitNormalizer builds a normalizer from DefaultUnits overlaid with extra entries.
// Every target label also maps to itself.
func NewUnitNormalizer(extra map[string]string, policy UnknownUnitPolicy) *UnitNormalizer {
	that := &UnitNormalizer{
		exact:  make(map[string]string, len(DefaultUnits)+len(extra)),
		folded: make(map[string]string, len(DefaultUnits)+len(extra)),
		policy: policy,
	}

	for raw, unit := range DefaultUnits {
		that.add(raw, unit)
	}
	for raw, unit := range extra {
		that.add(raw, unit)
	}
	for _, unit := range that.Vocabulary() {
		if _, ok := that.exact[unit]; !ok {
			that.add(unit, unit)
		}
	}

	return that
}

func (that *UnitNormalizer) add(raw string, unit string) {
	raw = normalizeText(raw)
	unit = normalizeText(unit)
	that.exact[raw] = unit
	that.folded[strings.ToLower(raw)] = unit
}

// Policy returns the policy applied to unmapped units.
func (that *UnitNormalizer) Policy() UnknownUnitPolicy {
	return that.policy
}

// Vocabulary returns the sorted set of normalized unit labels.
func (that *UnitNormalizer) Vocabulary() []string {
	set := make(map[string]struct{}, len(that.exact))
	for _, unit := range that.exact {
		set[unit] = struct{}{}
	}

	units := make([]string, 0, len(set))
	for unit := range set {
		units = append(units, unit)
	}
	sort.Strings(units)

	return units
}

// Normalize returns the vocabulary label for a raw unit. The second value reports whether
// the unit was found in the table; with UnknownUnitKeep an unmapped unit comes back as is.
func (that *UnitNormalizer) Normalize(raw string) (string, bool, error) {
	if IsMissing(raw) {
		return "", false, ErrMissingValue
	}

	text := normalizeText(raw)
	if unit, ok := that.exact[text]; ok {
		return unit, true, nil
	}
	if unit, ok := that.folded[strings.ToLower(text)]; ok {
		return unit, true, nil
	}

	if that.policy == UnknownUnitKeep || that.policy == "" {
		return text, false, nil
	}

	return "", false, fmt.Errorf("%w: %q", ErrUnknownUnit, raw)
}
