package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

// Column positions of the canonical schema.
const (
	ColumnCommodity = iota
	ColumnDate
	ColumnUnit
	ColumnMinimum
	ColumnMaximum
	ColumnAverage
	ColumnCount
)

// CanonicalHeader is the six-column schema every source is reconciled to.
var CanonicalHeader = []string{"Commodity", "Date", "Unit", "Minimum", "Maximum", "Average"}

var ErrSchemaMismatch = errors.New("schema mismatch")

// RawRow is a source row in canonical column order, not parsed yet.
type RawRow [ColumnCount]string

// SourceSpec describes how a raw export maps onto the canonical schema.
//
// With HasHeader the first row names the columns and DropColumns are matched by name.
// Without it the rows are positional: DropColumns lead the row (e.g. a serial number)
// and the canonical header is assigned to the rest. ReplaceHeader discards a first row
// that carries a header which must not be trusted.
type SourceSpec struct {
	Path          string
	HasHeader     bool
	ReplaceHeader bool
	DropColumns   []string
}

// Reconcile maps the rows of a single source onto the canonical schema, preserving order.
func Reconcile(spec SourceSpec, rows [][]string) ([]RawRow, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	if spec.HasHeader {
		return reconcileByHeader(spec, rows[0], rows[1:])
	}

	if spec.ReplaceHeader {
		rows = rows[1:]
	}

	return reconcileByPosition(spec, rows)
}

func reconcileByHeader(spec SourceSpec, header []string, rows [][]string) ([]RawRow, error) {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		positions[headerKey(name)] = i
	}

	dropped := 0
	for _, name := range spec.DropColumns {
		if _, ok := positions[headerKey(name)]; ok {
			dropped++
		}
	}

	if len(header)-dropped != ColumnCount {
		return nil, fmt.Errorf("%w: %s: header has %d columns, %d expected after dropping %v", ErrSchemaMismatch, spec.Path, len(header), ColumnCount+dropped, spec.DropColumns)
	}

	var mapping [ColumnCount]int
	for i, name := range CanonicalHeader {
		pos, ok := positions[headerKey(name)]
		if !ok {
			return nil, fmt.Errorf("%w: %s: column %q not found in header %v", ErrSchemaMismatch, spec.Path, name, header)
		}
		mapping[i] = pos
	}

	result := make([]RawRow, 0, len(rows))
	for i, row := range rows {
		if len(row) != len(header) {
			// line numbers are 1-based and the header takes the first line
			return nil, fmt.Errorf("%w: %s: line %d has %d columns, header has %d", ErrSchemaMismatch, spec.Path, i+2, len(row), len(header))
		}

		var raw RawRow
		for column, pos := range mapping {
			raw[column] = row[pos]
		}
		result = append(result, raw)
	}

	return result, nil
}

func reconcileByPosition(spec SourceSpec, rows [][]string) ([]RawRow, error) {
	width := ColumnCount + len(spec.DropColumns)
	offset := len(spec.DropColumns)

	firstLine := 1
	if spec.ReplaceHeader {
		firstLine = 2
	}

	result := make([]RawRow, 0, len(rows))
	for i, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("%w: %s: line %d has %d columns, %d expected", ErrSchemaMismatch, spec.Path, i+firstLine, len(row), width)
		}

		var raw RawRow
		copy(raw[:], row[offset:])
		result = append(result, raw)
	}

	return result, nil
}

func headerKey(name string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
}
