package pipeline

import (
	"errors"
	"fmt"
	"time"
)

// Record is one row of the cleaned dataset.
type Record struct {
	Commodity string
	Date      time.Time
	Unit      string
	Minimum   float64
	Maximum   float64
	Average   float64
}

// Row renders the record in canonical column order.
func (r Record) Row() []string {
	return []string{r.Commodity, r.Date.Format(DateLayout), r.Unit, FormatPrice(r.Minimum), FormatPrice(r.Maximum), FormatPrice(r.Average)}
}

type recordKey struct {
	commodity string
	date      string
	unit      string
	minimum   float64
	maximum   float64
	average   float64
}

func (r Record) key() recordKey {
	return recordKey{commodity: r.Commodity, date: r.Date.Format(DateLayout), unit: r.Unit, minimum: r.Minimum, maximum: r.Maximum, average: r.Average}
}

// DropReason names the filter that excluded a row.
type DropReason string

const (
	DropDuplicate    DropReason = "duplicate"
	DropInvalidDate  DropReason = "invalid_date"
	DropInvalidPrice DropReason = "invalid_price"
	DropUnknownUnit  DropReason = "unknown_unit"
	DropIncomplete   DropReason = "incomplete"
)

// Stats counts what happened to the rows of a clean run.
type Stats struct {
	Input    int
	Retained int
	Dropped  map[DropReason]int
	// PassedThrough counts unit labels kept unchanged because the table has no entry for them.
	PassedThrough map[string]int
}

// DroppedTotal is the number of rows excluded for any reason.
func (s Stats) DroppedTotal() int {
	total := 0
	for _, n := range s.Dropped {
		total += n
	}

	return total
}

type DropHook func(row RawRow, reason DropReason, err error)

type CleanerOption func(c *Cleaner)

// WithDropHook registers a callback invoked for every filtered row.
func WithDropHook(hook DropHook) CleanerOption {
	return func(c *Cleaner) {
		c.onDrop = hook
	}
}

// Cleaner turns merged raw rows into typed records.
type Cleaner struct {
	units  *UnitNormalizer
	onDrop DropHook
}

func NewCleaner(units *UnitNormalizer, opts ...CleanerOption) *Cleaner {
	c := &Cleaner{units: units, onDrop: func(RawRow, DropReason, error) {}}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Clean deduplicates the rows, parses dates and prices, normalizes units and drops
// incomplete rows. Row level failures are counted in Stats; only an unknown unit under
// UnknownUnitFail aborts. Surviving records keep their input order.
func (c *Cleaner) Clean(rows []RawRow) ([]Record, Stats, error) {
	stats := Stats{
		Input:         len(rows),
		Dropped:       make(map[DropReason]int),
		PassedThrough: make(map[string]int),
	}

	unique, duplicates := Deduplicate(rows)
	if duplicates > 0 {
		stats.Dropped[DropDuplicate] += duplicates
	}

	records := make([]Record, 0, len(unique))
	seen := make(map[recordKey]struct{}, len(unique))

	for _, row := range unique {
		record, mapped, reason, err := c.cleanRow(row)
		if err != nil {
			if reason == "" {
				return nil, stats, err
			}

			stats.Dropped[reason]++
			c.onDrop(row, reason, err)
			continue
		}

		// units and prices are normalized now, so rows that differed only in spelling collapse here
		key := record.key()
		if _, ok := seen[key]; ok {
			stats.Dropped[DropDuplicate]++
			c.onDrop(row, DropDuplicate, nil)
			continue
		}
		seen[key] = struct{}{}

		if !mapped {
			stats.PassedThrough[record.Unit]++
		}
		records = append(records, record)
	}

	stats.Retained = len(records)
	return records, stats, nil
}

// cleanRow reports whether the unit came from the table. Filtered rows carry a drop
// reason with the error; an empty reason marks an error that must abort the run.
func (c *Cleaner) cleanRow(row RawRow) (Record, bool, DropReason, error) {
	date, err := ParseDate(row[ColumnDate])
	if err != nil {
		return Record{}, false, DropInvalidDate, err
	}

	var prices [3]float64
	for i, column := range []int{ColumnMinimum, ColumnMaximum, ColumnAverage} {
		if IsMissing(row[column]) {
			return Record{}, false, DropIncomplete, fmt.Errorf("%s: %w", CanonicalHeader[column], ErrMissingValue)
		}

		prices[i], err = ParsePrice(row[column])
		if err != nil {
			return Record{}, false, DropInvalidPrice, fmt.Errorf("%s: %w", CanonicalHeader[column], err)
		}
	}

	unit, mapped, err := c.units.Normalize(row[ColumnUnit])
	switch {
	case errors.Is(err, ErrMissingValue):
		return Record{}, false, DropIncomplete, fmt.Errorf("%s: %w", CanonicalHeader[ColumnUnit], err)
	case errors.Is(err, ErrUnknownUnit) && c.units.Policy() == UnknownUnitFail:
		return Record{}, false, "", err
	case err != nil:
		return Record{}, false, DropUnknownUnit, err
	}

	if IsMissing(row[ColumnCommodity]) {
		return Record{}, false, DropIncomplete, fmt.Errorf("%s: %w", CanonicalHeader[ColumnCommodity], ErrMissingValue)
	}

	return Record{
		Commodity: normalizeText(row[ColumnCommodity]),
		Date:      date,
		Unit:      unit,
		Minimum:   prices[0],
		Maximum:   prices[1],
		Average:   prices[2],
	}, mapped, "", nil
}
