package dataset

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"kalimati/internal/pipeline"
)

var (
	ErrSourceNotFound = errors.New("source not found")
	ErrInvalidDataset = errors.New("invalid cleaned dataset")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadSource reads every row of a raw comma separated export. Rows may have any width;
// the width is checked when the source is reconciled.
func ReadSource(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return nil, fmt.Errorf("open source %s: %w", path, err)
	}
	defer file.Close()

	rows, err := DecodeSource(file)
	if err != nil {
		return nil, fmt.Errorf("read source %s: %w", path, err)
	}

	return rows, nil
}

// DecodeSource reads raw CSV rows, skipping a leading UTF-8 byte order mark. A bare quote
// inside an unquoted field is kept as text.
func DecodeSource(r io.Reader) ([][]string, error) {
	buffered := bufio.NewReader(r)
	if prefix, err := buffered.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		_, _ = buffered.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(buffered)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	return rows, nil
}

// ReadCleaned loads a dataset written by WriteCleaned. Unlike raw sources it is strict:
// any row that does not parse is an error.
func ReadCleaned(path string) ([]pipeline.Record, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return nil, fmt.Errorf("open dataset %s: %w", path, err)
	}
	defer file.Close()

	records, err := DecodeCleaned(file)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}

	return records, nil
}

// DecodeCleaned parses the canonical header followed by typed rows.
func DecodeCleaned(r io.Reader) ([]pipeline.Record, error) {
	rows, err := DecodeSource(r)
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: missing header", ErrInvalidDataset)
	}

	if strings.Join(rows[0], ",") != strings.Join(pipeline.CanonicalHeader, ",") {
		return nil, fmt.Errorf("%w: unexpected header %v", ErrInvalidDataset, rows[0])
	}

	records := make([]pipeline.Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		record, err := decodeRecord(row)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidDataset, i+2, err)
		}
		records = append(records, record)
	}

	return records, nil
}

func decodeRecord(row []string) (pipeline.Record, error) {
	if len(row) != pipeline.ColumnCount {
		return pipeline.Record{}, fmt.Errorf("%d columns, %d expected", len(row), pipeline.ColumnCount)
	}

	date, err := time.Parse(pipeline.DateLayout, row[pipeline.ColumnDate])
	if err != nil {
		return pipeline.Record{}, fmt.Errorf("parse date: %w", err)
	}

	var prices [3]float64
	for i, column := range []int{pipeline.ColumnMinimum, pipeline.ColumnMaximum, pipeline.ColumnAverage} {
		if prices[i], err = pipeline.ParsePrice(row[column]); err != nil {
			return pipeline.Record{}, err
		}
	}

	return pipeline.Record{
		Commodity: row[pipeline.ColumnCommodity],
		Date:      date,
		Unit:      row[pipeline.ColumnUnit],
		Minimum:   prices[0],
		Maximum:   prices[1],
		Average:   prices[2],
	}, nil
}
