package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"kalimati/internal/pipeline"
)

// WriteCleaned writes the records with the canonical header, replacing the file. The
// dataset is written next to the target and renamed into place, so a failed write never
// leaves a truncated file at path.
func WriteCleaned(path string, records []pipeline.Record) (err error) {
	file, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create dataset %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			_ = file.Close()
			_ = os.Remove(file.Name())
		}
	}()

	if err = EncodeCleaned(file, records); err != nil {
		return fmt.Errorf("write dataset %s: %w", path, err)
	}

	if err = file.Chmod(0o644); err != nil {
		return fmt.Errorf("chmod dataset %s: %w", path, err)
	}

	if err = file.Close(); err != nil {
		return fmt.Errorf("close dataset %s: %w", path, err)
	}

	if err = os.Rename(file.Name(), path); err != nil {
		return fmt.Errorf("replace dataset %s: %w", path, err)
	}

	return nil
}

// EncodeCleaned renders the header and one line per record.
func EncodeCleaned(w io.Writer, records []pipeline.Record) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(pipeline.CanonicalHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, record := range records {
		if err := writer.Write(record.Row()); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// AppendRaw appends headerless rows to a raw source file, creating it when needed.
func AppendRaw(path string, rows [][]string) (err error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open raw source %s: %w", path, err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close raw source %s: %w", path, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	if err = writer.WriteAll(rows); err != nil {
		return fmt.Errorf("append raw source %s: %w", path, err)
	}

	return nil
}
