package dataset

import "kalimati/internal/pipeline"

// FileStore exposes the package functions as methods so usecases can depend on small interfaces.
type FileStore struct{}

func NewFileStore() *FileStore {
	return &FileStore{}
}

func (*FileStore) ReadSource(path string) ([][]string, error) {
	return ReadSource(path)
}

func (*FileStore) ReadCleaned(path string) ([]pipeline.Record, error) {
	return ReadCleaned(path)
}

func (*FileStore) WriteCleaned(path string, records []pipeline.Record) error {
	return WriteCleaned(path, records)
}

func (*FileStore) AppendRaw(path string, rows [][]string) error {
	return AppendRaw(path, rows)
}
