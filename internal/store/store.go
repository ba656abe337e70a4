// Package store implements the JSON-file record store. Each Store is bound
// to one file holding a pretty-printed JSON array of records; every Save
// rewrites the whole file. There is no locking: concurrent writers on the
// same store race with last-writer-wins semantics.
package store

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"

	"github.com/rs/zerolog"

	"github.com/erazemk/zaloga/internal/apperr"
)

// indent matches the original on-disk format (4 spaces).
const indent = "    "

// Store persists a single named collection of records.
type Store[T any] struct {
	path string
	log  zerolog.Logger
}

// New creates a store backed by the JSON file at path.
func New[T any](path string, log zerolog.Logger) *Store[T] {
	return &Store[T]{path: path, log: log}
}

// Path returns the backing file path.
func (s *Store[T]) Path() string {
	return s.path
}

// Load reads all records. A missing file is created containing an empty
// array. A file that does not parse as a JSON array yields a warning and an
// empty slice; the file itself is left untouched until the next Save.
func (s *Store[T]) Load() ([]T, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := os.WriteFile(s.path, []byte("[]"), 0o644); err != nil {
			return nil, apperr.Storage(err, "creating store file %s", s.path)
		}
		return []T{}, nil
	}
	if err != nil {
		return nil, apperr.Storage(err, "reading store file %s", s.path)
	}

	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		s.log.Warn().Str("path", s.path).Err(err).
			Msg("store file is not a JSON array, treating as empty")
		return []T{}, nil
	}
	if records == nil {
		// The file contained "null".
		records = []T{}
	}
	return records, nil
}

// Save overwrites the file with the given records. This is a full rewrite,
// not an append: callers must read-modify-write the whole collection.
func (s *Store[T]) Save(records []T) error {
	if records == nil {
		records = []T{}
	}
	data, err := json.MarshalIndent(records, "", indent)
	if err != nil {
		return apperr.Storage(err, "encoding store %s", s.path)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return apperr.Storage(err, "writing store file %s", s.path)
	}
	return nil
}
