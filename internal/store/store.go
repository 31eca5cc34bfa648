package store

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"log/slog"
	"os"

	"github.com/kjk/common/atomicfile"

	"github.com/roach88/partdb/internal/record"
	"github.com/roach88/partdb/internal/schema"
)

// defaultFileMode is used when Persist creates the backing file.
const defaultFileMode fs.FileMode = 0644

// Store holds the whole part collection in memory, in file order, and
// rewrites the backing file on Persist.
//
// Store is not safe for concurrent use, and nothing stops a second process
// from rewriting the same file.
type Store struct {
	path    string
	schema  *schema.Schema
	records []record.Record
	logger  *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for load and persist reports.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New returns an empty store bound to path without touching the file.
func New(path string, s *schema.Schema, opts ...Option) *Store {
	st := &Store{
		path:    path,
		schema:  s,
		records: []record.Record{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(st)
	}
	return st
}

// Load reads the backing file into a new store.
//
// The returned store is never nil. A missing file yields an empty store and
// an error matching ErrFileNotFound. A file that fails to decode yields an
// empty store (never a partial one) and the *DecodeError. Callers treat both
// as reportable, not fatal.
func Load(path string, s *schema.Schema, opts ...Option) (*Store, error) {
	st := New(path, s, opts...)

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			st.logger.Warn("backing file not found, starting empty", "path", path)
			return st, fmt.Errorf("load %s: %w", path, ErrFileNotFound)
		}
		st.logger.Error("cannot open backing file", "path", path, "error", err)
		return st, fmt.Errorf("load %s: %w", path, err)
	}
	defer f.Close()

	records, err := Decode(f, s)
	if err != nil {
		var de *DecodeError
		if errors.As(err, &de) {
			de.Path = path
		}
		st.logger.Error("cannot decode backing file, starting empty", "path", path, "error", err)
		return st, err
	}

	st.records = records
	st.logger.Debug("loaded backing file", "path", path, "records", len(records), "schema", s.Name)
	return st, nil
}

// Persist rewrites the backing file from the in-memory collection. The new
// content is written to a temporary file and renamed over the old one, so a
// failed write leaves the previous file intact. The collection is never
// rolled back on failure.
func (s *Store) Persist() error {
	if err := s.writeFile(); err != nil {
		s.logger.Error("persist failed, changes are in memory only", "path", s.path, "error", err)
		return &PersistError{Path: s.path, Err: err}
	}
	s.logger.Debug("persisted", "path", s.path, "records", len(s.records))
	return nil
}

func (s *Store) writeFile() error {
	// The temp file is created 0600; the replacement gets the old file's mode.
	mode := defaultFileMode
	if fi, err := os.Stat(s.path); err == nil {
		mode = fi.Mode().Perm()
	}

	w, err := atomicfile.New(s.path)
	if err != nil {
		return err
	}
	defer w.RemoveIfNotClosed()

	if err := Encode(w, s.schema, s.records); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	if err := os.Chmod(s.path, mode); err != nil {
		s.logger.Warn("cannot restore file mode", "path", s.path, "mode", mode, "error", err)
	}
	return nil
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Schema returns the field layout of the store.
func (s *Store) Schema() *schema.Schema { return s.schema }

// Len returns the number of records.
func (s *Store) Len() int { return len(s.records) }

// At returns the record at position i.
func (s *Store) At(i int) record.Record { return s.records[i] }

// All yields position and record in collection order. The sequence can be
// ranged over repeatedly.
func (s *Store) All() iter.Seq2[int, record.Record] {
	return func(yield func(int, record.Record) bool) {
		for i, rec := range s.records {
			if !yield(i, rec) {
				return
			}
		}
	}
}

// Records returns a copy of the collection.
func (s *Store) Records() []record.Record {
	out := make([]record.Record, len(s.records))
	copy(out, s.records)
	return out
}

// IndexOfKey returns the position of the first record with the given key,
// or -1.
func (s *Store) IndexOfKey(key int64) int {
	for i, rec := range s.records {
		if rec.Key() == key {
			return i
		}
	}
	return -1
}

// Append adds rec at the end of the collection.
func (s *Store) Append(rec record.Record) {
	s.records = append(s.records, rec)
}

// Replace swaps the record at position i.
func (s *Store) Replace(i int, rec record.Record) {
	s.records[i] = rec
}

// Remove deletes the record at position i, keeping the order of the rest.
func (s *Store) Remove(i int) {
	s.records = append(s.records[:i], s.records[i+1:]...)
}
