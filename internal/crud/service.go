package crud

import (
	"errors"
	"iter"
	"log/slog"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/partdb/internal/record"
	"github.com/roach88/partdb/internal/schema"
)

// Collection is the record store the service reads and mutates.
// *store.Store implements it.
type Collection interface {
	Schema() *schema.Schema
	Len() int
	At(i int) record.Record
	All() iter.Seq2[int, record.Record]
	IndexOfKey(key int64) int
	Append(rec record.Record)
	Replace(i int, rec record.Record)
	Remove(i int)
	Persist() error
}

// Service implements insert, search, update and delete over a Collection.
// Every successful mutation is followed by exactly one Persist.
type Service struct {
	coll   Collection
	logger *slog.Logger
	ids    IDGenerator
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger for mutation reports.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithIDGenerator overrides the operation id source (default UUIDv7).
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Service) {
		if g != nil {
			s.ids = g
		}
	}
}

// New creates a service over coll.
func New(coll Collection, opts ...Option) *Service {
	s := &Service{
		coll:   coll,
		logger: slog.Default(),
		ids:    UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schema returns the field layout of the underlying collection.
func (s *Service) Schema() *schema.Schema { return s.coll.Schema() }

// Len returns the number of records.
func (s *Service) Len() int { return s.coll.Len() }

// All yields every record in collection order.
func (s *Service) All() iter.Seq[record.Record] {
	return func(yield func(record.Record) bool) {
		for _, rec := range s.coll.All() {
			if !yield(rec) {
				return
			}
		}
	}
}

// ParseRecord parses raw field texts against the collection schema.
func (s *Service) ParseRecord(fields []string) (record.Record, error) {
	return record.Parse(s.coll.Schema(), fields)
}

// Search returns the records whose field equals value, ignoring case.
//
// field must be one of the schema's searchable fields; anything else fails
// with schema.ErrInvalidFieldName before the collection is read. The
// returned sequence is lazy and may be ranged over more than once. No match
// is an empty sequence, not an error.
//
// The key field is compared as an integer, the same way Get, Update and
// Delete match keys, so "1" finds a record stored as "01". A value that is
// not an integer matches no key.
func (s *Service) Search(field, value string) (iter.Seq[record.Record], error) {
	pos, err := s.coll.Schema().SearchField(field)
	if err != nil {
		return nil, err
	}
	if pos == 0 {
		return s.searchKey(value), nil
	}

	return func(yield func(record.Record) bool) {
		folder := cases.Fold()
		want := folder.String(norm.NFC.String(value))
		for _, rec := range s.coll.All() {
			if folder.String(norm.NFC.String(rec.Field(pos))) != want {
				continue
			}
			if !yield(rec) {
				return
			}
		}
	}, nil
}

func (s *Service) searchKey(value string) iter.Seq[record.Record] {
	return func(yield func(record.Record) bool) {
		key, err := record.ParseKey(strings.TrimSpace(value))
		if err != nil {
			return
		}
		for _, rec := range s.coll.All() {
			if rec.Key() != key {
				continue
			}
			if !yield(rec) {
				return
			}
		}
	}
}

// Get returns the first record with the given key.
func (s *Service) Get(key int64) (record.Record, bool) {
	i := s.coll.IndexOfKey(key)
	if i < 0 {
		return record.Record{}, false
	}
	return s.coll.At(i), true
}

// NextKey returns one more than the largest key present, or 1 when empty.
func (s *Service) NextKey() int64 {
	var max int64
	for _, rec := range s.coll.All() {
		if rec.Key() > max {
			max = rec.Key()
		}
	}
	return max + 1
}

// Insert appends rec and persists.
//
// A key that is already present is rejected with ErrDuplicateKey and
// nothing changes. If the append succeeds but the persist fails, the record
// stays in memory and the error matches store.ErrPersist.
func (s *Service) Insert(rec record.Record) error {
	if rec.Schema() != s.coll.Schema() {
		return ErrSchemaMismatch
	}
	if s.coll.IndexOfKey(rec.Key()) >= 0 {
		return &KeyError{Op: "insert", Key: rec.Key(), Err: ErrDuplicateKey}
	}

	op := s.ids.Generate()
	s.coll.Append(rec)
	s.logger.Info("record inserted", "op", op, "key", rec.Key(), "records", s.coll.Len())

	return s.persist(op)
}

// InsertFields parses fields and inserts the result. Field-count and type
// errors are returned before any record exists.
func (s *Service) InsertFields(fields []string) (record.Record, error) {
	rec, err := s.ParseRecord(fields)
	if err != nil {
		return record.Record{}, err
	}
	if err := s.Insert(rec); err != nil {
		return rec, err
	}
	return rec, nil
}

// Update replaces the first record whose key equals key with rec, wholesale,
// and persists. The caller carries forward any unchanged fields.
//
// Returns false with no mutation and no persist when no record has the key.
// rec must carry the same key (ErrKeyMismatch otherwise).
func (s *Service) Update(key int64, rec record.Record) (bool, error) {
	i := s.coll.IndexOfKey(key)
	if i < 0 {
		return false, nil
	}
	if rec.Schema() != s.coll.Schema() {
		return false, ErrSchemaMismatch
	}
	if rec.Key() != key {
		return false, &KeyError{Op: "update", Key: key, Err: ErrKeyMismatch}
	}

	op := s.ids.Generate()
	s.coll.Replace(i, rec)
	s.logger.Info("record updated", "op", op, "key", key, "position", i)

	return true, s.persist(op)
}

// Delete removes the first record whose key equals key and persists.
// Returns false with no side effect when no record has the key.
func (s *Service) Delete(key int64) (bool, error) {
	i := s.coll.IndexOfKey(key)
	if i < 0 {
		return false, nil
	}

	op := s.ids.Generate()
	s.coll.Remove(i)
	s.logger.Info("record deleted", "op", op, "key", key, "records", s.coll.Len())

	return true, s.persist(op)
}

// Save persists the collection without mutating it, e.g. to retry after a
// failed write-through.
func (s *Service) Save() error {
	return s.persist(s.ids.Generate())
}

func (s *Service) persist(op string) error {
	if err := s.coll.Persist(); err != nil {
		s.logger.Warn("change applied in memory only", "op", op, "error", err)
		return err
	}
	return nil
}

// IsNotApplied reports whether err means the requested change was rejected
// outright, as opposed to applied in memory but not yet persisted.
func IsNotApplied(err error) bool {
	return errors.Is(err, ErrDuplicateKey) ||
		errors.Is(err, ErrKeyMismatch) ||
		errors.Is(err, ErrSchemaMismatch) ||
		errors.Is(err, record.ErrFieldCount) ||
		errors.Is(err, record.ErrTypeValidation) ||
		errors.Is(err, schema.ErrInvalidFieldName)
}
