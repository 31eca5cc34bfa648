// Package record implements the typed part record.
//
// Every field is stored as text in the backing file. Parse is the only way
// into a Record and runs at the file/input boundary: it rejects tuples of
// the wrong arity and numeric fields that do not parse, so code holding a
// Record never re-validates. Integer fields parse as int64, decimal fields
// as github.com/cockroachdb/apd/v3 decimals (exact, no float rounding).
//
// The raw text of each field is retained and is what gets serialized.
package record
