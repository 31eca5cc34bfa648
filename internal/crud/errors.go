package crud

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateKey is returned by Insert when the key is already present.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrKeyMismatch is returned by Update when the replacement record
	// carries a different key than the one being updated.
	ErrKeyMismatch = errors.New("replacement key does not match")

	// ErrSchemaMismatch is returned when a record was parsed against a
	// different schema than the store's.
	ErrSchemaMismatch = errors.New("record schema does not match store")
)

// KeyError carries the key involved in a rejected mutation.
type KeyError struct {
	Op  string // "insert" | "update"
	Key int64
	Err error // ErrDuplicateKey or ErrKeyMismatch
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("%s: key %d: %v", e.Op, e.Key, e.Err)
}

func (e *KeyError) Unwrap() error { return e.Err }
