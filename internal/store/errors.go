package store

import (
	"errors"
	"fmt"
)

var (
	// ErrFileNotFound is reported by Load when the backing file is absent.
	// The returned store is empty and usable.
	ErrFileNotFound = errors.New("backing file not found")

	// ErrDecode is matched by *DecodeError.
	ErrDecode = errors.New("decode failed")

	// ErrPersist is matched by *PersistError.
	ErrPersist = errors.New("persist failed")
)

// DecodeError reports the first line of a backing file that could not be
// turned into a record.
type DecodeError struct {
	Path string
	Line int
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("decode %s line %d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("decode line %d: %v", e.Line, e.Err)
}

func (e *DecodeError) Unwrap() error        { return e.Err }
func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

// PersistError reports a failed rewrite of the backing file. The in-memory
// collection still holds the mutation that triggered the write.
type PersistError struct {
	Path string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Path, e.Err)
}

func (e *PersistError) Unwrap() error        { return e.Err }
func (e *PersistError) Is(target error) bool { return target == ErrPersist }
