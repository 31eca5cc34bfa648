package store

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/roach88/partdb/internal/record"
	"github.com/roach88/partdb/internal/schema"
)

// maxLineBytes bounds a single encoded record.
const maxLineBytes = 1 << 20

// Decode reads one record per line, splitting on the schema delimiter.
// There is no header row and no quoting. Blank lines are skipped and a
// trailing "\r" is dropped so files edited on Windows still load.
//
// Decoding is all-or-nothing: the first bad line aborts with a *DecodeError
// and no records are returned.
func Decode(r io.Reader, s *schema.Schema) ([]record.Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	delim := string(s.Delimiter)
	records := []record.Record{}
	line := 0

	for scanner.Scan() {
		line++
		text := strings.TrimSuffix(scanner.Text(), "\r")
		if text == "" {
			continue
		}

		rec, err := record.Parse(s, strings.Split(text, delim))
		if err != nil {
			return nil, &DecodeError{Line: line, Err: err}
		}
		records = append(records, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, &DecodeError{Line: line + 1, Err: err}
	}

	return records, nil
}

// Encode writes records in order, one "\n"-terminated line each. Values are
// written verbatim; a value containing the delimiter will not survive a
// reload with the same field layout.
func Encode(w io.Writer, s *schema.Schema, records []record.Record) error {
	bw := bufio.NewWriter(w)
	delim := string(s.Delimiter)

	for _, rec := range records {
		if _, err := bw.WriteString(strings.Join(rec.Fields(), delim)); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
