package record

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/cockroachdb/apd/v3"

	"github.com/roach88/partdb/internal/schema"
)

var (
	// ErrFieldCount is matched by *FieldCountError.
	ErrFieldCount = errors.New("wrong number of fields")

	// ErrTypeValidation is matched by *TypeError.
	ErrTypeValidation = errors.New("type validation failed")
)

// FieldCountError reports a tuple whose arity differs from the schema width.
type FieldCountError struct {
	Want int
	Got  int
}

func (e *FieldCountError) Error() string {
	return fmt.Sprintf("expected %d fields, got %d", e.Want, e.Got)
}

func (e *FieldCountError) Is(target error) bool { return target == ErrFieldCount }

// TypeError reports a field whose text does not parse as its declared kind.
type TypeError struct {
	Field string
	Kind  schema.Kind
	Text  string
}

func (e *TypeError) Error() string {
	if e.Text == "" {
		return fmt.Sprintf("%s: %s value is required", e.Field, e.Kind)
	}
	return fmt.Sprintf("%s: %q is not a valid %s", e.Field, e.Text, e.Kind)
}

func (e *TypeError) Is(target error) bool { return target == ErrTypeValidation }

// value is one parsed field. text is kept verbatim so that a decoded file
// encodes back to the same bytes.
type value struct {
	text string
	i    int64
	d    *apd.Decimal
}

// Record is an immutable, schema-bound tuple of typed fields.
// The zero Record has no schema and no fields.
type Record struct {
	schema *schema.Schema
	values []value
}

// Parse builds a Record from raw field texts, checking arity first and then
// each numeric field. Nothing is constructed when either check fails.
func Parse(s *schema.Schema, fields []string) (Record, error) {
	if len(fields) != s.Width() {
		return Record{}, &FieldCountError{Want: s.Width(), Got: len(fields)}
	}

	values := make([]value, len(fields))
	for i, text := range fields {
		v, err := parseValue(s.Fields[i], text, i == 0)
		if err != nil {
			return Record{}, err
		}
		values[i] = v
	}

	return Record{schema: s, values: values}, nil
}

// MustParse is Parse for literals in tests and fixtures.
func MustParse(s *schema.Schema, fields ...string) Record {
	r, err := Parse(s, fields)
	if err != nil {
		panic(err)
	}
	return r
}

func parseValue(f schema.Field, text string, required bool) (value, error) {
	v := value{text: text}
	if text == "" {
		if required {
			return v, &TypeError{Field: f.Name, Kind: f.Kind}
		}
		return v, nil
	}

	switch f.Kind {
	case schema.Integer:
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return v, &TypeError{Field: f.Name, Kind: f.Kind, Text: text}
		}
		v.i = n
	case schema.Decimal:
		d, _, err := apd.NewFromString(text)
		if err != nil || d.Form != apd.Finite {
			return v, &TypeError{Field: f.Name, Kind: f.Kind, Text: text}
		}
		v.d = d
	}
	return v, nil
}

// ParseKey parses key text the same way the key field of a record is parsed.
func ParseKey(text string) (int64, error) {
	if text == "" {
		return 0, &TypeError{Field: "key", Kind: schema.Integer}
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, &TypeError{Field: "key", Kind: schema.Integer, Text: text}
	}
	return n, nil
}

// Schema returns the schema the record was parsed against.
func (r Record) Schema() *schema.Schema { return r.schema }

// Len returns the number of fields.
func (r Record) Len() int { return len(r.values) }

// Key returns the parsed key field.
func (r Record) Key() int64 {
	if len(r.values) == 0 {
		return 0
	}
	return r.values[0].i
}

// Field returns the raw text of field i.
func (r Record) Field(i int) string { return r.values[i].text }

// Fields returns a copy of all field texts in positional order.
func (r Record) Fields() []string {
	out := make([]string, len(r.values))
	for i, v := range r.values {
		out[i] = v.text
	}
	return out
}

// Int returns the parsed value of an integer field. ok is false when the
// field is not an integer field, is empty, or r is the zero Record.
func (r Record) Int(i int) (n int64, ok bool) {
	if len(r.values) == 0 || r.schema.Fields[i].Kind != schema.Integer || r.values[i].text == "" {
		return 0, false
	}
	return r.values[i].i, true
}

// Decimal returns a copy of the parsed value of a decimal field.
func (r Record) Decimal(i int) (*apd.Decimal, bool) {
	if len(r.values) == 0 {
		return nil, false
	}
	d := r.values[i].d
	if d == nil {
		return nil, false
	}
	return new(apd.Decimal).Set(d), true
}

// With returns a copy of r with field i replaced by text. The key field may
// be replaced too; the new text is validated like any parsed field.
func (r Record) With(i int, text string) (Record, error) {
	v, err := parseValue(r.schema.Fields[i], text, i == 0)
	if err != nil {
		return Record{}, err
	}
	values := make([]value, len(r.values))
	copy(values, r.values)
	values[i] = v
	return Record{schema: r.schema, values: values}, nil
}

// Equal reports field-for-field text equality under the same schema.
func (r Record) Equal(other Record) bool {
	if r.schema != other.schema || len(r.values) != len(other.values) {
		return false
	}
	for i := range r.values {
		if r.values[i].text != other.values[i].text {
			return false
		}
	}
	return true
}

// Map returns the record keyed by field name, for JSON output.
func (r Record) Map() map[string]string {
	m := make(map[string]string, len(r.values))
	for i, v := range r.values {
		m[r.schema.Fields[i].Name] = v.text
	}
	return m
}
