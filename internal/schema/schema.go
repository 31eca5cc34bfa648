package schema

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is the storage type of a field.
type Kind int

const (
	Text Kind = iota
	Integer
	Decimal
)

// String returns the lowercase name used in config files.
func (k Kind) String() string {
	switch k {
	case Text:
		return "text"
	case Integer:
		return "integer"
	case Decimal:
		return "decimal"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind converts a config kind name into a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "":
		return Text, nil
	case "integer", "int":
		return Integer, nil
	case "decimal":
		return Decimal, nil
	default:
		return Text, fmt.Errorf("unknown field kind %q", s)
	}
}

// Field describes one positional column of a record.
type Field struct {
	Name       string
	Kind       Kind
	Searchable bool
}

// Schema fixes the delimiter and positional field layout of a backing file.
//
// Field 0 is always the key and must be an Integer field. Field names are
// canonical upper-case and looked up case-insensitively.
type Schema struct {
	Name      string
	Delimiter rune
	Fields    []Field
}

var (
	// ErrInvalidFieldName is returned when a search names a field that is
	// unknown or not searchable.
	ErrInvalidFieldName = errors.New("invalid field name")

	// ErrUnknownSchema is returned by Lookup for names with no definition.
	ErrUnknownSchema = errors.New("unknown schema")
)

// FieldError reports a rejected field name together with the names that
// would have been accepted.
type FieldError struct {
	Name    string
	Allowed []string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid field name %q: must be one of %s", e.Name, strings.Join(e.Allowed, ", "))
}

func (e *FieldError) Is(target error) bool {
	return target == ErrInvalidFieldName
}

// Width is the exact number of fields every record carries.
func (s *Schema) Width() int {
	return len(s.Fields)
}

// KeyField returns the key field definition.
func (s *Schema) KeyField() Field {
	return s.Fields[0]
}

// Index maps a field name to its position.
func (s *Schema) Index(name string) (int, bool) {
	name = strings.TrimSpace(name)
	for i, f := range s.Fields {
		if strings.EqualFold(f.Name, name) {
			return i, true
		}
	}
	return -1, false
}

// SearchField resolves a field name for searching. Unknown and
// non-searchable names both fail with a *FieldError.
func (s *Schema) SearchField(name string) (int, error) {
	i, ok := s.Index(name)
	if !ok || !s.Fields[i].Searchable {
		return -1, &FieldError{Name: name, Allowed: s.SearchableNames()}
	}
	return i, nil
}

// Names returns the field names in positional order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// SearchableNames returns the whitelisted search fields in positional order.
func (s *Schema) SearchableNames() []string {
	var names []string
	for _, f := range s.Fields {
		if f.Searchable {
			names = append(names, f.Name)
		}
	}
	return names
}

// Validate checks the structural rules every schema must satisfy.
func (s *Schema) Validate() error {
	if s.Name == "" {
		return errors.New("schema name is required")
	}
	if s.Delimiter == 0 || s.Delimiter == '\n' || s.Delimiter == '\r' {
		return fmt.Errorf("schema %s: invalid delimiter %q", s.Name, s.Delimiter)
	}
	if len(s.Fields) == 0 {
		return fmt.Errorf("schema %s: no fields", s.Name)
	}
	if s.Fields[0].Kind != Integer {
		return fmt.Errorf("schema %s: key field %s must be integer", s.Name, s.Fields[0].Name)
	}

	seen := make(map[string]bool, len(s.Fields))
	searchable := 0
	for _, f := range s.Fields {
		if f.Name == "" {
			return fmt.Errorf("schema %s: empty field name", s.Name)
		}
		upper := strings.ToUpper(f.Name)
		if seen[upper] {
			return fmt.Errorf("schema %s: duplicate field %s", s.Name, f.Name)
		}
		seen[upper] = true
		if f.Searchable {
			searchable++
		}
	}
	if searchable == 0 {
		return fmt.Errorf("schema %s: at least one field must be searchable", s.Name)
	}
	return nil
}
