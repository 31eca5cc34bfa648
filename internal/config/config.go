// Package config loads the optional partdb.yaml file.
//
// The file is YAML. Before it is decoded it is checked against an embedded
// CUE definition, so a typo in a key or an unknown field kind is reported
// with a path instead of being silently ignored.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/roach88/partdb/internal/schema"
)

// DefaultPath is the config file looked up in the working directory.
const DefaultPath = "partdb.yaml"

// DefaultFile is the backing file used when none is configured.
const DefaultFile = "part.tbl"

//go:embed config.cue
var constraint string

// ErrInvalid is matched by every validation failure.
var ErrInvalid = errors.New("invalid config")

// ValidationError reports a config file that does not satisfy the constraint.
type ValidationError struct {
	Path   string
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid config: %s", e.Detail)
	}
	return fmt.Sprintf("invalid config %s: %s", e.Path, e.Detail)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalid }

// FieldDef is one field of a custom schema.
type FieldDef struct {
	Name       string `yaml:"name"`
	Kind       string `yaml:"kind"`
	Searchable bool   `yaml:"searchable"`
}

// SchemaDef is a custom schema declared in the config file.
type SchemaDef struct {
	Name      string     `yaml:"name"`
	Delimiter string     `yaml:"delimiter"`
	Fields    []FieldDef `yaml:"fields"`
}

// Config is the resolved configuration.
type Config struct {
	File       string      `yaml:"file"`
	SchemaName string      `yaml:"schema"`
	LogLevel   string      `yaml:"log_level"`
	Schemas    []SchemaDef `yaml:"schemas"`

	// Path is the file the config was read from, empty for defaults.
	Path string `yaml:"-"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		File:       DefaultFile,
		SchemaName: schema.DefaultName,
		LogLevel:   "warn",
	}
}

// Load reads and validates the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			ve.Path = path
		}
		return nil, err
	}
	cfg.Path = path
	return cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields Default().
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Parse validates YAML config data and decodes it over the defaults.
func Parse(data []byte) (*Config, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ValidationError{Detail: err.Error()}
	}
	if raw == nil {
		raw = map[string]any{}
	}
	if err := validate(raw); err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, &ValidationError{Detail: err.Error()}
	}
	return cfg, nil
}

func validate(raw any) error {
	ctx := cuecontext.New()

	def := ctx.CompileString(constraint).LookupPath(cue.ParsePath("#Config"))
	if err := def.Err(); err != nil {
		return fmt.Errorf("compile config constraint: %w", err)
	}

	v := def.Unify(ctx.Encode(raw))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return &ValidationError{Detail: strings.TrimSpace(cueerrors.Details(err, nil))}
	}
	return nil
}

// Level maps LogLevel onto a slog level.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// Schema resolves SchemaName, preferring schemas declared in the file over
// the builtins of the same name.
func (c *Config) Schema() (*schema.Schema, error) {
	name := c.SchemaName
	if name == "" {
		name = schema.DefaultName
	}
	for _, def := range c.Schemas {
		if strings.EqualFold(def.Name, name) {
			return def.Build()
		}
	}
	return schema.Lookup(name)
}

// Custom builds every schema declared in the file.
func (c *Config) Custom() ([]*schema.Schema, error) {
	out := make([]*schema.Schema, 0, len(c.Schemas))
	for _, def := range c.Schemas {
		s, err := def.Build()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Build converts the definition into a validated schema. Field names are
// upper-cased.
func (d SchemaDef) Build() (*schema.Schema, error) {
	delim, size := utf8.DecodeRuneInString(d.Delimiter)
	if size == 0 || size != len(d.Delimiter) {
		return nil, fmt.Errorf("schema %q: delimiter must be a single character", d.Name)
	}

	s := &schema.Schema{
		Name:      d.Name,
		Delimiter: delim,
		Fields:    make([]schema.Field, 0, len(d.Fields)),
	}
	for _, f := range d.Fields {
		kind, err := schema.ParseKind(f.Kind)
		if err != nil {
			return nil, fmt.Errorf("schema %q field %q: %w", d.Name, f.Name, err)
		}
		s.Fields = append(s.Fields, schema.Field{
			Name:       strings.ToUpper(f.Name),
			Kind:       kind,
			Searchable: f.Searchable,
		})
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}
