package harness

import (
	"bytes"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Scenario is a scripted sequence of record operations with expectations.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Schema names the record schema. Empty means the part schema.
	Schema string `yaml:"schema,omitempty"`

	// Records is the initial content of the backing file, one field list
	// per line. Leave it empty to start from an empty file.
	Records [][]string `yaml:"records,omitempty"`

	// Missing starts the scenario without a backing file at all.
	Missing bool `yaml:"missing,omitempty"`

	Steps []Step `yaml:"steps"`

	// Assertions are checked once every step has run.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is a single service call.
type Step struct {
	// Op is one of insert, search, update, delete, save.
	Op string `yaml:"op"`

	// Fields is the full record for insert and update.
	Fields []string `yaml:"fields,omitempty"`

	// Key selects the record for update and delete.
	Key *int64 `yaml:"key,omitempty"`

	// Field and Value are the search criteria.
	Field string `yaml:"field,omitempty"`
	Value string `yaml:"value,omitempty"`

	// FailPersist makes the file write of this step fail.
	FailPersist bool `yaml:"fail_persist,omitempty"`

	Expect Expect `yaml:"expect"`
}

// Expect describes the outcome a step must have. Unset fields are not
// checked, except Error: a step without an expected error must succeed.
type Expect struct {
	// Error is the expected error class, see ErrorClass.
	Error string `yaml:"error,omitempty"`

	// Found is the boolean result of update and delete.
	Found *bool `yaml:"found,omitempty"`

	// Keys are the keys of the search matches, in order.
	Keys []int64 `yaml:"keys,omitempty"`

	// Count is the number of search matches.
	Count *int `yaml:"count,omitempty"`
}

// Assertion validates the state left behind by the steps.
type Assertion struct {
	// Type is one of file_records, record, no_record, record_count,
	// persist_count.
	Type string `yaml:"type"`

	// Records is the expected file content (file_records).
	Records [][]string `yaml:"records,omitempty"`

	// Key selects the record (record, no_record).
	Key *int64 `yaml:"key,omitempty"`

	// Fields is the expected record (record).
	Fields []string `yaml:"fields,omitempty"`

	// Count is the expected number (record_count, persist_count).
	Count *int `yaml:"count,omitempty"`
}

// Step ops.
const (
	OpInsert = "insert"
	OpSearch = "search"
	OpUpdate = "update"
	OpDelete = "delete"
	OpSave   = "save"
)

// Assertion type constants.
const (
	AssertFileRecords  = "file_records"
	AssertRecord       = "record"
	AssertNoRecord     = "no_record"
	AssertRecordCount  = "record_count"
	AssertPersistCount = "persist_count"
)

// Error classes used in Expect.Error.
const (
	ClassInvalidField = "invalid_field"
	ClassFieldCount   = "field_count"
	ClassType         = "type"
	ClassDuplicateKey = "duplicate_key"
	ClassKeyMismatch  = "key_mismatch"
	ClassPersist      = "persist"
)

var errorClasses = []string{
	ClassInvalidField, ClassFieldCount, ClassType,
	ClassDuplicateKey, ClassKeyMismatch, ClassPersist,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Reject unknown fields so "assertion:" vs "assertions:" typos fail loudly
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if s.Missing && len(s.Records) > 0 {
		return fmt.Errorf("missing and records are mutually exclusive")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(index int, st *Step) error {
	switch st.Op {
	case OpInsert:
		if len(st.Fields) == 0 {
			return fmt.Errorf("steps[%d]: insert requires fields", index)
		}
	case OpUpdate:
		if st.Key == nil || len(st.Fields) == 0 {
			return fmt.Errorf("steps[%d]: update requires key and fields", index)
		}
	case OpDelete:
		if st.Key == nil {
			return fmt.Errorf("steps[%d]: delete requires key", index)
		}
	case OpSearch:
		if st.Field == "" {
			return fmt.Errorf("steps[%d]: search requires field", index)
		}
	case OpSave:
	case "":
		return fmt.Errorf("steps[%d]: op is required", index)
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, st.Op)
	}

	if st.Expect.Error != "" && !slices.Contains(errorClasses, st.Expect.Error) {
		return fmt.Errorf("steps[%d].expect: unknown error class %q", index, st.Expect.Error)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case AssertFileRecords:
		// An empty list asserts an empty file.
	case AssertRecord:
		if a.Key == nil || len(a.Fields) == 0 {
			return fmt.Errorf("assertions[%d]: record requires key and fields", index)
		}
	case AssertNoRecord:
		if a.Key == nil {
			return fmt.Errorf("assertions[%d]: no_record requires key", index)
		}
	case AssertRecordCount, AssertPersistCount:
		if a.Count == nil {
			return fmt.Errorf("assertions[%d]: %s requires count", index, a.Type)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
