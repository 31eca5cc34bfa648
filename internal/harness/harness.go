package harness

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/partdb/internal/crud"
	"github.com/roach88/partdb/internal/record"
	"github.com/roach88/partdb/internal/schema"
	"github.com/roach88/partdb/internal/store"
	"github.com/roach88/partdb/internal/testutil"
)

var errInjected = errors.New("injected write failure")

// recordingStore counts rewrites of the backing file and can be told to
// fail the next one.
type recordingStore struct {
	*store.Store
	persists int
	failNext bool
}

func (r *recordingStore) Persist() error {
	if r.failNext {
		r.failNext = false
		return &store.PersistError{Path: r.Path(), Err: errInjected}
	}
	if err := r.Store.Persist(); err != nil {
		return err
	}
	r.persists++
	return nil
}

// Harness executes one scenario against a store backed by a real file.
type Harness struct {
	svc    *crud.Service
	store  *recordingStore
	schema *schema.Schema
	logger *slog.Logger
}

// Run executes a scenario in dir, which should be empty (t.TempDir()).
//
// Execution flow:
// 1. Write the initial records to dir/<name>.tbl
// 2. Load the file and build the service
// 3. Execute each step and compare it with its expect clause
// 4. Evaluate the assertions against the final state
//
// The returned error is reserved for setup problems. Failed expectations
// are reported in Result.Errors.
func Run(scenario *Scenario, dir string) (*Result, error) {
	name := scenario.Schema
	if name == "" {
		name = schema.DefaultName
	}
	s, err := schema.Lookup(name)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(dir, scenario.Name+".tbl")
	if !scenario.Missing {
		if err := os.WriteFile(path, []byte(encodeLines(s, scenario.Records)), 0644); err != nil {
			return nil, fmt.Errorf("failed to write initial records: %w", err)
		}
	}

	logger := testutil.DiscardLogger()
	st, err := store.Load(path, s, store.WithLogger(logger))
	if err != nil && !errors.Is(err, store.ErrFileNotFound) {
		return nil, fmt.Errorf("failed to load initial records: %w", err)
	}

	rs := &recordingStore{Store: st}
	h := &Harness{
		svc: crud.New(rs,
			crud.WithLogger(logger),
			crud.WithIDGenerator(testutil.NewFixedIDGenerator(scenario.Name)),
		),
		store:  rs,
		schema: s,
		logger: logger,
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		h.executeStep(i+1, step, result)
	}

	result.Persists = rs.persists
	if data, err := os.ReadFile(path); err == nil {
		result.File = string(data)
	}

	for _, msg := range EvaluateAssertions(h, result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

func (h *Harness) executeStep(n int, step Step, result *Result) {
	h.store.failNext = step.FailPersist
	before := h.store.persists

	event := TraceEvent{Step: n, Op: step.Op}
	var (
		found   *bool
		matches []int64
		err     error
	)

	switch step.Op {
	case OpInsert:
		event.Args = strings.Join(step.Fields, " ")
		_, err = h.svc.InsertFields(step.Fields)
	case OpUpdate:
		event.Args = fmt.Sprintf("%d %s", *step.Key, strings.Join(step.Fields, " "))
		var rec record.Record
		rec, err = h.svc.ParseRecord(step.Fields)
		if err == nil {
			var ok bool
			ok, err = h.svc.Update(*step.Key, rec)
			found = &ok
		}
	case OpDelete:
		event.Args = fmt.Sprint(*step.Key)
		var ok bool
		ok, err = h.svc.Delete(*step.Key)
		found = &ok
	case OpSearch:
		event.Args = step.Field + " " + step.Value
		matches, err = h.search(step.Field, step.Value)
	case OpSave:
		err = h.svc.Save()
	}
	h.store.failNext = false

	event.Persisted = h.store.persists > before
	event.Keys = matches
	switch {
	case err != nil:
		event.Outcome = "error " + ErrorClass(err)
	case found != nil && *found:
		event.Outcome = "found"
	case found != nil:
		event.Outcome = "not_found"
	case step.Op == OpSearch:
		event.Outcome = "matched"
	default:
		event.Outcome = "ok"
	}
	result.Trace = append(result.Trace, event)

	h.logger.Debug("step executed", "step", n, "op", step.Op, "outcome", event.Outcome)

	for _, e := range checkExpect(step, err, found, matches) {
		result.AddError(fmt.Sprintf("steps[%d]: %v", n-1, e))
	}
}

func (h *Harness) search(field, value string) ([]int64, error) {
	seq, err := h.svc.Search(field, value)
	if err != nil {
		return nil, err
	}
	keys := []int64{}
	for rec := range seq {
		keys = append(keys, rec.Key())
	}
	return keys, nil
}

// ErrorClass maps a service error to the class name scenarios use.
// Unrecognised errors map to their message.
func ErrorClass(err error) string {
	switch {
	case errors.Is(err, schema.ErrInvalidFieldName):
		return ClassInvalidField
	case errors.Is(err, record.ErrFieldCount):
		return ClassFieldCount
	case errors.Is(err, record.ErrTypeValidation):
		return ClassType
	case errors.Is(err, crud.ErrDuplicateKey):
		return ClassDuplicateKey
	case errors.Is(err, crud.ErrKeyMismatch):
		return ClassKeyMismatch
	case errors.Is(err, store.ErrPersist):
		return ClassPersist
	default:
		return err.Error()
	}
}

// encodeLines renders field lists the way the store writes them.
func encodeLines(s *schema.Schema, lines [][]string) string {
	var b strings.Builder
	for _, fields := range lines {
		b.WriteString(strings.Join(fields, string(s.Delimiter)))
		b.WriteByte('\n')
	}
	return b.String()
}
