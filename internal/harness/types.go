package harness

import (
	"fmt"
	"strings"
)

// TraceEvent records one executed step and what came of it.
type TraceEvent struct {
	Step      int
	Op        string
	Args      string
	Outcome   string  // "ok", "found", "not_found", "matched" or "error <class>"
	Keys      []int64 // search matches
	Persisted bool    // the backing file was rewritten by this step
}

// String renders the event as one transcript line.
func (e TraceEvent) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%d] %s", e.Step, e.Op)
	if e.Args != "" {
		fmt.Fprintf(&b, " %s", e.Args)
	}
	fmt.Fprintf(&b, " -> %s", e.Outcome)
	if e.Op == OpSearch && e.Outcome == "matched" {
		fmt.Fprintf(&b, " %v", e.Keys)
	}
	if e.Persisted {
		b.WriteString(" (persisted)")
	}
	return b.String()
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every expectation and assertion held.
	Pass bool

	// Trace contains one event per step, in order.
	Trace []TraceEvent

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string

	// File is the backing file content after the last step.
	File string

	// Persists counts successful file rewrites.
	Persists int
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Transcript renders the trace followed by the final file content.
func (r *Result) Transcript(name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "scenario: %s\n", name)
	for _, e := range r.Trace {
		b.WriteString(e.String())
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "persists: %d\n", r.Persists)
	b.WriteString("--- file\n")
	b.WriteString(r.File)
	return b.String()
}

// AssertionError is returned when an expectation or assertion fails.
type AssertionError struct {
	Type     string // step op or assertion type
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.Type, e.Expected, e.Actual)
}
