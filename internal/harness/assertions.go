package harness

import (
	"fmt"
	"slices"
	"strings"
)

// checkExpect compares a step's outcome with its expect clause.
func checkExpect(step Step, err error, found *bool, keys []int64) []error {
	var errs []error
	exp := step.Expect

	if exp.Error != "" {
		if err == nil {
			return append(errs, &AssertionError{Type: step.Op, Expected: "error " + exp.Error, Actual: "success"})
		}
		if got := ErrorClass(err); got != exp.Error {
			errs = append(errs, &AssertionError{Type: step.Op, Expected: "error " + exp.Error, Actual: "error " + got})
		}
	} else if err != nil {
		return append(errs, &AssertionError{Type: step.Op, Expected: "success", Actual: err.Error()})
	}

	if exp.Found != nil {
		got := found != nil && *found
		if got != *exp.Found {
			errs = append(errs, &AssertionError{
				Type:     step.Op,
				Expected: fmt.Sprintf("found=%t", *exp.Found),
				Actual:   fmt.Sprintf("found=%t", got),
			})
		}
	}

	if exp.Keys != nil && !slices.Equal(exp.Keys, keys) {
		errs = append(errs, &AssertionError{
			Type:     step.Op,
			Expected: fmt.Sprintf("keys %v", exp.Keys),
			Actual:   fmt.Sprintf("keys %v", keys),
		})
	}

	if exp.Count != nil && *exp.Count != len(keys) {
		errs = append(errs, &AssertionError{
			Type:     step.Op,
			Expected: fmt.Sprintf("%d match(es)", *exp.Count),
			Actual:   fmt.Sprintf("%d match(es)", len(keys)),
		})
	}

	return errs
}

// EvaluateAssertions checks every assertion against the harness state and
// the result, and returns one message per failure.
func EvaluateAssertions(h *Harness, result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluateAssertion(h, result, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluateAssertion(h *Harness, result *Result, a Assertion) error {
	switch a.Type {
	case AssertFileRecords:
		want := encodeLines(h.schema, a.Records)
		if result.File != want {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("%q", want), Actual: fmt.Sprintf("%q", result.File)}
		}
	case AssertRecord:
		rec, ok := h.svc.Get(*a.Key)
		if !ok {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("record %d", *a.Key), Actual: "no record"}
		}
		if !slices.Equal(rec.Fields(), a.Fields) {
			return &AssertionError{
				Type:     a.Type,
				Expected: strings.Join(a.Fields, "|"),
				Actual:   strings.Join(rec.Fields(), "|"),
			}
		}
	case AssertNoRecord:
		if _, ok := h.svc.Get(*a.Key); ok {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("no record %d", *a.Key), Actual: "record present"}
		}
	case AssertRecordCount:
		if got := h.svc.Len(); got != *a.Count {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprint(*a.Count), Actual: fmt.Sprint(got)}
		}
	case AssertPersistCount:
		if result.Persists != *a.Count {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprint(*a.Count), Actual: fmt.Sprint(result.Persists)}
		}
	}
	return nil
}
