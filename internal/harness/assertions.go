package harness

import (
	"fmt"

	"github.com/roach88/seqmin/internal/asm"
	"github.com/roach88/seqmin/internal/ir"
)

// AssertionError is returned when an assertion fails.
// It includes the minimized program to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	Program  string // Minimized program text
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("Assertion failed: %s\n  Expected: %s\n  Actual: %s\n\nProgram:\n%s",
		e.Type, e.Expected, e.Actual, e.Program)
}

// EvaluateAssertions checks every assertion against the minimized program
// and returns the failure messages.
func EvaluateAssertions(result *Result, minimized *ir.Program, assertions []Assertion) []string {
	var failures []string
	for _, a := range assertions {
		if err := evaluateAssertion(result, minimized, a); err != nil {
			failures = append(failures, err.Error())
		}
	}
	return failures
}

func evaluateAssertion(result *Result, minimized *ir.Program, a Assertion) error {
	fail := func(expected, actual string) error {
		return &AssertionError{
			Type:     a.Type,
			Expected: expected,
			Actual:   actual,
			Program:  asm.Format(minimized),
		}
	}

	switch a.Type {
	case AssertSizeAtMost:
		if size := minimized.Size(); size > a.Size {
			return fail(fmt.Sprintf("size <= %d", a.Size), fmt.Sprintf("size %d", size))
		}
	case AssertLoopFree:
		if minimized.HasLoops() {
			return fail("no loops", "program has loops")
		}
	case AssertUnchanged:
		if result.Changed {
			return fail("program unchanged", fmt.Sprintf("size %d -> %d", result.SizeBefore, result.SizeAfter))
		}
	case AssertChanged:
		if !result.Changed {
			return fail("program changed", "unchanged")
		}
	default:
		return fmt.Errorf("unknown assertion type: %s", a.Type)
	}
	return nil
}
