package eval

import (
	"errors"
	"fmt"
)

// EvalError represents a failure while running a program.
//
// Evaluation errors include:
//   - Overflow: a value exceeded the MaxBits bound
//   - Step budget: a term or the whole evaluation ran out of steps
//   - Undefined result: an operation produced an undefined value
//   - Negative address: an indirect operand resolved to a negative cell
//   - Memory limit: a term wrote to too many distinct cells
//
// The optimizer and minimizer treat every EvalError as "reject this
// candidate", never as a failure of their own.
type EvalError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Term is the sequence index being computed, or -1 outside Eval.
	Term int

	// Op is the text of the failing operation, if known.
	Op string
}

// ErrorCode categorizes evaluation errors.
type ErrorCode string

const (
	// ErrCodeOverflow indicates a value exceeded the configured bit bound.
	ErrCodeOverflow ErrorCode = "OVERFLOW"

	// ErrCodeStepBudget indicates the step budget was exhausted.
	ErrCodeStepBudget ErrorCode = "STEP_BUDGET_EXCEEDED"

	// ErrCodeUndefined indicates an operation produced an undefined value.
	ErrCodeUndefined ErrorCode = "UNDEFINED_RESULT"

	// ErrCodeNegativeAddress indicates a memory reference below zero.
	ErrCodeNegativeAddress ErrorCode = "NEGATIVE_ADDRESS"

	// ErrCodeMemoryLimit indicates the memory grew past its size bound.
	ErrCodeMemoryLimit ErrorCode = "MEMORY_LIMIT_EXCEEDED"
)

// Error implements the error interface.
func (e *EvalError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Op != "" {
		msg += fmt.Sprintf(" (op=%q)", e.Op)
	}
	if e.Term >= 0 {
		msg += fmt.Sprintf(" (term=%d)", e.Term)
	}
	return msg
}

func newError(code ErrorCode, format string, args ...any) *EvalError {
	return &EvalError{Code: code, Message: fmt.Sprintf(format, args...), Term: -1}
}

func hasCode(err error, code ErrorCode) bool {
	var ee *EvalError
	if errors.As(err, &ee) {
		return ee.Code == code
	}
	return false
}

// IsOverflow returns true if the error is an overflow error.
// Uses errors.As to handle wrapped errors.
func IsOverflow(err error) bool {
	return hasCode(err, ErrCodeOverflow)
}

// IsStepBudget returns true if the error is a step budget error.
// Uses errors.As to handle wrapped errors.
func IsStepBudget(err error) bool {
	return hasCode(err, ErrCodeStepBudget)
}

// IsUndefined returns true if the error is an undefined result error.
func IsUndefined(err error) bool {
	return hasCode(err, ErrCodeUndefined)
}

// IsNegativeAddress returns true if the error is a negative address error.
func IsNegativeAddress(err error) bool {
	return hasCode(err, ErrCodeNegativeAddress)
}

// IsMemoryLimit returns true if the error is a memory limit error.
func IsMemoryLimit(err error) bool {
	return hasCode(err, ErrCodeMemoryLimit)
}

// IsEvalError returns true for any evaluation failure.
func IsEvalError(err error) bool {
	var ee *EvalError
	return errors.As(err, &ee)
}
