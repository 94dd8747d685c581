package harness

import "github.com/roach88/seqmin/internal/store"

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all expectations and assertions hold.
	Pass bool `json:"pass"`

	// Sequence holds the computed terms as decimal strings. On an
	// evaluation error it holds the terms computed before the failure.
	Sequence []string `json:"sequence"`

	// ErrorCode is the evaluation error code, empty on success.
	ErrorCode string `json:"error_code,omitempty"`

	// Minimized is the minimized program text.
	Minimized string `json:"minimized"`

	// Formula is the closed formula of the minimized program, empty when
	// it has loops or indirect operands.
	Formula string `json:"formula,omitempty"`

	// Changed reports whether minimization changed the program.
	Changed bool `json:"changed"`

	SizeBefore int `json:"size_before"`
	SizeAfter  int `json:"size_after"`

	// Record is the stored minimization record.
	Record store.Minimization `json:"record"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Sequence: []string{},
		Errors:   []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
