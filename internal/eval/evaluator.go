package eval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/seqmin/internal/ir"
	"github.com/roach88/seqmin/internal/memory"
	"github.com/roach88/seqmin/internal/number"
)

// Stats describes the cost of one evaluation.
type Stats struct {
	// Terms is the number of terms computed successfully.
	Terms int

	// Steps is the total number of steps across all terms.
	Steps int64

	// MaxTermSteps is the largest step count of a single term.
	MaxTermSteps int64
}

// Evaluator computes the first terms of a program's sequence.
//
// An Evaluator is safe for concurrent use: it only holds configuration.
type Evaluator struct {
	interp   *Interpreter
	maxTotal int64
	initial  *memory.Memory
	logger   *slog.Logger
}

// New creates an Evaluator with the given options.
func New(opts ...Option) *Evaluator {
	o := newOptions(opts)
	return &Evaluator{
		interp:   &Interpreter{maxCycles: o.maxCycles, maxBits: o.maxBits, maxMemory: o.maxMemory, logger: o.logger},
		maxTotal: o.maxTotal,
		initial:  o.initial,
		logger:   o.logger,
	}
}

// Interpreter returns the interpreter backing e.
func (e *Evaluator) Interpreter() *Interpreter {
	return e.interp
}

// MaxTotal returns the step budget shared by all terms.
func (e *Evaluator) MaxTotal() int64 {
	return e.maxTotal
}

// Eval computes terms 0..numTerms-1 of p.
//
// On failure the returned slice holds the terms computed before the failing
// one and err is an *EvalError carrying the failing term index.
func (e *Evaluator) Eval(p *ir.Program, numTerms int) ([]number.Number, Stats, error) {
	return e.EvalContext(context.Background(), p, numTerms)
}

// EvalContext is Eval with cancellation checked between terms.
func (e *Evaluator) EvalContext(ctx context.Context, p *ir.Program, numTerms int) ([]number.Number, Stats, error) {
	var stats Stats
	total := newStepQuota(e.maxTotal)
	seq := make([]number.Number, 0, max(numTerms, 0))
	for n := 0; n < numTerms; n++ {
		if err := ctx.Err(); err != nil {
			return seq, stats, fmt.Errorf("eval cancelled at term %d: %w", n, err)
		}
		mem, steps, err := e.term(p, n, total)
		stats.Steps += steps
		stats.MaxTermSteps = max(stats.MaxTermSteps, steps)
		if err != nil {
			var ee *EvalError
			if errors.As(err, &ee) {
				ee.Term = n
			}
			e.logger.Debug("evaluation failed", "term", n, "steps", stats.Steps, "error", err)
			return seq, stats, err
		}
		seq = append(seq, mem.Get(0))
		stats.Terms++
	}
	return seq, stats, nil
}

// EvalTerm runs p for a single index and returns the final memory.
func (e *Evaluator) EvalTerm(p *ir.Program, n int) (*memory.Memory, int64, error) {
	return e.term(p, n, newStepQuota(e.maxTotal))
}

func (e *Evaluator) term(p *ir.Program, n int, total *stepQuota) (*memory.Memory, int64, error) {
	mem := memory.New()
	if e.initial != nil {
		mem = e.initial.Clone()
	}
	mem.Set(0, number.FromInt64(int64(n)))

	limit := e.interp.maxCycles
	if rem := total.remaining(); rem > 0 && (limit <= 0 || rem < limit) {
		limit = rem
	}
	steps, err := e.interp.runBudget(p, mem, limit)
	total.current += steps
	if err == nil && total.limit > 0 && total.current > total.limit {
		err = newError(ErrCodeStepBudget, "exceeded total step budget (%d > %d)", total.current, total.limit)
	}
	return mem, steps, err
}

// Check evaluates p and compares it against want. It returns nil only when
// every term evaluates and matches.
func (e *Evaluator) Check(p *ir.Program, want []number.Number) error {
	got, _, err := e.Eval(p, len(want))
	if err != nil {
		return err
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			return &MismatchError{Term: i, Want: want[i], Got: got[i]}
		}
	}
	return nil
}

// MismatchError reports the first term where two sequences differ.
type MismatchError struct {
	Term int
	Want number.Number
	Got  number.Number
}

// Error implements the error interface.
func (e *MismatchError) Error() string {
	return fmt.Sprintf("term %d: expected %s, got %s", e.Term, e.Want, e.Got)
}
