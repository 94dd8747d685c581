package minimizer

import (
	"log/slog"

	"github.com/roach88/seqmin/internal/eval"
	"github.com/roach88/seqmin/internal/optimizer"
)

// DefaultMaxRounds bounds the number of search rounds per call.
const DefaultMaxRounds = 100

// EditKind names a class of candidate edit.
type EditKind string

const (
	EditClosedForm EditKind = "closed_form"
	EditUnwrap     EditKind = "unwrap_loop"
	EditDelete     EditKind = "delete_op"
)

// Observer is notified about every verified candidate.
// Implementations must be safe for concurrent use when a Minimizer is shared.
type Observer interface {
	CandidateChecked(kind EditKind, accepted bool)
}

// Option configures a Minimizer.
type Option func(*Minimizer)

// WithEvaluator sets the evaluator used as the equivalence oracle.
func WithEvaluator(e *eval.Evaluator) Option {
	return func(m *Minimizer) {
		if e != nil {
			m.eval = e
		}
	}
}

// WithOptimizer sets the optimizer used by OptimizeAndMinimize.
func WithOptimizer(o *optimizer.Optimizer) Option {
	return func(m *Minimizer) {
		if o != nil {
			m.opt = o
		}
	}
}

// WithMaxRounds bounds the number of search rounds.
//
// Default: DefaultMaxRounds.
func WithMaxRounds(n int) Option {
	return func(m *Minimizer) {
		if n > 0 {
			m.maxRounds = n
		}
	}
}

// WithObserver registers an observer for candidate outcomes.
func WithObserver(o Observer) Option {
	return func(m *Minimizer) {
		m.observer = o
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(m *Minimizer) {
		if l != nil {
			m.logger = l
		}
	}
}
