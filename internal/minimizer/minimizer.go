package minimizer

import (
	"context"
	"log/slog"

	"github.com/roach88/seqmin/internal/eval"
	"github.com/roach88/seqmin/internal/ir"
	"github.com/roach88/seqmin/internal/number"
	"github.com/roach88/seqmin/internal/optimizer"
)

// Minimizer shrinks programs while preserving a window of output terms.
// It only holds configuration, so one Minimizer may serve many goroutines
// as long as each call gets its own program.
type Minimizer struct {
	eval      *eval.Evaluator
	opt       *optimizer.Optimizer
	maxRounds int
	observer  Observer
	logger    *slog.Logger
}

// New creates a Minimizer.
func New(opts ...Option) *Minimizer {
	m := &Minimizer{
		maxRounds: DefaultMaxRounds,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.eval == nil {
		m.eval = eval.New(eval.WithLogger(m.logger))
	}
	if m.opt == nil {
		m.opt = optimizer.New(optimizer.WithLogger(m.logger))
	}
	return m
}

// Minimize runs a default Minimizer on p.
func Minimize(p *ir.Program, termCount int) bool {
	return New().Minimize(p, termCount)
}

// OptimizeAndMinimize runs a default Minimizer with optimization on p.
func OptimizeAndMinimize(p *ir.Program, termCount int) bool {
	return New().OptimizeAndMinimize(p, termCount)
}

// Minimize shrinks p in place, preserving terms 0..termCount-1, and reports
// whether p changed. If p cannot be evaluated over the window it is left
// untouched.
func (m *Minimizer) Minimize(p *ir.Program, termCount int) bool {
	return m.MinimizeContext(context.Background(), p, termCount)
}

// MinimizeContext is Minimize with cancellation. The context is checked
// before every candidate verification; on cancellation the improvements
// accepted so far are kept.
func (m *Minimizer) MinimizeContext(ctx context.Context, p *ir.Program, termCount int) bool {
	return m.run(ctx, p, termCount, false)
}

// OptimizeAndMinimize optimizes p, then minimizes it, optimizing again after
// every accepted edit.
func (m *Minimizer) OptimizeAndMinimize(p *ir.Program, termCount int) bool {
	return m.OptimizeAndMinimizeContext(context.Background(), p, termCount)
}

// OptimizeAndMinimizeContext is OptimizeAndMinimize with cancellation.
func (m *Minimizer) OptimizeAndMinimizeContext(ctx context.Context, p *ir.Program, termCount int) bool {
	return m.run(ctx, p, termCount, true)
}

// search is the state of one minimization call.
type search struct {
	m        *Minimizer
	ctx      context.Context
	target   []number.Number
	work     *ir.Program
	optimize bool
}

func (m *Minimizer) run(ctx context.Context, p *ir.Program, termCount int, optimize bool) bool {
	if p == nil || termCount <= 0 {
		return false
	}
	target, _, err := m.eval.EvalContext(ctx, p, termCount)
	if err != nil {
		m.logger.Debug("minimize: input does not evaluate", "terms", termCount, "error", err)
		return false
	}
	s := &search{m: m, ctx: ctx, target: target, work: p.Clone(), optimize: optimize}

	before := p.Size()
	changed := s.reoptimize()
	for round := 0; round < m.maxRounds && ctx.Err() == nil; round++ {
		if !s.round() {
			break
		}
		changed = true
	}
	if !changed {
		return false
	}
	p.Ops = s.work.Ops
	m.logger.Debug("minimized program", "size_before", before, "size_after", p.Size(), "terms", termCount)
	return true
}

// round tries every candidate edit once and reports whether any was
// accepted.
func (s *search) round() bool {
	accepted := false
	for _, phase := range []func() (bool, bool){s.closedForms, s.unwraps, s.deletions} {
		ok, restart := phase()
		accepted = accepted || ok
		if restart {
			return true
		}
	}
	return accepted
}

// try verifies cand and makes it the current program if it is smaller and
// equivalent over the window.
func (s *search) try(kind EditKind, cand *ir.Program) bool {
	if s.ctx.Err() != nil || cand.Size() >= s.work.Size() {
		return false
	}
	ok := s.m.eval.Check(cand, s.target) == nil
	if s.m.observer != nil {
		s.m.observer.CandidateChecked(kind, ok)
	}
	if ok {
		s.m.logger.Debug("accepted candidate", "kind", kind, "size", cand.Size())
		s.work = cand
	}
	return ok
}

// reoptimize runs the optimizer on the current program when enabled and
// keeps the result if it still matches the window. It reports whether the
// program changed, which invalidates any precomputed paths.
func (s *search) reoptimize() bool {
	if !s.optimize {
		return false
	}
	c := s.work.Clone()
	if !s.m.opt.Optimize(c) || s.m.eval.Check(c, s.target) != nil {
		return false
	}
	s.work = c
	return true
}

// unwraps replaces loops by their bodies.
func (s *search) unwraps() (accepted, restart bool) {
	paths := s.work.Paths()
	for i := len(paths) - 1; i >= 0; i-- {
		op := s.work.At(paths[i])
		if op == nil || !op.IsLoop() {
			continue
		}
		cand := s.work.Clone()
		cand.Replace(paths[i], op.Body.Clone().Ops...)
		if s.try(EditUnwrap, cand) {
			accepted = true
			if s.reoptimize() {
				return true, true
			}
		}
	}
	return accepted, false
}

// deletions removes single operations, last to first. Walking backwards
// keeps the remaining paths valid after each accepted deletion.
func (s *search) deletions() (accepted, restart bool) {
	paths := s.work.Paths()
	for i := len(paths) - 1; i >= 0; i-- {
		cand := s.work.Clone()
		if !cand.Remove(paths[i]) {
			continue
		}
		if s.try(EditDelete, cand) {
			accepted = true
			if s.reoptimize() {
				return true, true
			}
		}
	}
	return accepted, false
}
