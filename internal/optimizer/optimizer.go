package optimizer

import (
	"log/slog"

	"github.com/roach88/seqmin/internal/ir"
	"github.com/roach88/seqmin/internal/number"
)

// maxRounds bounds the fixed-point iteration. Every pass only ever shrinks
// the program or moves it closer to constants, so this is never reached in
// practice.
const maxRounds = 1000

// Optimizer rewrites programs in place.
type Optimizer struct {
	maxBits int
	logger  *slog.Logger
}

// Option configures an Optimizer.
type Option func(*Optimizer)

// WithMaxBits bounds the size of constants produced by folding.
// Folding a value larger than this is skipped.
func WithMaxBits(n int) Option {
	return func(o *Optimizer) {
		if n > 0 {
			o.maxBits = n
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(o *Optimizer) {
		if l != nil {
			o.logger = l
		}
	}
}

// New creates an Optimizer.
func New(opts ...Option) *Optimizer {
	o := &Optimizer{
		maxBits: number.DefaultMaxBits,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Optimize runs an Optimizer with default settings on p.
func Optimize(p *ir.Program) bool {
	return New().Optimize(p)
}

// Optimize rewrites p to a fixed point and reports whether anything changed.
func (o *Optimizer) Optimize(p *ir.Program) bool {
	if p == nil {
		return false
	}
	before := p.Size()
	changed := false
	for round := 0; round < maxRounds; round++ {
		c := removeNops(p)
		c = simplify(p) || c
		c = o.merge(p) || c
		if !p.HasIndirect() {
			c = o.propagate(p) || c
			c = eliminateDeadStores(p) || c
		}
		if !c {
			break
		}
		changed = true
	}
	if changed {
		o.logger.Debug("optimized program", "size_before", before, "size_after", p.Size())
	}
	return changed
}

// filter keeps the operations for which keep returns true.
func filter(p *ir.Program, keep func(op *ir.Operation) bool) bool {
	out := p.Ops[:0]
	changed := false
	for i := range p.Ops {
		if keep(&p.Ops[i]) {
			out = append(out, p.Ops[i])
		} else {
			changed = true
		}
	}
	clear(p.Ops[len(out):])
	p.Ops = out
	return changed
}
