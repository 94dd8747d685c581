package minimizer

import (
	"slices"

	"github.com/roach88/seqmin/internal/expr"
	"github.com/roach88/seqmin/internal/formula"
	"github.com/roach88/seqmin/internal/ir"
	"github.com/roach88/seqmin/internal/memory"
	"github.com/roach88/seqmin/internal/number"
)

// maxSamples bounds how many terms are unrolled to fit a closed form.
const maxSamples = 10

// maxPowerBase is the largest base DetectPower tries.
const maxPowerBase = 64

// PowerOf returns e such that base^e == v exactly. It fails unless base is
// at least 2 and v is a positive power of it (v == 1 gives e == 0).
func PowerOf(v, base number.Number) (int64, bool) {
	if base.Cmp(number.FromInt64(2)) < 0 || v.IsUndefined() || v.Sign() <= 0 {
		return 0, false
	}
	e := int64(0)
	for !v.Equal(number.One) {
		if !number.Mod(v, base).IsZero() {
			return 0, false
		}
		v = number.Div(v, base)
		e++
	}
	return e, true
}

// DetectPower finds the smallest base in [2, 64] and an exponent of at least
// 2 with base^exp == v.
func DetectPower(v number.Number) (base, exp int64, ok bool) {
	for b := int64(2); b <= maxPowerBase; b++ {
		if e, ok := PowerOf(v, number.FromInt64(b)); ok && e >= 2 {
			return b, e, true
		}
	}
	return 0, 0, false
}

// sample is memory right before and right after one execution of a loop.
type sample struct {
	before *memory.Memory
	after  *memory.Memory
}

// closedForms tries to replace top-level loops with exponentiation, last to
// first.
func (s *search) closedForms() (accepted, restart bool) {
	for i := s.work.Len() - 1; i >= 0; i-- {
		if i >= s.work.Len() || !s.work.Ops[i].IsLoop() {
			continue
		}
		for _, cand := range s.replaceConstantLoop(i) {
			if s.try(EditClosedForm, cand) {
				accepted = true
				if s.reoptimize() {
					return true, true
				}
				break
			}
		}
	}
	return accepted, false
}

// replaceConstantLoop proposes programs in which the top-level loop at index
// i is replaced by exponentiation. A cell t written by the loop qualifies
// when, in every unrolled sample, its value after the loop is exactly x^e
// (a power of the counter x) or exactly b^x (a constant multiplied in once
// per iteration).
func (s *search) replaceConstantLoop(i int) []*ir.Program {
	loop := s.work.Ops[i]
	c, ok := loop.Target.Cell()
	if !ok || loop.LoopLength() != 1 || s.work.HasIndirect() {
		return nil
	}
	written, ok := writtenCells(loop.Body)
	if !ok {
		return nil
	}
	samples, ok := s.unroll(i)
	if !ok {
		return nil
	}

	maxBits := s.m.eval.Interpreter().MaxBits()
	var cands []*ir.Program
	add := func(replacements [][]ir.Operation) {
		for _, ops := range replacements {
			cand := s.work.Clone()
			cand.Replace(ir.Path{i}, ops...)
			cands = append(cands, cand)
		}
	}
	for _, t := range written {
		if e, ok := fitPower(samples, c, t, maxBits); ok && s.signSafe(i, c, t, powerOfCounter(e)) {
			add(powerReplacements(c, t, e))
		}
		if b, ok := fitExponential(samples, c, t, maxBits); ok && s.signSafe(i, c, t, counterAsExponent(b)) {
			add(exponentialReplacements(c, t, b))
		}
	}
	return cands
}

// unroll runs the prefix and the loop for the first terms of the window.
func (s *search) unroll(i int) ([]sample, bool) {
	prefix := ir.NewProgram(s.work.Ops[:i]...)
	loop := ir.NewProgram(s.work.Ops[i])
	n := min(len(s.target), maxSamples)
	samples := make([]sample, 0, n)
	for term := 0; term < n; term++ {
		before, _, err := s.m.eval.EvalTerm(prefix, term)
		if err != nil {
			return nil, false
		}
		after := before.Clone()
		if _, err := s.m.eval.Interpreter().Run(loop, after); err != nil {
			return nil, false
		}
		samples = append(samples, sample{before: before, after: after})
	}
	return samples, true
}

// fitPower estimates e from the first sample whose counter is at least 2 and
// verifies it against every sample.
func fitPower(samples []sample, c, t int64, maxBits int) (int64, bool) {
	two := number.FromInt64(2)
	e := int64(-1)
	for _, smp := range samples {
		x := smp.before.Get(c)
		if x.Cmp(two) < 0 {
			continue
		}
		var ok bool
		if e, ok = PowerOf(smp.after.Get(t), x); !ok || e < 1 {
			return 0, false
		}
		break
	}
	if e < 1 {
		return 0, false
	}
	for _, smp := range samples {
		want, err := number.Pow(smp.before.Get(c), number.FromInt64(e), maxBits)
		if err != nil || !want.Equal(smp.after.Get(t)) {
			return 0, false
		}
	}
	return e, true
}

// fitExponential finds a base b with after[t] == b^x for every sample, where
// x is the counter before the loop. The base comes from DetectPower on the
// first sample whose counter is at least 2.
func fitExponential(samples []sample, c, t int64, maxBits int) (int64, bool) {
	two := number.FromInt64(2)
	base := int64(0)
	for _, smp := range samples {
		x, ok := smp.before.Get(c).Int64()
		if !ok || x < 2 {
			continue
		}
		b, e, ok := DetectPower(smp.after.Get(t))
		if !ok || e%x != 0 {
			return 0, false
		}
		v, err := number.Pow(number.FromInt64(b), number.FromInt64(e/x), maxBits)
		if err != nil {
			return 0, false
		}
		if base, ok = v.Int64(); !ok || v.Cmp(two) < 0 {
			return 0, false
		}
		break
	}
	if base < 2 {
		return 0, false
	}
	for _, smp := range samples {
		want, err := number.Pow(number.FromInt64(base), smp.before.Get(c), maxBits)
		if err != nil || !want.Equal(smp.after.Get(t)) {
			return 0, false
		}
	}
	return base, true
}

// powerReplacements lists the replacement sequences for cell t = c^e, most
// compact first.
func powerReplacements(c, t, e int64) [][]ir.Operation {
	if t == c {
		return [][]ir.Operation{{ir.NewOp(ir.OpPow, ir.Dir(c), ir.Const(e))}}
	}
	return [][]ir.Operation{
		{ir.NewOp(ir.OpPow, ir.Dir(c), ir.Const(e)), ir.NewOp(ir.OpMov, ir.Dir(t), ir.Dir(c))},
		{ir.NewOp(ir.OpMov, ir.Dir(t), ir.Dir(c)), ir.NewOp(ir.OpPow, ir.Dir(t), ir.Const(e))},
	}
}

// exponentialReplacements lists the replacement sequences for cell t = b^c.
// The counter cannot hold its own power without a scratch cell, so t == c
// has none. The second form also leaves the counter at zero, as the loop
// does.
func exponentialReplacements(c, t, b int64) [][]ir.Operation {
	if t == c {
		return nil
	}
	return [][]ir.Operation{
		{ir.NewOp(ir.OpMov, ir.Dir(t), ir.Const(b)), ir.NewOp(ir.OpPow, ir.Dir(t), ir.Dir(c))},
		{ir.NewOp(ir.OpMov, ir.Dir(t), ir.Const(b)), ir.NewOp(ir.OpPow, ir.Dir(t), ir.Dir(c)), ir.NewOp(ir.OpMov, ir.Dir(c), ir.Const(0))},
	}
}

func powerOfCounter(e int64) func(*expr.Node) *expr.Node {
	return func(x *expr.Node) *expr.Node {
		return expr.NewOp(expr.Pow, x, expr.Const(e))
	}
}

func counterAsExponent(b int64) func(*expr.Node) *expr.Node {
	return func(x *expr.Node) *expr.Node {
		return expr.NewOp(expr.Pow, expr.Const(b), x)
	}
}

// signSafe rejects a replacement that could be negative where the loop
// provably leaves cell t non-negative. repl builds the replacement from the
// counter's value before the loop.
func (s *search) signSafe(i int, c, t int64, repl func(*expr.Node) *expr.Node) bool {
	signs := analyzeSigns(ir.NewProgram(s.work.Ops[:i+1]...))
	if signs.get(t) != nonNegative {
		return true
	}
	prefix := ir.NewProgram(s.work.Ops[:i]...)
	x, err := formula.FromPrefix(prefix, c)
	if err != nil {
		// unknown counter value: model it as an opaque function of n
		n := expr.Param(formula.Param)
		x = expr.Func(expr.FreshName(n), n)
	}
	if expr.IsSimpleFunction(x) && analyzeSigns(prefix).get(c) == nonNegative {
		// the sign analysis bounds the opaque counter, so it behaves like a
		// fresh non-negative parameter
		x = expr.Param(expr.FreshName(x))
	}
	r := repl(x)
	expr.Normalize(r)
	return !expr.CanBeNegative(r)
}

// writtenCells returns the sorted cells a loop body may write. It fails for
// bodies whose writes are not statically known.
func writtenCells(body *ir.Program) ([]int64, bool) {
	seen := map[int64]bool{}
	ok := true
	body.Walk(func(_ ir.Path, op *ir.Operation) bool {
		switch op.Type {
		case ir.OpNop:
		case ir.OpLoop:
			if _, direct := op.Target.Cell(); !direct {
				ok = false
			}
		case ir.OpStp:
			for _, st := range op.Steps {
				seen[st.Cell] = true
			}
		case ir.OpClr:
			ok = false
		default:
			c, direct := op.Target.Cell()
			if !direct {
				ok = false
			}
			seen[c] = true
		}
		return ok
	})
	if !ok {
		return nil, false
	}
	cells := make([]int64, 0, len(seen))
	for c := range seen {
		cells = append(cells, c)
	}
	slices.Sort(cells)
	return cells, true
}
