package minimizer

import (
	"maps"

	"github.com/roach88/seqmin/internal/ir"
)

// sign is an abstract cell value: either provably non-negative or unknown.
type sign uint8

const (
	nonNegative sign = iota
	anySign
)

func join(a, b sign) sign {
	return max(a, b)
}

// signState maps cells to signs. Cells not in the map are non-negative,
// since a term starts with $0 = n and zeros elsewhere. top marks a state in
// which nothing is known.
type signState struct {
	cells map[int64]sign
	top   bool
}

func newSignState() *signState {
	return &signState{cells: map[int64]sign{}}
}

func (s *signState) get(c int64) sign {
	if s.top {
		return anySign
	}
	return s.cells[c]
}

func (s *signState) set(c int64, v sign) {
	if v == nonNegative {
		delete(s.cells, c)
		return
	}
	s.cells[c] = v
}

func (s *signState) clone() *signState {
	return &signState{cells: maps.Clone(s.cells), top: s.top}
}

func (s *signState) joinWith(o *signState) {
	s.top = s.top || o.top
	for c, v := range o.cells {
		s.set(c, join(s.get(c), v))
	}
}

func (s *signState) equal(o *signState) bool {
	return s.top == o.top && maps.Equal(s.cells, o.cells)
}

// analyzeSigns runs a forward sign analysis over p from the initial state
// of a term.
func analyzeSigns(p *ir.Program) *signState {
	s := newSignState()
	s.run(p)
	return s
}

func (s *signState) run(p *ir.Program) {
	for i := range p.Ops {
		s.step(&p.Ops[i])
	}
}

func (s *signState) operand(o ir.Operand) sign {
	switch o.Kind {
	case ir.Constant:
		if o.Value.Sign() < 0 {
			return anySign
		}
		return nonNegative
	case ir.Direct:
		c, _ := o.Cell()
		return s.get(c)
	}
	return anySign
}

func (s *signState) step(op *ir.Operation) {
	if op.Type != ir.OpLoop && op.Target.Kind == ir.Indirect {
		s.top = true
		return
	}
	switch op.Type {
	case ir.OpNop, ir.OpClr:
		// clearing only produces zeros
		return
	case ir.OpStp:
		for _, st := range op.Steps {
			v := st.Assign.Value()
			switch {
			case v < 0:
				s.set(st.Cell, anySign)
			case !st.Assign.IsDiff():
				s.set(st.Cell, nonNegative)
			}
		}
		return
	case ir.OpLoop:
		// fixed point over iteration entry states; the loop exits with one
		// of them restored
		in := s.clone()
		for {
			out := in.clone()
			out.run(op.Body)
			next := in.clone()
			next.joinWith(out)
			if next.equal(in) {
				break
			}
			in = next
		}
		*s = *in
		return
	}

	t, _ := op.Target.Cell()
	a, b := s.get(t), s.operand(op.Source)
	both := join(a, b)
	var r sign
	switch op.Type {
	case ir.OpMov:
		r = b
	case ir.OpAdd, ir.OpMul, ir.OpDiv, ir.OpDif, ir.OpBin, ir.OpMin:
		r = both
	case ir.OpSub:
		r = anySign
		if a == nonNegative && op.Source.Kind == ir.Constant && op.Source.Value.Sign() <= 0 {
			r = nonNegative
		}
	case ir.OpTrn, ir.OpGcd, ir.OpCmp:
		r = nonNegative
	case ir.OpMod:
		r = a
	case ir.OpPow:
		r = a
		if op.Source.Kind == ir.Constant && !op.Source.Value.IsOdd() {
			r = nonNegative
		}
	case ir.OpMax:
		r = min(a, b)
	default:
		r = anySign
	}
	s.set(t, r)
}
