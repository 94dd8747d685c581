package optimizer

import (
	"github.com/roach88/seqmin/internal/eval"
	"github.com/roach88/seqmin/internal/ir"
	"github.com/roach88/seqmin/internal/number"
)

// merge combines adjacent operations that write the same direct cell.
func (o *Optimizer) merge(p *ir.Program) bool {
	changed := false
	for i := range p.Ops {
		if p.Ops[i].IsLoop() {
			changed = o.merge(p.Ops[i].Body) || changed
		}
	}
	for i := 0; i+1 < len(p.Ops); {
		if r, ok := o.merged(p.Ops[i], p.Ops[i+1]); ok {
			p.Ops[i] = r
			p.Ops = append(p.Ops[:i+1], p.Ops[i+2:]...)
			changed = true
			continue
		}
		i++
	}
	return changed
}

// merged returns a single operation equivalent to a followed by b.
func (o *Optimizer) merged(a, b ir.Operation) (ir.Operation, bool) {
	if !a.Type.IsArithmetic() || !b.Type.IsArithmetic() {
		return ir.Operation{}, false
	}
	if a.Target.Kind != ir.Direct || !a.Target.Equal(b.Target) {
		return ir.Operation{}, false
	}
	keep := func(op ir.Operation) (ir.Operation, bool) {
		if a.Comment != "" && op.Comment == "" {
			op.Comment = a.Comment
		}
		return op, true
	}

	// b overwrites the cell without reading it
	if b.Type == ir.OpMov && b.Source.Kind != ir.Indirect && !b.Source.Equal(b.Target) {
		return keep(b)
	}

	if a.Source.Kind != ir.Constant || b.Source.Kind != ir.Constant {
		return ir.Operation{}, false
	}
	x, y := a.Source.Value, b.Source.Value

	switch {
	case a.Type == ir.OpMov:
		v, err := eval.Apply(b.Type, x, y, o.maxBits)
		if err != nil || v.IsUndefined() {
			return ir.Operation{}, false
		}
		return keep(ir.NewOp(ir.OpMov, a.Target, ir.ConstNum(v)))

	case isAddSub(a.Type) && isAddSub(b.Type):
		sum := number.Add(signed(a.Type, x), signed(b.Type, y))
		if sum.Sign() < 0 {
			return keep(ir.NewOp(ir.OpSub, a.Target, ir.ConstNum(number.Neg(sum))))
		}
		return keep(ir.NewOp(ir.OpAdd, a.Target, ir.ConstNum(sum)))

	case a.Type == ir.OpMul && b.Type == ir.OpMul:
		v := number.Mul(x, y)
		if v.BitLen() > o.maxBits {
			return ir.Operation{}, false
		}
		return keep(ir.NewOp(ir.OpMul, a.Target, ir.ConstNum(v)))

	case a.Type == ir.OpDiv && b.Type == ir.OpDiv && x.Sign() > 0 && y.Sign() > 0:
		// truncated division composes for positive divisors
		v := number.Mul(x, y)
		if v.BitLen() > o.maxBits {
			return ir.Operation{}, false
		}
		return keep(ir.NewOp(ir.OpDiv, a.Target, ir.ConstNum(v)))
	}
	return ir.Operation{}, false
}

func isAddSub(t ir.OpType) bool {
	return t == ir.OpAdd || t == ir.OpSub
}

func signed(t ir.OpType, v number.Number) number.Number {
	if t == ir.OpSub {
		return number.Neg(v)
	}
	return v
}
