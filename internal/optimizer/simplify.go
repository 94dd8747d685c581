package optimizer

import (
	"github.com/roach88/seqmin/internal/ir"
)

// simplify replaces operations whose result does not depend on the target
// value with mov, and rewrites single-entry steps as arithmetic.
func simplify(p *ir.Program) bool {
	changed := false
	for i := range p.Ops {
		op := &p.Ops[i]
		if op.IsLoop() {
			changed = simplify(op.Body) || changed
			continue
		}
		if r, ok := simplified(*op); ok {
			r.Comment = op.Comment
			*op = r
			changed = true
		}
	}
	return changed
}

func simplified(op ir.Operation) (ir.Operation, bool) {
	if op.Type == ir.OpStp {
		if len(op.Steps) != 1 {
			return op, false
		}
		s := op.Steps[0]
		target := ir.Dir(s.Cell)
		v := s.Assign.Value()
		switch {
		case !s.Assign.IsDiff():
			return ir.NewOp(ir.OpMov, target, ir.Const(v)), true
		case v >= 0:
			return ir.NewOp(ir.OpAdd, target, ir.Const(v)), true
		default:
			return ir.NewOp(ir.OpSub, target, ir.Const(-v)), true
		}
	}

	if op.Target.Equal(op.Source) {
		switch op.Type {
		case ir.OpSub, ir.OpTrn:
			return ir.NewOp(ir.OpMov, op.Target, ir.Const(0)), true
		case ir.OpCmp:
			return ir.NewOp(ir.OpMov, op.Target, ir.Const(1)), true
		}
	}

	if op.Source.Kind != ir.Constant {
		return op, false
	}
	v, ok := op.Source.Value.Int64()
	if !ok {
		return op, false
	}
	switch {
	case op.Type == ir.OpMul && v == 0:
		return ir.NewOp(ir.OpMov, op.Target, ir.Const(0)), true
	case op.Type == ir.OpPow && v == 0:
		return ir.NewOp(ir.OpMov, op.Target, ir.Const(1)), true
	case op.Type == ir.OpBin && v == 0:
		return ir.NewOp(ir.OpMov, op.Target, ir.Const(1)), true
	case op.Type == ir.OpMod && (v == 1 || v == -1):
		return ir.NewOp(ir.OpMov, op.Target, ir.Const(0)), true
	case op.Type == ir.OpGcd && (v == 1 || v == -1):
		return ir.NewOp(ir.OpMov, op.Target, ir.Const(1)), true
	}
	return op, false
}
