package optimizer

import (
	"github.com/roach88/seqmin/internal/eval"
	"github.com/roach88/seqmin/internal/ir"
	"github.com/roach88/seqmin/internal/number"
)

// propagate substitutes known cell values into sources and folds operations
// whose operands are all known into mov. Nothing is known at the start of a
// program or a loop body, since the input state is arbitrary.
//
// Requires a program without indirect operands.
func (o *Optimizer) propagate(p *ir.Program) bool {
	return o.propagateIn(p, map[int64]number.Number{})
}

func (o *Optimizer) propagateIn(p *ir.Program, known map[int64]number.Number) bool {
	changed := false
	for i := range p.Ops {
		op := &p.Ops[i]
		switch op.Type {
		case ir.OpNop:
		case ir.OpLoop:
			changed = o.propagateIn(op.Body, map[int64]number.Number{}) || changed
			forget(known, op.Body)
			if c, ok := op.Target.Cell(); ok {
				delete(known, c)
			}
		case ir.OpStp:
			for _, s := range op.Steps {
				v := number.FromInt64(s.Assign.Value())
				if !s.Assign.IsDiff() {
					known[s.Cell] = v
				} else if old, ok := known[s.Cell]; ok {
					known[s.Cell] = number.Add(old, v)
				}
			}
		case ir.OpClr:
			changed = substitute(op, known) || changed
			clearKnown(known, op)
		default:
			changed = substitute(op, known) || changed
			changed = o.fold(op, known) || changed
		}
	}
	return changed
}

// substitute replaces a direct source with its known value.
func substitute(op *ir.Operation, known map[int64]number.Number) bool {
	c, ok := op.Source.Cell()
	if !ok {
		return false
	}
	v, ok := known[c]
	if !ok {
		return false
	}
	op.Source = ir.ConstNum(v)
	return true
}

// fold evaluates op when its result is known and records the result.
func (o *Optimizer) fold(op *ir.Operation, known map[int64]number.Number) bool {
	t, ok := op.Target.Cell()
	if !ok {
		return false
	}
	old, targetKnown := known[t]
	if op.Source.Kind != ir.Constant || (!targetKnown && op.Type != ir.OpMov) {
		delete(known, t)
		return false
	}
	v, err := eval.Apply(op.Type, old, op.Source.Value, o.maxBits)
	if err != nil || v.IsUndefined() || v.BitLen() > o.maxBits {
		delete(known, t)
		return false
	}
	known[t] = v
	if op.Type == ir.OpMov {
		return false
	}
	comment := op.Comment
	*op = ir.NewOp(ir.OpMov, op.Target, ir.ConstNum(v))
	op.Comment = comment
	return true
}

func clearKnown(known map[int64]number.Number, op *ir.Operation) {
	t, ok := op.Target.Cell()
	if !ok {
		clear(known)
		return
	}
	k, ok := op.Source.Value.Int64()
	if op.Source.Kind != ir.Constant || !ok {
		clear(known)
		return
	}
	start, end := t, t+k
	if k < 0 {
		start, end = t+k+1, t+1
	}
	for c := range known {
		if c >= start && c < end {
			known[c] = number.Zero
		}
	}
}

// forget drops every cell a loop body may write.
func forget(known map[int64]number.Number, body *ir.Program) {
	body.Walk(func(_ ir.Path, op *ir.Operation) bool {
		switch op.Type {
		case ir.OpNop, ir.OpLoop:
		case ir.OpStp:
			for _, s := range op.Steps {
				delete(known, s.Cell)
			}
		case ir.OpClr:
			clear(known)
			return false
		default:
			if c, ok := op.Target.Cell(); ok {
				delete(known, c)
			}
		}
		return true
	})
}
