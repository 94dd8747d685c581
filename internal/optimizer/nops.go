package optimizer

import (
	"github.com/roach88/seqmin/internal/ir"
)

// removeNops drops operations that never change memory.
func removeNops(p *ir.Program) bool {
	changed := false
	for i := range p.Ops {
		op := &p.Ops[i]
		if op.IsLoop() {
			changed = removeNops(op.Body) || changed
		}
		if op.Type == ir.OpStp {
			changed = filterSteps(op) || changed
		}
	}
	return filter(p, func(op *ir.Operation) bool { return !isNop(op) }) || changed
}

// filterSteps removes "+=0" entries from a step.
func filterSteps(op *ir.Operation) bool {
	out := op.Steps[:0]
	for _, s := range op.Steps {
		if s.Assign.IsDiff() && s.Assign.Value() == 0 {
			continue
		}
		out = append(out, s)
	}
	changed := len(out) != len(op.Steps)
	op.Steps = out
	return changed
}

func isNop(op *ir.Operation) bool {
	switch op.Type {
	case ir.OpNop:
		return true
	case ir.OpStp:
		return len(op.Steps) == 0
	case ir.OpLoop:
		// an empty body never makes progress, so the loop restores memory
		return op.Body.Len() == 0
	}

	if op.Target.Equal(op.Source) {
		switch op.Type {
		case ir.OpMov, ir.OpMin, ir.OpMax:
			return true
		}
	}
	if op.Source.Kind != ir.Constant {
		return false
	}
	v, ok := op.Source.Value.Int64()
	if !ok {
		return false
	}
	switch op.Type {
	case ir.OpAdd, ir.OpSub, ir.OpClr:
		return v == 0
	case ir.OpMul, ir.OpDiv, ir.OpDif, ir.OpPow:
		return v == 1
	}
	return false
}
