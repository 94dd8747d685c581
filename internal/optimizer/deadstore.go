package optimizer

import (
	"github.com/roach88/seqmin/internal/ir"
)

// maxClearKill bounds how many cells a clr may mark dead during liveness.
// Longer clears are treated as not killing anything.
const maxClearKill = 64

// liveness is a set of live cells. When all is set, every cell is live
// except those in set; otherwise only the cells in set are live.
type liveness struct {
	all bool
	set map[int64]bool
}

func liveOnly(cells ...int64) *liveness {
	l := &liveness{set: map[int64]bool{}}
	for _, c := range cells {
		l.set[c] = true
	}
	return l
}

func liveAll() *liveness {
	return &liveness{all: true, set: map[int64]bool{}}
}

func (l *liveness) isLive(c int64) bool {
	if l.all {
		return !l.set[c]
	}
	return l.set[c]
}

func (l *liveness) kill(c int64) {
	if l.all {
		l.set[c] = true
	} else {
		delete(l.set, c)
	}
}

func (l *liveness) use(c int64) {
	if l.all {
		delete(l.set, c)
	} else {
		l.set[c] = true
	}
}

func (l *liveness) useOperand(o ir.Operand) {
	if c, ok := o.Cell(); ok {
		l.use(c)
	}
}

// eliminateDeadStores removes writes whose value is never read before being
// overwritten or before the program ends. Only $0 is live at the end. A loop
// is treated as reading every cell, and nothing after a loop body is assumed
// dead.
//
// Requires a program without indirect operands.
func eliminateDeadStores(p *ir.Program) bool {
	return deadStores(p, liveOnly(0))
}

func deadStores(p *ir.Program, live *liveness) bool {
	changed := false
	keep := make([]bool, len(p.Ops))
	for i := len(p.Ops) - 1; i >= 0; i-- {
		op := &p.Ops[i]
		keep[i] = true
		switch op.Type {
		case ir.OpNop:
		case ir.OpLoop:
			changed = deadStores(op.Body, liveAll()) || changed
			*live = *liveAll()
		case ir.OpStp:
			if deadSteps(op, live) {
				changed = true
			}
			keep[i] = len(op.Steps) > 0
		case ir.OpClr:
			keep[i] = clearLiveness(op, live)
		default:
			t, ok := op.Target.Cell()
			if !ok {
				live.useOperand(op.Source)
				continue
			}
			if !live.isLive(t) {
				keep[i] = false
				continue
			}
			if !op.Type.ReadsTarget() {
				live.kill(t)
			}
			live.useOperand(op.Source)
		}
	}
	i := 0
	return filter(p, func(*ir.Operation) bool {
		k := keep[i]
		i++
		return k
	}) || changed
}

// deadSteps drops step entries whose cell is dead, walking them backwards.
func deadSteps(op *ir.Operation, live *liveness) bool {
	keep := make([]bool, len(op.Steps))
	n := 0
	for j := len(op.Steps) - 1; j >= 0; j-- {
		s := op.Steps[j]
		if !live.isLive(s.Cell) {
			continue
		}
		keep[j] = true
		n++
		if !s.Assign.IsDiff() {
			live.kill(s.Cell)
		}
	}
	if n == len(op.Steps) {
		return false
	}
	out := make([]ir.StepEntry, 0, n)
	for j, s := range op.Steps {
		if keep[j] {
			out = append(out, s)
		}
	}
	op.Steps = out
	return true
}

// clearLiveness updates live for a clr and reports whether it must be kept.
func clearLiveness(op *ir.Operation, live *liveness) bool {
	t, ok := op.Target.Cell()
	k, kok := op.Source.Value.Int64()
	if !ok || op.Source.Kind != ir.Constant || !kok || k > maxClearKill || k < -maxClearKill {
		live.useOperand(op.Source)
		return true
	}
	start, end := t, t+k
	if k < 0 {
		start, end = t+k+1, t+1
	}
	needed := false
	for c := start; c < end; c++ {
		if live.isLive(c) {
			needed = true
		}
		live.kill(c)
	}
	return needed
}
