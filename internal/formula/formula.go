// Package formula derives closed-form expressions from loop-free programs.
//
// Each memory cell is tracked symbolically while the program runs: $0 starts
// as the parameter n and every other cell as 0. The result is normalized with
// expr.Normalize.
package formula

import (
	"errors"
	"fmt"

	"github.com/roach88/seqmin/internal/asm"
	"github.com/roach88/seqmin/internal/expr"
	"github.com/roach88/seqmin/internal/ir"
)

// ErrUnsupported is returned for programs that have no expression form here:
// loops, indirect operands and operations without an expression equivalent.
var ErrUnsupported = errors.New("unsupported for formula export")

// Param is the name of the sequence index parameter.
const Param = "n"

// FromProgram returns the expression computed into $0.
func FromProgram(p *ir.Program) (*expr.Node, error) {
	return FromPrefix(p, 0)
}

// FromPrefix returns the expression for the given cell after running p.
func FromPrefix(p *ir.Program, cell int64) (*expr.Node, error) {
	cells := map[int64]*expr.Node{0: expr.Param(Param)}
	get := func(c int64) *expr.Node {
		if e, ok := cells[c]; ok {
			return e.Clone()
		}
		return expr.Const(0)
	}
	for _, op := range p.Ops {
		if op.IsLoop() || op.UsesIndirect() {
			return nil, fmt.Errorf("%s: %w", asm.FormatOperation(op), ErrUnsupported)
		}
		switch op.Type {
		case ir.OpNop:
			continue
		case ir.OpStp:
			for _, s := range op.Steps {
				v := expr.Const(s.Assign.Value())
				if s.Assign.IsDiff() {
					v = expr.NewOp(expr.Add, get(s.Cell), v)
				}
				cells[s.Cell] = normalized(v)
			}
			continue
		case ir.OpClr:
			k, ok := op.Source.Value.Int64()
			t, _ := op.Target.Cell()
			if op.Source.Kind != ir.Constant || !ok {
				return nil, fmt.Errorf("%s: %w", asm.FormatOperation(op), ErrUnsupported)
			}
			start, end := t, t+k
			if k < 0 {
				start, end = t+k+1, t+1
			}
			for c := range cells {
				if c >= start && c < end {
					delete(cells, c)
				}
			}
			continue
		}

		t, _ := op.Target.Cell()
		src := expr.ConstNum(op.Source.Value)
		if c, ok := op.Source.Cell(); ok {
			src = get(c)
		}
		e, err := combine(op.Type, get(t), src)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", asm.FormatOperation(op), err)
		}
		cells[t] = normalized(e)
	}
	return get(cell), nil
}

func normalized(e *expr.Node) *expr.Node {
	expr.Normalize(e)
	return e
}

func combine(t ir.OpType, a, b *expr.Node) (*expr.Node, error) {
	switch t {
	case ir.OpMov:
		return b, nil
	case ir.OpAdd:
		return expr.NewOp(expr.Add, a, b), nil
	case ir.OpSub:
		return expr.NewOp(expr.Sub, a, b), nil
	case ir.OpMul:
		return expr.NewOp(expr.Mul, a, b), nil
	case ir.OpDiv:
		return expr.NewOp(expr.Div, a, b), nil
	case ir.OpMod:
		return expr.NewOp(expr.Mod, a, b), nil
	case ir.OpPow:
		return expr.NewOp(expr.Pow, a, b), nil
	case ir.OpTrn:
		return expr.Func("max", expr.NewOp(expr.Sub, a, b), expr.Const(0)), nil
	case ir.OpGcd:
		return expr.Func("gcd", a, b), nil
	case ir.OpMin:
		return expr.Func("min", a, b), nil
	case ir.OpMax:
		return expr.Func("max", a, b), nil
	case ir.OpBin:
		return expr.Func("binomial", a, b), nil
	}
	return nil, ErrUnsupported
}

// Format prints e as a sequence definition, for example "a(n) = n^2".
func Format(e *expr.Node) string {
	return fmt.Sprintf("a(%s) = %s", Param, e)
}
