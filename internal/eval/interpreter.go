package eval

import (
	"errors"
	"log/slog"

	"github.com/roach88/seqmin/internal/asm"
	"github.com/roach88/seqmin/internal/ir"
	"github.com/roach88/seqmin/internal/memory"
	"github.com/roach88/seqmin/internal/number"
)

// DefaultMaxCycles is the default step budget for a single term.
const DefaultMaxCycles = 5_000_000

// DefaultMaxTotal is the default step budget for a whole evaluation.
const DefaultMaxTotal = 50_000_000

// DefaultMaxMemory is the default bound on memory.Memory.ApproximateSize.
const DefaultMaxMemory = 100_000

// Interpreter runs a program on a memory.
type Interpreter struct {
	maxCycles int64
	maxBits   int
	maxMemory int
	logger    *slog.Logger
}

// NewInterpreter creates an interpreter with the given options.
func NewInterpreter(opts ...Option) *Interpreter {
	o := newOptions(opts)
	return &Interpreter{
		maxCycles: o.maxCycles,
		maxBits:   o.maxBits,
		maxMemory: o.maxMemory,
		logger:    o.logger,
	}
}

// MaxCycles returns the per-run step budget.
func (in *Interpreter) MaxCycles() int64 {
	return in.maxCycles
}

// MaxMemory returns the bound on the approximate memory size.
func (in *Interpreter) MaxMemory() int {
	return in.maxMemory
}

// MaxBits returns the bit bound on values.
func (in *Interpreter) MaxBits() int {
	return in.maxBits
}

// Run executes p on mem in place and returns the number of steps taken.
// On error mem is left in whatever state execution reached.
func (in *Interpreter) Run(p *ir.Program, mem *memory.Memory) (int64, error) {
	q := newStepQuota(in.maxCycles)
	err := in.run(p, mem, q)
	if err != nil {
		in.logger.Debug("run failed", "steps", q.current, "error", err)
	}
	return q.current, err
}

// runBudget is Run with an explicit budget, used by the Evaluator to honor
// both the per-term and total limits.
func (in *Interpreter) runBudget(p *ir.Program, mem *memory.Memory, limit int64) (int64, error) {
	q := newStepQuota(limit)
	err := in.run(p, mem, q)
	return q.current, err
}

func (in *Interpreter) run(p *ir.Program, mem *memory.Memory, q *stepQuota) error {
	if p == nil {
		return nil
	}
	for i := range p.Ops {
		op := &p.Ops[i]
		if err := q.check(); err != nil {
			return err
		}
		var err error
		if op.IsLoop() {
			err = in.loop(op, mem, q)
		} else {
			err = in.exec(op, mem)
		}
		if err != nil {
			var ee *EvalError
			if errors.As(err, &ee) && ee.Op == "" && !op.IsLoop() {
				ee.Op = asm.FormatOperation(*op)
			}
			return err
		}
	}
	return nil
}

func (in *Interpreter) loop(op *ir.Operation, mem *memory.Memory, q *stepQuota) error {
	length := op.LoopLength()
	for {
		start, err := in.address(op.Target, mem)
		if err != nil {
			return err
		}
		snapshot := mem.Clone()
		before := mem.Fragment(start, length)
		if err := in.run(op.Body, mem, q); err != nil {
			return err
		}
		if !mem.Fragment(start, length).IsLess(before, length, true) {
			*mem = *snapshot
			return nil
		}
		if err := q.check(); err != nil {
			return err
		}
	}
}

// address resolves a memory operand to a cell index.
func (in *Interpreter) address(o ir.Operand, mem *memory.Memory) (int64, error) {
	v := o.Value
	switch o.Kind {
	case ir.Direct:
	case ir.Indirect:
		cell, err := toCell(v)
		if err != nil {
			return 0, err
		}
		v = mem.Get(cell)
	default:
		return 0, newError(ErrCodeNegativeAddress, "constant %s used as address", o.Value)
	}
	return toCell(v)
}

func toCell(v number.Number) (int64, error) {
	if v.Sign() < 0 {
		return 0, newError(ErrCodeNegativeAddress, "negative address %s", v)
	}
	cell, ok := v.Int64()
	if !ok {
		return 0, newError(ErrCodeOverflow, "address %s out of range", v)
	}
	return cell, nil
}

// value reads an operand.
func (in *Interpreter) value(o ir.Operand, mem *memory.Memory) (number.Number, error) {
	if o.Kind == ir.Constant {
		return o.Value, nil
	}
	cell, err := in.address(o, mem)
	if err != nil {
		return number.Number{}, err
	}
	return mem.Get(cell), nil
}

func (in *Interpreter) exec(op *ir.Operation, mem *memory.Memory) error {
	switch op.Type {
	case ir.OpNop:
		return nil
	case ir.OpStp:
		for _, s := range op.Steps {
			v := number.FromInt64(s.Assign.Value())
			if s.Assign.IsDiff() {
				v = number.Add(mem.Get(s.Cell), v)
			}
			if err := in.store(mem, s.Cell, v); err != nil {
				return err
			}
		}
		return nil
	case ir.OpClr:
		return in.clear(op, mem)
	}

	target, err := in.address(op.Target, mem)
	if err != nil {
		return err
	}
	b, err := in.value(op.Source, mem)
	if err != nil {
		return err
	}
	r, err := Apply(op.Type, mem.Get(target), b, in.maxBits)
	if err != nil {
		return err
	}
	return in.store(mem, target, r)
}

func (in *Interpreter) clear(op *ir.Operation, mem *memory.Memory) error {
	target, err := in.address(op.Target, mem)
	if err != nil {
		return err
	}
	n, err := in.value(op.Source, mem)
	if err != nil {
		return err
	}
	k, ok := n.Int64()
	if !ok {
		return newError(ErrCodeOverflow, "clear length %s out of range", n)
	}
	if k < 0 {
		// clears the -k cells ending at target
		target, k = target+k+1, -k
	}
	if target < 0 {
		return newError(ErrCodeNegativeAddress, "clear reaches negative address %d", target)
	}
	mem.ClearRange(target, k)
	return nil
}

func (in *Interpreter) store(mem *memory.Memory, cell int64, v number.Number) error {
	if v.IsUndefined() {
		return newError(ErrCodeUndefined, "undefined result in $%d", cell)
	}
	if v.BitLen() > in.maxBits {
		return newError(ErrCodeOverflow, "value in $%d exceeds %d bits", cell, in.maxBits)
	}
	mem.Set(cell, v)
	if in.maxMemory > 0 && mem.ApproximateSize() > in.maxMemory {
		return newError(ErrCodeMemoryLimit, "memory size %d exceeds %d after writing $%d",
			mem.ApproximateSize(), in.maxMemory, cell)
	}
	return nil
}

// Apply computes the result of a two-operand arithmetic operation on a
// target value a and a source value b. mov returns b.
//
// The result may be number.Undefined (for example on division by zero).
// Pow and bin report values larger than maxBits as an OVERFLOW error.
func Apply(t ir.OpType, a, b number.Number, maxBits int) (number.Number, error) {
	switch t {
	case ir.OpMov:
		return b, nil
	case ir.OpAdd:
		return number.Add(a, b), nil
	case ir.OpSub:
		return number.Sub(a, b), nil
	case ir.OpTrn:
		return number.Trn(a, b), nil
	case ir.OpMul:
		return number.Mul(a, b), nil
	case ir.OpDiv:
		return number.Div(a, b), nil
	case ir.OpDif:
		return number.Dif(a, b), nil
	case ir.OpMod:
		return number.Mod(a, b), nil
	case ir.OpGcd:
		return number.Gcd(a, b), nil
	case ir.OpCmp:
		return number.Cmp(a, b), nil
	case ir.OpMin:
		return number.Min(a, b), nil
	case ir.OpMax:
		return number.Max(a, b), nil
	case ir.OpPow:
		r, err := number.Pow(a, b, maxBits)
		if err != nil {
			return number.Number{}, newError(ErrCodeOverflow, "%s^%s exceeds %d bits", a, b, maxBits)
		}
		return r, nil
	case ir.OpBin:
		r, err := number.Binomial(a, b, maxBits)
		if err != nil {
			return number.Number{}, newError(ErrCodeOverflow, "bin(%s,%s) exceeds %d bits", a, b, maxBits)
		}
		return r, nil
	default:
		return number.Number{}, newError(ErrCodeUndefined, "%s is not an arithmetic operation", t)
	}
}
