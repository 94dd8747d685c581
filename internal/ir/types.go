package ir

import (
	"fmt"

	"github.com/roach88/seqmin/internal/number"
)

// OperandKind distinguishes constants from memory references.
type OperandKind uint8

const (
	// Constant is a literal value.
	Constant OperandKind = iota
	// Direct references memory cell $n.
	Direct
	// Indirect references the cell whose address is stored in $n ($$n).
	Indirect
)

// Operand is an instruction argument.
type Operand struct {
	Kind  OperandKind
	Value number.Number
}

// Const creates a constant operand.
func Const(v int64) Operand {
	return Operand{Kind: Constant, Value: number.FromInt64(v)}
}

// ConstNum creates a constant operand from a Number.
func ConstNum(v number.Number) Operand {
	return Operand{Kind: Constant, Value: v}
}

// Dir creates a direct memory operand $cell.
func Dir(cell int64) Operand {
	return Operand{Kind: Direct, Value: number.FromInt64(cell)}
}

// Ind creates an indirect memory operand $$cell.
func Ind(cell int64) Operand {
	return Operand{Kind: Indirect, Value: number.FromInt64(cell)}
}

// Cell returns the referenced cell of a direct operand.
func (o Operand) Cell() (int64, bool) {
	if o.Kind != Direct {
		return 0, false
	}
	return o.Value.Int64()
}

// Equal reports whether both operands are identical.
func (o Operand) Equal(p Operand) bool {
	return o.Kind == p.Kind && o.Value.Equal(p.Value)
}

func (o Operand) String() string {
	switch o.Kind {
	case Direct:
		return "$" + o.Value.String()
	case Indirect:
		return "$$" + o.Value.String()
	default:
		return o.Value.String()
	}
}

// OpType identifies an operation.
type OpType uint8

const (
	OpNop OpType = iota
	OpMov
	OpAdd
	OpSub
	OpTrn
	OpMul
	OpDiv
	OpDif
	OpMod
	OpPow
	OpGcd
	OpBin
	OpCmp
	OpMin
	OpMax
	OpClr
	OpStp
	OpLoop
)

var opNames = [...]string{
	OpNop:  "nop",
	OpMov:  "mov",
	OpAdd:  "add",
	OpSub:  "sub",
	OpTrn:  "trn",
	OpMul:  "mul",
	OpDiv:  "div",
	OpDif:  "dif",
	OpMod:  "mod",
	OpPow:  "pow",
	OpGcd:  "gcd",
	OpBin:  "bin",
	OpCmp:  "cmp",
	OpMin:  "min",
	OpMax:  "max",
	OpClr:  "clr",
	OpStp:  "stp",
	OpLoop: "lpb",
}

func (t OpType) String() string {
	if int(t) < len(opNames) {
		return opNames[t]
	}
	return fmt.Sprintf("op(%d)", uint8(t))
}

// ParseOpType looks up an operation by mnemonic. "lpe" is not an OpType.
func ParseOpType(name string) (OpType, bool) {
	for i, n := range opNames {
		if n == name {
			return OpType(i), true
		}
	}
	return 0, false
}

// IsArithmetic reports whether t is a two-operand instruction that writes its
// target (mov through max).
func (t OpType) IsArithmetic() bool {
	return t >= OpMov && t <= OpMax
}

// ReadsTarget reports whether the old target value feeds the result.
func (t OpType) ReadsTarget() bool {
	return t.IsArithmetic() && t != OpMov
}

// StepEntry applies one Assignment to one cell.
type StepEntry struct {
	Cell   int64
	Assign Assignment
}

// Operation is a single instruction.
//
// Leaf operations use Target and Source (Steps for OpStp). A loop (OpLoop)
// uses Target as its counter, Source as a constant fragment length and owns
// Body exclusively.
type Operation struct {
	Type    OpType
	Target  Operand
	Source  Operand
	Steps   []StepEntry
	Body    *Program
	Comment string
}

// NewOp creates a two-operand leaf operation.
func NewOp(t OpType, target, source Operand) Operation {
	return Operation{Type: t, Target: target, Source: source}
}

// NewLoop creates a loop over the fragment [counter, counter+length).
func NewLoop(counter Operand, length int64, body *Program) Operation {
	if body == nil {
		body = &Program{}
	}
	return Operation{Type: OpLoop, Target: counter, Source: Const(length), Body: body}
}

// NewStep creates a packed assignment step.
func NewStep(entries ...StepEntry) Operation {
	return Operation{Type: OpStp, Steps: entries}
}

// IsLoop reports whether op owns a body.
func (op Operation) IsLoop() bool {
	return op.Type == OpLoop
}

// LoopLength returns the fragment length of a loop (at least 1).
func (op Operation) LoopLength() int64 {
	if v, ok := op.Source.Value.Int64(); ok && op.Source.Kind == Constant && v > 1 {
		return v
	}
	return 1
}

// Clone returns a deep copy.
func (op Operation) Clone() Operation {
	c := op
	if op.Steps != nil {
		c.Steps = append([]StepEntry(nil), op.Steps...)
	}
	if op.Body != nil {
		c.Body = op.Body.Clone()
	}
	return c
}

// Equal reports structural equality, ignoring comments.
func (op Operation) Equal(o Operation) bool {
	if op.Type != o.Type {
		return false
	}
	switch op.Type {
	case OpNop:
		return true
	case OpStp:
		if len(op.Steps) != len(o.Steps) {
			return false
		}
		for i := range op.Steps {
			if op.Steps[i] != o.Steps[i] {
				return false
			}
		}
		return true
	case OpLoop:
		return op.Target.Equal(o.Target) && op.LoopLength() == o.LoopLength() && op.Body.Equal(o.Body)
	default:
		return op.Target.Equal(o.Target) && op.Source.Equal(o.Source)
	}
}

// UsesIndirect reports whether op (not its body) has an indirect operand.
func (op Operation) UsesIndirect() bool {
	return op.Target.Kind == Indirect || op.Source.Kind == Indirect
}
