package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// squares computes n^2 by summing odd numbers.
func squares() *Program {
	return NewProgram(
		NewOp(OpMov, Dir(1), Const(1)),
		NewLoop(Dir(0), 1, NewProgram(
			NewOp(OpSub, Dir(0), Const(1)),
			NewOp(OpAdd, Dir(2), Dir(1)),
			NewOp(OpAdd, Dir(1), Const(2)),
		)),
		NewOp(OpMov, Dir(0), Dir(2)),
	)
}

func TestProgramSize(t *testing.T) {
	p := squares()
	assert.Equal(t, 3, p.Len())
	assert.Equal(t, 6, p.Size())
	assert.Equal(t, 0, (&Program{}).Size())
	assert.Equal(t, 0, (*Program)(nil).Size())
}

func TestProgramCloneIsDeep(t *testing.T) {
	p := squares()
	c := p.Clone()
	require.True(t, p.Equal(c))

	c.Ops[1].Body.Ops[0].Source = Const(2)
	assert.False(t, p.Equal(c))
	assert.Equal(t, "1", p.Ops[1].Body.Ops[0].Source.String())
}

func TestProgramEqualIgnoresComments(t *testing.T) {
	p := squares()
	c := squares()
	c.Ops[0].Comment = "odd increment"
	assert.True(t, p.Equal(c))
}

func TestProgramEqualDetectsDifferences(t *testing.T) {
	base := squares()

	lengthDiff := squares()
	lengthDiff.Ops[1].Source = Const(2)
	assert.False(t, base.Equal(lengthDiff))

	typeDiff := squares()
	typeDiff.Ops[2].Type = OpAdd
	assert.False(t, base.Equal(typeDiff))

	assert.False(t, base.Equal(&Program{}))
	assert.True(t, (&Program{}).Equal(nil))
}

func TestStepEquality(t *testing.T) {
	a := NewStep(StepEntry{Cell: 1, Assign: MustAssignment(true, 2)})
	b := NewStep(StepEntry{Cell: 1, Assign: MustAssignment(true, 2)})
	c := NewStep(StepEntry{Cell: 1, Assign: MustAssignment(false, 2)})
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestProgramWalkOrder(t *testing.T) {
	p := squares()
	var types []string
	var paths []Path
	p.Walk(func(path Path, op *Operation) bool {
		types = append(types, op.Type.String())
		paths = append(paths, path)
		return true
	})
	assert.Equal(t, []string{"mov", "lpb", "sub", "add", "add", "mov"}, types)
	assert.Equal(t, []Path{{0}, {1}, {1, 0}, {1, 1}, {1, 2}, {2}}, paths)
	assert.Equal(t, paths, p.Paths())
}

func TestProgramAtReplaceRemove(t *testing.T) {
	p := squares()

	op := p.At(Path{1, 1})
	require.NotNil(t, op)
	assert.Equal(t, OpAdd, op.Type)
	assert.Nil(t, p.At(Path{0, 0}), "mov has no body")
	assert.Nil(t, p.At(Path{7}))
	assert.Nil(t, p.At(nil))

	require.True(t, p.Remove(Path{1, 0}))
	assert.Equal(t, 2, p.Ops[1].Body.Len())

	require.True(t, p.Replace(Path{1}, NewOp(OpPow, Dir(0), Const(2)), NewOp(OpMov, Dir(2), Dir(0))))
	assert.Equal(t, []OpType{OpMov, OpPow, OpMov, OpMov}, []OpType{p.Ops[0].Type, p.Ops[1].Type, p.Ops[2].Type, p.Ops[3].Type})
	assert.False(t, p.Replace(Path{9}))
}

func TestHasIndirect(t *testing.T) {
	p := squares()
	assert.False(t, p.HasIndirect())
	p.Ops[1].Body.Ops[1].Source = Ind(1)
	assert.True(t, p.HasIndirect())
}

func TestOpTypeNames(t *testing.T) {
	for _, name := range []string{"nop", "mov", "add", "sub", "trn", "mul", "div", "dif", "mod", "pow", "gcd", "bin", "cmp", "min", "max", "clr", "stp", "lpb"} {
		op, ok := ParseOpType(name)
		require.True(t, ok, name)
		assert.Equal(t, name, op.String())
	}
	_, ok := ParseOpType("lpe")
	assert.False(t, ok)

	assert.True(t, OpAdd.ReadsTarget())
	assert.False(t, OpMov.ReadsTarget())
	assert.False(t, OpClr.IsArithmetic())
}

func TestLoopLength(t *testing.T) {
	assert.Equal(t, int64(1), NewLoop(Dir(0), 1, nil).LoopLength())
	assert.Equal(t, int64(3), NewLoop(Dir(0), 3, nil).LoopLength())
	assert.Equal(t, int64(1), NewLoop(Dir(0), -2, nil).LoopLength())
}
