package asm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/seqmin/internal/ir"
)

const squaresText = `mov $1,1 ; odd numbers
lpb $0
  sub $0,1
  add $2,$1
  add $1,2
lpe
mov $0,$2
`

func TestParseSquares(t *testing.T) {
	p, err := Parse(squaresText)
	require.NoError(t, err)

	want := ir.NewProgram(
		ir.NewOp(ir.OpMov, ir.Dir(1), ir.Const(1)),
		ir.NewLoop(ir.Dir(0), 1, ir.NewProgram(
			ir.NewOp(ir.OpSub, ir.Dir(0), ir.Const(1)),
			ir.NewOp(ir.OpAdd, ir.Dir(2), ir.Dir(1)),
			ir.NewOp(ir.OpAdd, ir.Dir(1), ir.Const(2)),
		)),
		ir.NewOp(ir.OpMov, ir.Dir(0), ir.Dir(2)),
	)
	assert.True(t, want.Equal(p), "got:\n%s", Format(p))
	assert.Equal(t, "odd numbers", p.Ops[0].Comment)
}

func TestFormatRoundTrip(t *testing.T) {
	p := MustParse(squaresText)
	assert.Equal(t, squaresText, Format(p))
}

func TestParseOperandKinds(t *testing.T) {
	p := MustParse("add $$3,$4\nmul $1,-12345678901234567890\n")
	require.Equal(t, 2, p.Len())
	assert.Equal(t, ir.Indirect, p.Ops[0].Target.Kind)
	assert.Equal(t, ir.Direct, p.Ops[0].Source.Kind)
	assert.Equal(t, ir.Constant, p.Ops[1].Source.Kind)
	assert.Equal(t, "-12345678901234567890", p.Ops[1].Source.String())
}

func TestParseLoopLengthAndStep(t *testing.T) {
	src := "lpb $2,3\n  stp $1+=3,$2=-5\n  clr $4,2\n  nop\nlpe\n"
	p := MustParse(src)
	require.Equal(t, 1, p.Len())
	loop := p.Ops[0]
	assert.Equal(t, int64(3), loop.LoopLength())
	require.Equal(t, 3, loop.Body.Len())

	stp := loop.Body.Ops[0]
	require.Len(t, stp.Steps, 2)
	assert.Equal(t, int64(1), stp.Steps[0].Cell)
	assert.True(t, stp.Steps[0].Assign.IsDiff())
	assert.Equal(t, int64(3), stp.Steps[0].Assign.Value())
	assert.False(t, stp.Steps[1].Assign.IsDiff())
	assert.Equal(t, int64(-5), stp.Steps[1].Assign.Value())

	assert.Equal(t, src, Format(p))
}

func TestParseIgnoresIndentationAndBlankLines(t *testing.T) {
	p := MustParse("; header\n\n\tmov $0,1\n      lpb $0\nsub $0,1\n lpe\n")
	require.Equal(t, 2, p.Len())
	assert.Equal(t, 1, p.Ops[1].Body.Len())
}

func TestParseEmpty(t *testing.T) {
	p, err := Parse("")
	require.NoError(t, err)
	assert.Equal(t, 0, p.Len())
	assert.Equal(t, "", Format(p))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
		col  int
	}{
		{"unknown op", "mov $0,1\nfoo $0,1\n", 2, 1},
		{"missing arg", "add $0\n", 1, 4},
		{"constant target", "add 3,$1\n", 1, 5},
		{"bad operand", "add $0,$x\n", 1, 8},
		{"negative address", "add $-1,1\n", 1, 5},
		{"stray lpe", "lpe\n", 1, 1},
		{"unclosed lpb", "mov $0,1\n  lpb $0\n", 2, 3},
		{"bad loop length", "lpb $0,0\nlpe\n", 1, 8},
		{"lpe with args", "lpb $0\nlpe $0\n", 2, 5},
		{"nop with args", "nop 1\n", 1, 5},
		{"bad step", "stp $1~3\n", 1, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse(tt.src)
			require.Error(t, err)
			assert.Nil(t, p, "no partial program on error")

			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.line, pe.Line, pe.Error())
			assert.Equal(t, tt.col, pe.Column, pe.Error())
		})
	}
}

func TestParseStepOutOfRange(t *testing.T) {
	_, err := Parse("stp $1+=64\n")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ir.ErrEncoding))
}
