package formula

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/seqmin/internal/asm"
	"github.com/roach88/seqmin/internal/eval"
	"github.com/roach88/seqmin/internal/expr"
	"github.com/roach88/seqmin/internal/number"
)

func TestFromProgram(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"pow $0,2\n", "a(n) = n^2"},
		{"mul $0,2\nadd $0,1\n", "a(n) = 1+2*n"},
		{"mov $1,$0\nadd $1,1\nmul $0,$1\ndiv $0,2\n", "a(n) = truncate(n*(1+n)/2)"},
		{"mov $0,7\n", "a(n) = 7"},
		{"trn $0,3\n", "a(n) = max(n-3,0)"},
		{"stp $1=4,$0+=2\n", "a(n) = 2+n"},
		{"mov $1,$0\nbin $1,2\nmov $0,$1\n", "a(n) = binomial(n,2)"},
		{"mov $1,5\nclr $1,1\nadd $0,$1\n", "a(n) = n"},
		{"", "a(n) = n"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			e, err := FromProgram(asm.MustParse(tt.src))
			require.NoError(t, err)
			assert.Equal(t, tt.want, Format(e))
		})
	}
}

func TestFromProgramMatchesEvaluation(t *testing.T) {
	srcs := []string{
		"mul $0,3\nsub $0,4\nmod $0,5\n",
		"mov $1,$0\nadd $1,1\nmul $0,$1\ndiv $0,2\n",
		"mov $1,2\npow $1,$0\ngcd $0,$1\n",
		"mov $1,$0\nmin $1,4\nmax $0,$1\nsub $0,$1\n",
	}
	ev := eval.New()
	for _, src := range srcs {
		p := asm.MustParse(src)
		e, err := FromProgram(p)
		require.NoError(t, err, src)

		seq, _, err := ev.Eval(p, 10)
		require.NoError(t, err, src)
		for i, want := range seq {
			got, err := expr.Evaluate(e, map[string]number.Number{Param: number.FromInt64(int64(i))})
			require.NoError(t, err, "%s at n=%d", e, i)
			assert.Equal(t, want.String(), got.String(), "%s at n=%d", e, i)
		}
	}
}

func TestFromPrefix(t *testing.T) {
	p := asm.MustParse("mov $1,$0\nadd $1,3\nmul $0,2\n")
	e, err := FromPrefix(p, 1)
	require.NoError(t, err)
	assert.Equal(t, "3+n", e.String())

	e, err = FromPrefix(p, 7)
	require.NoError(t, err)
	assert.Equal(t, "0", e.String())
}

func TestUnsupported(t *testing.T) {
	for _, src := range []string{
		"lpb $0\n  sub $0,1\nlpe\n",
		"mov $$0,1\n",
		"cmp $0,1\n",
		"dif $0,2\n",
		"clr $0,$1\n",
	} {
		_, err := FromProgram(asm.MustParse(src))
		assert.True(t, errors.Is(err, ErrUnsupported), src)
	}
}
