package minimizer

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/seqmin/internal/asm"
	"github.com/roach88/seqmin/internal/eval"
	"github.com/roach88/seqmin/internal/number"
)

const squaresText = `mov $1,1
lpb $0
  sub $0,1
  add $2,$1
  add $1,2
lpe
mov $0,$2
`

const powersOfTwoText = `mov $1,1
lpb $0
  sub $0,1
  mul $1,2
lpe
mov $0,$1
`

func ints(vals ...int64) []number.Number {
	out := make([]number.Number, len(vals))
	for i, v := range vals {
		out[i] = number.FromInt64(v)
	}
	return out
}

type countingObserver struct {
	mu       sync.Mutex
	checked  map[EditKind]int
	accepted map[EditKind]int
}

func newCountingObserver() *countingObserver {
	return &countingObserver{checked: map[EditKind]int{}, accepted: map[EditKind]int{}}
}

func (o *countingObserver) CandidateChecked(kind EditKind, accepted bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.checked[kind]++
	if accepted {
		o.accepted[kind]++
	}
}

func TestPowerOf(t *testing.T) {
	for b := int64(2); b <= 10; b++ {
		v := number.One
		for e := int64(1); e <= 8; e++ {
			v = number.Mul(v, number.FromInt64(b))
			got, ok := PowerOf(v, number.FromInt64(b))
			require.True(t, ok, "%d^%d", b, e)
			assert.Equal(t, e, got, "%d^%d", b, e)
		}
	}

	_, ok := PowerOf(number.FromInt64(10), number.FromInt64(2))
	assert.False(t, ok, "10 is not a power of 2")

	e, ok := PowerOf(number.One, number.FromInt64(7))
	assert.True(t, ok)
	assert.Equal(t, int64(0), e)

	for _, v := range []int64{0, -8} {
		_, ok := PowerOf(number.FromInt64(v), number.FromInt64(2))
		assert.False(t, ok, "%d", v)
	}
	_, ok = PowerOf(number.FromInt64(8), number.One)
	assert.False(t, ok, "base must be at least 2")
}

func TestDetectPower(t *testing.T) {
	tests := []struct {
		v    int64
		base int64
		exp  int64
		ok   bool
	}{
		{8, 2, 3, true},
		{81, 3, 4, true},
		{4096, 2, 12, true},
		{3969, 63, 2, true},
		{10, 0, 0, false},
		{7, 0, 0, false},
		{1, 0, 0, false},
	}
	for _, tt := range tests {
		base, exp, ok := DetectPower(number.FromInt64(tt.v))
		assert.Equal(t, tt.ok, ok, "%d", tt.v)
		assert.Equal(t, tt.base, base, "%d", tt.v)
		assert.Equal(t, tt.exp, exp, "%d", tt.v)
	}
}

func TestMinimizeSquares(t *testing.T) {
	p := asm.MustParse(squaresText)
	obs := newCountingObserver()
	m := New(WithObserver(obs))

	require.True(t, m.Minimize(p, 10))
	assert.Equal(t, "pow $0,2\n", asm.Format(p))
	assert.Equal(t, 1, obs.accepted[EditClosedForm])

	seq, _, err := eval.New().Eval(p, 10)
	require.NoError(t, err)
	assert.Equal(t, ints(0, 1, 4, 9, 16, 25, 36, 49, 64, 81), seq)
}

func TestOptimizeAndMinimizeSquares(t *testing.T) {
	p := asm.MustParse(squaresText)
	require.True(t, OptimizeAndMinimize(p, 10))
	assert.Equal(t, "pow $0,2\n", asm.Format(p))
}

func TestMinimizeMultiplicativeLoop(t *testing.T) {
	tests := []struct {
		factor string
		want   []number.Number
	}{
		{"2", ints(1, 2, 4, 8, 16, 32, 64, 128, 256, 512)},
		{"3", ints(1, 3, 9, 27, 81, 243, 729, 2187, 6561, 19683)},
	}
	for _, tt := range tests {
		t.Run(tt.factor, func(t *testing.T) {
			src := strings.Replace(powersOfTwoText, "mul $1,2", "mul $1,"+tt.factor, 1)
			p := asm.MustParse(src)
			obs := newCountingObserver()
			m := New(WithObserver(obs))

			require.True(t, m.OptimizeAndMinimize(p, 10))
			out := asm.Format(p)
			assert.False(t, p.HasLoops(), out)
			assert.Contains(t, out, "pow $1,$0")
			assert.LessOrEqual(t, p.Size(), 3, out)
			assert.Equal(t, 1, obs.accepted[EditClosedForm])

			seq, _, err := eval.New().Eval(p, 10)
			require.NoError(t, err)
			assert.Equal(t, tt.want, seq)
		})
	}
}

// copyCountText copies a counter whose sign analysis cannot bound into $3
// by counting it down. Replacing the second loop with "pow $1,1; mov $3,$1"
// would be equivalent, but the guard cannot prove $1 non-negative.
const copyCountText = `lpb $0
  sub $0,1
  add $1,3
  sub $1,1
lpe
lpb $1
  sub $1,1
  add $3,1
lpe
mov $0,$3
`

func TestMinimizeSignGuardBlocksClosedForm(t *testing.T) {
	p := asm.MustParse(copyCountText)
	obs := newCountingObserver()

	assert.False(t, New(WithObserver(obs)).Minimize(p, 10))
	assert.Equal(t, copyCountText, asm.Format(p))
	assert.Zero(t, obs.checked[EditClosedForm], "guarded candidates must not be evaluated")
	assert.Positive(t, obs.checked[EditDelete])

	// without the guard the replacement holds over the window
	cand := asm.MustParse("lpb $0\n  sub $0,1\n  add $1,3\n  sub $1,1\nlpe\npow $1,1\nmov $3,$1\nmov $0,$3\n")
	want, _, err := eval.New().Eval(asm.MustParse(copyCountText), 10)
	require.NoError(t, err)
	assert.NoError(t, eval.New().Check(cand, want))
}

func TestMinimizeMinimalProgramUnchanged(t *testing.T) {
	for _, src := range []string{"pow $0,2\n", "mul $0,3\nadd $0,1\n"} {
		p := asm.MustParse(src)
		assert.False(t, Minimize(p, 10), src)
		assert.Equal(t, src, asm.Format(p))
	}
}

func TestMinimizeFailingInputUnchanged(t *testing.T) {
	src := "mov $1,5\ndiv $0,0\n"
	p := asm.MustParse(src)
	assert.False(t, OptimizeAndMinimize(p, 5))
	assert.Equal(t, src, asm.Format(p))
}

func TestMinimizeUnwrapsLoop(t *testing.T) {
	// the body runs once: the second iteration makes no progress
	p := asm.MustParse("mov $1,1\nlpb $1\n  add $0,5\n  mov $1,0\nlpe\n")
	obs := newCountingObserver()
	require.True(t, New(WithObserver(obs)).Minimize(p, 10))
	assert.Equal(t, "add $0,5\n", asm.Format(p))
	assert.Equal(t, 1, obs.accepted[EditUnwrap])
	assert.Positive(t, obs.checked[EditDelete])
}

func TestMinimizeRemovesDeadOperations(t *testing.T) {
	p := asm.MustParse("mov $3,7\nadd $0,1\nmov $4,$0\nmul $0,2\n")
	require.True(t, Minimize(p, 10))
	assert.Equal(t, "add $0,1\nmul $0,2\n", asm.Format(p))
}

func TestMinimizeNestedClosedForm(t *testing.T) {
	// n^3 via a loop computing n^2 followed by a multiplication
	src := "mov $1,$0\nmov $2,$0\nlpb $1\n  sub $1,1\n  add $3,$2\nlpe\nmul $3,$0\nmov $0,$3\n"
	p := asm.MustParse(src)
	require.True(t, OptimizeAndMinimize(p, 10))
	assert.False(t, p.HasLoops(), asm.Format(p))

	seq, _, err := eval.New().Eval(p, 10)
	require.NoError(t, err)
	assert.Equal(t, ints(0, 1, 8, 27, 64, 125, 216, 343, 512, 729), seq)
}

var corpus = []string{
	squaresText,
	"mov $1,$0\nlpb $1\n  sub $1,1\n  add $2,$1\nlpe\nmov $0,$2\n",
	"mov $1,3\nadd $1,4\nmul $0,$1\nmov $5,$0\n",
	"mov $2,2\nlpb $0\n  sub $0,1\n  mul $2,2\nlpe\nmov $0,$2\n",
	"add $0,1\nmov $1,$0\nmod $1,2\nmul $1,3\nadd $0,$1\nnop\n",
	"mov $1,$0\nlpb $1\n  sub $1,1\n  mov $3,$1\n  pow $3,2\n  add $2,$3\nlpe\nmov $0,$2\n",
}

func TestMinimizePreservesWindow(t *testing.T) {
	const terms = 10
	e := eval.New()
	for _, src := range corpus {
		for _, optimize := range []bool{false, true} {
			p := asm.MustParse(src)
			want, _, err := e.Eval(p, terms)
			require.NoError(t, err, src)

			before := p.Size()
			var changed bool
			if optimize {
				changed = OptimizeAndMinimize(p, terms)
			} else {
				changed = Minimize(p, terms)
			}
			got, _, err := e.Eval(p, terms)
			require.NoError(t, err, asm.Format(p))
			assert.Equal(t, want, got, "%s =>\n%s", src, asm.Format(p))
			if changed {
				assert.Less(t, p.Size(), before+1, asm.Format(p))
			} else {
				assert.Equal(t, src, asm.Format(p))
			}
		}
	}
}

func TestMinimizeIsStable(t *testing.T) {
	for _, src := range corpus {
		p := asm.MustParse(src)
		Minimize(p, 10)
		again := p.Clone()
		assert.False(t, Minimize(again, 10), asm.Format(p))
		assert.True(t, p.Equal(again))
	}
}

func TestMinimizeContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := asm.MustParse(squaresText)
	assert.False(t, New().MinimizeContext(ctx, p, 10))
	assert.Equal(t, squaresText, asm.Format(p))
}

func TestMinimizeRespectsStepBudget(t *testing.T) {
	// with a tiny budget the input itself cannot be evaluated
	p := asm.MustParse(squaresText)
	m := New(WithEvaluator(eval.New(eval.WithMaxCycles(5))))
	assert.False(t, m.Minimize(p, 10))
	assert.Equal(t, squaresText, asm.Format(p))
}

func TestMinimizeNonPositiveWindow(t *testing.T) {
	p := asm.MustParse(squaresText)
	assert.False(t, Minimize(p, 0))
	assert.False(t, Minimize(nil, 10))
}
