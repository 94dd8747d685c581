// Package testutil holds helpers shared by package tests: program parsing,
// term slices and deterministic clocks and IDs for batch runs.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/seqmin/internal/asm"
	"github.com/roach88/seqmin/internal/ir"
	"github.com/roach88/seqmin/internal/number"
)

// MustProgram parses src or fails the test.
func MustProgram(t testing.TB, src string) *ir.Program {
	t.Helper()
	p, err := asm.Parse(src)
	require.NoError(t, err, "parse program:\n%s", src)
	return p
}

// Format prints p in assembly form.
func Format(p *ir.Program) string {
	return asm.Format(p)
}

// Terms converts int64 values into Numbers.
func Terms(values ...int64) []number.Number {
	out := make([]number.Number, len(values))
	for i, v := range values {
		out[i] = number.FromInt64(v)
	}
	return out
}

// Ints converts Numbers into strings for readable assertions. Undefined
// values print as number.Number does.
func Ints(values []number.Number) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.String()
	}
	return out
}
