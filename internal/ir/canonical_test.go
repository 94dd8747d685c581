package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalValueBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"string", "hello", `"hello"`},
		{"empty string", "", `""`},
		{"int", 42, "42"},
		{"int64", int64(-100), "-100"},
		{"bool", true, "true"},
		{"empty array", []any{}, "[]"},
		{"empty object", map[string]any{}, "{}"},
		{"string slice", []string{"a", "b"}, `["a","b"]`},
		{"no html escape", "<a&b>", `"<a&b>"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonicalValue(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalValueRejectsFloats(t *testing.T) {
	_, err := MarshalCanonicalValue(1.5)
	assert.Error(t, err)

	_, err = MarshalCanonicalValue(map[string]any{"x": nil})
	assert.Error(t, err)
}

func TestMarshalCanonicalSortedKeys(t *testing.T) {
	result, err := MarshalCanonicalValue(map[string]any{"zebra": 1, "alpha": 2, "beta": 3})
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":2,"beta":3,"zebra":1}`, string(result))
}

func TestMarshalCanonicalNFC(t *testing.T) {
	// e + combining acute accent normalizes to the precomposed form
	decomposed := "e\u0301"
	composed := "\u00e9"

	a, err := MarshalCanonicalValue(decomposed)
	require.NoError(t, err)
	b, err := MarshalCanonicalValue(composed)
	require.NoError(t, err)
	assert.Equal(t, string(b), string(a))
}

func TestMarshalCanonicalLineSeparators(t *testing.T) {
	result, err := MarshalCanonicalValue("a\u2028b")
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\"", string(result))

	// an escaped backslash followed by the text u2028 stays escaped
	result, err = MarshalCanonicalValue(`a\u2028`)
	require.NoError(t, err)
	assert.Equal(t, `"a\\u2028"`, string(result))
}

func TestMarshalCanonicalProgram(t *testing.T) {
	p := NewProgram(
		NewOp(OpMov, Dir(1), Const(1)),
		NewLoop(Dir(0), 1, NewProgram(
			NewOp(OpSub, Dir(0), Const(1)),
			NewStep(StepEntry{Cell: 2, Assign: MustAssignment(true, -3)}),
		)),
	)
	p.Ops[0].Comment = "init"

	result, err := MarshalCanonical(p)
	require.NoError(t, err)
	expected := `{"ops":[` +
		`{"comment":"init","source":"1","target":"$1","type":"mov"},` +
		`{"body":{"ops":[{"source":"1","target":"$0","type":"sub"},{"steps":["$2+=-3"],"type":"stp"}]},` +
		`"length":"1","target":"$0","type":"lpb"}]}`
	assert.Equal(t, expected, string(result))
}

func TestMarshalCanonicalEmptyProgram(t *testing.T) {
	result, err := MarshalCanonical(&Program{})
	require.NoError(t, err)
	assert.Equal(t, `{"ops":[]}`, string(result))

	result, err = MarshalCanonical(nil)
	require.NoError(t, err)
	assert.Equal(t, `{"ops":[]}`, string(result))
}
