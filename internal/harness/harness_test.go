package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenariosGolden(t *testing.T) {
	scenarios, err := LoadScenarios("testdata/scenarios")
	require.NoError(t, err)
	require.NotEmpty(t, scenarios)

	for _, s := range scenarios {
		t.Run(s.Name, func(t *testing.T) {
			result, err := RunWithGolden(t, s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRun_ReportsMismatches(t *testing.T) {
	scenario := &Scenario{
		Name:        "wrong",
		Description: "Expectations that do not hold",
		Program:     "add $0,1\n",
		Terms:       3,
		Expect: Expect{
			Sequence:  []string{"1", "2", "4"},
			Minimized: "add $0,2\n",
			Formula:   "a(n) = n",
		},
		Assertions: []Assertion{{Type: AssertChanged}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Len(t, result.Errors, 4)
	assert.Equal(t, []string{"1", "2", "3"}, result.Sequence)
}

func TestRun_RecordsStoreEntry(t *testing.T) {
	scenario := &Scenario{
		Name:        "record",
		Description: "The minimization record links input and output",
		Program:     "mov $1,$0\nmov $0,$1\n",
		Terms:       4,
		Expect:      Expect{Sequence: []string{"0", "1", "2", "3"}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, "harness-record", result.Record.RunID)
	assert.True(t, result.Record.Changed)
	assert.NotEqual(t, result.Record.InputID, result.Record.OutputID)
	assert.Equal(t, int64(2), result.Record.Seq)
}

func TestRun_ParseError(t *testing.T) {
	_, err := Run(&Scenario{Name: "bad", Description: "d", Program: "frob $0,1\n", Terms: 1})
	assert.Error(t, err)
}

func TestRun_Deterministic(t *testing.T) {
	scenarios, err := LoadScenarios("testdata/scenarios")
	require.NoError(t, err)

	for _, s := range scenarios {
		r1, err := Run(s)
		require.NoError(t, err)
		r2, err := Run(s)
		require.NoError(t, err)

		s1, err := Snapshot(s.Name, s.Terms, r1)
		require.NoError(t, err)
		s2, err := Snapshot(s.Name, s.Terms, r2)
		require.NoError(t, err)
		assert.Equal(t, string(s1), string(s2), s.Name)
	}
}

func TestParseScenario_Validation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing name", "description: d\nterms: 1\nexpect: {sequence: [0]}\n"},
		{"missing description", "name: n\nterms: 1\nexpect: {sequence: [0]}\n"},
		{"zero terms", "name: n\ndescription: d\nterms: 0\nexpect: {sequence: []}\n"},
		{"short sequence", "name: n\ndescription: d\nterms: 2\nexpect: {sequence: [0]}\n"},
		{"unknown field", "name: n\ndescription: d\nterms: 1\nexpect: {sequence: [0]}\nflow: []\n"},
		{"unknown assertion", "name: n\ndescription: d\nterms: 1\nexpect: {sequence: [0]}\nassertions: [{type: trace_order}]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestParseScenario_Valid(t *testing.T) {
	s, err := ParseScenario([]byte(`name: n
description: d
program: "add $0,1"
terms: 2
expect:
  sequence: [1, 2]
assertions:
  - type: size_at_most
    size: 3
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, s.Expect.Sequence)
	assert.Equal(t, 3, s.Assertions[0].Size)
}

func TestAssertionError_Message(t *testing.T) {
	err := &AssertionError{Type: AssertLoopFree, Expected: "no loops", Actual: "program has loops", Program: "lpb $0\nlpe\n"}
	assert.Contains(t, err.Error(), "Assertion failed: loop_free")
	assert.Contains(t, err.Error(), "Expected: no loops")
}
