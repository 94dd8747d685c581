package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/seqmin/internal/ir"
)

// Snapshot converts a result into the canonical JSON stored in golden files.
// Store IDs are left out; seq values come from the deterministic clock.
func Snapshot(name string, terms int, r *Result) ([]byte, error) {
	sequence := make([]any, len(r.Sequence))
	for i, s := range r.Sequence {
		sequence[i] = s
	}
	m := map[string]any{
		"scenario_name": name,
		"terms":         terms,
		"sequence":      sequence,
		"minimized":     r.Minimized,
		"changed":       r.Changed,
		"size_before":   r.SizeBefore,
		"size_after":    r.SizeAfter,
		"seq":           r.Record.Seq,
	}
	if r.ErrorCode != "" {
		m["error"] = r.ErrorCode
	}
	if r.Formula != "" {
		m["formula"] = r.Formula
	}
	return ir.MarshalCanonicalValue(m)
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	snapshot, err := Snapshot(scenario.Name, scenario.Terms, result)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, snapshot)

	return result, nil
}
