package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/roach88/seqmin/internal/asm"
	"github.com/roach88/seqmin/internal/batch"
	"github.com/roach88/seqmin/internal/config"
	"github.com/roach88/seqmin/internal/eval"
	"github.com/roach88/seqmin/internal/formula"
	"github.com/roach88/seqmin/internal/number"
	"github.com/roach88/seqmin/internal/store"
	"github.com/roach88/seqmin/internal/testutil"
)

// Run executes a scenario with the default configuration.
func Run(scenario *Scenario) (*Result, error) {
	return RunWithConfig(scenario, config.Default())
}

// RunWithConfig executes a scenario and returns the result. cfg supplies
// the budgets; its term count and worker count are overridden.
//
// Each scenario runs in a fresh in-memory database for isolation, with a
// deterministic clock and run ID so results are reproducible.
//
// Execution flow:
// 1. Parse the program
// 2. Evaluate the term window
// 3. Minimize through a single-worker batch run recorded in the store
// 4. Check expectations and assertions
//
// An error is returned only when the scenario cannot be executed at all;
// failed expectations are reported in Result.Errors.
func RunWithConfig(scenario *Scenario, cfg config.Config) (*Result, error) {
	p, err := asm.Parse(scenario.Program)
	if err != nil {
		return nil, fmt.Errorf("failed to parse program: %w", err)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests
	cfg.TermCount = scenario.Terms
	cfg.Workers = 1
	ctx := context.Background()
	result := NewResult()

	seq, _, evalErr := cfg.Evaluator(logger).Eval(p, scenario.Terms)
	result.Sequence = numberStrings(seq)
	var ee *eval.EvalError
	if errors.As(evalErr, &ee) {
		result.ErrorCode = string(ee.Code)
	} else if evalErr != nil {
		return nil, fmt.Errorf("failed to evaluate: %w", evalErr)
	}

	runner := batch.NewRunner(cfg,
		batch.WithStore(st),
		batch.WithClock(testutil.NewDeterministicClock()),
		batch.WithIDGenerator(testutil.NewFixedIDGenerator("harness-"+scenario.Name)),
		batch.WithToolVersion("test"),
		batch.WithLogger(logger),
	)
	summary, err := runner.Run(ctx, []batch.Job{{Name: scenario.Name, Program: p}})
	if err != nil {
		return nil, fmt.Errorf("failed to minimize: %w", err)
	}
	if len(summary.Results) != 1 {
		return nil, fmt.Errorf("expected 1 batch result, got %d", len(summary.Results))
	}
	out := summary.Results[0]

	records, err := st.ReadMinimizations(ctx, summary.RunID)
	if err != nil {
		return nil, fmt.Errorf("failed to read record: %w", err)
	}
	if len(records) == 1 {
		result.Record = records[0]
	}

	result.Minimized = asm.Format(out.Output)
	result.Changed = out.Changed
	result.SizeBefore = out.Input.Size()
	result.SizeAfter = out.Output.Size()

	if evalErr == nil {
		if e, err := formula.FromProgram(out.Output); err == nil {
			result.Formula = formula.Format(e)
		}
		// The minimized program must reproduce the window.
		if err := cfg.Evaluator(logger).Check(out.Output, seq); err != nil {
			result.AddError(fmt.Sprintf("minimized program diverges: %v", err))
		}
	}

	checkExpect(result, scenario.Expect)
	for _, errMsg := range EvaluateAssertions(result, out.Output, scenario.Assertions) {
		result.AddError(errMsg)
	}

	return result, nil
}

// checkExpect compares result against the expect clause.
func checkExpect(result *Result, expect Expect) {
	if result.ErrorCode != expect.Error {
		result.AddError(fmt.Sprintf("error: expected %q, got %q", expect.Error, result.ErrorCode))
	}

	if expect.Sequence != nil && !slices.Equal(result.Sequence, expect.Sequence) {
		result.AddError(fmt.Sprintf("sequence: expected %v, got %v", expect.Sequence, result.Sequence))
	}

	if expect.Minimized != "" {
		want, err := asm.Parse(expect.Minimized)
		switch {
		case err != nil:
			result.AddError(fmt.Sprintf("minimized: expected program does not parse: %v", err))
		case asm.Format(want) != result.Minimized:
			result.AddError(fmt.Sprintf("minimized: expected\n%s\ngot\n%s", asm.Format(want), result.Minimized))
		}
	}

	if expect.Formula != "" && expect.Formula != result.Formula {
		result.AddError(fmt.Sprintf("formula: expected %q, got %q", expect.Formula, result.Formula))
	}
}

func numberStrings(values []number.Number) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.String()
	}
	return out
}
