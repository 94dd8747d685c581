package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/seqmin/internal/eval"
	"github.com/roach88/seqmin/internal/number"
)

// EvalResult is the JSON payload of the eval command.
type EvalResult struct {
	Terms []string `json:"terms"`
	Steps int64    `json:"steps"`
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	var terms int

	cmd := &cobra.Command{
		Use:   "eval <program|->",
		Short: "Evaluate a program",
		Long: `Evaluate a program and print its first terms, comma separated.

Exit codes:
  0 - Evaluation succeeded
  1 - Evaluation failed (overflow, step budget, undefined result)
  2 - Command error (unreadable or invalid program)

Examples:
  seqmin eval squares.asm
  seqmin eval --terms 20 squares.asm
  echo 'pow $0,2' | seqmin eval -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := readProgram(cmd, args[0])
			if err != nil {
				return err
			}
			out := rootOpts.formatter(cmd)

			e := rootOpts.Config.Evaluator(rootOpts.logger())
			seq, stats, err := e.EvalContext(cmd.Context(), p, rootOpts.termCount(cmd, terms))
			if err != nil {
				var ee *eval.EvalError
				if errors.As(err, &ee) {
					_ = out.Error(ErrCodeEval, err.Error(), map[string]any{
						"code":  ee.Code,
						"term":  ee.Term,
						"terms": termStrings(seq),
					})
				}
				return WrapExitError(ExitFailure, "evaluation failed", err)
			}

			values := termStrings(seq)
			return out.Result(EvalResult{Terms: values, Steps: stats.Steps}, strings.Join(values, ",")+"\n")
		},
	}

	cmd.Flags().IntVarP(&terms, "terms", "n", 10, "number of terms (default from config)")

	return cmd
}

func termStrings(seq []number.Number) []string {
	out := make([]string, len(seq))
	for i, v := range seq {
		out[i] = v.String()
	}
	return out
}
