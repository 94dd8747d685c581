package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/seqmin/internal/formula"
)

// FormulaResult is the JSON payload of the formula command.
type FormulaResult struct {
	Formula string `json:"formula"`
}

// NewFormulaCommand creates the formula command.
func NewFormulaCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		minimize bool
		terms    int
	)

	cmd := &cobra.Command{
		Use:   "formula <program|->",
		Short: "Print the closed formula of a loop-free program",
		Long: `Print a program as a formula in n, for example "a(n) = n^2".

Only programs without loops or indirect operands have a formula. With
--minimize the program is minimized first, which often removes loops.

Examples:
  seqmin formula prog.asm
  seqmin formula --minimize squares.asm`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := readProgram(cmd, args[0])
			if err != nil {
				return err
			}
			out := rootOpts.formatter(cmd)

			if minimize {
				rootOpts.Config.Minimizer(rootOpts.logger()).
					OptimizeAndMinimizeContext(cmd.Context(), p, rootOpts.termCount(cmd, terms))
			}

			e, err := formula.FromProgram(p)
			if err != nil {
				_ = out.Error(ErrCodeFormula, err.Error(), nil)
				return WrapExitError(ExitFailure, "no closed formula", err)
			}
			f := formula.Format(e)
			return out.Result(FormulaResult{Formula: f}, f+"\n")
		},
	}

	cmd.Flags().BoolVarP(&minimize, "minimize", "m", false, "minimize before exporting")
	cmd.Flags().IntVarP(&terms, "terms", "n", 10, "number of terms to preserve when minimizing (default from config)")

	return cmd
}
