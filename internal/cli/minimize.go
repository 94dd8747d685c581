package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/seqmin/internal/asm"
)

// NewMinimizeCommand creates the minimize command.
func NewMinimizeCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		terms      int
		noOptimize bool
	)

	cmd := &cobra.Command{
		Use:   "minimize <program|->",
		Short: "Shrink a program while preserving its first terms",
		Long: `Minimize a program: try closed-form loop replacement, loop unwrapping and
operation deletion, keeping every edit that preserves the first N terms.
By default the optimizer runs before and after every accepted edit.

A program that cannot be evaluated over the window is printed unchanged.

Examples:
  seqmin minimize squares.asm
  seqmin minimize --terms 30 --no-optimize prog.asm`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := readProgram(cmd, args[0])
			if err != nil {
				return err
			}
			n := rootOpts.termCount(cmd, terms)
			m := rootOpts.Config.Minimizer(rootOpts.logger())

			before := p.Size()
			var changed bool
			if noOptimize {
				changed = m.MinimizeContext(cmd.Context(), p, n)
			} else {
				changed = m.OptimizeAndMinimizeContext(cmd.Context(), p, n)
			}

			text := asm.Format(p)
			return rootOpts.formatter(cmd).Result(ProgramResult{
				Program:    text,
				Changed:    changed,
				SizeBefore: before,
				SizeAfter:  p.Size(),
			}, text)
		},
	}

	cmd.Flags().IntVarP(&terms, "terms", "n", 10, "number of terms to preserve (default from config)")
	cmd.Flags().BoolVar(&noOptimize, "no-optimize", false, "skip the optimizer")

	return cmd
}
