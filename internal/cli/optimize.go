package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/seqmin/internal/asm"
)

// ProgramResult is the JSON payload of the optimize and minimize commands.
type ProgramResult struct {
	Program    string `json:"program"`
	Changed    bool   `json:"changed"`
	SizeBefore int    `json:"size_before"`
	SizeAfter  int    `json:"size_after"`
}

// NewOptimizeCommand creates the optimize command.
func NewOptimizeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "optimize <program|->",
		Short: "Apply semantics-preserving rewrites",
		Long: `Rewrite a program to a fixed point with local optimizations
(no-op removal, constant folding and propagation, merging of adjacent
operations, dead store elimination). The result computes the same value
of $0 for every input on which the original succeeds.

Examples:
  seqmin optimize prog.asm
  seqmin optimize --format json prog.asm`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := readProgram(cmd, args[0])
			if err != nil {
				return err
			}
			before := p.Size()
			changed := rootOpts.Config.Optimizer(rootOpts.logger()).Optimize(p)

			text := asm.Format(p)
			return rootOpts.formatter(cmd).Result(ProgramResult{
				Program:    text,
				Changed:    changed,
				SizeBefore: before,
				SizeAfter:  p.Size(),
			}, text)
		},
	}
}
