// Package cli implements the seqmin command line.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/seqmin/internal/asm"
	"github.com/roach88/seqmin/internal/config"
	"github.com/roach88/seqmin/internal/ir"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string

	// Config is the effective configuration, loaded before any subcommand
	// runs.
	Config config.Config

	// Logger writes diagnostics to stderr.
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the seqmin CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{Config: config.Default()}

	cmd := &cobra.Command{
		Use:   "seqmin",
		Short: "seqmin - integer sequence program minimizer",
		Long: `Evaluate, optimize and minimize programs that compute integer sequences.

Programs are written one operation per line (mov, add, sub, trn, mul, div,
dif, mod, pow, gcd, bin, cmp, min, max, clr, stp, lpb/lpe). Term n of the
sequence is the value of $0 after running the program with $0 = n.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}

			level := slog.LevelWarn
			if opts.Verbose {
				level = slog.LevelDebug
			}
			opts.Logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			if opts.ConfigPath != "" {
				cfg, err := config.Load(opts.ConfigPath)
				if err != nil {
					return WrapExitError(ExitCommandError, "failed to load config", err)
				}
				opts.Config = cfg
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "configuration file (.yaml or .cue)")

	// Add subcommands
	cmd.AddCommand(NewEvalCommand(opts))
	cmd.AddCommand(NewOptimizeCommand(opts))
	cmd.AddCommand(NewMinimizeCommand(opts))
	cmd.AddCommand(NewFormulaCommand(opts))
	cmd.AddCommand(NewBatchCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// formatter returns an OutputFormatter writing to the command's stdout.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{Format: o.Format, Writer: cmd.OutOrStdout()}
}

// logger returns the configured logger, or a discarding one when the
// command runs without the root pre-run hook (as in unit tests).
func (o *RootOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// termCount returns the --terms flag if set, else the configured count.
func (o *RootOptions) termCount(cmd *cobra.Command, flag int) int {
	if cmd.Flags().Changed("terms") {
		return flag
	}
	return o.Config.TermCount
}

// readProgram parses the program in path, or stdin when path is "-".
func readProgram(cmd *cobra.Command, path string) (*ir.Program, error) {
	var (
		p   *ir.Program
		err error
	)
	if path == "-" {
		p, err = asm.ParseReader(cmd.InOrStdin())
	} else {
		var f *os.File
		f, err = os.Open(path)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to open program", err)
		}
		defer f.Close()
		p, err = asm.ParseReader(f)
	}
	if err != nil {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("failed to parse %s", path), err)
	}
	return p, nil
}
