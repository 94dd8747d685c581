package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/roach88/seqmin/internal/asm"
	"github.com/roach88/seqmin/internal/batch"
	"github.com/roach88/seqmin/internal/metrics"
	"github.com/roach88/seqmin/internal/store"
)

// BatchOptions holds flags for the batch command.
type BatchOptions struct {
	*RootOptions
	Database    string
	Workers     int
	Terms       int
	MetricsFile string

	// IDGenerator allows overriding the run ID generator (for testing).
	// If nil, defaults to batch.UUIDv7Generator.
	IDGenerator batch.IDGenerator
}

// BatchJobResult is one entry of the batch JSON payload.
type BatchJobResult struct {
	Name    string `json:"name"`
	Program string `json:"program"`
	Changed bool   `json:"changed"`
	Error   string `json:"error,omitempty"`
}

// BatchResult is the JSON payload of the batch command.
type BatchResult struct {
	RunID      string           `json:"run_id"`
	Total      int              `json:"total"`
	Minimized  int              `json:"minimized"`
	Unchanged  int              `json:"unchanged"`
	Failed     int              `json:"failed"`
	SizeBefore int              `json:"size_before"`
	SizeAfter  int              `json:"size_after"`
	Jobs       []BatchJobResult `json:"jobs"`
}

// NewBatchCommand creates the batch command.
func NewBatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "batch <program>...",
		Short: "Minimize many programs in parallel",
		Long: `Minimize every given program file with a pool of workers.

Each argument is a program file or a directory; directories contribute
their *.asm files in name order. With --db every run and result is
recorded in a SQLite database. With --metrics-file Prometheus metrics
are written in text format when the run ends.

Interrupting the command (Ctrl-C) stops scheduling new programs; results
already computed are still recorded.

Examples:
  seqmin batch --db ./seqmin.db programs/
  seqmin batch --workers 8 --terms 20 a.asm b.asm
  seqmin batch --metrics-file /var/lib/node_exporter/seqmin.prom programs/`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database")
	cmd.Flags().IntVarP(&opts.Workers, "workers", "w", 0, "parallel workers (default from config)")
	cmd.Flags().IntVarP(&opts.Terms, "terms", "n", 10, "number of terms to preserve (default from config)")
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "write Prometheus metrics to this file")

	return cmd
}

func runBatch(opts *BatchOptions, args []string, cmd *cobra.Command) error {
	logger := opts.logger()

	cfg := opts.Config
	cfg.TermCount = opts.termCount(cmd, opts.Terms)
	if cmd.Flags().Changed("workers") {
		if opts.Workers < 1 {
			return NewExitError(ExitCommandError, "--workers must be positive")
		}
		cfg.Workers = opts.Workers
	}

	jobs, err := loadJobs(cmd, args)
	if err != nil {
		return err
	}

	runOpts := []batch.Option{
		batch.WithLogger(logger),
		batch.WithIDGenerator(opts.IDGenerator),
	}

	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing database", "error", closeErr)
			}
		}()
		last, err := st.LastSeq(cmd.Context())
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read database", err)
		}
		runOpts = append(runOpts, batch.WithStore(st), batch.WithClock(batch.NewClockAt(last)))
	}

	var reg *prometheus.Registry
	if opts.MetricsFile != "" {
		reg = prometheus.NewRegistry()
		runOpts = append(runOpts, batch.WithMetrics(metrics.NewRecorder(reg)))
	}

	// Setup signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan) // Prevent signal handler leak

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, stopping batch", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	summary, runErr := batch.NewRunner(cfg, runOpts...).Run(ctx, jobs)

	if reg != nil {
		if err := metrics.WriteTextfile(opts.MetricsFile, reg); err != nil {
			return WrapExitError(ExitCommandError, "failed to write metrics", err)
		}
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return WrapExitError(ExitCommandError, "batch failed", runErr)
	}

	if err := outputBatch(opts, cmd, summary); err != nil {
		return err
	}

	if runErr != nil {
		return WrapExitError(ExitFailure, "batch interrupted", runErr)
	}
	if summary.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d programs failed to evaluate", summary.Failed, summary.Total))
	}
	return nil
}

// loadJobs expands args into jobs. Directories contribute their *.asm files.
func loadJobs(cmd *cobra.Command, args []string) ([]batch.Job, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "program not found", err)
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(arg, "*.asm"))
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to list programs", err)
		}
		paths = append(paths, matches...) // Glob returns sorted names
	}

	jobs := make([]batch.Job, 0, len(paths))
	for _, path := range paths {
		p, err := readProgram(cmd, path)
		if err != nil {
			return nil, err
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		jobs = append(jobs, batch.Job{Name: name, Program: p})
	}
	return jobs, nil
}

func outputBatch(opts *BatchOptions, cmd *cobra.Command, s batch.Summary) error {
	result := BatchResult{
		RunID:      s.RunID,
		Total:      s.Total,
		Minimized:  s.Minimized,
		Unchanged:  s.Unchanged,
		Failed:     s.Failed,
		SizeBefore: s.SizeBefore,
		SizeAfter:  s.SizeAfter,
		Jobs:       make([]BatchJobResult, 0, len(s.Results)),
	}

	var text strings.Builder
	for _, res := range s.Results {
		jr := BatchJobResult{Name: res.Name, Changed: res.Changed}
		mark := "="
		switch {
		case res.Err != nil:
			jr.Error = res.Err.Error()
			mark = "!"
		case res.Changed:
			mark = "-"
		}
		jr.Program = asm.Format(res.Output)
		result.Jobs = append(result.Jobs, jr)
		fmt.Fprintf(&text, "%s %s (%d -> %d)\n", mark, res.Name, res.Input.Size(), res.Output.Size())
		if res.Err != nil {
			fmt.Fprintf(&text, "  %v\n", res.Err)
		}
	}
	fmt.Fprintf(&text, "\nrun %s: %d minimized, %d unchanged, %d failed, size %d -> %d\n",
		s.RunID, s.Minimized, s.Unchanged, s.Failed, s.SizeBefore, s.SizeAfter)

	return opts.formatter(cmd).Result(result, text.String())
}
