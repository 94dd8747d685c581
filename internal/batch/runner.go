package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/seqmin/internal/config"
	"github.com/roach88/seqmin/internal/eval"
	"github.com/roach88/seqmin/internal/ir"
	"github.com/roach88/seqmin/internal/metrics"
	"github.com/roach88/seqmin/internal/minimizer"
	"github.com/roach88/seqmin/internal/store"
)

// Job is one program to minimize.
type Job struct {
	Name    string
	Program *ir.Program
}

// Result is the outcome of one job.
type Result struct {
	Index   int
	Name    string
	Input   *ir.Program
	Output  *ir.Program // equals Input when Err is set
	Changed bool
	Err     error // evaluation failure of the input program
	Seq     int64
}

// Summary describes a finished run. Results are in job order; jobs that were
// never started because of cancellation are absent.
type Summary struct {
	RunID      string
	Total      int
	Minimized  int
	Unchanged  int
	Failed     int
	SizeBefore int
	SizeAfter  int
	Results    []Result
}

// Recorder persists runs and results. *store.Store implements it.
type Recorder interface {
	WriteRun(ctx context.Context, r store.Run) error
	WriteMinimization(ctx context.Context, runID string, input, output *ir.Program, termCount int, errMsg string, seq int64) (store.Minimization, error)
}

// Runner minimizes batches of programs.
type Runner struct {
	cfg         config.Config
	store       Recorder
	clock       Clock
	ids         IDGenerator
	metrics     *metrics.Recorder
	toolVersion string
	logger      *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithStore records every run and result. Without a store results are only
// returned in the Summary.
func WithStore(s Recorder) Option {
	return func(r *Runner) {
		r.store = s
	}
}

// WithClock sets the seq source. Default: NewClock().
func WithClock(c Clock) Option {
	return func(r *Runner) {
		if c != nil {
			r.clock = c
		}
	}
}

// WithIDGenerator sets the run ID source. Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(r *Runner) {
		if g != nil {
			r.ids = g
		}
	}
}

// WithMetrics records per-program and per-candidate metrics.
func WithMetrics(m *metrics.Recorder) Option {
	return func(r *Runner) {
		r.metrics = m
	}
}

// WithToolVersion sets the version string stored with each run.
func WithToolVersion(v string) Option {
	return func(r *Runner) {
		r.toolVersion = v
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRunner creates a Runner for cfg.
func NewRunner(cfg config.Config, opts ...Option) *Runner {
	r := &Runner{
		cfg:         cfg,
		clock:       NewClock(),
		ids:         UUIDv7Generator{},
		toolVersion: ir.ToolVersion,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunGenerator collects up to limit programs from g and runs them.
func (r *Runner) RunGenerator(ctx context.Context, g Generator, limit int) (Summary, error) {
	return r.Run(ctx, Collect(g, limit))
}

// Run minimizes every job with cfg.Workers workers.
//
// It returns ctx.Err() if the run was cancelled; the Summary then holds the
// results finished before cancellation, all of which have been written.
// A store failure aborts the run and is returned.
func (r *Runner) Run(ctx context.Context, jobs []Job) (Summary, error) {
	summary := Summary{RunID: r.ids.Generate(), Results: []Result{}}

	if r.store != nil {
		cfgJSON, err := r.cfg.Canonical()
		if err != nil {
			return summary, fmt.Errorf("encode config: %w", err)
		}
		run := store.Run{
			ID:          summary.RunID,
			TermCount:   r.cfg.TermCount,
			Config:      cfgJSON,
			ToolVersion: r.toolVersion,
			Seq:         r.clock.Next(),
		}
		if err := r.store.WriteRun(ctx, run); err != nil {
			return summary, err
		}
	}

	var minOpts []minimizer.Option
	if r.metrics != nil {
		minOpts = append(minOpts, minimizer.WithObserver(r.metrics))
	}
	w := &worker{
		eval:      r.cfg.Evaluator(r.logger),
		min:       r.cfg.Minimizer(r.logger, minOpts...),
		termCount: r.cfg.TermCount,
		metrics:   r.metrics,
	}

	workers := r.cfg.Workers
	if workers < 1 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	indices := make(chan int)
	results := make(chan Result, workers)
	writerDone := make(chan struct{})

	// Producer: stops scheduling on cancellation.
	g.Go(func() error {
		defer close(indices)
		for i := range jobs {
			select {
			case indices <- i:
			case <-gctx.Done():
				return nil
			}
		}
		return nil
	})

	var wg sync.WaitGroup
	for n := 0; n < workers; n++ {
		wg.Add(1)
		g.Go(func() error {
			defer wg.Done()
			for i := range indices {
				res, ok := w.process(gctx, i, jobs[i])
				if !ok {
					continue
				}
				select {
				case results <- res:
				case <-writerDone:
					return nil
				}
			}
			return nil
		})
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	// Single writer: stamps seq and records in job order.
	g.Go(func() error {
		defer close(writerDone)
		pending := make(map[int]Result)
		next := 0
		write := func(res Result) error {
			res.Seq = r.clock.Next()
			if err := r.record(ctx, summary.RunID, res); err != nil {
				return err
			}
			summary.add(res)
			return nil
		}
		for res := range results {
			pending[res.Index] = res
			for {
				p, ok := pending[next]
				if !ok {
					break
				}
				delete(pending, next)
				next++
				if err := write(p); err != nil {
					return err
				}
			}
		}
		// Gaps are jobs skipped by cancellation.
		for i := next; i < len(jobs); i++ {
			if p, ok := pending[i]; ok {
				if err := write(p); err != nil {
					return err
				}
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return summary, err
	}
	r.logger.Debug("batch finished",
		"run", summary.RunID,
		"total", summary.Total,
		"minimized", summary.Minimized,
		"failed", summary.Failed,
	)
	return summary, ctx.Err()
}

// record writes one result. Writes are detached from cancellation so that
// finished work is never dropped.
func (r *Runner) record(ctx context.Context, runID string, res Result) error {
	if r.store == nil {
		return nil
	}
	errMsg := ""
	if res.Err != nil {
		errMsg = res.Err.Error()
	}
	_, err := r.store.WriteMinimization(context.WithoutCancel(ctx), runID, res.Input, res.Output, r.cfg.TermCount, errMsg, res.Seq)
	if err != nil {
		return fmt.Errorf("record %s: %w", res.Name, err)
	}
	return nil
}

func (s *Summary) add(res Result) {
	s.Total++
	switch {
	case res.Err != nil:
		s.Failed++
	case res.Changed:
		s.Minimized++
	default:
		s.Unchanged++
	}
	s.SizeBefore += res.Input.Size()
	s.SizeAfter += res.Output.Size()
	s.Results = append(s.Results, res)
}

// worker holds the per-run evaluation machinery. Evaluator and Minimizer
// only carry configuration, so all workers share one.
type worker struct {
	eval      *eval.Evaluator
	min       *minimizer.Minimizer
	termCount int
	metrics   *metrics.Recorder
}

// process minimizes a private copy of job's program. It returns false when
// the job was interrupted before producing a usable result.
func (w *worker) process(ctx context.Context, index int, job Job) (Result, bool) {
	if ctx.Err() != nil {
		return Result{}, false
	}
	start := time.Now()
	res := Result{Index: index, Name: job.Name, Input: job.Program.Clone()}
	if res.Input == nil {
		res.Input = &ir.Program{}
	}

	if _, _, err := w.eval.EvalContext(ctx, res.Input, w.termCount); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return Result{}, false
		}
		res.Err = err
		res.Output = res.Input
		w.observe(metrics.OutcomeFailed, res, start)
		return res, true
	}

	res.Output = res.Input.Clone()
	res.Changed = w.min.OptimizeAndMinimizeContext(ctx, res.Output, w.termCount)
	outcome := metrics.OutcomeUnchanged
	if res.Changed {
		outcome = metrics.OutcomeMinimized
	}
	w.observe(outcome, res, start)
	return res, true
}

func (w *worker) observe(outcome string, res Result, start time.Time) {
	if w.metrics == nil {
		return
	}
	w.metrics.ObserveProgram(outcome, res.Input.Size(), res.Output.Size(), time.Since(start))
}
