// Package metrics provides Prometheus instrumentation for minimization runs.
//
// # Description
//
// A Recorder holds counters and histograms for:
//   - Programs processed (by outcome)
//   - Candidate edits verified (by kind and verdict)
//   - Program size before and after minimization
//   - Per-program minimization duration
//
// Metrics are registered on a caller-owned registry, never the global one,
// so tests and concurrent runs do not collide. Batch runs export them with
// WriteTextfile for the node_exporter textfile collector.
//
// # Thread Safety
//
// All metric operations are thread-safe via Prometheus's internal locking.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/roach88/seqmin/internal/minimizer"
)

// Namespace for all metrics
const metricsNamespace = "seqmin"

// Subsystem for minimization metrics
const minimizeSubsystem = "minimize"

// Outcome labels for ProgramsTotal.
const (
	OutcomeMinimized = "minimized"
	OutcomeUnchanged = "unchanged"
	OutcomeFailed    = "failed"
)

// Recorder holds all Prometheus metrics for minimization.
//
// # Fields
//
//   - ProgramsTotal: Counter of programs processed by outcome
//   - CandidatesTotal: Counter of verified candidate edits by kind and verdict
//   - ProgramSize: Histogram of program sizes by phase (before, after)
//   - DurationSeconds: Histogram of per-program minimization time
type Recorder struct {
	// ProgramsTotal counts programs by outcome.
	// Labels: outcome (minimized, unchanged, failed)
	ProgramsTotal *prometheus.CounterVec

	// CandidatesTotal counts candidate edits that reached verification.
	// Labels: kind (closed_form, unwrap_loop, delete_op), accepted (true, false)
	CandidatesTotal *prometheus.CounterVec

	// ProgramSize measures operation counts.
	// Labels: phase (before, after)
	ProgramSize *prometheus.HistogramVec

	// DurationSeconds measures time spent minimizing one program.
	DurationSeconds prometheus.Histogram
}

// NewRecorder creates and registers all metrics on reg.
//
// Panics if the metrics are already registered on reg (duplicate
// registration), as promauto does.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		ProgramsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: minimizeSubsystem,
				Name:      "programs_total",
				Help:      "Total programs processed by outcome",
			},
			[]string{"outcome"},
		),

		CandidatesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: minimizeSubsystem,
				Name:      "candidates_total",
				Help:      "Total candidate edits verified by kind and verdict",
			},
			[]string{"kind", "accepted"},
		),

		ProgramSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: minimizeSubsystem,
				Name:      "program_size_ops",
				Help:      "Program size in operations before and after minimization",
				Buckets:   []float64{1, 2, 4, 8, 16, 32, 64, 128, 256},
			},
			[]string{"phase"},
		),

		DurationSeconds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: minimizeSubsystem,
				Name:      "duration_seconds",
				Help:      "Time spent minimizing one program in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
			},
		),
	}
}

// CandidateChecked implements minimizer.Observer.
func (r *Recorder) CandidateChecked(kind minimizer.EditKind, accepted bool) {
	r.CandidatesTotal.WithLabelValues(string(kind), strconv.FormatBool(accepted)).Inc()
}

// ObserveProgram records one processed program.
func (r *Recorder) ObserveProgram(outcome string, sizeBefore, sizeAfter int, elapsed time.Duration) {
	r.ProgramsTotal.WithLabelValues(outcome).Inc()
	r.ProgramSize.WithLabelValues("before").Observe(float64(sizeBefore))
	r.ProgramSize.WithLabelValues("after").Observe(float64(sizeAfter))
	r.DurationSeconds.Observe(elapsed.Seconds())
}

// WriteTextfile writes everything gathered from g to path in the Prometheus
// text format. The file is replaced atomically.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}

var _ minimizer.Observer = (*Recorder)(nil)
