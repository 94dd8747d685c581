package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/seqmin/internal/minimizer"
	"github.com/roach88/seqmin/internal/optimizer"
	stest "github.com/roach88/seqmin/internal/testutil"
)

func TestCandidateChecked(t *testing.T) {
	r := NewRecorder(prometheus.NewRegistry())

	r.CandidateChecked(minimizer.EditDelete, true)
	r.CandidateChecked(minimizer.EditDelete, false)
	r.CandidateChecked(minimizer.EditDelete, false)
	r.CandidateChecked(minimizer.EditClosedForm, true)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.CandidatesTotal.WithLabelValues("delete_op", "true")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.CandidatesTotal.WithLabelValues("delete_op", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.CandidatesTotal.WithLabelValues("closed_form", "true")))
}

func TestObserveProgram(t *testing.T) {
	r := NewRecorder(prometheus.NewRegistry())

	r.ObserveProgram(OutcomeMinimized, 6, 1, 10*time.Millisecond)
	r.ObserveProgram(OutcomeUnchanged, 1, 1, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.ProgramsTotal.WithLabelValues(OutcomeMinimized)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.ProgramsTotal.WithLabelValues(OutcomeUnchanged)))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.ProgramsTotal.WithLabelValues(OutcomeFailed)))
}

func TestRecorderAsObserver(t *testing.T) {
	r := NewRecorder(prometheus.NewRegistry())
	m := minimizer.New(
		minimizer.WithObserver(r),
		minimizer.WithOptimizer(optimizer.New()),
	)

	p := stest.MustProgram(t, "add $0,2\nadd $0,3\n")
	require.True(t, m.OptimizeAndMinimize(p, 10))
	assert.Equal(t, "add $0,5\n", stest.Format(p))

	accepted := testutil.ToFloat64(r.CandidatesTotal.WithLabelValues("delete_op", "true")) +
		testutil.ToFloat64(r.CandidatesTotal.WithLabelValues("unwrap_loop", "true")) +
		testutil.ToFloat64(r.CandidatesTotal.WithLabelValues("closed_form", "true"))
	rejected := testutil.ToFloat64(r.CandidatesTotal.WithLabelValues("delete_op", "false"))
	assert.Zero(t, accepted, "the merged add is needed")
	assert.Positive(t, rejected)
}

func TestSeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewRecorder(prometheus.NewRegistry())
		NewRecorder(prometheus.NewRegistry())
	})

	reg := prometheus.NewRegistry()
	NewRecorder(reg)
	assert.Panics(t, func() { NewRecorder(reg) })
}

func TestWriteTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)
	r.ObserveProgram(OutcomeFailed, 3, 3, time.Millisecond)

	path := filepath.Join(t.TempDir(), "seqmin.prom")
	require.NoError(t, WriteTextfile(path, reg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `seqmin_minimize_programs_total{outcome="failed"} 1`)
	assert.Contains(t, string(data), "seqmin_minimize_duration_seconds_count 1")
}
