package batch

import (
	"fmt"

	"github.com/roach88/seqmin/internal/ir"
)

// Generator yields programs to minimize. Next returns false once exhausted.
// A Generator is consumed by one goroutine and need not be thread-safe.
type Generator interface {
	Next() (*ir.Program, bool)
}

// SliceGenerator yields a fixed list of programs in order.
type SliceGenerator struct {
	programs []*ir.Program
	next     int
}

// Programs returns a Generator over ps.
func Programs(ps ...*ir.Program) *SliceGenerator {
	return &SliceGenerator{programs: ps}
}

// Next implements Generator.
func (g *SliceGenerator) Next() (*ir.Program, bool) {
	if g.next >= len(g.programs) {
		return nil, false
	}
	p := g.programs[g.next]
	g.next++
	return p, true
}

// Collect drains up to limit programs from g into jobs named "gen-<i>".
// A non-positive limit drains g completely.
func Collect(g Generator, limit int) []Job {
	var jobs []Job
	for limit <= 0 || len(jobs) < limit {
		p, ok := g.Next()
		if !ok {
			break
		}
		jobs = append(jobs, Job{Name: fmt.Sprintf("gen-%d", len(jobs)), Program: p})
	}
	return jobs
}
