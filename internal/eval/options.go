package eval

import (
	"log/slog"

	"github.com/roach88/seqmin/internal/memory"
	"github.com/roach88/seqmin/internal/number"
)

type options struct {
	maxCycles int64
	maxTotal  int64
	maxBits   int
	maxMemory int
	initial   *memory.Memory
	logger    *slog.Logger
}

// Option configures an Interpreter or Evaluator.
type Option func(*options)

// WithMaxCycles sets the step budget for a single term.
//
// Default: DefaultMaxCycles. A non-positive value disables the limit.
func WithMaxCycles(n int64) Option {
	return func(o *options) {
		o.maxCycles = n
	}
}

// WithMaxTotal sets the step budget shared by all terms of one evaluation.
//
// Default: DefaultMaxTotal. A non-positive value disables the limit.
func WithMaxTotal(n int64) Option {
	return func(o *options) {
		o.maxTotal = n
	}
}

// WithMaxBits bounds the bit length of every value written to memory.
//
// Default: number.DefaultMaxBits.
func WithMaxBits(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxBits = n
		}
	}
}

// WithMaxMemory bounds the approximate size of the memory a term may use,
// as measured by memory.Memory.ApproximateSize.
//
// Default: DefaultMaxMemory. A non-positive value disables the limit.
func WithMaxMemory(n int) Option {
	return func(o *options) {
		o.maxMemory = n
	}
}

// WithInitialMemory makes every term start from a copy of mem instead of an
// empty memory. $0 is still overwritten with the term index.
func WithInitialMemory(mem *memory.Memory) Option {
	return func(o *options) {
		if mem != nil {
			o.initial = mem.Clone()
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func newOptions(opts []Option) options {
	o := options{
		maxCycles: DefaultMaxCycles,
		maxTotal:  DefaultMaxTotal,
		maxBits:   number.DefaultMaxBits,
		maxMemory: DefaultMaxMemory,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
