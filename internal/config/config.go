// Package config loads run configuration from YAML or CUE files.
//
// Both formats are unified with the embedded #Config schema, which supplies
// defaults and rejects out-of-range or unknown fields.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"

	"github.com/roach88/seqmin/internal/eval"
	"github.com/roach88/seqmin/internal/ir"
	"github.com/roach88/seqmin/internal/minimizer"
	"github.com/roach88/seqmin/internal/optimizer"
)

//go:embed schema.cue
var schemaCUE string

// Config is the effective run configuration.
type Config struct {
	TermCount int   `json:"term_count" yaml:"term_count"`
	MaxCycles int64 `json:"max_cycles" yaml:"max_cycles"`
	MaxTotal  int64 `json:"max_total" yaml:"max_total"`
	MaxBits   int   `json:"max_bits" yaml:"max_bits"`
	MaxMemory int   `json:"max_memory" yaml:"max_memory"`
	MaxRounds int   `json:"max_rounds" yaml:"max_rounds"`
	Workers   int   `json:"workers" yaml:"workers"`
}

// fileConfig mirrors Config with optional fields so that absent keys take
// the schema default rather than zero.
type fileConfig struct {
	TermCount *int   `yaml:"term_count"`
	MaxCycles *int64 `yaml:"max_cycles"`
	MaxTotal  *int64 `yaml:"max_total"`
	MaxBits   *int   `yaml:"max_bits"`
	MaxMemory *int   `yaml:"max_memory"`
	MaxRounds *int   `yaml:"max_rounds"`
	Workers   *int   `yaml:"workers"`
}

func (f fileConfig) fields() map[string]any {
	m := map[string]any{}
	if f.TermCount != nil {
		m["term_count"] = *f.TermCount
	}
	if f.MaxCycles != nil {
		m["max_cycles"] = *f.MaxCycles
	}
	if f.MaxTotal != nil {
		m["max_total"] = *f.MaxTotal
	}
	if f.MaxBits != nil {
		m["max_bits"] = *f.MaxBits
	}
	if f.MaxMemory != nil {
		m["max_memory"] = *f.MaxMemory
	}
	if f.MaxRounds != nil {
		m["max_rounds"] = *f.MaxRounds
	}
	if f.Workers != nil {
		m["workers"] = *f.Workers
	}
	return m
}

// Error reports an invalid configuration, with a source position when CUE
// provides one.
type Error struct {
	Message string
	Pos     token.Pos
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return e.Message
}

// Default returns the schema defaults.
func Default() Config {
	cfg, err := resolve(cuecontext.New(), nil)
	if err != nil {
		panic(fmt.Sprintf("config: embedded schema is invalid: %v", err))
	}
	return cfg
}

// Load reads a configuration file. The format is chosen by extension:
// .cue for CUE, anything else is parsed as YAML.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".cue") {
		return ParseCUE(path, data)
	}
	return ParseYAML(data)
}

// ParseYAML decodes a YAML document. Unknown fields are rejected.
func ParseYAML(data []byte) (Config, error) {
	var f fileConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse YAML config: %w", err)
	}

	ctx := cuecontext.New()
	v := ctx.Encode(f.fields())
	if err := v.Err(); err != nil {
		return Config{}, formatCUEError(err)
	}
	return resolve(ctx, &v)
}

// ParseCUE compiles a CUE document whose top-level fields are configuration
// fields. filename is used in error positions only.
func ParseCUE(filename string, data []byte) (Config, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return Config{}, formatCUEError(err)
	}
	return resolve(ctx, &v)
}

// resolve unifies v (nil for none) with #Config and decodes the result.
func resolve(ctx *cue.Context, v *cue.Value) (Config, error) {
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Config{}, formatCUEError(err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	unified := def
	if v != nil {
		unified = def.Unify(*v)
	}
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return Config{}, formatCUEError(err)
	}

	var cfg Config
	if err := unified.Decode(&cfg); err != nil {
		return Config{}, formatCUEError(err)
	}
	return cfg, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &Error{Message: err.Error()}
	}

	first := errs[0]
	cfgErr := &Error{Message: first.Error()}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		cfgErr.Pos = positions[0]
	}
	return cfgErr
}

// Canonical returns the configuration as canonical JSON, the form recorded
// with each stored run.
func (c Config) Canonical() (string, error) {
	b, err := ir.MarshalCanonicalValue(map[string]any{
		"term_count": c.TermCount,
		"max_cycles": c.MaxCycles,
		"max_total":  c.MaxTotal,
		"max_bits":   c.MaxBits,
		"max_memory": c.MaxMemory,
		"max_rounds": c.MaxRounds,
		"workers":    c.Workers,
	})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Evaluator builds an evaluator with the configured budgets.
func (c Config) Evaluator(logger *slog.Logger) *eval.Evaluator {
	return eval.New(
		eval.WithMaxCycles(c.MaxCycles),
		eval.WithMaxTotal(c.MaxTotal),
		eval.WithMaxBits(c.MaxBits),
		eval.WithMaxMemory(c.MaxMemory),
		eval.WithLogger(logger),
	)
}

// Optimizer builds an optimizer with the configured bit bound.
func (c Config) Optimizer(logger *slog.Logger) *optimizer.Optimizer {
	return optimizer.New(
		optimizer.WithMaxBits(c.MaxBits),
		optimizer.WithLogger(logger),
	)
}

// Minimizer builds a minimizer wired to the configured evaluator and
// optimizer. Extra options are applied last.
func (c Config) Minimizer(logger *slog.Logger, extra ...minimizer.Option) *minimizer.Minimizer {
	opts := []minimizer.Option{
		minimizer.WithEvaluator(c.Evaluator(logger)),
		minimizer.WithOptimizer(c.Optimizer(logger)),
		minimizer.WithMaxRounds(c.MaxRounds),
		minimizer.WithLogger(logger),
	}
	return minimizer.New(append(opts, extra...)...)
}
