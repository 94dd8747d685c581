package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Scenario defines one program regression scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Program is the input program in assembly form.
	Program string `yaml:"program"`

	// Terms is the window of terms to evaluate and preserve.
	Terms int `yaml:"terms"`

	// Expect lists expected evaluation and minimization results.
	Expect Expect `yaml:"expect"`

	// Assertions are additional checks on the minimized program.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Expect specifies expected results. Only Sequence is required.
type Expect struct {
	// Sequence lists the first Terms values as decimal strings.
	Sequence []string `yaml:"sequence"`

	// Minimized is the expected minimized program text. Compared after
	// re-formatting, so indentation and comments do not matter.
	Minimized string `yaml:"minimized,omitempty"`

	// Formula is the expected closed formula of the minimized program.
	Formula string `yaml:"formula,omitempty"`

	// Error is the expected evaluation error code (e.g. "UNDEFINED_RESULT").
	// When set, Sequence holds the terms computed before the failure.
	Error string `yaml:"error,omitempty"`
}

// Assertion checks a property of the minimized program.
type Assertion struct {
	// Type specifies the assertion type:
	// - "size_at_most": minimized size <= Size
	// - "loop_free": no loops remain
	// - "unchanged": minimization made no change
	// - "changed": minimization made a change
	Type string `yaml:"type"`

	// Size is the bound used by size_at_most.
	Size int `yaml:"size,omitempty"`
}

// Assertion type constants.
const (
	AssertSizeAtMost = "size_at_most"
	AssertLoopFree   = "loop_free"
	AssertUnchanged  = "unchanged"
	AssertChanged    = "changed"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML with strict field validation.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarios loads every *.yaml file in dir, sorted by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Terms <= 0 {
		return fmt.Errorf("terms must be positive")
	}

	if len(s.Expect.Sequence) == 0 && s.Expect.Error == "" {
		return fmt.Errorf("expect.sequence is required")
	}

	if s.Expect.Error == "" && len(s.Expect.Sequence) != s.Terms {
		return fmt.Errorf("expect.sequence has %d values, want %d", len(s.Expect.Sequence), s.Terms)
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(a); err != nil {
			return fmt.Errorf("assertion %d: %w", i, err)
		}
	}

	return nil
}

func validateAssertion(a Assertion) error {
	switch a.Type {
	case AssertSizeAtMost:
		if a.Size < 0 {
			return fmt.Errorf("size must be non-negative")
		}
	case AssertLoopFree, AssertUnchanged, AssertChanged:
	case "":
		return fmt.Errorf("type is required")
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}
