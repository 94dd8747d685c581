package testutil

// FixedIDGenerator returns the same run ID every time, so stored records and
// golden snapshots are byte-identical across test runs.
//
// Thread-safety: FixedIDGenerator is stateless and safe for concurrent use.
type FixedIDGenerator struct {
	id string
}

// NewFixedIDGenerator creates a generator for id.
// If id is empty, Generate returns "test-run-default".
func NewFixedIDGenerator(id string) *FixedIDGenerator {
	if id == "" {
		id = "test-run-default"
	}
	return &FixedIDGenerator{id: id}
}

// Generate returns the fixed ID. Implements batch.IDGenerator.
func (g *FixedIDGenerator) Generate() string {
	return g.id
}
