package store

// ProgramRecord is a stored program.
type ProgramRecord struct {
	ID        string // ir.ProgramID
	Source    string // assembly text
	Canonical string // canonical JSON, comments included
	Size      int
	Seq       int64
}

// Run describes one batch run.
type Run struct {
	ID          string // UUIDv7
	TermCount   int
	Config      string // canonical JSON of the effective configuration
	ToolVersion string
	Seq         int64
}

// Minimization links an input program to its minimized output for one run.
// Error is non-empty when the input could not be evaluated; the output then
// equals the input.
type Minimization struct {
	ID        string
	RunID     string
	InputID   string
	OutputID  string
	TermCount int
	Changed   bool
	Error     string
	Seq       int64
}
