package ir

// Version constants for the IR schema and tool.
const (
	// IRVersion is the canonical program schema version.
	IRVersion = "1"

	// ToolVersion is the seqmin version recorded with stored results.
	ToolVersion = "0.1.0"
)
