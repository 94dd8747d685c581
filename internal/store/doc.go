// Package store provides SQLite-backed durable storage for programs and
// minimization results.
//
// The store is an append-only log with:
//   - Programs: content-addressed program texts
//   - Runs: one record per batch run with its configuration
//   - Minimizations: input program -> output program, per run
//
// # Critical Patterns
//
// Content addressing:
//   - Program IDs are ir.ProgramID hashes, so writing the same program twice
//     is a no-op (ON CONFLICT DO NOTHING)
//   - UNIQUE(run_id, input_id) makes re-recording a result idempotent
//
// Logical time:
//   - All ordering uses seq INTEGER from a logical clock, never timestamps
//   - All list queries use ORDER BY seq ASC, id ASC COLLATE BINARY
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
