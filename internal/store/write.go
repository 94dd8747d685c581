package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/seqmin/internal/asm"
	"github.com/roach88/seqmin/internal/ir"
)

// minimizationNamespace derives stable minimization IDs from (run, input).
var minimizationNamespace = uuid.MustParse("6f1d7c3e-2b8a-4d59-9e0f-51c4a8b7d203")

// WriteProgram stores a program under its content-addressed ID and returns
// the ID. Writing the same program again is a no-op; the first seq wins.
func (s *Store) WriteProgram(ctx context.Context, p *ir.Program, seq int64) (string, error) {
	return writeProgram(ctx, s.db, p, seq)
}

// WriteRun records a batch run. Idempotent on run ID.
func (s *Store) WriteRun(ctx context.Context, r Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, term_count, config, tool_version, seq)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, r.ID, r.TermCount, r.Config, r.ToolVersion, r.Seq)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", r.ID, err)
	}
	return nil
}

// MinimizationID returns the deterministic ID for (runID, inputID).
func MinimizationID(runID, inputID string) string {
	return uuid.NewSHA1(minimizationNamespace, []byte(runID+"\x00"+inputID)).String()
}

// WriteMinimization records the result of minimizing input within run r.
// Both programs are stored first. Re-recording the same input for the same
// run is a no-op.
func (s *Store) WriteMinimization(ctx context.Context, runID string, input, output *ir.Program, termCount int, errMsg string, seq int64) (Minimization, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Minimization{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	inputID, err := writeProgram(ctx, tx, input, seq)
	if err != nil {
		return Minimization{}, err
	}
	outputID, err := writeProgram(ctx, tx, output, seq)
	if err != nil {
		return Minimization{}, err
	}

	m := Minimization{
		ID:        MinimizationID(runID, inputID),
		RunID:     runID,
		InputID:   inputID,
		OutputID:  outputID,
		TermCount: termCount,
		Changed:   inputID != outputID,
		Error:     errMsg,
		Seq:       seq,
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO minimizations (id, run_id, input_id, output_id, term_count, changed, error, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, input_id) DO NOTHING
	`, m.ID, m.RunID, m.InputID, m.OutputID, m.TermCount, boolToInt(m.Changed), m.Error, m.Seq)
	if err != nil {
		return Minimization{}, fmt.Errorf("insert minimization %s: %w", m.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return Minimization{}, fmt.Errorf("commit: %w", err)
	}
	return m, nil
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func writeProgram(ctx context.Context, db execer, p *ir.Program, seq int64) (string, error) {
	id, err := ir.ProgramID(p)
	if err != nil {
		return "", fmt.Errorf("compute program ID: %w", err)
	}
	canonical, err := ir.MarshalCanonical(p)
	if err != nil {
		return "", fmt.Errorf("marshal program: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO programs (id, source, canonical, size, seq)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, id, asm.Format(p), string(canonical), p.Size(), seq)
	if err != nil {
		return "", fmt.Errorf("insert program %s: %w", id, err)
	}
	return id, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
