package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/seqmin/internal/asm"
	"github.com/roach88/seqmin/internal/ir"
)

// ReadProgram returns the stored record for id, or ErrNotFound.
func (s *Store) ReadProgram(ctx context.Context, id string) (ProgramRecord, error) {
	var r ProgramRecord
	err := s.db.QueryRowContext(ctx, `
		SELECT id, source, canonical, size, seq
		FROM programs
		WHERE id = ?
	`, id).Scan(&r.ID, &r.Source, &r.Canonical, &r.Size, &r.Seq)
	if errors.Is(err, sql.ErrNoRows) {
		return ProgramRecord{}, fmt.Errorf("program %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return ProgramRecord{}, fmt.Errorf("read program %s: %w", id, err)
	}
	return r, nil
}

// LoadProgram reads and parses the program stored under id.
func (s *Store) LoadProgram(ctx context.Context, id string) (*ir.Program, error) {
	r, err := s.ReadProgram(ctx, id)
	if err != nil {
		return nil, err
	}
	p, err := asm.Parse(r.Source)
	if err != nil {
		return nil, fmt.Errorf("parse stored program %s: %w", id, err)
	}
	return p, nil
}

// ListPrograms returns all stored programs in seq order.
// Returns an empty slice (not nil) when the store is empty.
func (s *Store) ListPrograms(ctx context.Context) ([]ProgramRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, canonical, size, seq
		FROM programs
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query programs: %w", err)
	}
	defer rows.Close()

	records := []ProgramRecord{}
	for rows.Next() {
		var r ProgramRecord
		if err := rows.Scan(&r.ID, &r.Source, &r.Canonical, &r.Size, &r.Seq); err != nil {
			return nil, fmt.Errorf("scan program: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate programs: %w", err)
	}
	return records, nil
}

// ReadRun returns a run record, or ErrNotFound.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	var r Run
	err := s.db.QueryRowContext(ctx, `
		SELECT id, term_count, config, tool_version, seq
		FROM runs
		WHERE id = ?
	`, id).Scan(&r.ID, &r.TermCount, &r.Config, &r.ToolVersion, &r.Seq)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("read run %s: %w", id, err)
	}
	return r, nil
}

// ReadMinimizations returns every result recorded for a run, in seq order.
// Returns an empty slice (not nil) if the run has no results.
func (s *Store) ReadMinimizations(ctx context.Context, runID string) ([]Minimization, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_id, input_id, output_id, term_count, changed, error, seq
		FROM minimizations
		WHERE run_id = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query minimizations: %w", err)
	}
	defer rows.Close()

	results := []Minimization{}
	for rows.Next() {
		var m Minimization
		var changed int
		if err := rows.Scan(&m.ID, &m.RunID, &m.InputID, &m.OutputID, &m.TermCount, &changed, &m.Error, &m.Seq); err != nil {
			return nil, fmt.Errorf("scan minimization: %w", err)
		}
		m.Changed = changed != 0
		results = append(results, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate minimizations: %w", err)
	}
	return results, nil
}
