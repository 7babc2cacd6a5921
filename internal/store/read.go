package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/turing/internal/engine"
)

const runColumns = `seq, id, run_key, program_hash, config_hash, program_text, input, config_json,
	status, steps, state, final_tape, tape_size, growths, created_at`

// ReadRun retrieves a single run by ID.
// Returns an error wrapping sql.ErrNoRows if not found.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err != nil {
		return Run{}, fmt.Errorf("read run %s: %w", id, err)
	}
	return run, nil
}

// ListOptions filters ListRuns.
type ListOptions struct {
	// Limit keeps only the most recent runs. Zero means no limit.
	Limit int

	// ProgramHash restricts the listing to one program when set.
	ProgramHash string
}

// ListRuns returns runs ordered by seq ASC.
//
// Returns an empty slice (not nil) if there are no runs.
func (s *Store) ListRuns(ctx context.Context, opts ListOptions) ([]Run, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+runColumns+` FROM (
			SELECT * FROM runs
			WHERE ? = '' OR program_hash = ?
			ORDER BY seq DESC
			LIMIT ?
		)
		ORDER BY seq ASC
	`, opts.ProgramHash, opts.ProgramHash, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// FindByRunKey returns every run with the given key, ordered by seq ASC.
// Runs sharing a key had identical program, configuration and input.
func (s *Store) FindByRunKey(ctx context.Context, runKey string) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+runColumns+` FROM runs
		WHERE run_key = ?
		ORDER BY seq ASC
	`, runKey)
	if err != nil {
		return nil, fmt.Errorf("query runs by key: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadSteps returns the recorded trace of a run ordered by step.
// Returns an empty slice if the run was not traced.
func (s *Store) ReadSteps(ctx context.Context, runID string) ([]engine.StepEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT step, state, read, write, move, next_state, head
		FROM steps
		WHERE run_id = ?
		ORDER BY step ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query steps: %w", err)
	}
	defer rows.Close()

	events := []engine.StepEvent{}
	for rows.Next() {
		var (
			e                 engine.StepEvent
			read, write, move string
		)
		if err := rows.Scan(&e.Step, &e.State, &read, &write, &move, &e.Next, &e.Head); err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		e.RunID = runID
		if e.Read, err = unmarshalSymbol(read); err != nil {
			return nil, fmt.Errorf("step %d: read: %w", e.Step, err)
		}
		if e.Write, err = unmarshalSymbol(write); err != nil {
			return nil, fmt.Errorf("step %d: write: %w", e.Step, err)
		}
		if e.Move, err = unmarshalMove(move); err != nil {
			return nil, fmt.Errorf("step %d: %w", e.Step, err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate steps: %w", err)
	}
	return events, nil
}

// ReadGrowths returns the recorded tape growths of a run ordered by step.
func (s *Store) ReadGrowths(ctx context.Context, runID string) ([]engine.GrowEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT step, old_size, new_size, shift
		FROM growths
		WHERE run_id = ?
		ORDER BY step ASC, old_size ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query growths: %w", err)
	}
	defer rows.Close()

	events := []engine.GrowEvent{}
	for rows.Next() {
		e := engine.GrowEvent{RunID: runID}
		if err := rows.Scan(&e.Step, &e.OldSize, &e.NewSize, &e.Offset); err != nil {
			return nil, fmt.Errorf("scan growth: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate growths: %w", err)
	}
	return events, nil
}

// rowScanner is implemented by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run              Run
		cfgJSON, created string
	)
	err := row.Scan(
		&run.Seq,
		&run.ID,
		&run.RunKey,
		&run.ProgramHash,
		&run.ConfigHash,
		&run.Program,
		&run.Input,
		&cfgJSON,
		&run.Status,
		&run.Steps,
		&run.State,
		&run.Tape,
		&run.TapeSize,
		&run.Growths,
		&created,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}

	if run.Config, err = unmarshalConfig(cfgJSON); err != nil {
		return Run{}, fmt.Errorf("run %s: %w", run.ID, err)
	}
	if run.CreatedAt, err = parseTime(created); err != nil {
		return Run{}, fmt.Errorf("run %s: %w", run.ID, err)
	}
	return run, nil
}
