package store

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/turing/internal/config"
	"github.com/roach88/turing/internal/engine"
)

// Run is one journal entry.
type Run struct {
	Seq         int64
	ID          string
	RunKey      string
	ProgramHash string
	ConfigHash  string
	Program     string
	Input       string
	Config      config.Config
	Status      string
	Steps       int
	State       string
	Tape        string
	TapeSize    int
	Growths     int
	CreatedAt   time.Time
}

// NewRun builds a journal entry from a loaded machine and its result.
// programText must be the text the machine was loaded from.
func NewRun(cfg config.Config, programText string, l *engine.Loaded, res *engine.Result) Run {
	return Run{
		ID:          res.RunID,
		RunKey:      l.RunKey,
		ProgramHash: l.ProgramHash,
		ConfigHash:  l.ConfigHash,
		Program:     programText,
		Input:       l.Input,
		Config:      cfg,
		Status:      res.Status.String(),
		Steps:       res.Steps,
		State:       res.State,
		Tape:        res.Tape,
		TapeSize:    res.TapeSize,
		Growths:     res.Growths,
	}
}

// WriteRun inserts a run and returns its seq.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - writing the same ID twice
// keeps the first entry and returns its seq.
//
// CreatedAt is taken from the store's clock when zero.
func (s *Store) WriteRun(ctx context.Context, run Run) (int64, error) {
	if run.ID == "" {
		return 0, fmt.Errorf("write run: empty run id")
	}

	cfgJSON, err := marshalConfig(run.Config)
	if err != nil {
		return 0, fmt.Errorf("write run: %w", err)
	}

	created := run.CreatedAt
	if created.IsZero() {
		created = s.clock.Now()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs
		(id, run_key, program_hash, config_hash, program_text, input, config_json,
		 status, steps, state, final_tape, tape_size, growths, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.RunKey,
		run.ProgramHash,
		run.ConfigHash,
		run.Program,
		run.Input,
		cfgJSON,
		run.Status,
		run.Steps,
		run.State,
		run.Tape,
		run.TapeSize,
		run.Growths,
		formatTime(created),
	)
	if err != nil {
		return 0, fmt.Errorf("write run: %w", err)
	}

	var seq int64
	if err := s.db.QueryRowContext(ctx, `SELECT seq FROM runs WHERE id = ?`, run.ID).Scan(&seq); err != nil {
		return 0, fmt.Errorf("write run: read seq: %w", err)
	}
	return seq, nil
}

// WriteTrace stores the step and growth events of a run in one transaction.
// The run must already exist (foreign key constraint). Rows that already
// exist are left untouched.
func (s *Store) WriteTrace(ctx context.Context, runID string, steps []engine.StepEvent, growths []engine.GrowEvent) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write trace: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	stepStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO steps
		(run_id, step, state, read, write, move, next_state, head)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, step) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("write trace: prepare steps: %w", err)
	}
	defer stepStmt.Close()

	for _, e := range steps {
		_, err := stepStmt.ExecContext(ctx,
			runID,
			e.Step,
			e.State,
			marshalSymbol(e.Read),
			marshalSymbol(e.Write),
			e.Move.String(),
			e.Next,
			e.Head,
		)
		if err != nil {
			return fmt.Errorf("write trace: step %d: %w", e.Step, err)
		}
	}

	for _, g := range growths {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO growths
			(run_id, step, old_size, new_size, shift)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(run_id, old_size) DO NOTHING
		`, runID, g.Step, g.OldSize, g.NewSize, g.Offset)
		if err != nil {
			return fmt.Errorf("write trace: growth at step %d: %w", g.Step, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write trace: commit: %w", err)
	}
	return nil
}
