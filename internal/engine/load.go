package engine

import (
	"fmt"

	"github.com/roach88/turing/internal/canon"
	"github.com/roach88/turing/internal/config"
	"github.com/roach88/turing/internal/index"
	"github.com/roach88/turing/internal/program"
	"github.com/roach88/turing/internal/tape"
)

// Loaded is a machine ready to run together with what it was built from.
type Loaded struct {
	Machine *Machine
	Program *program.Result
	Index   *index.Index

	// ProgramHash, ConfigHash and RunKey identify the run's inputs.
	ProgramHash string
	ConfigHash  string
	RunKey      string

	// Input is the NFC-normalized initial tape text.
	Input string
}

// Load parses programText, builds the index, seeds the tape with input and
// returns a Running machine configured from cfg. opts are applied after the
// configuration so callers can attach hooks, a logger or a run ID.
//
// In strict parse mode the first malformed line is returned as a
// *program.LineError. Tape allocation failure is returned as a *RuntimeError.
func Load(cfg config.Config, programText, input string, opts ...Option) (*Loaded, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	parsed, err := program.Parse(programText, cfg.ParseOptions())
	if err != nil {
		return nil, fmt.Errorf("parse program: %w", err)
	}

	programHash, err := program.Hash(parsed.Transitions)
	if err != nil {
		return nil, fmt.Errorf("hash program: %w", err)
	}

	idx := index.Build(parsed.Transitions)

	input = canon.NormalizeText(input)
	t, err := tape.New(input, cfg.TapeOptions())
	if err != nil {
		return nil, &RuntimeError{
			Code:    ErrCodeAllocationFailed,
			Message: "failed to allocate tape",
			Err:     err,
		}
	}

	base := []Option{
		WithStartState(cfg.StartState),
		WithHaltState(cfg.HaltState),
		WithMaxSteps(cfg.MaxSteps),
	}
	m := New(t, idx, append(base, opts...)...)

	configHash := cfg.Hash()
	return &Loaded{
		Machine:     m,
		Program:     parsed,
		Index:       idx,
		ProgramHash: programHash,
		ConfigHash:  configHash,
		RunKey:      canon.RunKey(programHash, configHash, input),
		Input:       input,
	}, nil
}
