package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/turing/internal/config"
	"github.com/roach88/turing/internal/engine"
	"github.com/roach88/turing/internal/testutil"
)

// createTestStore creates a new store in a temp dir with a deterministic clock.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, WithClock(testutil.NewDeterministicClock()))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// executeRun runs programText on input and returns a journal entry plus the
// recorded trace.
func executeRun(t *testing.T, id string, cfg config.Config, programText, input string) (Run, *engine.TraceRecorder) {
	t.Helper()
	rec := &engine.TraceRecorder{}
	l, err := engine.Load(cfg, programText, input, engine.WithRunID(id), engine.WithHooks(rec.Hooks()))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	res, err := l.Machine.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	return NewRun(cfg, programText, l, res), rec
}

// writeTestRun executes and journals a run, with its trace when traced is true.
func writeTestRun(t *testing.T, s *Store, id, programText, input string, traced bool) Run {
	t.Helper()
	run, rec := executeRun(t, id, config.Default(), programText, input)
	ctx := context.Background()
	if _, err := s.WriteRun(ctx, run); err != nil {
		t.Fatalf("WriteRun() failed: %v", err)
	}
	if traced {
		if err := s.WriteTrace(ctx, id, rec.Steps, rec.Growths); err != nil {
			t.Fatalf("WriteTrace() failed: %v", err)
		}
	}
	return run
}
