package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/roach88/turing/internal/engine"
	"github.com/roach88/turing/internal/testutil"
)

func TestReplay_Identical(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	writeTestRun(t, s, "run-1", testutil.Increment, "100111", true)

	report, err := s.Replay(ctx, "run-1")
	if err != nil {
		t.Fatalf("Replay() failed: %v", err)
	}
	if !report.Identical() {
		t.Errorf("expected identical replay, differences: %v", report.Differences)
	}
	if !report.TraceChecked {
		t.Error("expected trace to be checked")
	}
	if report.Replayed.RunID != "run-1" {
		t.Errorf("replayed run id = %q", report.Replayed.RunID)
	}
	if report.Replayed.Status != engine.Halted {
		t.Errorf("replayed status = %v", report.Replayed.Status)
	}
}

func TestReplay_WithoutTrace(t *testing.T) {
	s := createTestStore(t)

	writeTestRun(t, s, "run-1", testutil.RunRight, "1", false)

	report, err := s.Replay(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("Replay() failed: %v", err)
	}
	if report.TraceChecked {
		t.Error("untraced run should not check the trace")
	}
	if !report.Identical() {
		t.Errorf("differences: %v", report.Differences)
	}
}

func TestReplay_DetectsTamperedOutcome(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	writeTestRun(t, s, "run-1", testutil.Increment, "1011", true)

	if _, err := s.db.Exec(`UPDATE runs SET final_tape = '9999', steps = 3 WHERE id = 'run-1'`); err != nil {
		t.Fatalf("tamper: %v", err)
	}

	report, err := s.Replay(ctx, "run-1")
	if err != nil {
		t.Fatalf("Replay() failed: %v", err)
	}
	if report.Identical() {
		t.Fatal("expected differences after tampering")
	}

	joined := strings.Join(report.Differences, "\n")
	for _, want := range []string{"tape: stored 9999, replayed 1100", "steps: stored 3, replayed 8"} {
		if !strings.Contains(joined, want) {
			t.Errorf("differences missing %q:\n%s", want, joined)
		}
	}
}

func TestReplay_DetectsTamperedTrace(t *testing.T) {
	s := createTestStore(t)

	writeTestRun(t, s, "run-1", testutil.Increment, "1011", true)

	if _, err := s.db.Exec(`UPDATE steps SET next_state = 'elsewhere' WHERE run_id = 'run-1' AND step = 2`); err != nil {
		t.Fatalf("tamper: %v", err)
	}

	report, err := s.Replay(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("Replay() failed: %v", err)
	}
	if len(report.Differences) != 1 || !strings.HasPrefix(report.Differences[0], "step 2:") {
		t.Errorf("expected a single step 2 difference, got %v", report.Differences)
	}
}

func TestReplay_UnknownRun(t *testing.T) {
	s := createTestStore(t)

	_, err := s.Replay(context.Background(), "missing")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestReplay_ExtraHooks(t *testing.T) {
	s := createTestStore(t)
	writeTestRun(t, s, "run-1", testutil.Increment, "1", false)

	var finished int
	_, err := s.Replay(context.Background(), "run-1", engine.WithHooks(engine.Hooks{
		OnFinish: func(*engine.Result) { finished++ },
	}))
	if err != nil {
		t.Fatalf("Replay() failed: %v", err)
	}
	if finished != 1 {
		t.Errorf("OnFinish called %d times", finished)
	}
}
