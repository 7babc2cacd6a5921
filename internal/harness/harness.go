package harness

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/turing/internal/config"
	"github.com/roach88/turing/internal/engine"
	"github.com/roach88/turing/internal/logging"
	"github.com/roach88/turing/internal/store"
	"github.com/roach88/turing/internal/testutil"
)

// Harness is the test execution engine.
// It runs scenarios with a deterministic clock and run IDs.
type Harness struct {
	store  *store.Store
	logger *slog.Logger
}

// Option configures Run.
type Option func(*Harness)

// WithLogger routes machine logs. Default: discard.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Harness) {
		h.logger = logger
	}
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Load the program and apply config overrides
// 2. Run the machine, recording its trace
// 3. Journal the run and replay it from the journal
// 4. Check expect fields and assertions
//
// A returned error means the scenario could not be executed at all. Parse
// and allocation failures are scenario outcomes and are reported in Result.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	st, err := store.Open(":memory:", store.WithClock(testutil.NewDeterministicClock()))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:  st,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}

	return h.run(context.Background(), scenario)
}

func (h *Harness) run(ctx context.Context, scenario *Scenario) (*Result, error) {
	text, err := scenario.programText()
	if err != nil {
		return nil, err
	}
	cfg := scenario.Config.Apply(config.Default())
	runID := testutil.NewFixedRunIDGenerator(scenario.RunID).Generate()

	result := NewResult()
	result.RunID = runID

	rec := &engine.TraceRecorder{}
	loaded, err := engine.Load(cfg, text, scenario.Tape,
		engine.WithRunID(runID),
		engine.WithHooks(rec.Hooks()),
		engine.WithLogger(h.logger),
	)
	if err != nil {
		checkError(result, scenario.Expect, err)
		return result, nil
	}

	for _, d := range loaded.Program.Diagnostics {
		result.Diagnostics = append(result.Diagnostics, d.Error())
	}
	result.Shadowed = len(loaded.Index.Shadowed())

	res, err := loaded.Machine.Run(ctx)
	for _, e := range rec.Steps {
		result.Trace = append(result.Trace, traceEvent(e))
	}
	for _, g := range rec.Growths {
		result.Growths = append(result.Growths, growthEvent(g))
	}
	if err != nil {
		checkError(result, scenario.Expect, err)
		return result, nil
	}

	result.Status = res.Status.String()
	result.Steps = res.Steps
	result.State = res.State
	result.Tape = res.Tape

	if scenario.Expect.Error != nil {
		result.AddError(fmt.Sprintf("expected error containing %q, run finished with status %s", *scenario.Expect.Error, result.Status))
	}
	checkExpect(result, scenario.Expect)

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	if err := h.journal(ctx, cfg, text, loaded, res, rec, result); err != nil {
		return nil, err
	}

	return result, nil
}

// journal records the run, replays it from the store and reports any
// difference as a scenario failure.
func (h *Harness) journal(ctx context.Context, cfg config.Config, text string, loaded *engine.Loaded, res *engine.Result, rec *engine.TraceRecorder, result *Result) error {
	run := store.NewRun(cfg, text, loaded, res)
	if _, err := h.store.WriteRun(ctx, run); err != nil {
		return fmt.Errorf("journal run: %w", err)
	}
	if err := h.store.WriteTrace(ctx, run.ID, rec.Steps, rec.Growths); err != nil {
		return fmt.Errorf("journal trace: %w", err)
	}

	report, err := h.store.Replay(ctx, run.ID, engine.WithLogger(h.logger))
	if err != nil {
		return fmt.Errorf("replay: %w", err)
	}
	for _, d := range report.Differences {
		result.AddError("replay differs: " + d)
	}
	return nil
}

func checkError(result *Result, expect Expect, err error) {
	if expect.Error == nil {
		result.AddError(fmt.Sprintf("run failed: %v", err))
		return
	}
	if !strings.Contains(err.Error(), *expect.Error) {
		result.AddError(fmt.Sprintf("error mismatch: expected %q in %q", *expect.Error, err.Error()))
	}
}

func checkExpect(result *Result, expect Expect) {
	if expect.Status != nil && *expect.Status != result.Status {
		result.AddError(fmt.Sprintf("status mismatch: expected %s, got %s", *expect.Status, result.Status))
	}
	if expect.Tape != nil && *expect.Tape != result.Tape {
		result.AddError(fmt.Sprintf("tape mismatch: expected %q, got %q", *expect.Tape, result.Tape))
	}
	if expect.Steps != nil && *expect.Steps != result.Steps {
		result.AddError(fmt.Sprintf("steps mismatch: expected %d, got %d", *expect.Steps, result.Steps))
	}
	if expect.State != nil && *expect.State != result.State {
		result.AddError(fmt.Sprintf("state mismatch: expected %s, got %s", *expect.State, result.State))
	}
}
