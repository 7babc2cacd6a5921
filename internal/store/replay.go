package store

import (
	"context"
	"fmt"
	"reflect"

	"github.com/roach88/turing/internal/engine"
)

// ReplayReport compares a stored run with a fresh execution of the same inputs.
type ReplayReport struct {
	Run      Run
	Replayed *engine.Result

	// TraceChecked is true when the run had a stored trace to compare against.
	TraceChecked bool

	// Differences is empty when the replay matched the journal.
	Differences []string
}

// Identical reports whether the replay reproduced the stored run.
func (r ReplayReport) Identical() bool {
	return len(r.Differences) == 0
}

// Replay re-executes a stored run from its program text, input and
// configuration, and compares the outcome with what was recorded. If the
// run has a stored trace, every step and growth is compared as well.
//
// opts are passed to the machine after the run ID, so callers can attach a
// logger or extra hooks. The journal is not modified.
func (s *Store) Replay(ctx context.Context, runID string, opts ...engine.Option) (ReplayReport, error) {
	run, err := s.ReadRun(ctx, runID)
	if err != nil {
		return ReplayReport{}, fmt.Errorf("replay: %w", err)
	}

	storedSteps, err := s.ReadSteps(ctx, runID)
	if err != nil {
		return ReplayReport{}, fmt.Errorf("replay: %w", err)
	}
	storedGrowths, err := s.ReadGrowths(ctx, runID)
	if err != nil {
		return ReplayReport{}, fmt.Errorf("replay: %w", err)
	}

	rec := &engine.TraceRecorder{}
	machineOpts := append([]engine.Option{engine.WithRunID(run.ID), engine.WithHooks(rec.Hooks())}, opts...)

	loaded, err := engine.Load(run.Config, run.Program, run.Input, machineOpts...)
	if err != nil {
		return ReplayReport{}, fmt.Errorf("replay %s: load: %w", runID, err)
	}
	res, err := loaded.Machine.Run(ctx)
	if err != nil {
		return ReplayReport{}, fmt.Errorf("replay %s: %w", runID, err)
	}

	report := ReplayReport{Run: run, Replayed: res}
	diff := func(field string, stored, replayed any) {
		if !reflect.DeepEqual(stored, replayed) {
			report.Differences = append(report.Differences,
				fmt.Sprintf("%s: stored %v, replayed %v", field, stored, replayed))
		}
	}

	diff("program_hash", run.ProgramHash, loaded.ProgramHash)
	diff("run_key", run.RunKey, loaded.RunKey)
	diff("status", run.Status, res.Status.String())
	diff("steps", run.Steps, res.Steps)
	diff("state", run.State, res.State)
	diff("tape", run.Tape, res.Tape)
	diff("tape_size", run.TapeSize, res.TapeSize)
	diff("growths", run.Growths, res.Growths)

	if len(storedSteps) > 0 || len(storedGrowths) > 0 {
		report.TraceChecked = true
		compareSteps(&report, storedSteps, rec.Steps)
		compareGrowths(&report, storedGrowths, rec.Growths)
	}

	return report, nil
}

func compareSteps(report *ReplayReport, stored, replayed []engine.StepEvent) {
	if len(stored) != len(replayed) {
		report.Differences = append(report.Differences,
			fmt.Sprintf("trace length: stored %d, replayed %d", len(stored), len(replayed)))
	}
	n := min(len(stored), len(replayed))
	for i := 0; i < n; i++ {
		if stored[i] != replayed[i] {
			report.Differences = append(report.Differences,
				fmt.Sprintf("step %d: stored %+v, replayed %+v", stored[i].Step, stored[i], replayed[i]))
			// later steps diverge too; the first one is enough
			return
		}
	}
}

func compareGrowths(report *ReplayReport, stored, replayed []engine.GrowEvent) {
	if len(stored) != len(replayed) {
		report.Differences = append(report.Differences,
			fmt.Sprintf("growth count: stored %d, replayed %d", len(stored), len(replayed)))
		return
	}
	for i := range stored {
		if stored[i] != replayed[i] {
			report.Differences = append(report.Differences,
				fmt.Sprintf("growth %d: stored %+v, replayed %+v", i, stored[i], replayed[i]))
			return
		}
	}
}
