package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/turing/internal/canon"
)

// Snapshot renders the outcome and trace of a run as canonical JSON.
// Identical runs produce byte-identical snapshots.
func Snapshot(scenarioName string, result *Result) ([]byte, error) {
	trace := make([]any, len(result.Trace))
	for i, ev := range result.Trace {
		trace[i] = ev.object()
	}
	growths := make([]any, len(result.Growths))
	for i, g := range result.Growths {
		growths[i] = g.object()
	}

	return canon.Marshal(canon.Object{
		"scenario_name": scenarioName,
		"run_id":        result.RunID,
		"status":        result.Status,
		"steps":         result.Steps,
		"state":         result.State,
		"tape":          result.Tape,
		"trace":         trace,
		"growths":       growths,
	})
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if trace doesn't match golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares the given result's trace against a golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
