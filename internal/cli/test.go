package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/turing/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool   // regenerate golden files
	Filter string // scenario filter (glob pattern)
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	File   string   `json:"file"`
	Pass   bool     `json:"pass"`
	Status string   `json:"status,omitempty"`
	Steps  int      `json:"steps"`
	Tape   string   `json:"tape"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run YAML machine scenarios",
		Long: `Run scenario files and check each run's status, final tape, step count,
state and trace assertions. A scenario with a golden file next to it
(golden/<name>.golden) must also reproduce the recorded trace byte for byte.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  turing test ./scenarios
  turing test ./scenarios --filter "increment*"
  turing test ./scenarios --update
  turing test ./scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

func runTests(opts *TestOptions, scenariosDir string, cmd *cobra.Command) error {
	if _, err := os.Stat(scenariosDir); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("scenarios directory not found: %s", scenariosDir))
	}

	scenarioFiles, err := harness.FindScenarios(scenariosDir, opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	if len(scenarioFiles) == 0 {
		if opts.Format == "json" {
			return outputTestJSON(cmd, TestResult{Scenarios: []ScenarioResult{}})
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No scenarios found.")
		return nil
	}

	result := TestResult{
		Scenarios: make([]ScenarioResult, 0, len(scenarioFiles)),
		Total:     len(scenarioFiles),
	}

	for _, scenarioFile := range scenarioFiles {
		scenResult := runScenario(scenarioFile, opts, cmd)
		result.Scenarios = append(result.Scenarios, scenResult)

		if scenResult.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if opts.Format == "json" {
		return outputTestJSON(cmd, result)
	}

	return outputTestText(cmd, result)
}

// runScenario executes a single scenario, compares it with its golden file
// when one exists, and prints a one-line verdict in text mode.
func runScenario(scenarioFile string, opts *TestOptions, cmd *cobra.Command) ScenarioResult {
	sr := ScenarioResult{Name: filepath.Base(scenarioFile), File: scenarioFile}

	scenario, err := harness.LoadScenario(scenarioFile)
	if err != nil {
		return reportScenario(cmd, opts, sr, "", fmt.Sprintf("failed to load scenario: %v", err))
	}
	sr.Name = scenario.Name

	var hopts []harness.Option
	if opts.Verbose {
		hopts = append(hopts, harness.WithLogger(opts.logger(cmd)))
	}
	result, err := harness.Run(scenario, hopts...)
	if err != nil {
		return reportScenario(cmd, opts, sr, "", fmt.Sprintf("execution failed: %v", err))
	}
	sr.Status = result.Status
	sr.Steps = result.Steps
	sr.Tape = result.Tape

	snapshot, err := harness.Snapshot(scenario.Name, result)
	if err != nil {
		return reportScenario(cmd, opts, sr, "", fmt.Sprintf("failed to snapshot trace: %v", err))
	}

	goldenPath := harness.GoldenPath(scenarioFile)
	_, statErr := os.Stat(goldenPath)
	hasGolden := statErr == nil

	if opts.Update && (hasGolden || scenario.Golden) {
		if err := writeGolden(goldenPath, snapshot); err != nil {
			return reportScenario(cmd, opts, sr, "", fmt.Sprintf("failed to update golden file: %v", err))
		}
		return reportScenario(cmd, opts, sr, " (golden updated)", result.Errors...)
	}

	errs := result.Errors
	if hasGolden {
		want, err := os.ReadFile(goldenPath)
		if err != nil {
			errs = append(errs, fmt.Sprintf("failed to read golden file: %v", err))
		} else if !bytes.Equal(want, snapshot) {
			errs = append(errs, "trace does not match golden file (run with --update to regenerate)")
		}
	}

	return reportScenario(cmd, opts, sr, "", errs...)
}

func reportScenario(cmd *cobra.Command, opts *TestOptions, sr ScenarioResult, note string, errs ...string) ScenarioResult {
	sr.Pass = len(errs) == 0
	sr.Errors = errs

	if opts.Format == "json" {
		return sr
	}

	w := cmd.OutOrStdout()
	if sr.Pass {
		fmt.Fprintf(w, "\u2713 %s%s\n", sr.Name, note)
		return sr
	}

	fmt.Fprintf(w, "\u2717 %s\n", sr.Name)
	for _, e := range errs {
		fmt.Fprintf(w, "  %s\n", e)
	}
	return sr
}

func writeGolden(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}

// outputTestJSON outputs the test result as JSON.
func outputTestJSON(cmd *cobra.Command, result TestResult) error {
	status := "ok"
	if result.Failed > 0 {
		status = "error"
	}

	response := CLIResponse{
		Status: status,
		Data:   result,
	}

	if result.Failed > 0 {
		response.Error = &CLIError{
			Code:    "TEST_FAILED",
			Message: fmt.Sprintf("%d scenario(s) failed", result.Failed),
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		return err
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return nil
}

// outputTestText outputs the test result as text.
func outputTestText(cmd *cobra.Command, result TestResult) error {
	w := cmd.OutOrStdout()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}

	fmt.Fprintln(w, "\u2713 All scenarios passed")
	return nil
}
