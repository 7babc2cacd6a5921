package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/turing/internal/engine"
	"github.com/roach88/turing/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	Last     int // replay the most recent N runs when no run ID is given
}

// ReplayRunResult holds the replay result for a single run.
type ReplayRunResult struct {
	RunID         string   `json:"run_id"`
	Status        string   `json:"status"`
	Steps         int      `json:"steps"`
	Tape          string   `json:"tape"`
	TraceChecked  bool     `json:"trace_checked"`
	Deterministic bool     `json:"deterministic"`
	Differences   []string `json:"differences,omitempty"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Runs             []ReplayRunResult `json:"runs"`
	TotalRuns        int               `json:"total_runs"`
	AllDeterministic bool              `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay [run-id...]",
		Short: "Re-run journaled runs and verify determinism",
		Long: `Re-execute journaled runs from their stored program text, input and
configuration, and compare the outcome with what was recorded. Runs journaled
with --trace are also compared step by step.

With no run IDs the most recent runs are replayed (see --last).

Exit codes:
  0 - Every replay matched its journal entry
  1 - Determinism verification failed (differences detected)
  2 - Command error (database not found, unknown run, etc.)

Examples:
  turing replay --db ./runs.db
  turing replay --db ./runs.db 0190a6e4-...
  turing replay --db ./runs.db --last 100 --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().IntVar(&opts.Last, "last", 20, "replay this many recent runs when no run ID is given (0 for all)")

	return cmd
}

func runReplay(opts *ReplayOptions, runIDs []string, cmd *cobra.Command) error {
	ctx := cmd.Context()

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	if len(runIDs) == 0 {
		runs, err := st.ListRuns(ctx, store.ListOptions{Limit: opts.Last})
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list runs", err)
		}
		for _, r := range runs {
			runIDs = append(runIDs, r.ID)
		}
	}

	if len(runIDs) == 0 {
		if opts.Format == "json" {
			return outputReplayJSON(cmd, ReplayResult{
				Runs:             []ReplayRunResult{},
				AllDeterministic: true,
			})
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No runs found in database.")
		return nil
	}

	result := ReplayResult{
		Runs:             make([]ReplayRunResult, 0, len(runIDs)),
		TotalRuns:        len(runIDs),
		AllDeterministic: true,
	}

	logger := opts.logger(cmd)
	for _, id := range runIDs {
		runResult, err := replayRun(ctx, st, id, logger, opts.Verbose)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return NewExitError(ExitCommandError, fmt.Sprintf("run not found: %s", id))
			}
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay run %s", id), err)
		}
		if !runResult.Deterministic {
			result.AllDeterministic = false
			logger.Warn("replay differs from journal", "run_id", id, "differences", len(runResult.Differences))
		}
		result.Runs = append(result.Runs, runResult)
	}

	if opts.Format == "json" {
		return outputReplayJSON(cmd, result)
	}

	return outputReplayText(cmd, result, opts.Verbose)
}

func replayRun(ctx context.Context, st *store.Store, runID string, logger *slog.Logger, verbose bool) (ReplayRunResult, error) {
	var machineOpts []engine.Option
	if verbose {
		machineOpts = append(machineOpts, engine.WithLogger(logger))
	}

	report, err := st.Replay(ctx, runID, machineOpts...)
	if err != nil {
		return ReplayRunResult{}, err
	}

	return ReplayRunResult{
		RunID:         runID,
		Status:        report.Run.Status,
		Steps:         report.Run.Steps,
		Tape:          report.Run.Tape,
		TraceChecked:  report.TraceChecked,
		Deterministic: report.Identical(),
		Differences:   report.Differences,
	}, nil
}

// outputReplayJSON outputs the replay result as JSON.
func outputReplayJSON(cmd *cobra.Command, result ReplayResult) error {
	response := CLIResponse{
		Status: "ok",
		Data:   result,
	}

	if !result.AllDeterministic {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    "DETERMINISM_FAILED",
			Message: "determinism verification failed",
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		return err
	}

	if !result.AllDeterministic {
		return NewExitError(ExitFailure, "determinism verification failed")
	}
	return nil
}

// outputReplayText outputs the replay result as text.
func outputReplayText(cmd *cobra.Command, result ReplayResult, verbose bool) error {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Replay Summary: %d run(s)\n", result.TotalRuns)
	fmt.Fprintln(w)

	for _, run := range result.Runs {
		status := "\u2713"
		if !run.Deterministic {
			status = "\u2717"
		}

		fmt.Fprintf(w, "%s Run: %s\n", status, run.RunID)
		if verbose {
			fmt.Fprintf(w, "  Status: %s\n", run.Status)
			fmt.Fprintf(w, "  Steps: %d\n", run.Steps)
			fmt.Fprintf(w, "  Tape: %s\n", run.Tape)
			fmt.Fprintf(w, "  Trace checked: %v\n", run.TraceChecked)
		} else {
			fmt.Fprintf(w, "  %s after %d step(s)\n", run.Status, run.Steps)
		}
		for _, d := range run.Differences {
			fmt.Fprintf(w, "  %s\n", d)
		}
	}

	fmt.Fprintln(w)
	if !result.AllDeterministic {
		fmt.Fprintln(w, "\u2717 Determinism verification failed")
		return NewExitError(ExitFailure, "determinism verification failed")
	}

	fmt.Fprintln(w, "\u2713 All runs replayed identically")
	return nil
}
