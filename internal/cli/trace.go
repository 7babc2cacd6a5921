package cli

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/turing/internal/engine"
	"github.com/roach88/turing/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	RunID    string
	State    string // optional - filter to steps leaving this state
}

// TraceStep is a single applied transition in the timeline.
type TraceStep struct {
	Step  int    `json:"step"`
	State string `json:"state"`
	Read  string `json:"read"`
	Write string `json:"write"`
	Move  string `json:"move"`
	Next  string `json:"next"`
	Head  int    `json:"head"`
}

// TraceGrowth is a tape reallocation in the timeline.
type TraceGrowth struct {
	Step    int `json:"step"`
	OldSize int `json:"old_size"`
	NewSize int `json:"new_size"`
	Offset  int `json:"offset"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	RunID    string        `json:"run_id"`
	Status   string        `json:"status"`
	Timeline []TraceStep   `json:"timeline"`
	Growths  []TraceGrowth `json:"growths"`
	Stats    TraceStats    `json:"stats"`
}

// TraceStats holds summary statistics for the trace.
type TraceStats struct {
	TotalSteps int            `json:"total_steps"`
	Shown      int            `json:"shown"`
	Growths    int            `json:"growths"`
	ByState    map[string]int `json:"by_state"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show the stored step trace of a run",
		Long: `Show every transition a journaled run applied, in order, with the tape
reallocations interleaved where they happened.

Only runs journaled with "turing run --db ... --trace" have a step trace.

Examples:
  turing trace --db ./runs.db --run 0190a6e4-...
  turing trace --db ./runs.db --run 0190a6e4-... --state carry
  turing trace --db ./runs.db --run 0190a6e4-... --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run ID to trace (required)")
	_ = cmd.MarkFlagRequired("run")
	cmd.Flags().StringVar(&opts.State, "state", "", "only steps leaving this state")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	run, err := st.ReadRun(ctx, opts.RunID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return NewExitError(ExitCommandError, fmt.Sprintf("run not found: %s", opts.RunID))
		}
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	steps, err := st.ReadSteps(ctx, opts.RunID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read steps", err)
	}
	growths, err := st.ReadGrowths(ctx, opts.RunID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read growths", err)
	}

	result := buildTrace(run, steps, growths, opts.State)

	if opts.Format == "json" {
		return outputTraceJSON(cmd, result)
	}
	return outputTraceText(cmd, result, opts.Verbose)
}

// buildTrace converts stored events into the timeline, keeping only steps
// that leave state when it is set.
func buildTrace(run store.Run, steps []engine.StepEvent, growths []engine.GrowEvent, state string) TraceResult {
	result := TraceResult{
		RunID:    run.ID,
		Status:   run.Status,
		Timeline: []TraceStep{},
		Growths:  []TraceGrowth{},
		Stats: TraceStats{
			TotalSteps: len(steps),
			Growths:    len(growths),
			ByState:    map[string]int{},
		},
	}

	for _, e := range steps {
		result.Stats.ByState[e.State]++
		if state != "" && e.State != state {
			continue
		}
		result.Timeline = append(result.Timeline, TraceStep{
			Step:  e.Step,
			State: e.State,
			Read:  string(e.Read),
			Write: string(e.Write),
			Move:  e.Move.String(),
			Next:  e.Next,
			Head:  e.Head,
		})
	}
	for _, g := range growths {
		result.Growths = append(result.Growths, TraceGrowth{
			Step:    g.Step,
			OldSize: g.OldSize,
			NewSize: g.NewSize,
			Offset:  g.Offset,
		})
	}
	result.Stats.Shown = len(result.Timeline)
	return result
}

// outputTraceJSON outputs the trace result as JSON.
func outputTraceJSON(cmd *cobra.Command, result TraceResult) error {
	formatter := &OutputFormatter{Format: "json", Writer: cmd.OutOrStdout()}
	return formatter.Success(result)
}

// outputTraceText outputs the trace result as text.
func outputTraceText(cmd *cobra.Command, result TraceResult, verbose bool) error {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Trace for Run: %s\n", result.RunID)
	fmt.Fprintf(w, "Status: %s\n", result.Status)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Timeline ===")
	if len(result.Timeline) == 0 {
		fmt.Fprintln(w, "  (no steps recorded)")
	}
	g := 0
	for _, step := range result.Timeline {
		// growths happen before the step that needed the new cell
		for g < len(result.Growths) && result.Growths[g].Step < step.Step {
			formatGrowth(w, result.Growths[g])
			g++
		}
		formatStep(w, step, verbose)
	}
	for ; g < len(result.Growths); g++ {
		formatGrowth(w, result.Growths[g])
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Stats ===")
	fmt.Fprintf(w, "  Total Steps: %d\n", result.Stats.TotalSteps)
	fmt.Fprintf(w, "  Shown:       %d\n", result.Stats.Shown)
	fmt.Fprintf(w, "  Growths:     %d\n", result.Stats.Growths)
	if len(result.Stats.ByState) > 0 {
		fmt.Fprintln(w, "  By State:")
		states := make([]string, 0, len(result.Stats.ByState))
		for s := range result.Stats.ByState {
			states = append(states, s)
		}
		sort.Strings(states)
		for _, s := range states {
			fmt.Fprintf(w, "    %s: %d\n", s, result.Stats.ByState[s])
		}
	}

	return nil
}

func formatStep(w io.Writer, s TraceStep, verbose bool) {
	fmt.Fprintf(w, "  [%d] (%s, %s) -> (%s, %s) %s\n", s.Step, s.State, s.Read, s.Next, s.Write, s.Move)
	if verbose {
		fmt.Fprintf(w, "       Head: %d\n", s.Head)
	}
}

func formatGrowth(w io.Writer, g TraceGrowth) {
	fmt.Fprintf(w, "  -- tape grew %d -> %d cells (offset %d)\n", g.OldSize, g.NewSize, g.Offset)
}
