package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/turing/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database    string
	Limit       int
	ProgramHash string
}

// HistoryEntry is one journaled run.
type HistoryEntry struct {
	Seq         int64  `json:"seq"`
	RunID       string `json:"run_id"`
	ProgramHash string `json:"program_hash"`
	Status      string `json:"status"`
	Steps       int    `json:"steps"`
	State       string `json:"state"`
	Input       string `json:"input"`
	Tape        string `json:"tape"`
	Growths     int    `json:"growths"`
	CreatedAt   string `json:"created_at"`
}

// HistoryResult holds the history listing.
type HistoryResult struct {
	Runs  []HistoryEntry `json:"runs"`
	Total int            `json:"total"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List journaled runs",
		Long: `List the most recent runs recorded with "turing run --db", oldest first.

Examples:
  turing history --db ./runs.db
  turing history --db ./runs.db --limit 5
  turing history --db ./runs.db --program 3f2a... --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "show at most this many runs (0 for all)")
	cmd.Flags().StringVar(&opts.ProgramHash, "program", "", "only runs of the program with this hash")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	runs, err := st.ListRuns(cmd.Context(), store.ListOptions{
		Limit:       opts.Limit,
		ProgramHash: opts.ProgramHash,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	result := HistoryResult{
		Runs:  make([]HistoryEntry, 0, len(runs)),
		Total: len(runs),
	}
	for _, r := range runs {
		result.Runs = append(result.Runs, HistoryEntry{
			Seq:         r.Seq,
			RunID:       r.ID,
			ProgramHash: r.ProgramHash,
			Status:      r.Status,
			Steps:       r.Steps,
			State:       r.State,
			Input:       r.Input,
			Tape:        r.Tape,
			Growths:     r.Growths,
			CreatedAt:   r.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	if opts.Format == "json" {
		formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		return formatter.Success(result)
	}

	w := cmd.OutOrStdout()
	if len(result.Runs) == 0 {
		fmt.Fprintln(w, "No runs found in database.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tRUN\tPROGRAM\tSTATUS\tSTEPS\tTAPE\tCREATED")
	for _, e := range result.Runs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\t%s\n",
			e.Seq, e.RunID, truncateID(e.ProgramHash), e.Status, e.Steps, truncateTape(e.Tape), e.CreatedAt)
	}
	return tw.Flush()
}

// truncateID truncates a long ID for display.
func truncateID(id string) string {
	if len(id) <= 16 {
		return id
	}
	return id[:8] + "..." + id[len(id)-8:]
}

// truncateTape shortens long tapes for table output.
func truncateTape(tape string) string {
	r := []rune(tape)
	if len(r) <= 32 {
		return tape
	}
	return string(r[:29]) + "..."
}
