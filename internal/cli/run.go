package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/roach88/turing/internal/config"
	"github.com/roach88/turing/internal/engine"
	"github.com/roach88/turing/internal/metrics"
	"github.com/roach88/turing/internal/program"
	"github.com/roach88/turing/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Tape        string
	ConfigFile  string
	MaxSteps    int
	Strict      bool
	Blank       string
	StartState  string
	HaltState   string
	Database    string
	Trace       bool
	MetricsFile string

	// IDs names runs. Default: engine.UUIDv7Generator.
	IDs engine.RunIDGenerator
}

// RunOutput is the JSON payload of a finished run.
type RunOutput struct {
	RunID       string   `json:"run_id"`
	Status      string   `json:"status"`
	Advisory    string   `json:"advisory,omitempty"`
	Steps       int      `json:"steps"`
	State       string   `json:"state"`
	Tape        string   `json:"tape"`
	TapeSize    int      `json:"tape_size"`
	Growths     int      `json:"growths"`
	ProgramHash string   `json:"program_hash"`
	RunKey      string   `json:"run_key"`
	Diagnostics []string `json:"diagnostics,omitempty"`
	Shadowed    int      `json:"shadowed"`
	Journaled   bool     `json:"journaled"`

	// Earlier journaled runs with the same run key, oldest first.
	PreviousRuns []string `json:"previous_runs,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommand(&RunOptions{RootOptions: rootOpts})
}

func newRunCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [program]",
		Short: "Run a Turing machine program on a tape",
		Long: `Load a program, write the tape text onto a blank tape and run the
machine until it halts, finds no transition, or exceeds its step budget.

Without a program argument the program filename and then the tape are read
as two lines from stdin. With a program argument the tape comes from --tape,
or from the first line of stdin when --tape is not given.

Output is the advisory line, if any ("No transition" or "Exceeded maximum
step count"), followed by "Final tape: " and the non-blank cells.

Exit codes:
  0 - Run finished (halted, no transition, or step limit)
  1 - Program rejected by a strict parse
  2 - Command error (unreadable file, bad config, tape allocation failure)

Examples:
  turing run programs/increment.tm --tape 1011
  printf 'programs/increment.tm\n1011\n' | turing run
  turing run programs/increment.tm --tape 1011 --db runs.db --trace
  turing run programs/busy.tm --tape "" --max-steps 500 --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProgram(opts, cmd, args)
		},
	}

	cmd.Flags().StringVar(&opts.Tape, "tape", "", "initial tape text (read from stdin when not set)")
	cmd.Flags().StringVar(&opts.ConfigFile, "config", "", "CUE configuration file")
	cmd.Flags().IntVar(&opts.MaxSteps, "max-steps", engine.DefaultMaxSteps, "step budget")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "reject the program at the first malformed line")
	cmd.Flags().StringVar(&opts.Blank, "blank", "_", "blank symbol")
	cmd.Flags().StringVar(&opts.StartState, "start", "start", "start state")
	cmd.Flags().StringVar(&opts.HaltState, "halt", "stop", "halting state")
	cmd.Flags().StringVar(&opts.Database, "db", "", "journal the run to this SQLite database")
	cmd.Flags().BoolVar(&opts.Trace, "trace", false, "journal every step (requires --db)")
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")

	return cmd
}

func runProgram(opts *RunOptions, cmd *cobra.Command, args []string) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	logger := opts.logger(cmd)

	if opts.Trace && opts.Database == "" {
		return NewExitError(ExitCommandError, "--trace requires --db")
	}

	cfg, err := opts.config(cmd)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	stdin := bufio.NewReader(cmd.InOrStdin())
	interactive := isTerminal(cmd.InOrStdin())

	var path string
	if len(args) == 1 {
		path = args[0]
	} else {
		prompt(cmd, interactive, "Program file: ")
		path, err = readLine(stdin)
		if err != nil || path == "" {
			return NewExitError(ExitCommandError, "error reading filename")
		}
	}

	text, err := os.ReadFile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read program", err)
	}

	input := opts.Tape
	if !cmd.Flags().Changed("tape") {
		prompt(cmd, interactive, "Tape: ")
		input, err = readLine(stdin)
		if err != nil && !errors.Is(err, io.EOF) {
			return WrapExitError(ExitCommandError, "failed to read tape", err)
		}
	}

	ids := opts.IDs
	if ids == nil {
		ids = engine.UUIDv7Generator{}
	}
	runID := ids.Generate()

	var (
		rec       *engine.TraceRecorder
		collector *metrics.Collector
		hooks     []engine.Hooks
	)
	if opts.Trace {
		rec = &engine.TraceRecorder{}
		hooks = append(hooks, rec.Hooks())
	}
	if opts.MetricsFile != "" {
		collector = metrics.New()
		hooks = append(hooks, collector.Hooks())
	}
	if opts.debugLogging() {
		hooks = append(hooks, engine.LogHooks(logger))
	}

	loaded, err := engine.Load(cfg, string(text), input,
		engine.WithRunID(runID),
		engine.WithLogger(logger),
		engine.WithHooks(hooks...),
	)
	if err != nil {
		return loadFailure(formatter, err)
	}

	for _, d := range loaded.Program.Diagnostics {
		logger.Warn("skipped malformed line", "file", path, "line", d.Line, "code", d.Code, "error", d.Message)
	}
	for _, s := range loaded.Index.Shadowed() {
		logger.Warn("rule shadowed by a later rule",
			"file", path,
			"state", s.Key.State,
			"symbol", string(s.Key.Symbol),
			"line", s.Replaced.Line,
			"by_line", s.By.Line,
		)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := loaded.Machine.Run(ctx)
	if err != nil {
		if engine.IsAllocationError(err) {
			formatter.jsonError(CodeAllocationFailed, err)
			return WrapExitError(ExitCommandError, "tape allocation failed", err)
		}
		if errors.Is(err, context.Canceled) {
			return WrapExitError(ExitCommandError, "run interrupted", err)
		}
		return WrapExitError(ExitCommandError, "run failed", err)
	}

	out := RunOutput{
		RunID:       res.RunID,
		Status:      res.Status.String(),
		Advisory:    res.Advisory(),
		Steps:       res.Steps,
		State:       res.State,
		Tape:        res.Tape,
		TapeSize:    res.TapeSize,
		Growths:     res.Growths,
		ProgramHash: loaded.ProgramHash,
		RunKey:      loaded.RunKey,
		Shadowed:    len(loaded.Index.Shadowed()),
	}
	for _, d := range loaded.Program.Diagnostics {
		out.Diagnostics = append(out.Diagnostics, d.Error())
	}

	if opts.Database != "" {
		previous, err := journalRun(cmd.Context(), opts.Database, store.NewRun(cfg, string(text), loaded, res), rec)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to journal run", err)
		}
		out.Journaled = true
		out.PreviousRuns = previous
		logger.Info("run journaled", "run_id", res.RunID, "db", opts.Database)
		if len(previous) > 0 {
			logger.Info("identical run already journaled",
				"run_id", res.RunID,
				"previous_run", previous[len(previous)-1],
				"count", len(previous))
		}
	}

	if collector != nil {
		if err := collector.WriteFile(opts.MetricsFile); err != nil {
			return WrapExitError(ExitCommandError, "failed to write metrics", err)
		}
	}

	if opts.Format == "json" {
		return formatter.Success(out)
	}

	w := cmd.OutOrStdout()
	if out.Advisory != "" {
		fmt.Fprintln(w, out.Advisory)
	}
	fmt.Fprintf(w, "Final tape: %s\n", out.Tape)
	return nil
}

// config builds the run configuration: defaults, then the CUE file, then
// any flags set on the command line.
func (o *RunOptions) config(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if o.ConfigFile != "" {
		var err error
		if cfg, err = config.Load(o.ConfigFile); err != nil {
			return config.Config{}, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("max-steps") {
		cfg.MaxSteps = o.MaxSteps
	}
	if flags.Changed("strict") {
		if o.Strict {
			cfg.ParseMode = program.Strict.String()
		} else {
			cfg.ParseMode = program.Lenient.String()
		}
	}
	if flags.Changed("blank") {
		cfg.Blank = o.Blank
	}
	if flags.Changed("start") {
		cfg.StartState = o.StartState
	}
	if flags.Changed("halt") {
		cfg.HaltState = o.HaltState
	}

	return cfg, cfg.Validate()
}

func loadFailure(formatter *OutputFormatter, err error) error {
	switch {
	case program.IsLineError(err):
		formatter.jsonError(CodeParseFailed, err)
		return WrapExitError(ExitFailure, "program rejected", err)
	case engine.IsAllocationError(err):
		formatter.jsonError(CodeAllocationFailed, err)
		return WrapExitError(ExitCommandError, "tape allocation failed", err)
	default:
		formatter.jsonError(CodeCommandError, err)
		return WrapExitError(ExitCommandError, "failed to load machine", err)
	}
}

// journalRun records run and its trace, returning the IDs of earlier runs
// that share its run key.
func journalRun(ctx context.Context, path string, run store.Run, rec *engine.TraceRecorder) ([]string, error) {
	st, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	same, err := st.FindByRunKey(ctx, run.RunKey)
	if err != nil {
		return nil, err
	}
	var previous []string
	for _, r := range same {
		if r.ID != run.ID {
			previous = append(previous, r.ID)
		}
	}

	if _, err := st.WriteRun(ctx, run); err != nil {
		return nil, err
	}
	if rec != nil {
		if err := st.WriteTrace(ctx, run.ID, rec.Steps, rec.Growths); err != nil {
			return nil, err
		}
	}
	return previous, nil
}

// readLine returns the next line without its terminator. A final line
// without '\n' is returned with a nil error; io.EOF means nothing was left.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			err = nil
		} else {
			return "", err
		}
	}
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r"), nil
}

func prompt(cmd *cobra.Command, interactive bool, msg string) {
	if interactive {
		fmt.Fprint(cmd.ErrOrStderr(), msg)
	}
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
