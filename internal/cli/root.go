package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/turing/internal/logging"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	LogLevel string // console level; --verbose forces debug
	LogFile  string

	// Logger is built in PersistentPreRunE. Commands executed on their own
	// (as in tests) fall back to a stderr logger via logger().
	Logger *slog.Logger

	logFile *os.File
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the turing CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "turing",
		Short: "Deterministic single-tape Turing machine simulator",
		Long: `Run Turing machine programs written as transition tables.

Each program line has the form

  (S1, R) -> (S2, W) D

meaning: in state S1 reading R, write W, move the head in direction D
('<' or '>') and enter state S2. The machine starts in state "start" and
halts in state "stop".`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return opts.setupLogger(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return opts.closeLogFile()
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output (debug logging)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "info", "console log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&opts.LogFile, "log-file", "", "also write JSON logs to this file")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewTraceCommand(opts))

	return cmd
}

func (o *RootOptions) setupLogger(cmd *cobra.Command) error {
	level, err := o.level()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid log level", err)
	}
	lo := logging.Options{Level: level, Console: cmd.ErrOrStderr()}
	if o.LogFile != "" {
		f, err := os.OpenFile(o.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open log file", err)
		}
		o.logFile = f
		lo.File = f
	}
	o.Logger = logging.New(lo)
	return nil
}

func (o *RootOptions) closeLogFile() error {
	if o.logFile == nil {
		return nil
	}
	err := o.logFile.Close()
	o.logFile = nil
	return err
}

// level resolves the console log level from --log-level and --verbose.
func (o *RootOptions) level() (slog.Level, error) {
	if o.Verbose {
		return slog.LevelDebug, nil
	}
	return logging.ParseLevel(o.LogLevel)
}

// debugLogging reports whether step-level records would reach any handler.
func (o *RootOptions) debugLogging() bool {
	if o.LogFile != "" {
		return true
	}
	level, err := o.level()
	return err == nil && level <= slog.LevelDebug
}

// logger returns the configured logger, or a stderr logger at the level
// implied by --log-level and --verbose.
func (o *RootOptions) logger(cmd *cobra.Command) *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	level, err := o.level()
	if err != nil {
		level = slog.LevelInfo
	}
	return logging.New(logging.Options{Level: level, Console: cmd.ErrOrStderr()})
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
