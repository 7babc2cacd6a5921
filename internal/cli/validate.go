package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/turing/internal/config"
	"github.com/roach88/turing/internal/index"
	"github.com/roach88/turing/internal/program"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	ConfigFile  string
	HeaderLines int
	Canonical   bool
}

// ValidationIssue is one malformed program line.
type ValidationIssue struct {
	Line    int    `json:"line"`
	Column  int    `json:"column,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Text    string `json:"text,omitempty"`
}

// ShadowedRule is a rule replaced by a later rule with the same key.
type ShadowedRule struct {
	State  string `json:"state"`
	Symbol string `json:"symbol"`
	Line   int    `json:"line"`
	ByLine int    `json:"by_line"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid       bool              `json:"valid"`
	File        string            `json:"file"`
	ProgramHash string            `json:"program_hash"`
	Transitions int               `json:"transitions"`
	Rules       int               `json:"rules"`
	States      []string          `json:"states"`
	Symbols     []string          `json:"symbols"`
	Errors      []ValidationIssue `json:"errors,omitempty"`
	Shadowed    []ShadowedRule    `json:"shadowed,omitempty"`
	Canonical   string            `json:"canonical,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <program>",
		Short: "Check a program without running it",
		Long: `Parse a program and report every malformed line, every rule that is
shadowed by a later rule with the same (state, symbol) key, and the states
and symbols the program mentions.

With --canonical the program is also rewritten in canonical form: the
header lines followed by every well-formed rule in file order, one
"(S1, R) -> (S2, W) D" per line. In text mode the canonical program goes to
stdout and the report to stderr, so the output can be redirected to a file.

Exit codes:
  0 - Every line parsed (shadowed rules are warnings)
  1 - At least one malformed line
  2 - Command error (unreadable file, bad config)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ConfigFile, "config", "", "CUE configuration file (header_lines is used)")
	cmd.Flags().IntVar(&opts.HeaderLines, "header-lines", program.DefaultHeaderLines, "number of descriptive lines before the rules")
	cmd.Flags().BoolVar(&opts.Canonical, "canonical", false, "print the program in canonical form")

	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg := config.Default()
	if opts.ConfigFile != "" {
		var err error
		if cfg, err = config.Load(opts.ConfigFile); err != nil {
			return WrapExitError(ExitCommandError, "invalid configuration", err)
		}
	}
	if cmd.Flags().Changed("header-lines") {
		cfg.HeaderLines = opts.HeaderLines
	}

	text, err := os.ReadFile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read program", err)
	}

	// Always lenient so every problem is reported.
	parseOpts := cfg.ParseOptions()
	parseOpts.Mode = program.Lenient
	parsed, err := program.Parse(string(text), parseOpts)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to parse program", err)
	}
	formatter.VerboseLog("Parsed %d rule(s) from %s", len(parsed.Transitions), path)

	hash, err := program.Hash(parsed.Transitions)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to hash program", err)
	}

	idx := index.Build(parsed.Transitions)
	result := ValidationResult{
		Valid:       parsed.OK(),
		File:        path,
		ProgramHash: hash,
		Transitions: len(parsed.Transitions),
		Rules:       idx.Len(),
		States:      idx.States(),
		Symbols:     []string{},
	}
	for _, r := range idx.Symbols() {
		result.Symbols = append(result.Symbols, string(r))
	}
	for _, d := range parsed.Diagnostics {
		result.Errors = append(result.Errors, ValidationIssue{
			Line:    d.Line,
			Column:  d.Column,
			Code:    string(d.Code),
			Message: d.Message,
			Text:    d.Text,
		})
	}
	for _, s := range idx.Shadowed() {
		result.Shadowed = append(result.Shadowed, ShadowedRule{
			State:  s.Key.State,
			Symbol: string(s.Key.Symbol),
			Line:   s.Replaced.Line,
			ByLine: s.By.Line,
		})
	}

	if opts.Canonical {
		result.Canonical = program.Format(parsed.Header, cfg.HeaderLines, parsed.Transitions)
	}

	switch {
	case formatter.Format == "json":
		if err := formatter.Success(result); err != nil {
			return err
		}
	case opts.Canonical:
		fmt.Fprint(cmd.OutOrStdout(), result.Canonical)
		report := *formatter
		report.Writer = cmd.ErrOrStderr()
		outputValidateText(&report, result)
	default:
		outputValidateText(formatter, result)
	}

	if !result.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))
	}
	return nil
}

func outputValidateText(formatter *OutputFormatter, result ValidationResult) {
	w := formatter.Writer

	if result.Valid {
		fmt.Fprintf(w, "\u2713 %s: %d rule(s), %d state(s), %d symbol(s)\n",
			result.File, result.Rules, len(result.States), len(result.Symbols))
	} else {
		fmt.Fprintf(w, "\u2717 %s: %d malformed line(s)\n", result.File, len(result.Errors))
		fmt.Fprintln(w)
		for _, e := range result.Errors {
			if e.Column > 0 {
				fmt.Fprintf(w, "  line %d:%d [%s] %s\n", e.Line, e.Column, e.Code, e.Message)
			} else {
				fmt.Fprintf(w, "  line %d [%s] %s\n", e.Line, e.Code, e.Message)
			}
			if e.Text != "" {
				fmt.Fprintf(w, "    %s\n", e.Text)
			}
		}
	}

	for _, s := range result.Shadowed {
		fmt.Fprintf(w, "  warning: line %d (%s, %s) is shadowed by line %d\n", s.Line, s.State, s.Symbol, s.ByLine)
	}

	if formatter.Verbose {
		fmt.Fprintf(w, "  program hash: %s\n", result.ProgramHash)
	}
}
