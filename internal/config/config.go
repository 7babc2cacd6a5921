// Package config holds machine configuration.
//
// Defaults reproduce the classic simulator: blank '_', start state "start",
// halt state "stop", a 100000 step budget, a 4096 cell tape doubling on
// growth, and a three-line program header. A CUE file can override any
// field; it is unified with an embedded schema so bad values are rejected
// with a position.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"unicode/utf8"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/turing/internal/canon"
	"github.com/roach88/turing/internal/program"
	"github.com/roach88/turing/internal/tape"
)

//go:embed schema.cue
var schemaCUE string

// Config is the machine configuration for one run.
type Config struct {
	Blank           string `json:"blank"`
	StartState      string `json:"start_state"`
	HaltState       string `json:"halt_state"`
	MaxSteps        int    `json:"max_steps"`
	InitialCapacity int    `json:"initial_capacity"`
	GrowthFactor    int    `json:"growth_factor"`
	MaxCells        int    `json:"max_cells"`
	HeaderLines     int    `json:"header_lines"`
	ParseMode       string `json:"parse_mode"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Blank:           string(tape.DefaultBlank),
		StartState:      "start",
		HaltState:       "stop",
		MaxSteps:        100000,
		InitialCapacity: tape.DefaultInitialCapacity,
		GrowthFactor:    tape.DefaultGrowthFactor,
		MaxCells:        tape.DefaultMaxCells,
		HeaderLines:     program.DefaultHeaderLines,
		ParseMode:       program.Lenient.String(),
	}
}

// Load reads a CUE config file and fills in defaults from the schema.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data, path)
}

// Parse evaluates CUE source against the schema. filename is used in
// error positions only.
func Parse(src []byte, filename string) (Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Config{}, fmt.Errorf("compile config schema: %w", err)
	}

	value := ctx.CompileBytes(src, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return Config{}, fmt.Errorf("compile config: %w", err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Config")).Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	var cfg Config
	if err := unified.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that flags may have overridden after Load.
func (c Config) Validate() error {
	if utf8.RuneCountInString(c.Blank) != 1 {
		return fmt.Errorf("invalid config: blank must be a single character, got %q", c.Blank)
	}
	if c.StartState == "" || c.HaltState == "" {
		return fmt.Errorf("invalid config: start_state and halt_state are required")
	}
	if c.MaxSteps <= 0 {
		return fmt.Errorf("invalid config: max_steps must be positive, got %d", c.MaxSteps)
	}
	if c.InitialCapacity <= 0 || c.MaxCells <= 0 {
		return fmt.Errorf("invalid config: initial_capacity and max_cells must be positive")
	}
	if c.GrowthFactor < 2 {
		return fmt.Errorf("invalid config: growth_factor must be at least 2, got %d", c.GrowthFactor)
	}
	if c.HeaderLines < 0 {
		return fmt.Errorf("invalid config: header_lines must not be negative")
	}
	if _, err := program.ParseMode(c.ParseMode); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// BlankSymbol returns Blank as a rune.
func (c Config) BlankSymbol() rune {
	r, _ := utf8.DecodeRuneInString(c.Blank)
	return r
}

// TapeOptions returns the tape settings.
func (c Config) TapeOptions() tape.Options {
	return tape.Options{
		Blank:           c.BlankSymbol(),
		InitialCapacity: c.InitialCapacity,
		GrowthFactor:    c.GrowthFactor,
		MaxCells:        c.MaxCells,
	}
}

// ParseOptions returns the program parser settings.
func (c Config) ParseOptions() program.Options {
	mode, _ := program.ParseMode(c.ParseMode)
	return program.Options{HeaderLines: c.HeaderLines, Mode: mode}
}

// Object returns the configuration as a canonical JSON object keyed by
// the json field names.
func (c Config) Object() canon.Object {
	return canon.Object{
		"blank":            c.Blank,
		"start_state":      c.StartState,
		"halt_state":       c.HaltState,
		"max_steps":        c.MaxSteps,
		"initial_capacity": c.InitialCapacity,
		"growth_factor":    c.GrowthFactor,
		"max_cells":        c.MaxCells,
		"header_lines":     c.HeaderLines,
		"parse_mode":       c.ParseMode,
	}
}

// Hash returns the content identity of the configuration.
func (c Config) Hash() string {
	h, err := canon.Hash(canon.DomainConfig, c.Object())
	if err != nil {
		// every field is a string or int
		panic(err)
	}
	return h
}
