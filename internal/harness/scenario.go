package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/turing/internal/config"
	"github.com/roach88/turing/internal/engine"
)

// Scenario defines one machine run and what it must produce.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Program is inline program text. Exactly one of Program and
	// ProgramFile must be set.
	Program string `yaml:"program,omitempty"`

	// ProgramFile is a path to the program text, relative to the scenario file.
	ProgramFile string `yaml:"program_file,omitempty"`

	// Tape is the initial tape text.
	Tape string `yaml:"tape"`

	// RunID is an optional fixed run ID for deterministic tests.
	// If empty, defaults to "test-run-default".
	RunID string `yaml:"run_id,omitempty"`

	// Config overrides the default machine configuration.
	Config ConfigOverrides `yaml:"config,omitempty"`

	// Expect lists outcome fields to check.
	Expect Expect `yaml:"expect"`

	// Assertions validate the trace.
	Assertions []Assertion `yaml:"assertions,omitempty"`

	// Golden compares the trace with testdata/golden/<name>.golden.
	Golden bool `yaml:"golden,omitempty"`
}

// ConfigOverrides replaces individual configuration fields. Nil fields keep
// their defaults.
type ConfigOverrides struct {
	Blank           *string `yaml:"blank,omitempty"`
	StartState      *string `yaml:"start_state,omitempty"`
	HaltState       *string `yaml:"halt_state,omitempty"`
	MaxSteps        *int    `yaml:"max_steps,omitempty"`
	InitialCapacity *int    `yaml:"initial_capacity,omitempty"`
	GrowthFactor    *int    `yaml:"growth_factor,omitempty"`
	MaxCells        *int    `yaml:"max_cells,omitempty"`
	HeaderLines     *int    `yaml:"header_lines,omitempty"`
	ParseMode       *string `yaml:"parse_mode,omitempty"`
}

// Apply returns base with the overrides applied.
func (o ConfigOverrides) Apply(base config.Config) config.Config {
	if o.Blank != nil {
		base.Blank = *o.Blank
	}
	if o.StartState != nil {
		base.StartState = *o.StartState
	}
	if o.HaltState != nil {
		base.HaltState = *o.HaltState
	}
	if o.MaxSteps != nil {
		base.MaxSteps = *o.MaxSteps
	}
	if o.InitialCapacity != nil {
		base.InitialCapacity = *o.InitialCapacity
	}
	if o.GrowthFactor != nil {
		base.GrowthFactor = *o.GrowthFactor
	}
	if o.MaxCells != nil {
		base.MaxCells = *o.MaxCells
	}
	if o.HeaderLines != nil {
		base.HeaderLines = *o.HeaderLines
	}
	if o.ParseMode != nil {
		base.ParseMode = *o.ParseMode
	}
	return base
}

// Expect specifies the expected outcome. Only non-nil fields are checked.
type Expect struct {
	Status *string `yaml:"status,omitempty"`
	Tape   *string `yaml:"tape,omitempty"`
	Steps  *int    `yaml:"steps,omitempty"`
	State  *string `yaml:"state,omitempty"`

	// Error expects the run to abort, with this text in the error message.
	Error *string `yaml:"error,omitempty"`
}

// Assertion validates the trace.
type Assertion struct {
	// Type specifies the assertion type:
	// - "trace_contains": some step matches every given field
	// - "trace_order": States are entered in this order
	// - "trace_count": exactly Count steps leave State
	// - "growth_count": the tape grew exactly Count times
	// - "diagnostics": exactly Count malformed program lines
	// - "shadowed": exactly Count rules replaced by duplicates
	Type string `yaml:"type"`

	// Step fields used by trace_contains; State is also used by trace_count.
	State string `yaml:"state,omitempty"`
	Read  string `yaml:"read,omitempty"`
	Write string `yaml:"write,omitempty"`
	Move  string `yaml:"move,omitempty"`
	Next  string `yaml:"next,omitempty"`

	// States is the expected order (used by trace_order).
	States []string `yaml:"states,omitempty"`

	// Count is the expected number (used by the counting assertions).
	Count *int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertGrowthCount   = "growth_count"
	AssertDiagnostics   = "diagnostics"
	AssertShadowed      = "shadowed"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
//
// ProgramFile is resolved relative to the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.ProgramFile != "" && !filepath.IsAbs(scenario.ProgramFile) {
		scenario.ProgramFile = filepath.Join(filepath.Dir(path), scenario.ProgramFile)
	}
	if scenario.ProgramFile != "" {
		if _, err := os.Stat(scenario.ProgramFile); os.IsNotExist(err) {
			return nil, fmt.Errorf("invalid scenario: program file not found: %s", scenario.ProgramFile)
		}
	}

	return scenario, nil
}

// ParseScenario parses scenario YAML without touching the filesystem.
func ParseScenario(data []byte) (*Scenario, error) {
	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if (s.Program == "") == (s.ProgramFile == "") {
		return fmt.Errorf("exactly one of program and program_file is required")
	}

	if s.Expect.Status != nil {
		if _, ok := engine.ParseStatus(*s.Expect.Status); !ok {
			return fmt.Errorf("expect.status: unknown status %q", *s.Expect.Status)
		}
	}
	if s.Expect.Error != nil && (s.Expect.Status != nil || s.Expect.Tape != nil || s.Expect.Steps != nil || s.Expect.State != nil) {
		return fmt.Errorf("expect.error cannot be combined with outcome fields")
	}

	if err := s.Config.Apply(config.Default()).Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(a); err != nil {
			return fmt.Errorf("assertions[%d]: %w", i, err)
		}
	}

	return nil
}

func validateAssertion(a Assertion) error {
	switch a.Type {
	case AssertTraceContains:
		if a.State == "" && a.Read == "" && a.Write == "" && a.Move == "" && a.Next == "" {
			return fmt.Errorf("trace_contains needs at least one step field")
		}
	case AssertTraceOrder:
		if len(a.States) == 0 {
			return fmt.Errorf("trace_order requires states")
		}
	case AssertTraceCount:
		if a.State == "" {
			return fmt.Errorf("trace_count requires state")
		}
		if a.Count == nil {
			return fmt.Errorf("trace_count requires count")
		}
	case AssertGrowthCount, AssertDiagnostics, AssertShadowed:
		if a.Count == nil {
			return fmt.Errorf("%s requires count", a.Type)
		}
	case "":
		return fmt.Errorf("type is required")
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

// programText returns the scenario's program, reading ProgramFile if needed.
func (s *Scenario) programText() (string, error) {
	if s.Program != "" {
		return s.Program, nil
	}
	data, err := os.ReadFile(s.ProgramFile)
	if err != nil {
		return "", fmt.Errorf("read program: %w", err)
	}
	return string(data), nil
}
