package engine

import (
	"context"
	"log/slog"

	"github.com/roach88/turing/internal/index"
	"github.com/roach88/turing/internal/logging"
	"github.com/roach88/turing/internal/tape"
)

const (
	// DefaultStartState is the state a machine starts in.
	DefaultStartState = "start"

	// DefaultHaltState stops a machine successfully. Comparison is case-sensitive.
	DefaultHaltState = "stop"

	// cancelCheckInterval is how many steps run between context checks.
	cancelCheckInterval = 4096
)

// Machine is the per-run context: tape, index, current state and counters.
// A Machine is not safe for concurrent use.
type Machine struct {
	runID  string
	tape   *tape.Tape
	index  *index.Index
	state  string
	halt   string
	quota  *QuotaEnforcer
	status Status
	cause  error
	err    error
	hooks  hookList
	logger *slog.Logger
}

// Option configures a Machine.
type Option func(*Machine)

// WithStartState sets the initial state. Default: "start".
func WithStartState(state string) Option {
	return func(m *Machine) {
		m.state = state
	}
}

// WithHaltState sets the halting state. Default: "stop".
func WithHaltState(state string) Option {
	return func(m *Machine) {
		m.halt = state
	}
}

// WithMaxSteps sets the step budget. Default: 100000.
func WithMaxSteps(maxSteps int) Option {
	return func(m *Machine) {
		m.quota = NewQuotaEnforcer(maxSteps)
	}
}

// WithHooks attaches step, growth and finish callbacks.
func WithHooks(hooks ...Hooks) Option {
	return func(m *Machine) {
		m.hooks = append(m.hooks, hooks...)
	}
}

// WithLogger sets the logger. Default: discard.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) {
		m.logger = logger
	}
}

// WithRunID names the run in events, errors and logs.
func WithRunID(id string) Option {
	return func(m *Machine) {
		m.runID = id
	}
}

// New creates a machine over t and idx. The machine takes ownership of both.
//
// If the start state is already the halting state the machine is Halted
// before taking any step.
func New(t *tape.Tape, idx *index.Index, opts ...Option) *Machine {
	m := &Machine{
		tape:   t,
		index:  idx,
		state:  DefaultStartState,
		halt:   DefaultHaltState,
		quota:  NewQuotaEnforcer(DefaultMaxSteps),
		status: Running,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.state == m.halt {
		m.status = Halted
	}
	return m
}

// RunID returns the run's identifier, "" if none was set.
func (m *Machine) RunID() string {
	return m.runID
}

// Status returns the execution state.
func (m *Machine) Status() Status {
	return m.status
}

// State returns the current state name.
func (m *Machine) State() string {
	return m.state
}

// Steps returns the number of completed steps.
func (m *Machine) Steps() int {
	return m.quota.Current()
}

// Tape returns the machine's tape. Callers must not mutate it while running.
func (m *Machine) Tape() *tape.Tape {
	return m.tape
}

// Step performs one iteration of the loop. It returns a *RuntimeError if the
// tape could not grow; the machine then refuses further steps.
// Step is a no-op once the machine has stopped.
func (m *Machine) Step() error {
	if m.err != nil {
		return m.err
	}
	if m.status != Running {
		return nil
	}

	if err := m.quota.Check(m.runID); err != nil {
		m.stop(StepLimitExceeded, err)
		return nil
	}

	g, err := m.tape.EnsureInRange()
	if err != nil {
		m.err = &RuntimeError{
			Code:    ErrCodeAllocationFailed,
			Message: "failed to expand tape",
			RunID:   m.runID,
			Step:    m.quota.Current(),
			Err:     err,
		}
		return m.err
	}
	if g.Grew() {
		m.hooks.grow(GrowEvent{
			RunID:   m.runID,
			Step:    m.quota.Current(),
			OldSize: g.OldSize,
			NewSize: g.NewSize,
			Offset:  g.Offset,
		})
	}

	head := m.tape.Head()
	symbol := m.tape.Read()

	t, ok := m.index.Lookup(m.state, symbol)
	if !ok {
		m.stop(NoTransition, &NoTransitionError{
			RunID:  m.runID,
			State:  m.state,
			Symbol: symbol,
			Step:   m.quota.Current(),
		})
		return nil
	}

	m.tape.Write(t.Write)
	prev := m.state
	m.state = t.NextState
	m.tape.Move(t.Move)
	m.quota.Consume()

	m.hooks.step(StepEvent{
		RunID: m.runID,
		Step:  m.quota.Current(),
		State: prev,
		Read:  symbol,
		Write: t.Write,
		Move:  t.Move,
		Next:  t.NextState,
		Head:  head,
	})

	if m.state == m.halt {
		m.stop(Halted, nil)
	}
	return nil
}

func (m *Machine) stop(s Status, cause error) {
	m.status = s
	m.cause = cause
}

// Run steps until the machine stops.
//
// It returns an error only when the run aborts: tape allocation failure, or
// ctx being cancelled. In both cases there is no Result.
func (m *Machine) Run(ctx context.Context) (*Result, error) {
	m.logger.Debug("run starting",
		"run_id", m.runID,
		"state", m.state,
		"max_steps", m.quota.MaxSteps(),
		"tape_size", m.tape.Size())

	for m.status == Running {
		if m.quota.Current()%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				m.logger.Info("run cancelled", "run_id", m.runID, "steps", m.quota.Current())
				return nil, err
			}
		}
		if err := m.Step(); err != nil {
			m.logger.Error("run aborted", "run_id", m.runID, "error", err)
			return nil, err
		}
	}

	res := m.Result()
	m.hooks.finish(res)

	m.logger.Info("run finished",
		"run_id", m.runID,
		"status", res.Status.String(),
		"steps", res.Steps,
		"state", res.State,
		"tape_size", res.TapeSize,
		"growths", res.Growths)
	return res, nil
}

// Result snapshots the machine. It may be called at any time.
func (m *Machine) Result() *Result {
	return &Result{
		RunID:    m.runID,
		Status:   m.status,
		Steps:    m.quota.Current(),
		State:    m.state,
		Tape:     m.tape.String(),
		TapeSize: m.tape.Size(),
		Growths:  m.tape.Growths(),
		Cause:    m.cause,
	}
}
