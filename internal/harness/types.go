package harness

import (
	"github.com/roach88/turing/internal/canon"
	"github.com/roach88/turing/internal/engine"
)

// TraceEvent is one applied transition in a scenario trace.
type TraceEvent struct {
	Step  int    `json:"step"`
	State string `json:"state"`
	Read  string `json:"read"`
	Write string `json:"write"`
	Move  string `json:"move"`
	Next  string `json:"next"`
	Head  int    `json:"head"`
}

// GrowthEvent is one tape reallocation in a scenario trace.
type GrowthEvent struct {
	Step    int `json:"step"`
	OldSize int `json:"old_size"`
	NewSize int `json:"new_size"`
	Offset  int `json:"offset"`
}

func traceEvent(e engine.StepEvent) TraceEvent {
	return TraceEvent{
		Step:  e.Step,
		State: e.State,
		Read:  string(e.Read),
		Write: string(e.Write),
		Move:  e.Move.String(),
		Next:  e.Next,
		Head:  e.Head,
	}
}

func growthEvent(e engine.GrowEvent) GrowthEvent {
	return GrowthEvent{Step: e.Step, OldSize: e.OldSize, NewSize: e.NewSize, Offset: e.Offset}
}

func (e TraceEvent) object() canon.Object {
	return canon.Object{
		"step":  e.Step,
		"state": e.State,
		"read":  e.Read,
		"write": e.Write,
		"move":  e.Move,
		"next":  e.Next,
		"head":  e.Head,
	}
}

func (e GrowthEvent) object() canon.Object {
	return canon.Object{
		"step":     e.Step,
		"old_size": e.OldSize,
		"new_size": e.NewSize,
		"offset":   e.Offset,
	}
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every expect field and assertion matches.
	Pass bool `json:"pass"`

	RunID  string `json:"run_id"`
	Status string `json:"status"`
	Steps  int    `json:"steps"`
	State  string `json:"state"`
	Tape   string `json:"tape"`

	// Trace contains every applied transition in order.
	Trace []TraceEvent `json:"trace"`

	// Growths contains every tape reallocation in order.
	Growths []GrowthEvent `json:"growths"`

	// Diagnostics are the malformed program lines skipped by a lenient parse.
	Diagnostics []string `json:"diagnostics,omitempty"`

	// Shadowed counts rules replaced by a later duplicate.
	Shadowed int `json:"shadowed"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Trace:   []TraceEvent{},
		Growths: []GrowthEvent{},
		Errors:  []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
