package engine

import (
	"log/slog"

	"github.com/roach88/turing/internal/tape"
)

// StepEvent describes one applied transition.
type StepEvent struct {
	RunID string

	// Step is 1-based: the first transition applied is step 1.
	Step int

	State string
	Read  rune
	Write rune
	Move  tape.Direction
	Next  string

	// Head is the buffer index the symbol was read from.
	Head int
}

// GrowEvent describes a tape reallocation.
type GrowEvent struct {
	RunID string

	// Step is the number of steps completed before the growth.
	Step int

	OldSize int
	NewSize int
	Offset  int
}

// Hooks are optional callbacks invoked synchronously by the step loop.
// Nil fields are skipped.
type Hooks struct {
	OnStep   func(StepEvent)
	OnGrow   func(GrowEvent)
	OnFinish func(*Result)
}

type hookList []Hooks

func (hl hookList) step(e StepEvent) {
	for _, h := range hl {
		if h.OnStep != nil {
			h.OnStep(e)
		}
	}
}

func (hl hookList) grow(e GrowEvent) {
	for _, h := range hl {
		if h.OnGrow != nil {
			h.OnGrow(e)
		}
	}
}

func (hl hookList) finish(r *Result) {
	for _, h := range hl {
		if h.OnFinish != nil {
			h.OnFinish(r)
		}
	}
}

// TraceRecorder collects step and growth events in memory.
type TraceRecorder struct {
	Steps   []StepEvent
	Growths []GrowEvent
}

// Hooks returns hooks that append to the recorder.
func (r *TraceRecorder) Hooks() Hooks {
	return Hooks{
		OnStep: func(e StepEvent) { r.Steps = append(r.Steps, e) },
		OnGrow: func(e GrowEvent) { r.Growths = append(r.Growths, e) },
	}
}

// LogHooks returns hooks that log every step and growth at Debug.
func LogHooks(logger *slog.Logger) Hooks {
	return Hooks{
		OnStep: func(e StepEvent) {
			logger.Debug("step",
				"run_id", e.RunID,
				"step", e.Step,
				"state", e.State,
				"read", string(e.Read),
				"write", string(e.Write),
				"move", e.Move.String(),
				"next", e.Next,
				"head", e.Head,
			)
		},
		OnGrow: func(e GrowEvent) {
			logger.Debug("tape grew",
				"run_id", e.RunID,
				"step", e.Step,
				"old_size", e.OldSize,
				"new_size", e.NewSize,
				"offset", e.Offset,
			)
		},
	}
}
