package engine

// Status is the execution state of a machine.
type Status int

const (
	Running Status = iota
	Halted
	NoTransition
	StepLimitExceeded
)

// String returns the status name used in logs, JSON output and the journal.
func (s Status) String() string {
	switch s {
	case Running:
		return "running"
	case Halted:
		return "halted"
	case NoTransition:
		return "no_transition"
	case StepLimitExceeded:
		return "step_limit_exceeded"
	default:
		return "unknown"
	}
}

// ParseStatus is the inverse of Status.String.
func ParseStatus(s string) (Status, bool) {
	for _, st := range []Status{Running, Halted, NoTransition, StepLimitExceeded} {
		if st.String() == s {
			return st, true
		}
	}
	return 0, false
}

// Terminal reports whether the machine has stopped.
func (s Status) Terminal() bool {
	return s != Running
}
