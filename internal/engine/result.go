package engine

// Advisory messages printed before the final tape.
const (
	AdvisoryNoTransition = "No transition"
	AdvisoryStepLimit    = "Exceeded maximum step count"
)

// Result is the outcome of a run.
type Result struct {
	RunID    string
	Status   Status
	Steps    int
	State    string
	Tape     string
	TapeSize int
	Growths  int

	// Cause is a *NoTransitionError or *StepsExceededError, nil when Halted.
	Cause error
}

// Advisory returns the message reported for a non-halting stop, or "".
func (r *Result) Advisory() string {
	switch r.Status {
	case NoTransition:
		return AdvisoryNoTransition
	case StepLimitExceeded:
		return AdvisoryStepLimit
	default:
		return ""
	}
}

// Same reports whether two results describe the same outcome, ignoring RunID.
func (r *Result) Same(other *Result) bool {
	return r.Status == other.Status &&
		r.Steps == other.Steps &&
		r.State == other.State &&
		r.Tape == other.Tape &&
		r.TapeSize == other.TapeSize &&
		r.Growths == other.Growths
}
