package engine

import (
	"errors"
	"fmt"
)

// DefaultMaxSteps is the step budget of a run.
const DefaultMaxSteps = 100000

// QuotaEnforcer counts completed steps and enforces the step budget.
//
// Check is called before every step and fails once Current reaches MaxSteps,
// so a run performs at most MaxSteps transitions.
type QuotaEnforcer struct {
	maxSteps int
	current  int
}

// NewQuotaEnforcer creates a quota enforcer with the given limit.
func NewQuotaEnforcer(maxSteps int) *QuotaEnforcer {
	return &QuotaEnforcer{maxSteps: maxSteps}
}

// Check returns StepsExceededError if no step may be taken.
func (q *QuotaEnforcer) Check(runID string) error {
	if q.current >= q.maxSteps {
		return &StepsExceededError{
			RunID: runID,
			Steps: q.current,
			Limit: q.maxSteps,
		}
	}
	return nil
}

// Consume records one completed step.
func (q *QuotaEnforcer) Consume() {
	q.current++
}

// Current returns the number of completed steps.
func (q *QuotaEnforcer) Current() int {
	return q.current
}

// MaxSteps returns the step budget.
func (q *QuotaEnforcer) MaxSteps() int {
	return q.maxSteps
}

// StepsExceededError is the cause recorded when the step budget runs out.
type StepsExceededError struct {
	RunID string
	Steps int
	Limit int
}

// Error implements the error interface.
func (e *StepsExceededError) Error() string {
	if e.RunID == "" {
		return fmt.Sprintf("exceeded max steps: %d steps >= %d limit", e.Steps, e.Limit)
	}
	return fmt.Sprintf("run %s exceeded max steps: %d steps >= %d limit", e.RunID, e.Steps, e.Limit)
}

// IsStepsExceededError returns true if the error is a StepsExceededError.
func IsStepsExceededError(err error) bool {
	var se *StepsExceededError
	return errors.As(err, &se)
}
