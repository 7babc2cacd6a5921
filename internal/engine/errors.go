package engine

import (
	"errors"
	"fmt"
)

// RuntimeError is returned when a run aborts.
//
// The only abort today is tape allocation failure; stopping on a missing
// transition or on the step budget is a normal outcome recorded in Result.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// RunID identifies the affected run.
	RunID string

	// Step is the number of completed steps when the error happened.
	Step int

	// Err is the underlying cause.
	Err error
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeAllocationFailed indicates the tape could not grow.
	ErrCodeAllocationFailed RuntimeErrorCode = "ALLOCATION_FAILED"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	msg := fmt.Sprintf("%s: %s (step=%d)", e.Code, e.Message, e.Step)
	if e.RunID != "" {
		msg = fmt.Sprintf("%s: %s (run=%s, step=%d)", e.Code, e.Message, e.RunID, e.Step)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// IsAllocationError returns true if the error is a tape allocation failure.
func IsAllocationError(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeAllocationFailed
	}
	return false
}

// NoTransitionError is the cause recorded when no rule matches.
type NoTransitionError struct {
	RunID  string
	State  string
	Symbol rune
	Step   int
}

// Error implements the error interface.
func (e *NoTransitionError) Error() string {
	return fmt.Sprintf("no transition for (%s, %c) after %d steps", e.State, e.Symbol, e.Step)
}

// IsNoTransitionError returns true if the error is a NoTransitionError.
func IsNoTransitionError(err error) bool {
	var nt *NoTransitionError
	return errors.As(err, &nt)
}
