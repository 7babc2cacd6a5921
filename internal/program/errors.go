package program

import (
	"errors"
	"fmt"
)

// LineErrorCode categorizes program text problems.
type LineErrorCode string

const (
	// ErrCodeMalformedLine indicates a record that does not follow the layout.
	ErrCodeMalformedLine LineErrorCode = "MALFORMED_LINE"

	// ErrCodeUnrecognizedDirection indicates a direction other than '<' or '>'.
	ErrCodeUnrecognizedDirection LineErrorCode = "UNRECOGNIZED_DIRECTION"

	// ErrCodeStateNameTooLong indicates a state identifier over MaxStateName runes.
	ErrCodeStateNameTooLong LineErrorCode = "STATE_NAME_TOO_LONG"

	// ErrCodeMissingHeader indicates the text ended inside the header.
	ErrCodeMissingHeader LineErrorCode = "MISSING_HEADER"
)

// LineError describes a program line that could not be turned into a transition.
type LineError struct {
	// Line is 1-based.
	Line int

	// Column is the 1-based rune offset where parsing stopped, 0 if not applicable.
	Column int

	Code    LineErrorCode
	Message string

	// Text is the offending line.
	Text string
}

// Error implements the error interface.
func (e *LineError) Error() string {
	if e.Column > 0 {
		return fmt.Sprintf("line %d:%d: %s: %s", e.Line, e.Column, e.Code, e.Message)
	}
	return fmt.Sprintf("line %d: %s: %s", e.Line, e.Code, e.Message)
}

// IsLineError returns true if err is or wraps a *LineError.
func IsLineError(err error) bool {
	var le *LineError
	return errors.As(err, &le)
}
