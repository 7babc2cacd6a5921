package program

import (
	"fmt"

	"github.com/roach88/turing/internal/tape"
)

// MaxStateName is the longest state identifier accepted, in runes.
const MaxStateName = 49

// Transition maps (StartState, Read) to (NextState, Write, Move).
type Transition struct {
	StartState string
	Read       rune
	NextState  string
	Write      rune
	Move       tape.Direction

	// Line is the 1-based source line the record came from, 0 if built in code.
	Line int
}

// String renders the transition in program-text layout.
func (t Transition) String() string {
	return fmt.Sprintf("(%s, %c) -> (%s, %c) %s", t.StartState, t.Read, t.NextState, t.Write, t.Move)
}
