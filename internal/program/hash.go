package program

import (
	"github.com/roach88/turing/internal/canon"
)

// Hash returns the content identity of a transition list. Source line
// numbers and header text do not contribute, so reformatting comments does
// not change the hash.
func Hash(transitions []Transition) (string, error) {
	records := make([]any, len(transitions))
	for i, t := range transitions {
		records[i] = canon.Object{
			"start": t.StartState,
			"read":  string(t.Read),
			"next":  t.NextState,
			"write": string(t.Write),
			"move":  t.Move.String(),
		}
	}
	return canon.Hash(canon.DomainProgram, records)
}
