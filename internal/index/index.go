// Package index provides constant-time transition lookup by (state, symbol).
//
// Duplicate keys follow last-inserted-wins: a later record for the same
// (state, symbol) replaces the earlier one. Every replaced record is kept in
// Shadowed so callers can warn about it.
package index

import (
	"sort"

	"github.com/roach88/turing/internal/program"
)

// Key identifies a transition by the state it leaves and the symbol it reads.
type Key struct {
	State  string
	Symbol rune
}

// Shadow records a transition replaced by a later one with the same key.
type Shadow struct {
	Key      Key
	Replaced program.Transition
	By       program.Transition
}

// Index is read-only after Build.
type Index struct {
	byKey    map[Key]program.Transition
	shadowed []Shadow
}

// Build inserts transitions in order.
func Build(transitions []program.Transition) *Index {
	idx := &Index{byKey: make(map[Key]program.Transition, len(transitions))}
	for _, t := range transitions {
		k := Key{State: t.StartState, Symbol: t.Read}
		if prev, ok := idx.byKey[k]; ok {
			idx.shadowed = append(idx.shadowed, Shadow{Key: k, Replaced: prev, By: t})
		}
		idx.byKey[k] = t
	}
	return idx
}

// Lookup returns the transition for the exact (state, symbol) pair.
func (idx *Index) Lookup(state string, symbol rune) (program.Transition, bool) {
	t, ok := idx.byKey[Key{State: state, Symbol: symbol}]
	return t, ok
}

// Len returns the number of distinct keys.
func (idx *Index) Len() int {
	return len(idx.byKey)
}

// Shadowed returns replaced duplicates in insertion order.
func (idx *Index) Shadowed() []Shadow {
	return idx.shadowed
}

// States returns every state that has at least one outgoing transition, sorted.
func (idx *Index) States() []string {
	seen := make(map[string]struct{})
	for k := range idx.byKey {
		seen[k.State] = struct{}{}
	}
	states := make([]string, 0, len(seen))
	for s := range seen {
		states = append(states, s)
	}
	sort.Strings(states)
	return states
}

// Symbols returns every symbol read or written by some transition, sorted.
func (idx *Index) Symbols() []rune {
	seen := make(map[rune]struct{})
	for _, t := range idx.byKey {
		seen[t.Read] = struct{}{}
		seen[t.Write] = struct{}{}
	}
	symbols := make([]rune, 0, len(seen))
	for r := range seen {
		symbols = append(symbols, r)
	}
	sort.Slice(symbols, func(i, j int) bool { return symbols[i] < symbols[j] })
	return symbols
}
