package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/turing/internal/program"
	"github.com/roach88/turing/internal/tape"
)

func tr(start string, read rune, next string, write rune, move tape.Direction, line int) program.Transition {
	return program.Transition{StartState: start, Read: read, NextState: next, Write: write, Move: move, Line: line}
}

func TestLookup(t *testing.T) {
	idx := Build([]program.Transition{
		tr("start", '1', "start", '1', tape.Right, 4),
		tr("start", '_', "back", '_', tape.Left, 5),
		tr("back", '1', "stop", '0', tape.Left, 6),
	})

	got, ok := idx.Lookup("start", '_')
	require.True(t, ok)
	assert.Equal(t, "back", got.NextState)

	got, ok = idx.Lookup("back", '1')
	require.True(t, ok)
	assert.Equal(t, '0', got.Write)

	_, ok = idx.Lookup("back", '_')
	assert.False(t, ok)

	_, ok = idx.Lookup("Start", '1')
	assert.False(t, ok, "state names are case-sensitive")

	assert.Equal(t, 3, idx.Len())
	assert.Empty(t, idx.Shadowed())
}

func TestBuild_LastInsertedWins(t *testing.T) {
	first := tr("start", '1', "a", '1', tape.Right, 4)
	second := tr("start", '1', "b", '0', tape.Left, 7)

	idx := Build([]program.Transition{first, second})

	got, ok := idx.Lookup("start", '1')
	require.True(t, ok)
	assert.Equal(t, "b", got.NextState)
	assert.Equal(t, 7, got.Line)
	assert.Equal(t, 1, idx.Len())

	require.Len(t, idx.Shadowed(), 1)
	sh := idx.Shadowed()[0]
	assert.Equal(t, Key{State: "start", Symbol: '1'}, sh.Key)
	assert.Equal(t, 4, sh.Replaced.Line)
	assert.Equal(t, 7, sh.By.Line)
}

func TestBuild_Empty(t *testing.T) {
	idx := Build(nil)
	_, ok := idx.Lookup("start", '1')
	assert.False(t, ok)
	assert.Equal(t, 0, idx.Len())
	assert.Empty(t, idx.States())
}

func TestStatesAndSymbols(t *testing.T) {
	idx := Build([]program.Transition{
		tr("q1", 'b', "q0", 'c', tape.Right, 0),
		tr("q0", 'a', "q1", 'b', tape.Right, 0),
		tr("q0", 'b', "stop", 'b', tape.Left, 0),
	})

	assert.Equal(t, []string{"q0", "q1"}, idx.States())
	assert.Equal(t, []rune{'a', 'b', 'c'}, idx.Symbols())
}
