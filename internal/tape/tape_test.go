package tape

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_CentresInput(t *testing.T) {
	tp, err := New("101", Options{})
	require.NoError(t, err)

	assert.Equal(t, DefaultInitialCapacity, tp.Size())
	assert.Equal(t, (DefaultInitialCapacity-3)/2, tp.Head())
	assert.Equal(t, '1', tp.Read())
	assert.Equal(t, "101", tp.String())
}

func TestNew_EmptyInputStartsAtCentre(t *testing.T) {
	tp, err := New("", Options{InitialCapacity: 16})
	require.NoError(t, err)

	assert.Equal(t, 8, tp.Head())
	assert.Equal(t, DefaultBlank, tp.Read())
	assert.Equal(t, "", tp.String())
}

func TestNew_SpacesBecomeBlank(t *testing.T) {
	tp, err := New("1 1", Options{InitialCapacity: 16})
	require.NoError(t, err)

	cells := cellsOf(tp)
	assert.Equal(t, DefaultBlank, cells[tp.Head()+1])
	assert.NotContains(t, tp.String(), " ")
	assert.Equal(t, "11", tp.String())
}

func TestNew_CapacityFitsLongInput(t *testing.T) {
	input := strings.Repeat("a", 40)
	tp, err := New(input, Options{InitialCapacity: 16})
	require.NoError(t, err)

	assert.Equal(t, 64, tp.Size())
	assert.Equal(t, 12, tp.Head())
	assert.Equal(t, input, tp.String())
}

func TestNew_AllocationLimit(t *testing.T) {
	_, err := New("abc", Options{InitialCapacity: 16, MaxCells: 8})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAllocation)
}

func TestNew_CustomBlank(t *testing.T) {
	tp, err := New("a b", Options{Blank: '.', InitialCapacity: 8})
	require.NoError(t, err)

	assert.Equal(t, '.', tp.Blank())
	assert.Equal(t, "ab", tp.String())
}

func TestReadWriteMove(t *testing.T) {
	tp, err := New("ab", Options{InitialCapacity: 8})
	require.NoError(t, err)

	assert.Equal(t, 'a', tp.Read())
	tp.Write('x')
	tp.Move(Right)
	assert.Equal(t, 'b', tp.Read())
	tp.Move(Left)
	assert.Equal(t, 'x', tp.Read())
	assert.Equal(t, "xb", tp.String())
}

func TestEnsureInRange_NoOpWhenInRange(t *testing.T) {
	tp, err := New("1", Options{InitialCapacity: 8})
	require.NoError(t, err)

	g, err := tp.EnsureInRange()
	require.NoError(t, err)
	assert.False(t, g.Grew())
	assert.Equal(t, 8, tp.Size())
	assert.Equal(t, 0, tp.Growths())
}

func TestEnsureInRange_Idempotent(t *testing.T) {
	tp, err := New("1", Options{InitialCapacity: 4})
	require.NoError(t, err)

	for tp.InRange() {
		tp.Move(Right)
	}

	first, err := tp.EnsureInRange()
	require.NoError(t, err)
	require.True(t, first.Grew())

	head, size := tp.Head(), tp.Size()
	second, err := tp.EnsureInRange()
	require.NoError(t, err)
	assert.False(t, second.Grew())
	assert.Equal(t, head, tp.Head())
	assert.Equal(t, size, tp.Size())
}

func TestEnsureInRange_GrowRightPreservesContent(t *testing.T) {
	tp, err := New("abcd", Options{InitialCapacity: 4})
	require.NoError(t, err)
	require.Equal(t, 0, tp.Head())

	before := cellsOf(tp)
	for i := 0; i < 4; i++ {
		tp.Move(Right)
	}
	require.False(t, tp.InRange())

	g, err := tp.EnsureInRange()
	require.NoError(t, err)
	assert.Equal(t, Growth{OldSize: 4, NewSize: 8, Offset: 2}, g)

	after := cellsOf(tp)
	assert.Equal(t, before, after[g.Offset:g.Offset+len(before)])
	assert.Equal(t, 6, tp.Head())
	assert.Equal(t, DefaultBlank, tp.Read())
	assert.Equal(t, "abcd", tp.String())
}

func TestEnsureInRange_GrowLeftKeepsLogicalCell(t *testing.T) {
	tp, err := New("ab", Options{InitialCapacity: 2})
	require.NoError(t, err)

	tp.Move(Left)
	require.False(t, tp.InRange())

	g, err := tp.EnsureInRange()
	require.NoError(t, err)
	assert.Equal(t, 1, g.Offset)
	assert.Equal(t, 0, tp.Head())
	assert.Equal(t, DefaultBlank, tp.Read())

	tp.Move(Right)
	assert.Equal(t, 'a', tp.Read())
	assert.Equal(t, 1, tp.Growths())
}

func TestEnsureInRange_AllocationLimit(t *testing.T) {
	tp, err := New("ab", Options{InitialCapacity: 4, MaxCells: 4})
	require.NoError(t, err)

	for tp.InRange() {
		tp.Move(Left)
	}
	_, err = tp.EnsureInRange()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAllocation)
}

func TestString_NeverContainsBlank(t *testing.T) {
	tp, err := New("a_b _c", Options{InitialCapacity: 16})
	require.NoError(t, err)

	tp.Write(DefaultBlank)
	out := tp.String()
	assert.NotContains(t, out, string(DefaultBlank))
	assert.Equal(t, "bc", out)
}

func TestDirection_String(t *testing.T) {
	assert.Equal(t, "<", Left.String())
	assert.Equal(t, ">", Right.String())
	assert.Equal(t, "Direction(7)", Direction(7).String())
}

func cellsOf(tp *Tape) []rune {
	return append([]rune(nil), tp.cells...)
}
