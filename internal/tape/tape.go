// Package tape implements the machine's growable single tape.
//
// A Tape is a contiguous rune buffer with a head index. Cells that were never
// written hold the blank symbol. The buffer grows geometrically in both
// directions when the head walks off either end; growth recentres the old
// content so the extra capacity is split between the two sides.
//
// The head may be out of range after Move. Callers must call EnsureInRange
// before the next Read or Write.
package tape

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// DefaultBlank marks cells that were never written.
	DefaultBlank = '_'

	// DefaultInitialCapacity is the minimum number of cells allocated by New.
	DefaultInitialCapacity = 4096

	// DefaultGrowthFactor multiplies the size on every growth.
	DefaultGrowthFactor = 2

	// DefaultMaxCells bounds the number of cells a tape may grow to.
	DefaultMaxCells = 32 * 1024 * 1024
)

// ErrAllocation is returned when the tape would exceed its cell ceiling.
var ErrAllocation = errors.New("tape allocation failed")

// Direction is a head movement.
type Direction int

const (
	Left Direction = iota
	Right
)

// String returns the program-text spelling of the direction.
func (d Direction) String() string {
	switch d {
	case Left:
		return "<"
	case Right:
		return ">"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Options configures a tape. Zero fields take the package defaults.
type Options struct {
	Blank           rune
	InitialCapacity int
	GrowthFactor    int
	MaxCells        int
}

func (o Options) withDefaults() Options {
	if o.Blank == 0 {
		o.Blank = DefaultBlank
	}
	if o.InitialCapacity <= 0 {
		o.InitialCapacity = DefaultInitialCapacity
	}
	if o.GrowthFactor < 2 {
		o.GrowthFactor = DefaultGrowthFactor
	}
	if o.MaxCells <= 0 {
		o.MaxCells = DefaultMaxCells
	}
	return o
}

// Tape is the machine's memory.
type Tape struct {
	cells   []rune
	head    int
	blank   rune
	growth  int
	max     int
	growths int
}

// New allocates a tape and copies text into its exact centre.
//
// The span starts at InitialCapacity cells and doubles until the text fits.
// Spaces in text become blanks. The head starts on the first copied cell, or
// on the centre cell when text is empty.
func New(text string, opts Options) (*Tape, error) {
	opts = opts.withDefaults()
	input := []rune(text)

	size := opts.InitialCapacity
	for size < len(input) {
		size *= opts.GrowthFactor
	}
	if size > opts.MaxCells {
		return nil, fmt.Errorf("%w: %d cells requested, limit %d", ErrAllocation, size, opts.MaxCells)
	}

	cells := make([]rune, size)
	fill(cells, opts.Blank)

	start := (size - len(input)) / 2
	for i, r := range input {
		if r == ' ' {
			r = opts.Blank
		}
		cells[start+i] = r
	}

	return &Tape{
		cells:  cells,
		head:   start,
		blank:  opts.Blank,
		growth: opts.GrowthFactor,
		max:    opts.MaxCells,
	}, nil
}

// Read returns the symbol under the head.
func (t *Tape) Read() rune {
	return t.cells[t.head]
}

// Write stores symbol under the head.
func (t *Tape) Write(symbol rune) {
	t.cells[t.head] = symbol
}

// Move shifts the head one cell. The head may leave the buffer.
func (t *Tape) Move(d Direction) {
	if d == Right {
		t.head++
	} else {
		t.head--
	}
}

// InRange reports whether the head addresses a cell of the buffer.
func (t *Tape) InRange() bool {
	return t.head >= 0 && t.head < len(t.cells)
}

// EnsureInRange grows the buffer until the head is in range.
// It is a no-op when the head is already in range. The returned Growth is
// zero when nothing happened.
func (t *Tape) EnsureInRange() (Growth, error) {
	var g Growth
	for !t.InRange() {
		step, err := t.grow()
		if err != nil {
			return g, err
		}
		if g.OldSize == 0 {
			g.OldSize = step.OldSize
		}
		g.NewSize = step.NewSize
		g.Offset += step.Offset
	}
	return g, nil
}

// Growth describes a reallocation. Offset is how far the old content moved right.
type Growth struct {
	OldSize int
	NewSize int
	Offset  int
}

// Grew reports whether a reallocation happened.
func (g Growth) Grew() bool {
	return g.NewSize > g.OldSize
}

func (t *Tape) grow() (Growth, error) {
	oldSize := len(t.cells)
	newSize := oldSize * t.growth
	if newSize > t.max || newSize <= oldSize {
		return Growth{}, fmt.Errorf("%w: growing %d cells to %d exceeds limit %d", ErrAllocation, oldSize, newSize, t.max)
	}

	cells := make([]rune, newSize)
	fill(cells, t.blank)

	left := (newSize - oldSize) / 2
	copy(cells[left:], t.cells)

	t.cells = cells
	t.head += left
	t.growths++
	return Growth{OldSize: oldSize, NewSize: newSize, Offset: left}, nil
}

// Head returns the head index into the buffer.
func (t *Tape) Head() int {
	return t.head
}

// Size returns the number of allocated cells.
func (t *Tape) Size() int {
	return len(t.cells)
}

// Blank returns the blank symbol.
func (t *Tape) Blank() rune {
	return t.blank
}

// Growths returns how many reallocations have happened.
func (t *Tape) Growths() int {
	return t.growths
}

// String returns every non-blank symbol in tape order.
// Blanks are dropped everywhere, including between written cells.
func (t *Tape) String() string {
	var b strings.Builder
	for _, r := range t.cells {
		if r != t.blank {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func fill(cells []rune, blank rune) {
	for i := range cells {
		cells[i] = blank
	}
}
