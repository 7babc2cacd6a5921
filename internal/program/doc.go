// Package program reads Turing machine program text.
//
// A program is line oriented. The first lines form a descriptive header that
// is kept but never interpreted (three lines by default). Every following
// non-blank line is one transition:
//
//	(start, 1) -> (carry, 0) <
//
// The parser is a bounds-checked scanner over the fixed layout; a line that
// does not match becomes a *LineError instead of a partial record.
package program
