package testutil

import (
	"fmt"
	"strings"
)

// Header is the three descriptive lines every test program starts with.
const Header = "test machine\nalphabet: 0 1 _\ninitial: start\n"

// Rule renders one transition line. move is '<' or '>'.
func Rule(start string, read rune, next string, write rune, move rune) string {
	return fmt.Sprintf("(%s, %c) -> (%s, %c) %c", start, read, next, write, move)
}

// Program joins rules under Header, one per line.
func Program(rules ...string) string {
	var b strings.Builder
	b.WriteString(Header)
	for _, r := range rules {
		b.WriteString(r)
		b.WriteByte('\n')
	}
	return b.String()
}

// Common programs used across package tests.
var (
	// HaltOnOne stops after reading a single '1'.
	HaltOnOne = Program(Rule("start", '1', "stop", '1', '>'))

	// RunRight walks right over blanks forever.
	RunRight = Program(
		Rule("start", '1', "start", '1', '>'),
		Rule("start", '_', "start", '_', '>'),
	)

	// Increment adds one to a binary number; the head starts on its first digit.
	Increment = Program(
		Rule("start", '0', "start", '0', '>'),
		Rule("start", '1', "start", '1', '>'),
		Rule("start", '_', "carry", '_', '<'),
		Rule("carry", '1', "carry", '0', '<'),
		Rule("carry", '0', "stop", '1', '<'),
		Rule("carry", '_', "stop", '1', '<'),
	)
)
