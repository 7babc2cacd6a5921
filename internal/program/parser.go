package program

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/roach88/turing/internal/canon"
	"github.com/roach88/turing/internal/tape"
)

// DefaultHeaderLines is the number of leading descriptive lines skipped.
const DefaultHeaderLines = 3

// Mode controls what happens to malformed records.
type Mode int

const (
	// Lenient records each malformed line as a diagnostic and keeps parsing.
	Lenient Mode = iota
	// Strict stops at the first malformed line.
	Strict
)

// ParseMode parses "lenient" or "strict".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "lenient":
		return Lenient, nil
	case "strict":
		return Strict, nil
	default:
		return Lenient, fmt.Errorf("unknown parse mode %q: must be lenient or strict", s)
	}
}

func (m Mode) String() string {
	if m == Strict {
		return "strict"
	}
	return "lenient"
}

// Options configures Parse.
type Options struct {
	// HeaderLines defaults to DefaultHeaderLines when negative.
	HeaderLines int
	Mode        Mode
}

// DefaultOptions returns a lenient parser with the standard three-line header.
func DefaultOptions() Options {
	return Options{HeaderLines: DefaultHeaderLines, Mode: Lenient}
}

// Result is the outcome of parsing a program.
type Result struct {
	// Header holds the skipped descriptive lines.
	Header []string

	// Transitions are in file order.
	Transitions []Transition

	// Diagnostics holds malformed lines skipped in lenient mode.
	Diagnostics []*LineError
}

// OK reports whether every record parsed.
func (r *Result) OK() bool {
	return len(r.Diagnostics) == 0
}

// Parse converts program text into transitions.
//
// Text is NFC-normalized and split on '\n'; a trailing '\r' on each line is
// dropped. The first HeaderLines lines are kept verbatim in Result.Header and
// not interpreted. Blank lines after the header are ignored. In Strict mode
// the first malformed line is returned as a *LineError.
func Parse(text string, opts Options) (*Result, error) {
	if opts.HeaderLines < 0 {
		opts.HeaderLines = DefaultHeaderLines
	}

	lines := splitLines(canon.NormalizeText(text))
	res := &Result{}

	for i, line := range lines {
		lineNo := i + 1
		if i < opts.HeaderLines {
			res.Header = append(res.Header, line)
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		t, err := ParseLine(line, lineNo)
		if err != nil {
			if opts.Mode == Strict {
				return nil, err
			}
			res.Diagnostics = append(res.Diagnostics, err)
			continue
		}
		res.Transitions = append(res.Transitions, t)
	}

	if len(lines) < opts.HeaderLines {
		err := &LineError{
			Line:    len(lines) + 1,
			Code:    ErrCodeMissingHeader,
			Message: fmt.Sprintf("program has %d lines, header needs %d", len(lines), opts.HeaderLines),
		}
		if opts.Mode == Strict {
			return nil, err
		}
		res.Diagnostics = append(res.Diagnostics, err)
	}

	return res, nil
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// ParseLine reads one record of the form
//
//	(S1, R) -> (S2, W) D
//
// where D is '>' (right) or '<' (left). Trailing spaces and tabs are allowed.
// lineNo is only used for error reporting.
func ParseLine(line string, lineNo int) (Transition, *LineError) {
	s := &scanner{src: []rune(line), line: lineNo, text: line}

	var t Transition
	var err *LineError

	if err = s.expect("("); err != nil {
		return t, err
	}
	if t.StartState, err = s.stateName(); err != nil {
		return t, err
	}
	if err = s.expect(", "); err != nil {
		return t, err
	}
	if t.Read, err = s.symbol("read symbol"); err != nil {
		return t, err
	}
	if err = s.expect(") -> ("); err != nil {
		return t, err
	}
	if t.NextState, err = s.stateName(); err != nil {
		return t, err
	}
	if err = s.expect(", "); err != nil {
		return t, err
	}
	if t.Write, err = s.symbol("write symbol"); err != nil {
		return t, err
	}
	if err = s.expect(") "); err != nil {
		return t, err
	}
	if t.Move, err = s.direction(); err != nil {
		return t, err
	}
	if err = s.trailing(); err != nil {
		return t, err
	}

	t.Line = lineNo
	return t, nil
}

// scanner walks a line rune by rune and never indexes past its end.
type scanner struct {
	src  []rune
	pos  int
	line int
	text string
}

func (s *scanner) errorf(code LineErrorCode, format string, args ...any) *LineError {
	return &LineError{
		Line:    s.line,
		Column:  s.pos + 1,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Text:    s.text,
	}
}

func (s *scanner) expect(lit string) *LineError {
	for _, want := range lit {
		if s.pos >= len(s.src) {
			return s.errorf(ErrCodeMalformedLine, "line ends early, expected %q", lit)
		}
		if got := s.src[s.pos]; got != want {
			return s.errorf(ErrCodeMalformedLine, "expected %q, found %q", want, got)
		}
		s.pos++
	}
	return nil
}

func (s *scanner) stateName() (string, *LineError) {
	start := s.pos
	for s.pos < len(s.src) && s.src[s.pos] != ',' {
		s.pos++
	}
	if s.pos >= len(s.src) {
		s.pos = start
		return "", s.errorf(ErrCodeMalformedLine, "state name is not followed by ','")
	}
	name := string(s.src[start:s.pos])
	if name == "" {
		return "", s.errorf(ErrCodeMalformedLine, "empty state name")
	}
	if n := utf8.RuneCountInString(name); n > MaxStateName {
		pos := s.pos
		s.pos = start
		err := s.errorf(ErrCodeStateNameTooLong, "state name has %d characters, limit %d", n, MaxStateName)
		s.pos = pos
		return "", err
	}
	return name, nil
}

func (s *scanner) symbol(what string) (rune, *LineError) {
	if s.pos >= len(s.src) {
		return 0, s.errorf(ErrCodeMalformedLine, "line ends early, expected %s", what)
	}
	r := s.src[s.pos]
	s.pos++
	return r, nil
}

func (s *scanner) direction() (tape.Direction, *LineError) {
	if s.pos >= len(s.src) {
		return 0, s.errorf(ErrCodeMalformedLine, "line ends early, expected direction")
	}
	switch r := s.src[s.pos]; r {
	case '>':
		s.pos++
		return tape.Right, nil
	case '<':
		s.pos++
		return tape.Left, nil
	default:
		return 0, s.errorf(ErrCodeUnrecognizedDirection, "direction %q is not '<' or '>'", r)
	}
}

func (s *scanner) trailing() *LineError {
	for s.pos < len(s.src) {
		if r := s.src[s.pos]; r != ' ' && r != '\t' {
			return s.errorf(ErrCodeMalformedLine, "unexpected %q after direction", r)
		}
		s.pos++
	}
	return nil
}
