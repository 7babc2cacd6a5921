package program

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/turing/internal/tape"
)

const header = "binary increment\nalphabet: 0 1 _\nstart: start\n"

func TestParseLine_Valid(t *testing.T) {
	tr, err := ParseLine("(start, 1) -> (stop, 0) <", 4)
	require.Nil(t, err)

	assert.Equal(t, Transition{
		StartState: "start",
		Read:       '1',
		NextState:  "stop",
		Write:      '0',
		Move:       tape.Left,
		Line:       4,
	}, tr)
}

func TestParseLine_RightAndTrailingSpace(t *testing.T) {
	tr, err := ParseLine("(q0, _) -> (q1, x) >  \t", 9)
	require.Nil(t, err)
	assert.Equal(t, tape.Right, tr.Move)
	assert.Equal(t, '_', tr.Read)
	assert.Equal(t, 'x', tr.Write)
}

func TestParseLine_SeparatorAsSymbol(t *testing.T) {
	tr, err := ParseLine("(a, ,) -> (b, )) >", 1)
	require.Nil(t, err)
	assert.Equal(t, ',', tr.Read)
	assert.Equal(t, ')', tr.Write)
}

func TestParseLine_UnicodeSymbols(t *testing.T) {
	tr, err := ParseLine("(état, λ) -> (fin, μ) >", 1)
	require.Nil(t, err)
	assert.Equal(t, "état", tr.StartState)
	assert.Equal(t, 'λ', tr.Read)
	assert.Equal(t, 'μ', tr.Write)
}

func TestParseLine_Malformed(t *testing.T) {
	tests := []struct {
		name string
		line string
		code LineErrorCode
		col  int
	}{
		{"missing open paren", "start, 1) -> (stop, 1) >", ErrCodeMalformedLine, 1},
		{"truncated after state", "(start", ErrCodeMalformedLine, 2},
		{"empty state", "(, 1) -> (stop, 1) >", ErrCodeMalformedLine, 2},
		{"missing space after comma", "(start,1) -> (stop, 1) >", ErrCodeMalformedLine, 8},
		{"truncated before read", "(start, ", ErrCodeMalformedLine, 9},
		{"bad arrow", "(start, 1) => (stop, 1) >", ErrCodeMalformedLine, 12},
		{"compact layout", "(start,1)->(stop,1)>", ErrCodeMalformedLine, 8},
		{"truncated before direction", "(start, 1) -> (stop, 1) ", ErrCodeMalformedLine, 25},
		{"bad direction", "(start, 1) -> (stop, 1) R", ErrCodeUnrecognizedDirection, 25},
		{"trailing junk", "(start, 1) -> (stop, 1) > x", ErrCodeMalformedLine, 27},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLine(tt.line, 7)
			require.NotNil(t, err)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, 7, err.Line)
			assert.Equal(t, tt.col, err.Column)
			assert.Equal(t, tt.line, err.Text)
		})
	}
}

func TestParseLine_StateNameTooLong(t *testing.T) {
	long := ""
	for i := 0; i < MaxStateName+1; i++ {
		long += "s"
	}
	_, err := ParseLine("("+long+", 1) -> (stop, 1) >", 1)
	require.NotNil(t, err)
	assert.Equal(t, ErrCodeStateNameTooLong, err.Code)
	assert.Equal(t, 2, err.Column)

	_, err = ParseLine("("+long[:MaxStateName]+", 1) -> (stop, 1) >", 1)
	assert.Nil(t, err)
}

func TestParse_SkipsHeader(t *testing.T) {
	text := header +
		"(start, 1) -> (start, 1) >\n" +
		"(start, _) -> (stop, _) <\n"

	res, err := Parse(text, DefaultOptions())
	require.NoError(t, err)
	require.True(t, res.OK())

	assert.Equal(t, []string{"binary increment", "alphabet: 0 1 _", "start: start"}, res.Header)
	require.Len(t, res.Transitions, 2)
	assert.Equal(t, 4, res.Transitions[0].Line)
	assert.Equal(t, 5, res.Transitions[1].Line)
	assert.Equal(t, '_', res.Transitions[1].Read)
}

func TestParse_HeaderLineLooksLikeRecord(t *testing.T) {
	text := "(start, 1) -> (stop, 1) >\n\n\n(start, 0) -> (stop, 0) >\n"

	res, err := Parse(text, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, res.Transitions, 1)
	assert.Equal(t, '0', res.Transitions[0].Read)
}

func TestParse_LastLineWithoutNewline(t *testing.T) {
	res, err := Parse(header+"(start, 1) -> (stop, 1) >", DefaultOptions())
	require.NoError(t, err)
	assert.Len(t, res.Transitions, 1)
}

func TestParse_CRLF(t *testing.T) {
	text := "a\r\nb\r\nc\r\n(start, 1) -> (stop, 1) >\r\n"
	res, err := Parse(text, DefaultOptions())
	require.NoError(t, err)
	require.True(t, res.OK())
	assert.Len(t, res.Transitions, 1)
	assert.Equal(t, "a", res.Header[0])
}

func TestParse_BlankLinesIgnored(t *testing.T) {
	text := header + "\n   \n(start, 1) -> (stop, 1) >\n\n"
	res, err := Parse(text, DefaultOptions())
	require.NoError(t, err)
	assert.True(t, res.OK())
	require.Len(t, res.Transitions, 1)
	assert.Equal(t, 6, res.Transitions[0].Line)
}

func TestParse_LenientCollectsDiagnostics(t *testing.T) {
	text := header +
		"(start, 1) -> (stop, 1) >\n" +
		"garbage\n" +
		"(start, 0) -> (stop, 0) ?\n" +
		"(start, _) -> (stop, _) <\n"

	res, err := Parse(text, DefaultOptions())
	require.NoError(t, err)
	assert.False(t, res.OK())
	assert.Len(t, res.Transitions, 2)

	require.Len(t, res.Diagnostics, 2)
	assert.Equal(t, 5, res.Diagnostics[0].Line)
	assert.Equal(t, ErrCodeMalformedLine, res.Diagnostics[0].Code)
	assert.Equal(t, 6, res.Diagnostics[1].Line)
	assert.Equal(t, ErrCodeUnrecognizedDirection, res.Diagnostics[1].Code)
}

func TestParse_StrictStopsAtFirstError(t *testing.T) {
	text := header +
		"(start, 1) -> (stop, 1) >\n" +
		"(start, 0) -> (stop, 0) ?\n"

	res, err := Parse(text, Options{HeaderLines: DefaultHeaderLines, Mode: Strict})
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, IsLineError(err))
	assert.Contains(t, err.Error(), "line 5:25")
	assert.Contains(t, err.Error(), string(ErrCodeUnrecognizedDirection))
}

func TestParse_MissingHeader(t *testing.T) {
	res, err := Parse("only one line\n", DefaultOptions())
	require.NoError(t, err)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, ErrCodeMissingHeader, res.Diagnostics[0].Code)
	assert.Equal(t, 2, res.Diagnostics[0].Line)

	_, err = Parse("", Options{HeaderLines: 3, Mode: Strict})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MISSING_HEADER")
}

func TestParse_CustomHeaderSize(t *testing.T) {
	res, err := Parse("(start, 1) -> (stop, 1) >\n", Options{HeaderLines: 0})
	require.NoError(t, err)
	assert.Empty(t, res.Header)
	assert.Len(t, res.Transitions, 1)

	res, err = Parse("h\n(start, 1) -> (stop, 1) >\n", Options{HeaderLines: -1})
	require.NoError(t, err)
	assert.Len(t, res.Transitions, 0)
	assert.Len(t, res.Diagnostics, 1)
}

func TestParse_NormalizesText(t *testing.T) {
	res, err := Parse(header+"(start, e\u0301) -> (stop, e\u0301) >\n", DefaultOptions())
	require.NoError(t, err)
	require.True(t, res.OK())
	assert.Equal(t, '\u00e9', res.Transitions[0].Read)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("strict")
	require.NoError(t, err)
	assert.Equal(t, Strict, m)
	assert.Equal(t, "strict", m.String())

	m, err = ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, Lenient, m)

	_, err = ParseMode("loose")
	assert.Error(t, err)
}

func TestFormat_RoundTrip(t *testing.T) {
	trs := []Transition{
		{StartState: "start", Read: '1', NextState: "start", Write: '0', Move: tape.Right},
		{StartState: "start", Read: '_', NextState: "stop", Write: '1', Move: tape.Left},
	}
	text := Format([]string{"title"}, DefaultHeaderLines, trs)
	assert.Equal(t, "title\n\n\n(start, 1) -> (start, 0) >\n(start, _) -> (stop, 1) <\n", text)

	res, err := Parse(text, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, res.Transitions, 2)
	assert.Equal(t, trs[1].NextState, res.Transitions[1].NextState)
}

func TestHash_IgnoresLineNumbers(t *testing.T) {
	a := []Transition{{StartState: "start", Read: '1', NextState: "stop", Write: '1', Move: tape.Right, Line: 4}}
	b := []Transition{{StartState: "start", Read: '1', NextState: "stop", Write: '1', Move: tape.Right, Line: 40}}
	c := []Transition{{StartState: "start", Read: '1', NextState: "stop", Write: '1', Move: tape.Left}}

	ha, err := Hash(a)
	require.NoError(t, err)
	hb, err := Hash(b)
	require.NoError(t, err)
	hc, err := Hash(c)
	require.NoError(t, err)

	assert.Equal(t, ha, hb)
	assert.NotEqual(t, ha, hc)
}
