package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/turing/internal/testutil"
)

func TestValidateMissingArgs(t *testing.T) {
	res := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), "")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "accepts 1 arg")
}

func TestValidateValidProgram(t *testing.T) {
	prog := writeFile(t, t.TempDir(), "inc.tm", testutil.Increment)

	res := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), "", prog)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "inc.tm: 6 rule(s), 2 state(s), 3 symbol(s)")
	assert.NotContains(t, res.stdout, "warning")
}

func TestValidateReportsMalformedLines(t *testing.T) {
	text := testutil.Program(
		testutil.Rule("start", '1', "stop", '1', '>'),
		"garbage",
		"(start, 0) -> (stop, 0) ?",
	)
	prog := writeFile(t, t.TempDir(), "bad.tm", text)

	res := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), "", prog)
	require.Error(t, res.err)
	assert.Equal(t, ExitFailure, GetExitCode(res.err))
	assert.Contains(t, res.stdout, "2 malformed line(s)")
	assert.Contains(t, res.stdout, "line 5:1 [MALFORMED_LINE]")
	assert.Contains(t, res.stdout, "line 6:25 [UNRECOGNIZED_DIRECTION]")
	assert.Contains(t, res.stdout, "    garbage")
}

func TestValidateWarnsAboutShadowedRules(t *testing.T) {
	text := testutil.Program(
		testutil.Rule("start", '1', "stop", 'a', '>'),
		testutil.Rule("start", '1', "stop", 'b', '>'),
	)
	prog := writeFile(t, t.TempDir(), "dup.tm", text)

	res := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), "", prog)
	require.NoError(t, res.err, "shadowed rules are warnings")
	assert.Contains(t, res.stdout, "warning: line 4 (start, 1) is shadowed by line 5")
}

func TestValidateJSON(t *testing.T) {
	text := testutil.Program(
		testutil.Rule("start", '1', "stop", 'a', '>'),
		testutil.Rule("start", '1', "stop", 'b', '>'),
		"(start) -> (stop, 1) >",
	)
	prog := writeFile(t, t.TempDir(), "mixed.tm", text)

	res := execute(t, NewValidateCommand(&RootOptions{Format: "json"}), "", prog)
	require.Error(t, res.err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &resp))

	result := resp.Data
	assert.False(t, result.Valid)
	assert.Equal(t, 2, result.Transitions)
	assert.Equal(t, 1, result.Rules)
	assert.Equal(t, []string{"start"}, result.States)
	assert.Equal(t, []string{"1", "b"}, result.Symbols)
	assert.Len(t, result.ProgramHash, 64)

	require.Len(t, result.Errors, 1)
	assert.Equal(t, 6, result.Errors[0].Line)
	assert.Equal(t, "MALFORMED_LINE", result.Errors[0].Code)

	require.Len(t, result.Shadowed, 1)
	assert.Equal(t, ShadowedRule{State: "start", Symbol: "1", Line: 4, ByLine: 5}, result.Shadowed[0])
}

func TestValidateHeaderLines(t *testing.T) {
	text := testutil.Rule("start", '1', "stop", '1', '>') + "\n"
	prog := writeFile(t, t.TempDir(), "bare.tm", text)

	res := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), "", prog, "--header-lines", "0")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "1 rule(s)")

	// with the default header the only rule is swallowed and the header is short
	res = execute(t, NewValidateCommand(&RootOptions{Format: "text"}), "", prog)
	require.Error(t, res.err)
	assert.Contains(t, res.stdout, "MISSING_HEADER")
}

func TestValidateNonExistentFile(t *testing.T) {
	res := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), "", "/nonexistent/prog.tm")
	require.Error(t, res.err)
	assert.Equal(t, ExitCommandError, GetExitCode(res.err))
}

func TestValidateCanonical(t *testing.T) {
	rule1 := testutil.Rule("start", '1', "start", '0', '>')
	rule2 := testutil.Rule("start", '_', "stop", '1', '<')
	text := testutil.Header + rule1 + "\r\n" + "\n" + "garbage\n" + rule2
	prog := writeFile(t, t.TempDir(), "messy.tm", text)

	res := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), "", prog, "--canonical")
	require.Error(t, res.err)
	assert.Equal(t, ExitFailure, GetExitCode(res.err))
	assert.Equal(t, testutil.Program(rule1, rule2), res.stdout)
	assert.Contains(t, res.stderr, "1 malformed line(s)")

	clean := writeFile(t, t.TempDir(), "clean.tm", res.stdout)
	again := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), "", clean, "--canonical")
	require.NoError(t, again.err)
	assert.Equal(t, res.stdout, again.stdout)
	assert.Contains(t, again.stderr, "clean.tm: 2 rule(s), 1 state(s), 3 symbol(s)")
}

func TestValidateCanonicalJSON(t *testing.T) {
	prog := writeFile(t, t.TempDir(), "halt.tm", testutil.HaltOnOne)

	res := execute(t, NewValidateCommand(&RootOptions{Format: "json"}), "", prog, "--canonical")
	require.NoError(t, res.err)

	var resp struct {
		Data ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &resp))
	assert.Equal(t, testutil.HaltOnOne, resp.Data.Canonical)
}
