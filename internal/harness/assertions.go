package harness

import (
	"fmt"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// maxTraceLines bounds the trace printed with a failure.
const maxTraceLines = 20

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nTrace:\n")
		for i, ev := range e.Trace {
			if i == maxTraceLines {
				fmt.Fprintf(&buf, "  ... %d more steps\n", len(e.Trace)-maxTraceLines)
				break
			}
			fmt.Fprintf(&buf, "  [%d] (%s, %s) -> (%s, %s) %s\n", ev.Step, ev.State, ev.Read, ev.Next, ev.Write, ev.Move)
		}
	}

	return buf.String()
}

// EvaluateAssertions runs every assertion and returns the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for _, a := range assertions {
		if err := evaluate(result, a); err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

func evaluate(result *Result, a Assertion) error {
	switch a.Type {
	case AssertTraceContains:
		return assertTraceContains(result.Trace, a)
	case AssertTraceOrder:
		return assertTraceOrder(result.Trace, a)
	case AssertTraceCount:
		return assertTraceCount(result.Trace, a)
	case AssertGrowthCount:
		return assertCount(AssertGrowthCount, "tape growths", len(result.Growths), a)
	case AssertDiagnostics:
		return assertCount(AssertDiagnostics, "malformed lines", len(result.Diagnostics), a)
	case AssertShadowed:
		return assertCount(AssertShadowed, "shadowed rules", result.Shadowed, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

// assertTraceContains checks if some step matches every non-empty field.
func assertTraceContains(trace []TraceEvent, a Assertion) error {
	for _, ev := range trace {
		if matchStep(ev, a) {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: describeStep(a),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

func matchStep(ev TraceEvent, a Assertion) bool {
	return (a.State == "" || a.State == ev.State) &&
		(a.Read == "" || a.Read == ev.Read) &&
		(a.Write == "" || a.Write == ev.Write) &&
		(a.Move == "" || a.Move == ev.Move) &&
		(a.Next == "" || a.Next == ev.Next)
}

func describeStep(a Assertion) string {
	var parts []string
	for _, f := range []struct{ name, value string }{
		{"state", a.State}, {"read", a.Read}, {"write", a.Write}, {"move", a.Move}, {"next", a.Next},
	} {
		if f.value != "" {
			parts = append(parts, fmt.Sprintf("%s=%q", f.name, f.value))
		}
	}
	return "step with " + strings.Join(parts, " ")
}

// assertTraceOrder checks that the states are entered in the given order.
// The start state counts as entered before step 1. States don't need to be
// consecutive.
func assertTraceOrder(trace []TraceEvent, a Assertion) error {
	var visited []string
	if len(trace) > 0 {
		visited = append(visited, trace[0].State)
	}
	for _, ev := range trace {
		visited = append(visited, ev.Next)
	}

	i := 0
	for _, s := range visited {
		if i < len(a.States) && s == a.States[i] {
			i++
		}
	}
	if i == len(a.States) {
		return nil
	}

	return &AssertionError{
		Type:     AssertTraceOrder,
		Expected: fmt.Sprintf("states in order %v", a.States),
		Actual:   fmt.Sprintf("state %q not reached after %v", a.States[i], a.States[:i]),
		Trace:    trace,
	}
}

// assertTraceCount checks how many steps leave a state.
func assertTraceCount(trace []TraceEvent, a Assertion) error {
	n := 0
	for _, ev := range trace {
		if ev.State == a.State {
			n++
		}
	}
	if n == *a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceCount,
		Expected: fmt.Sprintf("%d steps from state %q", *a.Count, a.State),
		Actual:   fmt.Sprintf("%d steps", n),
		Trace:    trace,
	}
}

func assertCount(kind, what string, got int, a Assertion) error {
	if got == *a.Count {
		return nil
	}
	return &AssertionError{
		Type:     kind,
		Expected: fmt.Sprintf("%d %s", *a.Count, what),
		Actual:   fmt.Sprintf("%d %s", got, what),
	}
}
