// Package harness runs machine scenarios as executable tests.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: increment_carry
//	description: "Binary increment carries through trailing ones"
//	program_file: ../programs/increment.tm   # or inline: program: |
//	tape: "1011"
//	run_id: test-run-increment              # optional, fixed for golden files
//	config:                                 # optional overrides
//	  max_steps: 100
//	expect:
//	  status: halted
//	  tape: "1100"
//	  steps: 8
//	  state: stop
//	assertions:
//	  - type: trace_contains
//	    state: carry
//	    read: "1"
//	  - type: trace_order
//	    states: [start, carry, stop]
//	  - type: trace_count
//	    state: carry
//	    count: 3
//	  - type: growth_count
//	    count: 0
//	golden: true
//
// Every field of expect is optional; only the fields given are checked.
//
// # Assertion Types
//
//   - trace_contains: some step matches the given state/read/write/next/move
//   - trace_order: the states are entered in this order, gaps allowed
//   - trace_count: exactly count steps leave the given state
//   - growth_count: the tape grew exactly count times
//   - diagnostics: the program had exactly count malformed lines
//   - shadowed: exactly count rules were replaced by later duplicates
//
// # Deterministic Testing
//
// Each scenario runs with a fixed run ID and a deterministic clock, and is
// journaled into an in-memory SQLite store then replayed from the journal.
// A replay that differs from the original run fails the scenario. The
// recorded trace can be compared with a golden file under testdata/golden.
package harness
