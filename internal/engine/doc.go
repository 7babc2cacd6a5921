// Package engine runs a Turing machine over a tape.
//
// A Machine owns its tape, its transition index and its counters for the
// duration of one run; nothing is shared between runs and nothing is global.
//
// Each step, while the machine is Running:
//  1. If the step budget is spent, stop with StepLimitExceeded.
//  2. Grow the tape if the head left it.
//  3. Read the symbol under the head.
//  4. Look up (state, symbol); if absent, stop with NoTransition.
//  5. Write, change state, move the head.
//  6. Count the step; if the new state is the halting state, stop with Halted.
//
// All three terminal statuses yield a final tape. Only tape allocation
// failure aborts a run without a result.
//
// The loop is single-threaded and deterministic: the same program, tape and
// configuration always give the same status, step count and tape.
package engine
