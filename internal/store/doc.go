// Package store is the SQLite run journal.
//
// Every recorded run keeps enough to execute it again: the program text, the
// tape input and the configuration. Alongside it the journal stores the
// outcome (status, steps, final state, final tape, tape size, growths) and,
// when tracing is on, one row per applied transition and one per tape growth.
//
// The journal is append-only and never used to resume a machine. Replay
// re-executes a stored run and reports any difference from the recorded
// outcome.
//
// # Ordering
//
// Runs are ordered by seq, an autoincrement column, never by created_at.
// Steps and growths are ordered by step number.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
