// Package store is the SQLite-backed gesture journal.
//
// A journal session records every gesture a controller handled, in order,
// together with its outcome and the frame it produced. Sessions are an
// audit trail: they can be listed, read back and replayed against a fresh
// controller to check that the engine still produces the same frames.
// They are never used to restore a workflow for further editing.
//
// # Ordering
//
// Entries are ordered by their position within the session, a logical
// counter assigned by the journal. Wall-clock time is not stored.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
