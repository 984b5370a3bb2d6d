// Package audit provides an optional SQLite index of committed
// mutations.
//
// The git history is the single source of truth; the audit log is
// derived data for fast operational queries (who mutated what, when,
// producing which revision) without walking the repository. It lives in
// its own database file outside the data repository and is wired in as
// a store observer. Losing or deleting it loses nothing: every entry
// can be reconstructed from the revision history.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//
// Entries are idempotent on revision ID, so replaying a mutation stream
// into an existing log is safe.
package audit
