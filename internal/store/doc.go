// Package store provides persistent storage for chat messages using SQLite.
//
// # Architecture
//
// The package exposes a single MessageStore interface implemented by
// SQLiteStore. Messages are immutable once written: there is no update path,
// and rows are only ever removed in bulk by session ID.
//
// # Data Model
//
//   - Message: one turn in a conversation, typed USER, AI, or SYSTEM.
//     AI turns carry the synthesized reply text and, when the request asked
//     for tools, a comma-joined list of the tool names that were echoed.
//
// # Ordering
//
// Session history is ordered by timestamp with insertion order (rowid) as the
// tiebreaker, so ordering is total and stable even when two messages land in
// the same instant. Recent-N queries use the same key descending, which keeps
// them prefix-consistent with the full descending history.
//
// # SQLite Configuration
//
// The store uses SQLite with WAL mode for concurrent reads:
//
//	PRAGMA journal_mode=WAL;
//
// Timestamps are stored as RFC 3339 strings with nanosecond precision.
//
// # Error Handling
//
// ErrNotFound is the only sentinel; all other failures are wrapped with
// context. All methods accept context.Context for cancellation support.
//
// # Testing
//
// Use NewSQLiteStore(":memory:") for tests with real SQLite.
package store
