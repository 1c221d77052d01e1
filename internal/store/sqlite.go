// ABOUTME: SQLite implementation of the MessageStore interface using modernc.org/sqlite
// ABOUTME: Provides chat message persistence with automatic schema creation

package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"database/sql"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// defaultRecentLimit is used when a non-positive limit is passed to GetRecentMessages.
const defaultRecentLimit = 10

// SQLiteStore implements the MessageStore interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	// Ensure parent directory exists (skip for in-memory databases)
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS chat_messages (
			id TEXT PRIMARY KEY,
			content TEXT NOT NULL,
			type TEXT NOT NULL,
			timestamp TEXT NOT NULL,
			session_id TEXT,
			user_id TEXT,
			ai_response TEXT,
			tools_used TEXT,

			CHECK (type IN ('USER', 'AI', 'SYSTEM'))
		);

		CREATE INDEX IF NOT EXISTS idx_messages_session_timestamp
			ON chat_messages(session_id, timestamp);

		CREATE INDEX IF NOT EXISTS idx_messages_user_timestamp
			ON chat_messages(user_id, timestamp);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveMessage persists a message. A blank ID gets a generated UUID and a
// zero timestamp is set to the current time; both are written back to msg.
func (s *SQLiteStore) SaveMessage(ctx context.Context, msg *Message) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}

	query := `
		INSERT INTO chat_messages (id, content, type, timestamp, session_id, user_id, ai_response, tools_used)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		msg.ID,
		msg.Content,
		msg.Type,
		msg.Timestamp.UTC().Format(time.RFC3339Nano),
		nullString(msg.SessionID),
		nullString(msg.UserID),
		nullString(msg.AIResponse),
		nullString(msg.ToolsUsed),
	)
	if err != nil {
		return fmt.Errorf("inserting message: %w", err)
	}

	s.logger.Debug("saved message", "id", msg.ID, "session_id", msg.SessionID, "type", msg.Type)
	return nil
}

// GetSessionMessages returns all messages for a session in chronological order.
// Ties on timestamp are broken by insertion order.
func (s *SQLiteStore) GetSessionMessages(ctx context.Context, sessionID string) ([]*Message, error) {
	query := `
		SELECT id, content, type, timestamp, session_id, user_id, ai_response, tools_used
		FROM chat_messages
		WHERE session_id = ?
		ORDER BY timestamp ASC, rowid ASC
	`

	return s.queryMessages(ctx, query, sessionID)
}

// GetRecentMessages returns the limit most recent messages for a session,
// newest first. A non-positive limit falls back to the default of 10.
func (s *SQLiteStore) GetRecentMessages(ctx context.Context, sessionID string, limit int) ([]*Message, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}

	query := `
		SELECT id, content, type, timestamp, session_id, user_id, ai_response, tools_used
		FROM chat_messages
		WHERE session_id = ?
		ORDER BY timestamp DESC, rowid DESC
		LIMIT ?
	`

	return s.queryMessages(ctx, query, sessionID, limit)
}

// GetUserMessages returns all messages for a user, newest first.
func (s *SQLiteStore) GetUserMessages(ctx context.Context, userID string) ([]*Message, error) {
	query := `
		SELECT id, content, type, timestamp, session_id, user_id, ai_response, tools_used
		FROM chat_messages
		WHERE user_id = ?
		ORDER BY timestamp DESC, rowid DESC
	`

	return s.queryMessages(ctx, query, userID)
}

// DeleteSessionMessages removes every message for a session and returns how
// many were deleted. Deleting a session with no messages is not an error.
func (s *SQLiteStore) DeleteSessionMessages(ctx context.Context, sessionID string) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM chat_messages WHERE session_id = ?`, sessionID)
	if err != nil {
		return 0, fmt.Errorf("deleting messages: %w", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted rows: %w", err)
	}

	s.logger.Debug("deleted session messages", "session_id", sessionID, "count", count)
	return count, nil
}

// CountSessionMessages returns the number of messages stored for a session.
func (s *SQLiteStore) CountSessionMessages(ctx context.Context, sessionID string) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM chat_messages WHERE session_id = ?`, sessionID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting messages: %w", err)
	}
	return count, nil
}

// queryMessages runs a message SELECT and scans the rows.
func (s *SQLiteStore) queryMessages(ctx context.Context, query string, args ...any) ([]*Message, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		var msg Message
		var timestampStr string
		var sessionID, userID, aiResponse, toolsUsed *string

		if err := rows.Scan(&msg.ID, &msg.Content, &msg.Type, &timestampStr, &sessionID, &userID, &aiResponse, &toolsUsed); err != nil {
			return nil, fmt.Errorf("scanning message row: %w", err)
		}

		msg.Timestamp, err = time.Parse(time.RFC3339Nano, timestampStr)
		if err != nil {
			return nil, fmt.Errorf("parsing message timestamp: %w", err)
		}

		// Handle nullable fields
		if sessionID != nil {
			msg.SessionID = *sessionID
		}
		if userID != nil {
			msg.UserID = *userID
		}
		if aiResponse != nil {
			msg.AIResponse = *aiResponse
		}
		if toolsUsed != nil {
			msg.ToolsUsed = *toolsUsed
		}

		messages = append(messages, &msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating message rows: %w", err)
	}

	return messages, nil
}

// nullString converts an empty string to a NULL-able value for SQL inserts
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
