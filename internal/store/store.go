// ABOUTME: Store interface and data types for aichat-relay persistence
// ABOUTME: Defines the Message struct and the MessageStore interface for database operations

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// MessageType constants for message types
const (
	MessageTypeUser   = "USER"   // Inbound user turn
	MessageTypeAI     = "AI"     // Synthesized reply turn
	MessageTypeSystem = "SYSTEM" // System notice
)

// Message represents a single turn in a conversation.
// Messages are immutable once saved; they are only ever removed in bulk
// by session ID.
type Message struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	Type       string    `json:"type"` // "USER", "AI", "SYSTEM"
	Timestamp  time.Time `json:"timestamp"`
	SessionID  string    `json:"sessionId,omitempty"`
	UserID     string    `json:"userId,omitempty"`
	AIResponse string    `json:"aiResponse,omitempty"` // Populated only on AI messages
	ToolsUsed  string    `json:"mcpToolsUsed,omitempty"`
}

// MessageStore defines the interface for chat message persistence
type MessageStore interface {
	// SaveMessage persists a message. A blank ID or zero timestamp is
	// filled in before the insert.
	SaveMessage(ctx context.Context, msg *Message) error

	// GetSessionMessages returns all messages for a session, ascending by
	// timestamp (ties broken by insertion order).
	GetSessionMessages(ctx context.Context, sessionID string) ([]*Message, error)

	// GetRecentMessages returns up to limit messages for a session,
	// descending by timestamp.
	GetRecentMessages(ctx context.Context, sessionID string, limit int) ([]*Message, error)

	// GetUserMessages returns all messages for a user, descending by timestamp.
	GetUserMessages(ctx context.Context, userID string) ([]*Message, error)

	// DeleteSessionMessages removes all messages for a session and returns
	// the number removed. Deleting an empty session removes zero rows and
	// is not an error.
	DeleteSessionMessages(ctx context.Context, sessionID string) (int64, error)

	// CountSessionMessages returns the number of messages stored for a session.
	CountSessionMessages(ctx context.Context, sessionID string) (int64, error)

	Close() error
}
