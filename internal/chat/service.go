// ABOUTME: Chat service composing deterministic replies and persisting both turns.
// ABOUTME: All turns flow through here - history is the source of truth, not a side effect.

package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aichat/relay/internal/store"
)

// ChatStore defines what the service needs from storage
type ChatStore interface {
	SaveMessage(ctx context.Context, msg *store.Message) error
	GetSessionMessages(ctx context.Context, sessionID string) ([]*store.Message, error)
	GetRecentMessages(ctx context.Context, sessionID string, limit int) ([]*store.Message, error)
	GetUserMessages(ctx context.Context, userID string) ([]*store.Message, error)
	DeleteSessionMessages(ctx context.Context, sessionID string) (int64, error)
	CountSessionMessages(ctx context.Context, sessionID string) (int64, error)
}

// ChatRequest is an inbound chat message with optional tool annotations.
type ChatRequest struct {
	Message   string         `json:"message"`
	SessionID string         `json:"sessionId,omitempty"`
	UserID    string         `json:"userId,omitempty"`
	Context   map[string]any `json:"context,omitempty"`
	UseMCP    bool           `json:"useMcp,omitempty"`
	MCPTools  []string       `json:"mcpTools,omitempty"`
}

// ChatResponse is the structured record returned for one exchange.
type ChatResponse struct {
	ID         string    `json:"id,omitempty"`
	Message    string    `json:"message,omitempty"`
	AIResponse string    `json:"aiResponse,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	SessionID  string    `json:"sessionId,omitempty"`
	ToolsUsed  []string  `json:"mcpToolsUsed,omitempty"`
	Success    bool      `json:"success"`
	Error      string    `json:"error,omitempty"`
}

// Service composes replies and persists conversation turns.
type Service struct {
	store  ChatStore
	logger *slog.Logger
}

// New creates a chat service over the given store.
func New(s ChatStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  s,
		logger: logger.With("component", "chat"),
	}
}

// ProcessMessage persists the user turn, synthesizes a reply, persists the AI
// turn, and returns the response record.
//
// Key principle: record first, then reply. The user message is saved BEFORE
// the reply is composed, so a record exists even when the second write fails.
// The two writes are not atomic: a failed AI write leaves the user turn
// stored while the caller sees success=false. That gap is deliberate.
func (s *Service) ProcessMessage(ctx context.Context, req *ChatRequest) *ChatResponse {
	userMsg := &store.Message{
		ID:        uuid.New().String(),
		Content:   req.Message,
		Type:      store.MessageTypeUser,
		Timestamp: time.Now(),
		SessionID: req.SessionID,
		UserID:    req.UserID,
	}
	if err := s.store.SaveMessage(ctx, userMsg); err != nil {
		s.logger.Error("failed to save user message", "error", err, "session_id", req.SessionID)
		return s.failure(req, err)
	}

	reply := BuildReply(req.Message, req.UseMCP, req.MCPTools)

	aiMsg := &store.Message{
		ID:         uuid.New().String(),
		Content:    reply,
		Type:       store.MessageTypeAI,
		Timestamp:  time.Now(),
		SessionID:  req.SessionID,
		UserID:     req.UserID,
		AIResponse: reply,
	}
	if req.UseMCP {
		aiMsg.ToolsUsed = strings.Join(req.MCPTools, ",")
	}
	if err := s.store.SaveMessage(ctx, aiMsg); err != nil {
		// The user turn is already stored; see the note above.
		s.logger.Error("failed to save AI message", "error", err, "session_id", req.SessionID)
		return s.failure(req, err)
	}

	s.logger.Debug("exchange recorded",
		"session_id", req.SessionID,
		"user_message_id", userMsg.ID,
		"ai_message_id", aiMsg.ID)

	resp := &ChatResponse{
		ID:         aiMsg.ID,
		Message:    req.Message,
		AIResponse: reply,
		Timestamp:  aiMsg.Timestamp,
		SessionID:  req.SessionID,
		Success:    true,
	}
	if req.UseMCP && len(req.MCPTools) > 0 {
		resp.ToolsUsed = req.MCPTools
	}
	return resp
}

// History returns all messages for a session, oldest first.
func (s *Service) History(ctx context.Context, sessionID string) ([]*store.Message, error) {
	return s.store.GetSessionMessages(ctx, sessionID)
}

// Recent returns up to limit messages for a session, newest first.
func (s *Service) Recent(ctx context.Context, sessionID string, limit int) ([]*store.Message, error) {
	return s.store.GetRecentMessages(ctx, sessionID, limit)
}

// UserHistory returns all messages for a user, newest first.
func (s *Service) UserHistory(ctx context.Context, userID string) ([]*store.Message, error) {
	return s.store.GetUserMessages(ctx, userID)
}

// ClearHistory removes every message for a session. Clearing a session with
// no messages is a no-op, not an error.
func (s *Service) ClearHistory(ctx context.Context, sessionID string) error {
	count, err := s.store.DeleteSessionMessages(ctx, sessionID)
	if err != nil {
		return err
	}
	s.logger.Info("cleared chat history", "session_id", sessionID, "removed", count)
	return nil
}

// CountMessages returns the number of stored messages for a session.
func (s *Service) CountMessages(ctx context.Context, sessionID string) (int64, error) {
	return s.store.CountSessionMessages(ctx, sessionID)
}

// failure builds the success=false response for a persistence error.
func (s *Service) failure(req *ChatRequest, err error) *ChatResponse {
	return &ChatResponse{
		Message:   req.Message,
		SessionID: req.SessionID,
		Timestamp: time.Now(),
		Success:   false,
		Error:     fmt.Sprintf("Error processing message: %v", err),
	}
}
