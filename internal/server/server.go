// ABOUTME: HTTP surface for the chat relay: chat exchange, history, and tool endpoints.
// ABOUTME: Routes follow the /api/chat and /api/mcp split with per-surface health probes.

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/aichat/relay/internal/catalog"
	"github.com/aichat/relay/internal/chat"
	"github.com/aichat/relay/internal/store"
	"github.com/aichat/relay/internal/tools"
)

// MaxRequestBodySize is the maximum allowed size for request bodies (1MB).
const MaxRequestBodySize = 1 << 20

// shutdownTimeout bounds graceful shutdown on SIGINT/SIGTERM.
const shutdownTimeout = 10 * time.Second

// Server wires the chat service, tool catalog, and dispatcher to HTTP routes.
type Server struct {
	chat       *chat.Service
	catalog    *catalog.Catalog
	dispatcher *tools.Dispatcher
	logger     *slog.Logger

	httpServer *http.Server
}

// New creates a server over the given collaborators.
func New(chatSvc *chat.Service, cat *catalog.Catalog, dispatcher *tools.Dispatcher, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		chat:       chatSvc,
		catalog:    cat,
		dispatcher: dispatcher,
		logger:     logger.With("component", "server"),
	}
}

// RegisterRoutes registers all relay endpoints on the given ServeMux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	// Chat surface
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("GET /api/chat/history", s.handleHistory)
	mux.HandleFunc("GET /api/chat/recent", s.handleRecent)
	mux.HandleFunc("GET /api/chat/messages", s.handleUserMessages)
	mux.HandleFunc("GET /api/chat/count", s.handleCount)
	mux.HandleFunc("DELETE /api/chat/history", s.handleClearHistory)
	mux.HandleFunc("GET /api/chat/health", s.handleChatHealth)

	// Tool surface
	mux.HandleFunc("GET /api/mcp/tools", s.handleListTools)
	mux.HandleFunc("GET /api/mcp/tools/{toolName}", s.handleGetTool)
	mux.HandleFunc("POST /api/mcp/execute", s.handleExecuteTool)
	mux.HandleFunc("GET /api/mcp/health", s.handleMCPHealth)
}

// Run starts the HTTP server and blocks until the context is cancelled or the
// server fails. Shutdown gets a fresh timeout context so in-flight requests
// can drain.
func (s *Server) Run(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down HTTP server")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// handleChat accepts an inbound message, runs the composition flow, and
// returns the response record. Validation happens here, before any
// persistence is touched.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chat.ChatRequest
	body := http.MaxBytesReader(w, r.Body, MaxRequestBodySize)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		s.writeChatError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Message == "" {
		s.writeChatError(w, http.StatusBadRequest, "Message content is required")
		return
	}

	s.logger.Debug("received chat request", "session_id", req.SessionID, "use_mcp", req.UseMCP)

	resp := s.chat.ProcessMessage(r.Context(), &req)
	status := http.StatusOK
	if !resp.Success {
		status = http.StatusBadRequest
	}
	s.writeJSON(w, status, resp)
}

// handleHistory returns a session's full history, oldest first.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		s.writeError(w, http.StatusBadRequest, "sessionId is required")
		return
	}

	messages, err := s.chat.History(r.Context(), sessionID)
	if err != nil {
		s.logger.Error("failed to load history", "error", err, "session_id", sessionID)
		s.writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	s.writeJSON(w, http.StatusOK, emptyIfNil(messages))
}

// handleRecent returns up to limit recent messages, newest first.
func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		s.writeError(w, http.StatusBadRequest, "sessionId is required")
		return
	}

	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	messages, err := s.chat.Recent(r.Context(), sessionID, limit)
	if err != nil {
		s.logger.Error("failed to load recent messages", "error", err, "session_id", sessionID)
		s.writeError(w, http.StatusInternalServerError, "failed to load recent messages")
		return
	}
	s.writeJSON(w, http.StatusOK, emptyIfNil(messages))
}

// handleUserMessages returns a user's messages across sessions, newest first.
func (s *Server) handleUserMessages(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		s.writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	messages, err := s.chat.UserHistory(r.Context(), userID)
	if err != nil {
		s.logger.Error("failed to load user messages", "error", err, "user_id", userID)
		s.writeError(w, http.StatusInternalServerError, "failed to load user messages")
		return
	}
	s.writeJSON(w, http.StatusOK, emptyIfNil(messages))
}

// handleCount returns the stored message count for a session.
func (s *Server) handleCount(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		s.writeError(w, http.StatusBadRequest, "sessionId is required")
		return
	}

	count, err := s.chat.CountMessages(r.Context(), sessionID)
	if err != nil {
		s.logger.Error("failed to count messages", "error", err, "session_id", sessionID)
		s.writeError(w, http.StatusInternalServerError, "failed to count messages")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"sessionId": sessionID, "count": count})
}

// handleClearHistory removes a session's messages. Clearing twice is fine.
func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		s.writeError(w, http.StatusBadRequest, "sessionId is required")
		return
	}

	if err := s.chat.ClearHistory(r.Context(), sessionID); err != nil {
		s.logger.Error("failed to clear history", "error", err, "session_id", sessionID)
		s.writeError(w, http.StatusInternalServerError, "failed to clear history")
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleChatHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "chat"})
}

// handleListTools returns the catalog in insertion order.
func (s *Server) handleListTools(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.catalog.List())
}

// handleGetTool returns a single catalog entry or 404.
func (s *Server) handleGetTool(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("toolName")
	tool, ok := s.catalog.Get(name)
	if !ok {
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("tool not found: %s", name))
		return
	}
	s.writeJSON(w, http.StatusOK, tool)
}

// handleExecuteTool runs a tool and maps dispatch failures to structured
// error payloads carrying the offending tool name.
func (s *Server) handleExecuteTool(w http.ResponseWriter, r *http.Request) {
	toolName := r.URL.Query().Get("toolName")
	if toolName == "" {
		s.writeError(w, http.StatusBadRequest, "toolName is required")
		return
	}

	params := map[string]any{}
	body := http.MaxBytesReader(w, r.Body, MaxRequestBodySize)
	if err := json.NewDecoder(body).Decode(&params); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid parameters body")
		return
	}

	s.logger.Debug("executing tool", "tool", toolName)

	result, err := s.dispatcher.Execute(r.Context(), toolName, params)
	if err != nil {
		status := http.StatusBadRequest
		switch {
		case errors.Is(err, tools.ErrUnknownTool):
			status = http.StatusNotFound
		case errors.Is(err, tools.ErrIO):
			status = http.StatusInternalServerError
		}
		s.logger.Warn("tool execution failed", "tool", toolName, "error", err)
		s.writeJSON(w, status, map[string]string{
			"error":   "Tool execution failed",
			"message": err.Error(),
			"tool":    toolName,
		})
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleMCPHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "mcp"})
}

// writeJSON writes a JSON response with the given status.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// writeError writes a plain {"error": ...} payload.
func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// writeChatError writes a success=false chat response for boundary failures.
func (s *Server) writeChatError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, &chat.ChatResponse{
		Timestamp: time.Now(),
		Success:   false,
		Error:     msg,
	})
}

// emptyIfNil keeps empty histories encoding as [] instead of null.
func emptyIfNil(messages []*store.Message) []*store.Message {
	if messages == nil {
		return []*store.Message{}
	}
	return messages
}
