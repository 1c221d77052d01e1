// ABOUTME: Tests for the SQLite message store implementation
// ABOUTME: Covers save/retrieve, ordering, recent-N limits, bulk delete, and counting

package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	return s
}

// saveTurn inserts a message with an explicit timestamp for ordering tests.
func saveTurn(t *testing.T, s *SQLiteStore, sessionID, msgType, content string, ts time.Time) *Message {
	t.Helper()
	msg := &Message{
		Content:   content,
		Type:      msgType,
		Timestamp: ts,
		SessionID: sessionID,
	}
	if err := s.SaveMessage(context.Background(), msg); err != nil {
		t.Fatalf("SaveMessage failed: %v", err)
	}
	return msg
}

func TestNewSQLiteStore(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer s.Close()

	// Verify the database file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestNewSQLiteStore_CreatesDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "subdir", "nested", "test.db")

	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("database file was not created in nested directory")
	}
}

func TestSaveMessage_AssignsIDAndTimestamp(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	msg := &Message{
		Content:   "hello there",
		Type:      MessageTypeUser,
		SessionID: "session-1",
	}
	if err := s.SaveMessage(context.Background(), msg); err != nil {
		t.Fatalf("SaveMessage failed: %v", err)
	}

	if msg.ID == "" {
		t.Error("expected generated ID")
	}
	if msg.Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}
}

func TestSaveMessage_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	ctx := context.Background()
	msg := &Message{
		ID:         "msg-1",
		Content:    "what is the weather",
		Type:       MessageTypeAI,
		Timestamp:  time.Now().UTC(),
		SessionID:  "session-rt",
		UserID:     "user-7",
		AIResponse: "synthesized reply",
		ToolsUsed:  "web_search,filesystem",
	}
	if err := s.SaveMessage(ctx, msg); err != nil {
		t.Fatalf("SaveMessage failed: %v", err)
	}

	got, err := s.GetSessionMessages(ctx, "session-rt")
	if err != nil {
		t.Fatalf("GetSessionMessages failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 message, got %d", len(got))
	}

	m := got[0]
	if m.ID != msg.ID {
		t.Errorf("ID mismatch: got %q, want %q", m.ID, msg.ID)
	}
	if m.Content != msg.Content {
		t.Errorf("Content mismatch: got %q, want %q", m.Content, msg.Content)
	}
	if m.Type != msg.Type {
		t.Errorf("Type mismatch: got %q, want %q", m.Type, msg.Type)
	}
	if !m.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("Timestamp mismatch: got %v, want %v", m.Timestamp, msg.Timestamp)
	}
	if m.UserID != msg.UserID {
		t.Errorf("UserID mismatch: got %q, want %q", m.UserID, msg.UserID)
	}
	if m.AIResponse != msg.AIResponse {
		t.Errorf("AIResponse mismatch: got %q, want %q", m.AIResponse, msg.AIResponse)
	}
	if m.ToolsUsed != msg.ToolsUsed {
		t.Errorf("ToolsUsed mismatch: got %q, want %q", m.ToolsUsed, msg.ToolsUsed)
	}
}

func TestGetSessionMessages_AscendingOrder(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	base := time.Now().UTC().Add(-time.Hour)
	// Save out of chronological order to verify sorting
	saveTurn(t, s, "session-ord", MessageTypeAI, "second", base.Add(2*time.Minute))
	saveTurn(t, s, "session-ord", MessageTypeUser, "first", base.Add(1*time.Minute))
	saveTurn(t, s, "session-ord", MessageTypeUser, "third", base.Add(3*time.Minute))

	got, err := s.GetSessionMessages(context.Background(), "session-ord")
	if err != nil {
		t.Fatalf("GetSessionMessages failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(got))
	}

	want := []string{"first", "second", "third"}
	for i, content := range want {
		if got[i].Content != content {
			t.Errorf("position %d: got %q, want %q", i, got[i].Content, content)
		}
	}
	for i := 1; i < len(got); i++ {
		if got[i].Timestamp.Before(got[i-1].Timestamp) {
			t.Errorf("messages not in ascending timestamp order at index %d", i)
		}
	}
}

func TestGetSessionMessages_StableTieBreak(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	// Same timestamp for every turn: insertion order must win
	ts := time.Now().UTC()
	for i := 0; i < 5; i++ {
		saveTurn(t, s, "session-tie", MessageTypeUser, fmt.Sprintf("turn-%d", i), ts)
	}

	got, err := s.GetSessionMessages(context.Background(), "session-tie")
	if err != nil {
		t.Fatalf("GetSessionMessages failed: %v", err)
	}
	for i := 0; i < 5; i++ {
		want := fmt.Sprintf("turn-%d", i)
		if got[i].Content != want {
			t.Errorf("position %d: got %q, want %q", i, got[i].Content, want)
		}
	}
}

func TestGetSessionMessages_ConversationCycles(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	const cycles = 4
	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < cycles; i++ {
		saveTurn(t, s, "session-cyc", MessageTypeUser, fmt.Sprintf("q%d", i), base.Add(time.Duration(2*i)*time.Second))
		saveTurn(t, s, "session-cyc", MessageTypeAI, fmt.Sprintf("a%d", i), base.Add(time.Duration(2*i+1)*time.Second))
	}

	got, err := s.GetSessionMessages(context.Background(), "session-cyc")
	if err != nil {
		t.Fatalf("GetSessionMessages failed: %v", err)
	}
	if len(got) != 2*cycles {
		t.Fatalf("expected %d messages, got %d", 2*cycles, len(got))
	}
	for i := 1; i < len(got); i++ {
		if !got[i].Timestamp.After(got[i-1].Timestamp) {
			t.Errorf("timestamps not strictly ascending at index %d", i)
		}
	}
}

func TestGetRecentMessages_DescendingWithLimit(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 6; i++ {
		saveTurn(t, s, "session-rec", MessageTypeUser, fmt.Sprintf("m%d", i), base.Add(time.Duration(i)*time.Second))
	}

	got, err := s.GetRecentMessages(context.Background(), "session-rec", 3)
	if err != nil {
		t.Fatalf("GetRecentMessages failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(got))
	}

	want := []string{"m5", "m4", "m3"}
	for i, content := range want {
		if got[i].Content != content {
			t.Errorf("position %d: got %q, want %q", i, got[i].Content, content)
		}
	}
}

func TestGetRecentMessages_PrefixConsistent(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 8; i++ {
		saveTurn(t, s, "session-pfx", MessageTypeUser, fmt.Sprintf("m%d", i), base.Add(time.Duration(i)*time.Second))
	}

	ctx := context.Background()
	full, err := s.GetRecentMessages(ctx, "session-pfx", 100)
	if err != nil {
		t.Fatalf("GetRecentMessages failed: %v", err)
	}
	if len(full) != 8 {
		t.Fatalf("expected 8 messages, got %d", len(full))
	}

	for _, k := range []int{1, 3, 5, 8} {
		recent, err := s.GetRecentMessages(ctx, "session-pfx", k)
		if err != nil {
			t.Fatalf("GetRecentMessages(%d) failed: %v", k, err)
		}
		if len(recent) != k {
			t.Fatalf("expected %d messages, got %d", k, len(recent))
		}
		for i := range recent {
			if recent[i].ID != full[i].ID {
				t.Errorf("limit %d: position %d not prefix-consistent with full history", k, i)
			}
		}
	}
}

func TestGetRecentMessages_FewerThanLimit(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	saveTurn(t, s, "session-few", MessageTypeUser, "only one", time.Now().UTC())

	got, err := s.GetRecentMessages(context.Background(), "session-few", 10)
	if err != nil {
		t.Fatalf("GetRecentMessages failed: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("expected 1 message, got %d", len(got))
	}
}

func TestGetRecentMessages_DefaultLimit(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 15; i++ {
		saveTurn(t, s, "session-def", MessageTypeUser, fmt.Sprintf("m%d", i), base.Add(time.Duration(i)*time.Second))
	}

	got, err := s.GetRecentMessages(context.Background(), "session-def", 0)
	if err != nil {
		t.Fatalf("GetRecentMessages failed: %v", err)
	}
	if len(got) != defaultRecentLimit {
		t.Errorf("expected default limit of %d, got %d", defaultRecentLimit, len(got))
	}
}

func TestGetUserMessages(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		msg := &Message{
			Content:   fmt.Sprintf("u%d", i),
			Type:      MessageTypeUser,
			Timestamp: base.Add(time.Duration(i) * time.Second),
			SessionID: "session-a",
			UserID:    "user-42",
		}
		if err := s.SaveMessage(ctx, msg); err != nil {
			t.Fatalf("SaveMessage failed: %v", err)
		}
	}
	// Different user, should not appear
	other := &Message{Content: "not mine", Type: MessageTypeUser, SessionID: "session-a", UserID: "user-99"}
	if err := s.SaveMessage(ctx, other); err != nil {
		t.Fatalf("SaveMessage failed: %v", err)
	}

	got, err := s.GetUserMessages(ctx, "user-42")
	if err != nil {
		t.Fatalf("GetUserMessages failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(got))
	}
	// Newest first
	if got[0].Content != "u2" || got[2].Content != "u0" {
		t.Errorf("unexpected order: %q ... %q", got[0].Content, got[2].Content)
	}
}

func TestDeleteSessionMessages(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	ctx := context.Background()
	for i := 0; i < 4; i++ {
		saveTurn(t, s, "session-del", MessageTypeUser, fmt.Sprintf("m%d", i), time.Now().UTC())
	}
	saveTurn(t, s, "session-keep", MessageTypeUser, "survivor", time.Now().UTC())

	count, err := s.DeleteSessionMessages(ctx, "session-del")
	if err != nil {
		t.Fatalf("DeleteSessionMessages failed: %v", err)
	}
	if count != 4 {
		t.Errorf("expected 4 deleted, got %d", count)
	}

	remaining, err := s.GetSessionMessages(ctx, "session-del")
	if err != nil {
		t.Fatalf("GetSessionMessages failed: %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("expected empty session after delete, got %d messages", len(remaining))
	}

	// Other sessions untouched
	kept, err := s.GetSessionMessages(ctx, "session-keep")
	if err != nil {
		t.Fatalf("GetSessionMessages failed: %v", err)
	}
	if len(kept) != 1 {
		t.Errorf("expected 1 surviving message, got %d", len(kept))
	}
}

func TestDeleteSessionMessages_Idempotent(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	ctx := context.Background()
	saveTurn(t, s, "session-idem", MessageTypeUser, "bye", time.Now().UTC())

	if _, err := s.DeleteSessionMessages(ctx, "session-idem"); err != nil {
		t.Fatalf("first delete failed: %v", err)
	}

	count, err := s.DeleteSessionMessages(ctx, "session-idem")
	if err != nil {
		t.Fatalf("second delete failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 deleted on second call, got %d", count)
	}
}

func TestCountSessionMessages(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	ctx := context.Background()

	count, err := s.CountSessionMessages(ctx, "session-cnt")
	if err != nil {
		t.Fatalf("CountSessionMessages failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 for empty session, got %d", count)
	}

	for i := 0; i < 3; i++ {
		saveTurn(t, s, "session-cnt", MessageTypeUser, fmt.Sprintf("m%d", i), time.Now().UTC())
	}

	count, err = s.CountSessionMessages(ctx, "session-cnt")
	if err != nil {
		t.Fatalf("CountSessionMessages failed: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3, got %d", count)
	}
}
