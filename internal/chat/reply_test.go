// ABOUTME: Tests for deterministic reply synthesis.
// ABOUTME: Covers echo, tool enumeration order, and contextual-sentence priority.

package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildReply_EchoesMessage(t *testing.T) {
	reply := BuildReply("what time is it", false, nil)
	assert.True(t, strings.HasPrefix(reply, `I understand you said: "what time is it"`))
}

func TestBuildReply_ByteIdentical(t *testing.T) {
	a := BuildReply("search for gophers", true, []string{"web_search", "database"})
	b := BuildReply("search for gophers", true, []string{"web_search", "database"})
	assert.Equal(t, a, b)
}

func TestBuildReply_ToolSectionOrder(t *testing.T) {
	reply := BuildReply("run these", true, []string{"zeta", "alpha", "mid"})

	// Enumeration preserves the supplied order, not sorted order
	zeta := strings.Index(reply, "- zeta")
	alpha := strings.Index(reply, "- alpha")
	mid := strings.Index(reply, "- mid")
	require.True(t, zeta >= 0 && alpha >= 0 && mid >= 0)
	assert.Less(t, zeta, alpha)
	assert.Less(t, alpha, mid)

	// One completion line per tool, same order
	for _, name := range []string{"zeta", "alpha", "mid"} {
		assert.Contains(t, reply, "• "+name+": Operation completed successfully")
	}
}

func TestBuildReply_UnknownToolStillEchoed(t *testing.T) {
	// Composition does not validate names; the dispatcher is the only
	// validating boundary.
	reply := BuildReply("use it", true, []string{"not_a_real_tool"})
	assert.Contains(t, reply, "- not_a_real_tool")
	assert.Contains(t, reply, "• not_a_real_tool: Operation completed successfully")
}

func TestBuildReply_NoToolSectionWhenDisabled(t *testing.T) {
	reply := BuildReply("plain", false, []string{"web_search"})
	assert.NotContains(t, reply, "I'll use the following tools")

	reply = BuildReply("plain", true, nil)
	assert.NotContains(t, reply, "I'll use the following tools")
}

func TestContextualSentence_Branches(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
	}{
		{"greeting", "hello out there", "Hello! How can I assist you today?"},
		{"greeting short", "hi", "Hello! How can I assist you today?"},
		{"help", "can you help me somehow", "I'm here to help!"},
		{"file ops", "read my notes file", "I can help you with file operations."},
		{"search", "search for gophers", "I can search the web"},
		{"code", "execute my program", "I can execute code"},
		{"fallback", "tell me your opinion on soup", "Thank you for your message."},
		{"case insensitive", "HELLO WORLD", "Hello! How can I assist you today?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply := BuildReply(tt.message, false, nil)
			assert.Contains(t, reply, tt.want)
		})
	}
}

func TestContextualSentence_PriorityOrder(t *testing.T) {
	// "please help me read a file" matches both the help branch and the
	// file-ops branch; help wins because it is checked first.
	reply := BuildReply("please help me read a file", false, nil)
	assert.Contains(t, reply, "I'm here to help!")
	assert.NotContains(t, reply, "I can help you with file operations.")
}

func TestContextualSentence_ExactlyOneBranch(t *testing.T) {
	sentences := []string{
		"Hello! How can I assist you today?",
		"I'm here to help!",
		"I can help you with file operations.",
		"I can search the web",
		"I can execute code",
		"Thank you for your message.",
	}

	reply := BuildReply("search the web for code to execute", false, nil)

	matched := 0
	for _, s := range sentences {
		if strings.Contains(reply, s) {
			matched++
		}
	}
	assert.Equal(t, 1, matched, "exactly one contextual sentence must fire")
}
