// ABOUTME: Deterministic reply synthesis for the chat relay.
// ABOUTME: Pure function of the message text and the requested tool names.

package chat

import "strings"

// BuildReply synthesizes the canned reply text. The output is deterministic:
// same inputs, byte-identical text. Three parts, in fixed order: a quoted
// echo of the message, an optional tool section, and exactly one contextual
// sentence.
//
// Tool names are NOT validated against the catalog here; an unknown name
// still gets an echo line. The dispatcher is the only validating boundary.
func BuildReply(message string, useTools bool, toolNames []string) string {
	var b strings.Builder

	b.WriteString("I understand you said: \"")
	b.WriteString(message)
	b.WriteString("\"\n\n")

	if useTools && len(toolNames) > 0 {
		b.WriteString("I'll use the following tools to help you:\n")
		for _, name := range toolNames {
			b.WriteString("- ")
			b.WriteString(name)
			b.WriteString("\n")
		}
		b.WriteString("\n")

		b.WriteString("Tool execution results:\n")
		for _, name := range toolNames {
			b.WriteString("• ")
			b.WriteString(name)
			b.WriteString(": Operation completed successfully\n")
		}
	}

	b.WriteString(contextualSentence(message))
	return b.String()
}

// contextualSentence picks exactly one closing sentence by case-insensitive
// substring match. The branches are priority-ordered; the first match wins.
func contextualSentence(message string) string {
	m := strings.ToLower(message)

	switch {
	case strings.Contains(m, "hello") || strings.Contains(m, "hi"):
		return "Hello! How can I assist you today?"
	case strings.Contains(m, "help"):
		return "I'm here to help! You can ask me questions, request file operations, web searches, or code execution through MCP tools."
	case strings.Contains(m, "file") || strings.Contains(m, "read") || strings.Contains(m, "write"):
		return "I can help you with file operations. Would you like me to read, write, or list files?"
	case strings.Contains(m, "search") || strings.Contains(m, "web"):
		return "I can search the web for current information. What would you like me to search for?"
	case strings.Contains(m, "code") || strings.Contains(m, "execute"):
		return "I can execute code in various programming languages. What code would you like me to run?"
	default:
		return "Thank you for your message. I'm here to help with various tasks including file operations, web searches, and code execution."
	}
}
