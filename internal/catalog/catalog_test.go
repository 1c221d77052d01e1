// ABOUTME: Tests for the static tool catalog.
// ABOUTME: Covers insertion-order listing, lookup, and duplicate-name handling.

package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()

	tools := c.List()
	require.Len(t, tools, 4)

	// Insertion order is the listing order
	names := make([]string, len(tools))
	for i, tool := range tools {
		names[i] = tool.Name
	}
	assert.Equal(t, []string{"filesystem", "web_search", "code_execution", "database"}, names)

	for _, tool := range tools {
		assert.True(t, tool.Enabled, "tool %s should be enabled", tool.Name)
		assert.NotEmpty(t, tool.Description)
	}
}

func TestGet(t *testing.T) {
	c := Default()

	tool, ok := c.Get("web_search")
	require.True(t, ok)
	assert.Equal(t, "web_search", tool.Name)

	_, ok = c.Get("no_such_tool")
	assert.False(t, ok)
}

func TestNew_DuplicateNamesKeepFirst(t *testing.T) {
	c := New(
		&Tool{Name: "echo", Description: "first"},
		&Tool{Name: "echo", Description: "second"},
		&Tool{Name: "other", Description: "other"},
	)

	require.Len(t, c.List(), 2)

	tool, ok := c.Get("echo")
	require.True(t, ok)
	assert.Equal(t, "first", tool.Description)
}

func TestNew_ExtendsBeyondDefaults(t *testing.T) {
	c := New(append(Default().List(), &Tool{Name: "custom", Description: "site-specific", Enabled: true})...)

	tools := c.List()
	require.Len(t, tools, 5)
	assert.Equal(t, "custom", tools[4].Name)
}
