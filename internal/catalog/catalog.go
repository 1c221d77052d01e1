// ABOUTME: Static catalog of tool descriptors built once at process start.
// ABOUTME: Read-only at runtime, so it is safe for unsynchronized concurrent reads.

package catalog

// Tool describes a named stub capability. It is a descriptor, not a live
// connection: the dispatcher decides whether a catalog entry can actually run.
type Tool struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Operations  []string `json:"operations,omitempty"`
	Enabled     bool     `json:"enabled"`
}

// Catalog holds the fixed set of known tools in insertion order.
type Catalog struct {
	tools map[string]*Tool
	order []string
}

// New builds a catalog from the given tools. Duplicate names are rejected by
// keeping the first entry; names are the unique key.
func New(tools ...*Tool) *Catalog {
	c := &Catalog{
		tools: make(map[string]*Tool, len(tools)),
	}
	for _, tool := range tools {
		if _, exists := c.tools[tool.Name]; exists {
			continue
		}
		c.tools[tool.Name] = tool
		c.order = append(c.order, tool.Name)
	}
	return c
}

// Default returns the catalog of built-in stub tools.
func Default() *Catalog {
	return New(
		&Tool{
			Name:        "filesystem",
			Description: "Access and manipulate files on the local filesystem",
			Operations:  []string{"read", "write", "list", "exists"},
			Enabled:     true,
		},
		&Tool{
			Name:        "web_search",
			Description: "Search the web for current information",
			Operations:  []string{"search"},
			Enabled:     true,
		},
		&Tool{
			Name:        "code_execution",
			Description: "Execute code in various programming languages",
			Operations:  []string{"execute"},
			Enabled:     true,
		},
		&Tool{
			Name:        "database",
			Description: "Query and manipulate databases",
			Operations:  []string{"query"},
			Enabled:     true,
		},
	)
}

// List returns all tools in insertion order.
func (c *Catalog) List() []*Tool {
	result := make([]*Tool, 0, len(c.order))
	for _, name := range c.order {
		result = append(result, c.tools[name])
	}
	return result
}

// Get returns the tool with the given name. A miss is a normal outcome, not
// a fault, so it is reported with a bool rather than an error.
func (c *Catalog) Get(name string) (*Tool, bool) {
	tool, ok := c.tools[name]
	return tool, ok
}
