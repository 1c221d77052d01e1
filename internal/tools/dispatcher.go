// ABOUTME: Tool dispatcher resolving names against the catalog and running stub handlers.
// ABOUTME: The built-in handlers are deliberate stubs; only the filesystem tool touches real state.

package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aichat/relay/internal/catalog"
)

// Dispatch failure taxonomy. Every failure is surfaced to the caller as a
// wrapped sentinel, never swallowed or retried.
var (
	// ErrUnknownTool indicates the tool name is not in the catalog.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrUnsupportedTool indicates a catalog entry with no dispatch branch.
	// The catalog and the dispatch set may diverge; this is the marker.
	ErrUnsupportedTool = errors.New("unsupported tool")

	// ErrUnsupportedOperation indicates a filesystem operation outside the
	// supported set.
	ErrUnsupportedOperation = errors.New("unsupported operation")

	// ErrMissingParameter indicates a required parameter was absent or blank.
	ErrMissingParameter = errors.New("missing parameter")

	// ErrIO wraps filesystem failures from the one handler with real side effects.
	ErrIO = errors.New("filesystem operation failed")
)

// SearchResult is the synthetic payload returned by the web_search stub.
type SearchResult struct {
	Query   string             `json:"query"`
	Results []SearchResultItem `json:"results"`
}

// SearchResultItem is a single fake search hit.
type SearchResultItem struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// CodeResult is the synthetic acknowledgment returned by the code_execution stub.
type CodeResult struct {
	Language      string `json:"language"`
	Output        string `json:"output"`
	ExecutionTime int64  `json:"executionTime"`
}

// DatabaseResult is the synthetic acknowledgment returned by the database stub.
type DatabaseResult struct {
	Database string `json:"database"`
	Query    string `json:"query"`
	Result   string `json:"result"`
}

// Dispatcher executes tools by name. Resolution goes through the catalog
// first, then a closed switch over the supported tool set.
type Dispatcher struct {
	catalog *catalog.Catalog
	logger  *slog.Logger
}

// NewDispatcher creates a dispatcher over the given catalog.
func NewDispatcher(cat *catalog.Catalog, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		catalog: cat,
		logger:  logger.With("component", "tools"),
	}
}

// Execute resolves toolName against the catalog and runs the matching handler.
// A name absent from the catalog fails with ErrUnknownTool; a catalog entry
// with no handler fails with ErrUnsupportedTool.
func (d *Dispatcher) Execute(ctx context.Context, toolName string, params map[string]any) (any, error) {
	if _, ok := d.catalog.Get(toolName); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, toolName)
	}

	d.logger.Debug("executing tool", "tool", toolName)

	switch toolName {
	case "filesystem":
		return d.executeFilesystem(params)
	case "web_search":
		return d.executeWebSearch(params)
	case "code_execution":
		return d.executeCode(params)
	case "database":
		return d.executeDatabase(params)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedTool, toolName)
	}
}

// executeFilesystem performs real local filesystem operations: read, write,
// list, exists. This is the only handler with durable side effects.
func (d *Dispatcher) executeFilesystem(params map[string]any) (any, error) {
	operation, err := stringParam(params, "operation")
	if err != nil {
		return nil, err
	}
	path, err := stringParam(params, "path")
	if err != nil {
		return nil, err
	}

	switch operation {
	case "read":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: reading %s: %v", ErrIO, path, err)
		}
		return string(data), nil

	case "write":
		content, err := stringParam(params, "content")
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return nil, fmt.Errorf("%w: writing %s: %v", ErrIO, path, err)
		}
		return "File written successfully", nil

	case "list":
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("%w: listing %s: %v", ErrIO, path, err)
		}
		names := make([]string, 0, len(entries))
		for _, entry := range entries {
			names = append(names, entry.Name())
		}
		return names, nil

	case "exists":
		_, err := os.Stat(path)
		return err == nil, nil

	default:
		return nil, fmt.Errorf("%w: filesystem operation %q", ErrUnsupportedOperation, operation)
	}
}

// executeWebSearch returns a fixed synthetic result referencing the query.
// No network call is made.
func (d *Dispatcher) executeWebSearch(params map[string]any) (any, error) {
	query, err := stringParam(params, "query")
	if err != nil {
		return nil, err
	}

	return &SearchResult{
		Query: query,
		Results: []SearchResultItem{
			{
				Title:   "Sample result for: " + query,
				URL:     "https://example.com",
				Snippet: "This is a sample search result",
			},
		},
	}, nil
}

// executeCode returns a synthetic acknowledgment. No code is run.
func (d *Dispatcher) executeCode(params map[string]any) (any, error) {
	// The code body is required but never run
	if _, err := stringParam(params, "code"); err != nil {
		return nil, err
	}

	language, err := stringParam(params, "language")
	if err != nil {
		return nil, err
	}

	return &CodeResult{
		Language:      language,
		Output:        "Code execution result for: " + language,
		ExecutionTime: time.Now().UnixMilli(),
	}, nil
}

// executeDatabase returns a synthetic acknowledgment. No query is executed.
func (d *Dispatcher) executeDatabase(params map[string]any) (any, error) {
	query, err := stringParam(params, "query")
	if err != nil {
		return nil, err
	}
	database, err := stringParam(params, "database")
	if err != nil {
		return nil, err
	}

	return &DatabaseResult{
		Database: database,
		Query:    query,
		Result:   "Database query executed successfully",
	}, nil
}

// stringParam extracts a required non-blank string parameter.
func stringParam(params map[string]any, key string) (string, error) {
	value, ok := params[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingParameter, key)
	}
	s, ok := value.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingParameter, key)
	}
	return s, nil
}
