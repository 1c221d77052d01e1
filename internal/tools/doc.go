// Package tools dispatches named tool executions to built-in stub handlers.
//
// The Dispatcher resolves a tool name against the catalog and switches over
// a closed set of supported tools: filesystem, web_search, code_execution,
// database. The catalog and the dispatch set can diverge on purpose; a
// catalog entry without a handler fails with ErrUnsupportedTool rather than
// ErrUnknownTool, so callers can tell the two conditions apart.
//
// Every handler except filesystem is a pure computation over its inputs and
// the clock. The handlers are documented stubs: web_search never touches the
// network, code_execution never runs code, and database never opens a
// connection. Keep them that way; the contract is the synthetic payload
// shape, not a real integration.
//
// Failures are wrapped sentinel errors (ErrUnknownTool, ErrUnsupportedTool,
// ErrUnsupportedOperation, ErrMissingParameter, ErrIO) that callers match
// with errors.Is.
package tools
