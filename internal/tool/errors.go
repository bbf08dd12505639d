package tool

import "errors"

var (
	// ErrNotConfigured indicates the backend owning a tool or resource
	// has no credentials and was never activated.
	ErrNotConfigured = errors.New("backend is not configured")

	// ErrUnknownTool indicates no backend claims the tool name.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrUnknownResource indicates no backend claims the resource URI.
	ErrUnknownResource = errors.New("unknown resource")

	// ErrWrongOperation indicates the statement kind does not match the
	// tool, such as a write sent to postgres_query.
	ErrWrongOperation = errors.New("wrong operation for this tool")

	// ErrInvalidInput indicates tool arguments failed to decode or a
	// required field is missing.
	ErrInvalidInput = errors.New("invalid tool input")
)
