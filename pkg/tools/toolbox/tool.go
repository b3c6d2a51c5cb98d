package toolbox

import (
	"context"
	"encoding/json"
)

// Handler executes a tool with the given JSON input and returns a text result.
type Handler func(ctx context.Context, input json.RawMessage) (string, error)

// Tool represents an executable tool with a name, description, JSON Schema,
// and handler. ReadOnly and Idempotent are behavior hints surfaced to MCP
// clients as tool annotations: a read-only tool never mutates controller
// state, and an idempotent one can be repeated safely with the same input.
type Tool struct {
	Name        string
	Description string
	InputSchema json.RawMessage
	ReadOnly    bool
	Idempotent  bool
	Handler     Handler
}
