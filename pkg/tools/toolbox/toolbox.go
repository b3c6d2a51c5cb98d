package toolbox

import (
	"context"
	"encoding/json"
	"fmt"
)

// ToolBox holds a collection of tools in registration order. The order is
// preserved so a server listing its tools presents them the way the
// application assembled them (discovery tools first, control tools after).
type ToolBox struct {
	byName map[string]int
	tools  []Tool
}

// New creates a new ToolBox ready for use.
func New() *ToolBox {
	return &ToolBox{
		byName: make(map[string]int),
	}
}

// Register adds one or more tools to the ToolBox. If a tool with the same
// name already exists, it is replaced in place, keeping its position.
func (tb *ToolBox) Register(tools ...Tool) {
	for _, t := range tools {
		if i, ok := tb.byName[t.Name]; ok {
			tb.tools[i] = t

			continue
		}
		tb.byName[t.Name] = len(tb.tools)
		tb.tools = append(tb.tools, t)
	}
}

// Get returns a tool by name and a boolean indicating whether it was found.
func (tb *ToolBox) Get(name string) (Tool, bool) {
	i, ok := tb.byName[name]
	if !ok {
		return Tool{}, false
	}

	return tb.tools[i], true
}

// Merge registers all tools from another ToolBox into this one, keeping the
// other's registration order for new tools.
func (tb *ToolBox) Merge(other *ToolBox) {
	tb.Register(other.tools...)
}

// Tools returns all registered tools in registration order.
func (tb *ToolBox) Tools() []Tool {
	result := make([]Tool, len(tb.tools))
	copy(result, tb.tools)

	return result
}

// Call executes the named tool with the given input. An unknown name is an
// error; handler errors pass through unchanged.
func (tb *ToolBox) Call(ctx context.Context, name string, input json.RawMessage) (string, error) {
	t, ok := tb.Get(name)
	if !ok {
		return "", fmt.Errorf("tool not found: %s", name)
	}

	return t.Handler(ctx, input)
}
