package agent

import (
	"context"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/abdulehsan/Jarvis/internal/tools/common"
)

// Registry holds the tools the agent may call. It accepts the same
// registrations as an MCP server, so tool packages register into either.
type Registry struct {
	mu       sync.RWMutex
	order    []string
	tools    map[string]mcp.Tool
	handlers map[string]mcpserver.ToolHandlerFunc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tools:    make(map[string]mcp.Tool),
		handlers: make(map[string]mcpserver.ToolHandlerFunc),
	}
}

// AddTool registers tool. A second registration of a name replaces the
// first.
func (r *Registry) AddTool(tool mcp.Tool, handler mcpserver.ToolHandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tools[tool.Name]; !ok {
		r.order = append(r.order, tool.Name)
	}
	r.tools[tool.Name] = tool
	r.handlers[tool.Name] = handler
}

// Tools returns the registered tools in registration order.
func (r *Registry) Tools() []mcp.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]mcp.Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tools[name]
	return ok
}

// NeedsAlias reports whether the tool takes an account alias.
func (r *Registry) NeedsAlias(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	if !ok {
		return false
	}
	_, ok = tool.InputSchema.Properties[common.AliasParam]
	return ok
}

// Call runs a tool and returns its text. Error results are returned as
// text too, since the model reads them as observations.
func (r *Registry) Call(ctx context.Context, name string, args map[string]any) (string, error) {
	r.mu.RLock()
	handler, ok := r.handlers[name]
	r.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("unknown tool %q", name)
	}

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	result, err := handler(ctx, req)
	if err != nil {
		return "", fmt.Errorf("tool %s failed: %w", name, err)
	}
	if result == nil {
		return "", nil
	}
	return common.ResultText(result), nil
}
