// Package tooltest provides helpers for testing tool handlers against a fake
// Google endpoint.
package tooltest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"

	"github.com/abdulehsan/Jarvis/internal/google"
	"github.com/abdulehsan/Jarvis/internal/server"
)

// Aliases that have credentials in contexts built by NewServerContext.
var Aliases = []string{"personal", "work"}

// Registry records registered tools so tests can call them by name.
type Registry struct {
	Tools    map[string]mcp.Tool
	handlers map[string]mcpserver.ToolHandlerFunc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		Tools:    make(map[string]mcp.Tool),
		handlers: make(map[string]mcpserver.ToolHandlerFunc),
	}
}

// AddTool implements common.ToolAdder.
func (r *Registry) AddTool(tool mcp.Tool, handler mcpserver.ToolHandlerFunc) {
	r.Tools[tool.Name] = tool
	r.handlers[tool.Name] = handler
}

// Call invokes tool name with args and returns its text and error flag.
func (r *Registry) Call(t *testing.T, name string, args map[string]any) (string, bool) {
	t.Helper()
	h, ok := r.handlers[name]
	if !ok {
		t.Fatalf("tool %q is not registered", name)
	}
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	res, err := h(context.Background(), req)
	if err != nil {
		t.Fatalf("tool %q returned a Go error: %v", name, err)
	}
	if res == nil {
		t.Fatalf("tool %q returned a nil result", name)
	}
	var text string
	for _, c := range res.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			text += tc.Text
		}
	}
	return text, res.IsError
}

// NewServerContext serves handler on a test server and returns a
// ServerContext whose Google clients talk to it. "personal" and "work" have
// tokens; any other alias fails like a missing credential file.
func NewServerContext(t *testing.T, handler http.Handler, opts server.Options) *server.ServerContext {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	if opts.Provider == nil {
		tokens := make(map[string]*oauth2.Token)
		for _, a := range Aliases {
			tokens[a] = &oauth2.Token{AccessToken: "tok-" + a, TokenType: "Bearer", Expiry: time.Now().Add(time.Hour)}
		}
		opts.Provider = &google.StaticTokenProvider{Tokens: tokens}
	}
	opts.ClientOptions = append(opts.ClientOptions, option.WithEndpoint(srv.URL+"/"))

	sc, err := server.NewServerContext(context.Background(), opts)
	if err != nil {
		t.Fatalf("failed to create server context: %v", err)
	}
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

// WriteJSON writes v as a JSON response.
func WriteJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes a Google API error response.
func WriteError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"code": code, "message": message},
	})
}
