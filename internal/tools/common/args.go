package common

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/abdulehsan/Jarvis/internal/google"
)

// AliasParam is the argument every per-account tool takes.
const AliasParam = "account_alias"

// Handler is the signature of every tool handler.
type Handler = func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

// ToolAdder is the part of an MCP server the Register functions need. The
// MCP server and the agent's tool registry both implement it.
type ToolAdder interface {
	AddTool(tool mcp.Tool, handler mcpserver.ToolHandlerFunc)
}

// WithAlias declares the required account_alias parameter.
func WithAlias() mcp.ToolOption {
	return mcp.WithString(AliasParam,
		mcp.Required(),
		mcp.Description("The alias of the Google account to use (e.g. 'work' or 'personal')."),
	)
}

// AliasFromArgs returns the normalised account alias, or "" when absent.
func AliasFromArgs(args map[string]any) string {
	return google.NormalizeAlias(StringArg(args, AliasParam))
}

// StringArg returns the trimmed string argument name, or "".
func StringArg(args map[string]any, name string) string {
	v, ok := args[name].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(v)
}

// IntArg returns the integer argument name. JSON numbers arrive as float64;
// numeric strings are accepted too. Missing or invalid values yield def.
func IntArg(args map[string]any, name string, def int) int {
	switch v := args[name].(type) {
	case float64:
		if v != math.Trunc(v) {
			return def
		}
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

// BoolArg returns the boolean argument name. "true"/"false" strings are
// accepted as well.
func BoolArg(args map[string]any, name string, def bool) bool {
	switch v := args[name].(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return def
}

// StringSliceArg accepts a JSON array of strings or a comma separated
// string. Empty entries are dropped.
func StringSliceArg(args map[string]any, name string) []string {
	var raw []string
	switch v := args[name].(type) {
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				raw = append(raw, s)
			}
		}
	case []string:
		raw = v
	case string:
		raw = strings.Split(v, ",")
	}

	var out []string
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
