package agent

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrParsing is returned for model output that tries to call a tool but is
// not a valid call.
var ErrParsing = errors.New("could not parse tool call")

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	Tool  string         `json:"tool"`
	Input map[string]any `json:"input"`

	// Args is accepted as a synonym of Input.
	Args map[string]any `json:"args,omitempty"`
}

// parseToolCall classifies model output. It returns (nil, nil) for a plain
// text answer, a call for a well formed tool call, and ErrParsing for
// output that looks like a call but cannot be decoded.
func parseToolCall(text string) (*ToolCall, error) {
	body := stripCodeFence(strings.TrimSpace(text))
	if !looksLikeCall(body) {
		return nil, nil
	}

	raw := extractObject(body)
	if raw == "" {
		return nil, fmt.Errorf("%w: no JSON object found", ErrParsing)
	}

	var call ToolCall
	if err := json.Unmarshal([]byte(raw), &call); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsing, err)
	}
	call.Tool = strings.TrimSpace(call.Tool)
	if call.Tool == "" {
		if strings.HasPrefix(body, "{") {
			return nil, fmt.Errorf("%w: missing tool name", ErrParsing)
		}
		// Prose that happens to contain JSON is an answer.
		return nil, nil
	}
	if call.Input == nil {
		call.Input = call.Args
	}
	if call.Input == nil {
		call.Input = map[string]any{}
	}
	call.Args = nil
	return &call, nil
}

var toolKey = regexp.MustCompile(`"tool"\s*:`)

func looksLikeCall(body string) bool {
	return strings.HasPrefix(body, "{") || toolKey.MatchString(body)
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// extractObject returns the first balanced JSON object in s, or "" when
// there is none.
func extractObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
