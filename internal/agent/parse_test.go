package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseToolCall(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantTool  string
		wantInput map[string]any
		wantErr   bool
	}{
		{
			name: "plain answer",
			text: "You have two meetings today.",
		},
		{
			name: "prose mentioning a tool",
			text: "I used a tool to check: you are free.",
		},
		{
			name:      "bare call",
			text:      `{"tool": "get_tasks", "input": {"account_alias": "work"}}`,
			wantTool:  "get_tasks",
			wantInput: map[string]any{"account_alias": "work"},
		},
		{
			name:      "fenced call",
			text:      "```json\n{\"tool\": \"list_notes\", \"input\": {}}\n```",
			wantTool:  "list_notes",
			wantInput: map[string]any{},
		},
		{
			name:      "args synonym and missing input",
			text:      `{"tool": " get_todays_date ", "args": {"x": 1}}`,
			wantTool:  "get_todays_date",
			wantInput: map[string]any{"x": float64(1)},
		},
		{
			name:      "call after a preamble",
			text:      "Let me check.\n{\"tool\": \"get_note\", \"input\": {\"note_id\": \"n{1}\"}}",
			wantTool:  "get_note",
			wantInput: map[string]any{"note_id": "n{1}"},
		},
		{
			name:    "truncated call",
			text:    `{"tool": "get_tasks", "input": {"account_alias": "work"`,
			wantErr: true,
		},
		{
			name:    "object without tool",
			text:    `{"input": {}}`,
			wantErr: true,
		},
		{
			name:    "invalid json",
			text:    `{"tool": get_tasks}`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			call, err := parseToolCall(tt.text)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrParsing)
				assert.Nil(t, call)
				return
			}
			require.NoError(t, err)
			if tt.wantTool == "" {
				assert.Nil(t, call)
				return
			}
			require.NotNil(t, call)
			assert.Equal(t, tt.wantTool, call.Tool)
			assert.Equal(t, tt.wantInput, call.Input)
		})
	}
}

func TestExtractObject(t *testing.T) {
	assert.Equal(t, `{"a": "}"}`, extractObject(`x {"a": "}"} y`))
	assert.Equal(t, `{"a": "\"{"}`, extractObject(`{"a": "\"{"}`))
	assert.Equal(t, "", extractObject("no braces"))
	assert.Equal(t, "", extractObject(`{"a": {`))
}
