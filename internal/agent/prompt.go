package agent

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/mark3labs/mcp-go/mcp"
)

// PromptData fills the system prompt.
type PromptData struct {
	AssistantName string
	Aliases       []string
	Today         string
	Tools         []mcp.Tool
}

var systemPrompt = template.Must(template.New("system").Funcs(template.FuncMap{
	"join":    strings.Join,
	"catalog": toolCatalog,
}).Parse(`You are {{.AssistantName}}, a proactive and highly intelligent personal assistant.

Your primary capability is your powerful language model. Use it for general queries, writing and brainstorming.

You also have tools to work with the user's Google services (Calendar, Gmail, Tasks) and Google Keep.

RULES FOR GOOGLE SERVICE TOOLS (Calendar, Gmail, Tasks):
1. These tools require an "account_alias" naming the account to act upon.
{{- if .Aliases}}
2. The available account aliases are: {{join .Aliases ", "}}.
{{- else}}
2. No accounts are connected yet. Tell the user to add one before using these tools.
{{- end}}
3. If the request names an account (for example "check my work email"), use that alias.
4. If the request does not name an account, ask: "Which account should I use for that ({{join .Aliases ", "}})?" Do not call the tool without an alias.
5. Google Keep tools and the date tool do not take an account alias.

HOW TO USE A TOOL:
Reply with exactly one JSON object and nothing else:
{"tool": "<tool name>", "input": {<arguments matching the tool's input schema>}}
You will then receive the tool's result as an observation. Call one tool at a time.
When you have everything you need, reply to the user in plain text without any JSON.

GENERAL RULES:
- Be concise and conversational. Do not expose tool names or internal processes.
- Resolve relative dates yourself from the current date.
- The current date is {{.Today}}.

AVAILABLE TOOLS:
{{catalog .Tools}}`))

// BuildSystemPrompt renders the system prompt.
func BuildSystemPrompt(data PromptData) (string, error) {
	if data.AssistantName == "" {
		data.AssistantName = "Jarvis"
	}
	var b strings.Builder
	if err := systemPrompt.Execute(&b, data); err != nil {
		return "", fmt.Errorf("failed to render system prompt: %w", err)
	}
	return b.String(), nil
}

func toolCatalog(tools []mcp.Tool) string {
	lines := make([]string, 0, len(tools))
	for _, tool := range tools {
		line := fmt.Sprintf("- %s: %s", tool.Name, tool.Description)
		if schema, err := json.Marshal(tool.InputSchema); err == nil {
			line += fmt.Sprintf("\n  Input Schema: %s", schema)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
