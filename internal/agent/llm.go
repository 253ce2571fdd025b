package agent

import (
	"context"

	"github.com/abdulehsan/Jarvis/internal/memory"
)

// Message is one entry of the conversation sent to the model.
type Message struct {
	Role    memory.Role
	Content string
}

// LLM is a chat completion backend. messages is non-empty and ends with a
// user message.
type LLM interface {
	Complete(ctx context.Context, system string, messages []Message) (string, error)

	// Provider names the backend for logs and metrics.
	Provider() string
	Model() string
}
