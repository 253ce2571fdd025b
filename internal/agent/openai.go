package agent

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/abdulehsan/Jarvis/internal/memory"
)

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAILLM talks to any OpenAI compatible chat completions endpoint.
type OpenAILLM struct {
	client openai.Client
	model  string
}

// NewOpenAILLM creates an OpenAI backend. An empty baseURL uses the OpenAI
// API.
func NewOpenAILLM(apiKey, baseURL, model string, opts ...option.RequestOption) (*OpenAILLM, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if model == "" {
		model = DefaultOpenAIModel
	}

	all := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		all = append(all, option.WithBaseURL(baseURL))
	}
	all = append(all, opts...)

	return &OpenAILLM{client: openai.NewClient(all...), model: model}, nil
}

func (o *OpenAILLM) Provider() string { return "openai" }
func (o *OpenAILLM) Model() string    { return o.model }

func (o *OpenAILLM) Complete(ctx context.Context, system string, messages []Message) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("no messages to send")
	}

	params := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)+1)
	if system != "" {
		params = append(params, openai.SystemMessage(system))
	}
	for _, m := range messages {
		if m.Role == memory.RoleAssistant {
			params = append(params, openai.AssistantMessage(m.Content))
			continue
		}
		params = append(params, openai.UserMessage(m.Content))
	}

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       o.model,
		Messages:    params,
		Temperature: openai.Float(0.2),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}
