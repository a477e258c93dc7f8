package llm

import (
	"context"
	"errors"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"discharge-companion/internal/metrics"
)

// Message roles understood by the completion service.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role-tagged entry in a completion request.
type Message struct {
	Role    string
	Content string
}

// Client is the single narrow boundary around the external completion
// service.  One call, one response; the core logic is tested against fakes
// of this interface with no network dependency.
type Client interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// OpenAIClient calls the OpenAI chat completion API.  Temperature is a
// client-level policy: the summarizer and the chat service each get a
// client configured for their task.
type OpenAIClient struct {
	client      *openai.Client
	model       string
	temperature float32
	kind        string
}

// NewOpenAIClient constructs an OpenAI-backed completion client.  kind
// labels the client's metrics ("summary" or "chat").
func NewOpenAIClient(apiKey, model string, temperature float32, kind string) *OpenAIClient {
	return &OpenAIClient{
		client:      openai.NewClient(apiKey),
		model:       model,
		temperature: temperature,
		kind:        kind,
	}
}

// Complete sends the message list to the API and returns the assistant's
// response text.  Exactly one outbound request per invocation; no retry.
func (c *OpenAIClient) Complete(ctx context.Context, messages []Message) (string, error) {
	if c.client == nil {
		return "", errors.New("openai client not initialized")
	}

	oaMsgs := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		role := m.Role
		if role != openai.ChatMessageRoleSystem && role != openai.ChatMessageRoleUser && role != openai.ChatMessageRoleAssistant {
			// coerce anything unknown to user
			role = openai.ChatMessageRoleUser
		}
		oaMsgs = append(oaMsgs, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    oaMsgs,
		Temperature: c.temperature,
	})
	metrics.CompletionDuration.WithLabelValues(c.kind).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.Completions.WithLabelValues(c.kind, "error").Inc()
		return "", err
	}
	if len(resp.Choices) == 0 {
		metrics.Completions.WithLabelValues(c.kind, "error").Inc()
		return "", errors.New("completion response contained no choices")
	}
	metrics.Completions.WithLabelValues(c.kind, "ok").Inc()
	return resp.Choices[0].Message.Content, nil
}
