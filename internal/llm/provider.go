package llm

import (
	"context"
	"encoding/json"
)

// Provider generates structured JSON from a prompt.
type Provider interface {
	// Generate sends req and returns the model output. When req.Schema is
	// set, Content is JSON that has already been validated against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes one generation call.
type Request struct {
	System   string
	Messages []Message

	// Schema, when set, asks the provider for its native structured output
	// mode. Without it Content is the raw text of the reply.
	Schema *Schema

	MaxTokens int

	// Temperature in [0, 1]. Zero leaves the provider default.
	Temperature float64
}

// Prompt builds a single-turn request.
func Prompt(system, user string) Request {
	return Request{
		System:   system,
		Messages: []Message{{Role: RoleUser, Content: user}},
	}
}

// Message is a single conversation turn.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a named JSON Schema the output must satisfy.
type Schema struct {
	// Name is kebab-case, e.g. "face-catalog". It doubles as the OpenAI
	// schema name and the compiled-schema cache key.
	Name        string
	Description string
	Definition  map[string]any
}

// Response holds the model output.
type Response struct {
	Content json.RawMessage
	Usage   Usage
	Model   string

	// StopReason is normalized to "end" or "max_tokens".
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// DefaultMaxTokens applies when a Request leaves MaxTokens at zero.
const DefaultMaxTokens = 1024

func maxTokens(req Request) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	return DefaultMaxTokens
}

// finish validates structured content and assembles the response.
func finish(req Request, content json.RawMessage, usage Usage, model, stop string) (*Response, error) {
	if stop == "max_tokens" && req.Schema != nil {
		return nil, &ErrMaxTokensExceeded{Content: content}
	}
	if err := validateResponse(req.Schema, content); err != nil {
		return nil, err
	}
	return &Response{Content: content, Usage: usage, Model: model, StopReason: stop}, nil
}

// resolveModel maps a friendly model name to a provider model ID. Unknown
// names pass through so direct model IDs work.
func resolveModel(name string, models map[string]string) string {
	if id, ok := models[name]; ok {
		return id
	}
	return name
}
