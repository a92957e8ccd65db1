package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestOpenAIServer(t *testing.T, handler http.HandlerFunc) string {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server.URL + "/v1"
}

func chatCompletion(content, finish string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1234567890,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{
			{
				"index": 0,
				"message": map[string]any{
					"role":    "assistant",
					"content": content,
				},
				"finish_reason": finish,
			},
		},
		"usage": map[string]any{
			"prompt_tokens":     40,
			"completion_tokens": 25,
			"total_tokens":      65,
		},
	}
}

func TestOpenAIProvider_HappyPath(t *testing.T) {
	var body map[string]any
	url := newTestOpenAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatCompletion(
			`{"faces":[{"name":"comet","glyph":"C"},{"name":"moon","glyph":"M"}]}`, "stop"))
	})

	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "test-key", Model: "gpt-4o-mini", BaseURL: url})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp, err := p.Generate(context.Background(), Request{
		System:   "You design card decks.",
		Messages: []Message{{Role: RoleUser, Content: "Theme: space"}},
		Schema:   faceSchema(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Usage.InputTokens != 40 || resp.Usage.OutputTokens != 25 {
		t.Fatalf("unexpected usage: %+v", resp.Usage)
	}
	if resp.StopReason != "end" {
		t.Fatalf("expected stop reason 'end', got %q", resp.StopReason)
	}

	msgs, _ := body["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("expected system and user messages, got %v", body["messages"])
	}
	format, _ := body["response_format"].(map[string]any)
	if format["type"] != "json_schema" {
		t.Fatalf("expected json_schema response format, got %v", body["response_format"])
	}
}

func TestOpenAIProvider_InvalidContent(t *testing.T) {
	url := newTestOpenAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatCompletion(`{"faces":"comet"}`, "stop"))
	})

	p, _ := NewOpenAIProvider(OpenAIConfig{APIKey: "test-key", BaseURL: url})
	_, err := p.Generate(context.Background(), Request{Schema: faceSchema()})
	var invErr *ErrInvalidResponse
	if !errors.As(err, &invErr) {
		t.Fatalf("expected ErrInvalidResponse, got: %T (%v)", err, err)
	}
}

func TestOpenAIProvider_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(error) bool
	}{
		{"rate limit", http.StatusTooManyRequests, func(err error) bool {
			var rl *ErrRateLimit
			return errors.As(err, &rl)
		}},
		{"server error", http.StatusInternalServerError, func(err error) bool {
			var unavail *ErrProviderUnavailable
			return errors.As(err, &unavail)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url := newTestOpenAIServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]any{"type": "err", "message": tt.name},
				})
			})
			p, _ := NewOpenAIProvider(OpenAIConfig{APIKey: "test-key", BaseURL: url})
			_, err := p.Generate(context.Background(), Prompt("", "test"))
			if err == nil || !tt.check(err) {
				t.Fatalf("unexpected error: %T (%v)", err, err)
			}
		})
	}
}

func TestOpenRouterProvider(t *testing.T) {
	var path, auth string
	url := newTestOpenAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		path, auth = r.URL.Path, r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatCompletion("hello", "length"))
	})

	p, err := NewOpenRouterProvider(OpenRouterConfig{APIKey: "sk-or", Model: "meta/llama", BaseURL: url})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "meta/llama" {
		t.Fatalf("expected model to pass through, got %q", p.ModelID())
	}

	resp, err := p.Generate(context.Background(), Prompt("", "hi"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StopReason != "max_tokens" {
		t.Fatalf("expected max_tokens, got %q", resp.StopReason)
	}
	if path != "/v1/chat/completions" || auth != "Bearer sk-or" {
		t.Fatalf("unexpected request: path=%q auth=%q", path, auth)
	}

	if _, err := NewOpenRouterProvider(OpenRouterConfig{}); err == nil {
		t.Fatal("expected error without API key")
	}
}

func TestOpenAIModelMapping(t *testing.T) {
	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "k", Model: "gpt-4o"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "gpt-4o" {
		t.Fatalf("expected 'gpt-4o', got %q", p.ModelID())
	}
	if _, err := NewOpenAIProvider(OpenAIConfig{}); err == nil {
		t.Fatal("expected error without API key")
	}
}
