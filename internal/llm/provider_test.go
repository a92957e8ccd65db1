package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestMockProvider_ReturnsCannedResponses(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"a":1}`), Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockJSON(map[string]int{"b": 2}),
	)

	resp1, err := mock.Generate(context.Background(), Prompt("", "first"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp1.Content) != `{"a":1}` {
		t.Fatalf("expected {\"a\":1}, got %s", resp1.Content)
	}
	if resp1.Usage.InputTokens != 10 {
		t.Fatalf("expected 10 input tokens, got %d", resp1.Usage.InputTokens)
	}
	if resp1.StopReason != "end" {
		t.Fatalf("expected stop reason 'end', got %q", resp1.StopReason)
	}

	resp2, err := mock.Generate(context.Background(), Prompt("", "second"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp2.Content) != `{"b":2}` {
		t.Fatalf("expected {\"b\":2}, got %s", resp2.Content)
	}
}

func TestMockProvider_EmptyQueueReturnsError(t *testing.T) {
	_, err := NewMockProvider().Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got: %T", err)
	}
}

func TestMockProvider_RecordsCalls(t *testing.T) {
	mock := NewMockProvider()
	mock.AddResponse(MockResponse{Content: json.RawMessage(`{}`)})

	_, _ = mock.Generate(context.Background(), Prompt("sys", "hello"))

	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
	if mock.Calls[0].System != "sys" {
		t.Fatalf("expected system 'sys', got %q", mock.Calls[0].System)
	}
	if got := mock.Calls[0].Messages[0]; got.Role != RoleUser || got.Content != "hello" {
		t.Fatalf("unexpected message: %+v", got)
	}
}

func TestMockProvider_ValidatesAgainstSchema(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{"faces":[]}`)})
	_, err := mock.Generate(context.Background(), Request{Schema: faceSchema()})
	var invErr *ErrInvalidResponse
	if !errors.As(err, &invErr) {
		t.Fatalf("expected ErrInvalidResponse, got: %v", err)
	}
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != "unknown" {
		t.Fatalf("expected 'unknown', got %q", p)
	}
	ctx = WithPurpose(ctx, "theme")
	if p := PurposeFrom(ctx); p != "theme" {
		t.Fatalf("expected 'theme', got %q", p)
	}
}

func TestLoggingProvider(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)
	mock := NewMockProvider(MockResponse{
		Content: json.RawMessage(`{}`),
		Usage:   Usage{InputTokens: 12, OutputTokens: 4},
	}, down())
	p := WithLogging(mock, "mock", log)

	ctx := WithPurpose(context.Background(), "theme")
	if _, err := p.Generate(ctx, Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := p.Generate(ctx, Request{}); err == nil {
		t.Fatal("expected error")
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d: %s", len(lines), buf.String())
	}

	var ok map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &ok); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if ok["level"] != "info" || ok["purpose"] != "theme" || ok["provider"] != "mock" {
		t.Fatalf("unexpected log line: %s", lines[0])
	}
	if ok["input_tokens"] != float64(12) {
		t.Fatalf("expected input_tokens 12, got %v", ok["input_tokens"])
	}

	var failed map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &failed); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if failed["level"] != "warn" || failed["error"] == nil {
		t.Fatalf("unexpected log line: %s", lines[1])
	}
	if p.ModelID() != "mock" {
		t.Fatalf("expected 'mock', got %q", p.ModelID())
	}
}

func TestLookupCost(t *testing.T) {
	c := LookupCost("gpt-4o-mini")
	if c == nil {
		t.Fatal("expected pricing for gpt-4o-mini")
	}
	if got := c.Cost(1_000_000, 1_000_000); math.Abs(got-0.75) > 1e-9 {
		t.Fatalf("expected 0.75, got %v", got)
	}
	if LookupCost("no-such-model") != nil {
		t.Fatal("expected nil for unknown model")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"anthropic without key", Config{Provider: "anthropic"}, true},
		{"anthropic with key", Config{Provider: "anthropic", Anthropic: AnthropicConfig{APIKey: "sk-test"}}, false},
		{"openai without key", Config{Provider: "openai"}, true},
		{"openai with key", Config{Provider: "openai", OpenAI: OpenAIConfig{APIKey: "sk-test"}}, false},
		{"openrouter with key", Config{Provider: "openrouter", OpenRouter: OpenRouterConfig{APIKey: "sk-or"}}, false},
		{"gemini without key", Config{Provider: "gemini"}, true},
		{"mock needs no key", Config{Provider: "mock"}, false},
		{"unknown provider", Config{Provider: "unknown"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Override(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Override("", "")
	if cfg.Provider != "anthropic" || cfg.Anthropic.Model != "claude-haiku" {
		t.Fatalf("empty override changed config: %+v", cfg)
	}

	cfg.Override("openai", "gpt-4o")
	if cfg.Provider != "openai" || cfg.OpenAI.Model != "gpt-4o" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Anthropic.Model != "claude-haiku" {
		t.Fatalf("other providers should be untouched, got %q", cfg.Anthropic.Model)
	}
}

func clearProviderEnv(t *testing.T) {
	t.Helper()
	for _, l := range envLookups {
		t.Setenv(l.name, "")
	}
	for _, k := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(k, "")
	}
}

func TestConfigFromEnv(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("MEMORIA_LLM_PROVIDER", "openrouter")
	t.Setenv("MEMORIA_OPENROUTER_API_KEY", "sk-or")
	t.Setenv("MEMORIA_OPENROUTER_MODEL", "meta/llama")

	cfg := ConfigFromEnv()
	if cfg.Provider != "openrouter" || cfg.OpenRouter.APIKey != "sk-or" || cfg.OpenRouter.Model != "meta/llama" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Retry.MaxAttempts != 3 {
		t.Fatalf("expected default retry config, got %+v", cfg.Retry)
	}
}

func TestDiscoverConfig(t *testing.T) {
	clearProviderEnv(t)
	if _, ok := DiscoverConfig(); ok {
		t.Fatal("expected no provider without keys")
	}

	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
	t.Setenv("OPENAI_API_KEY", "sk-oai")
	cfg, ok := DiscoverConfig()
	if !ok {
		t.Fatal("expected a provider")
	}
	if cfg.Provider != "openai" || cfg.OpenAI.APIKey != "sk-oai" {
		t.Fatalf("expected openai to win over anthropic, got %+v", cfg)
	}
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Provider: "mock"}, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "mock" {
		t.Fatalf("expected mock provider, got %q", p.ModelID())
	}

	if _, err := NewProvider(context.Background(), Config{Provider: "openai"}, zerolog.Nop()); err == nil {
		t.Fatal("expected error for missing key")
	}

	cfg := DefaultConfig()
	cfg.Provider = "openrouter"
	cfg.OpenRouter.APIKey = "sk-or"
	p, err = NewProvider(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := p.(*RetryProvider); !ok {
		t.Fatalf("expected retry wrapper, got %T", p)
	}
	if p.ModelID() != cfg.OpenRouter.Model {
		t.Fatalf("expected %q, got %q", cfg.OpenRouter.Model, p.ModelID())
	}
}

func TestNewProviderFromEnv(t *testing.T) {
	clearProviderEnv(t)
	if _, err := NewProviderFromEnv(context.Background(), "", "", zerolog.Nop()); err == nil {
		t.Fatal("expected error with no keys configured")
	}

	p, err := NewProviderFromEnv(context.Background(), "mock", "", zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "mock" {
		t.Fatalf("expected mock, got %q", p.ModelID())
	}

	t.Setenv("GEMINI_API_KEY", "g-key")
	cfg, _ := DiscoverConfig()
	cfg.Override("", "gemini-pro")
	if cfg.Gemini.Model != "gemini-pro" {
		t.Fatalf("expected override to reach gemini, got %q", cfg.Gemini.Model)
	}
}
