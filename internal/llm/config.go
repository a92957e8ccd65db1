package llm

import (
	"fmt"
	"os"
	"time"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider is one of "anthropic", "openai", "gemini", "openrouter", "mock".
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig
}

type AnthropicConfig struct {
	APIKey string
	Model  string
}

// OpenAIConfig also serves OpenAI-compatible APIs through BaseURL.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type OpenRouterConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a Config tuned for short theme prompts.
func DefaultConfig() Config {
	return Config{
		Provider:   "anthropic",
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenRouterConfig{Model: "google/gemini-2.0-flash-exp"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 500 * time.Millisecond,
			MaxWait:     5 * time.Second,
			Multiplier:  2.0,
		},
	}
}

// envLookups lists the MEMORIA_* variables ConfigFromEnv reads.
var envLookups = []struct {
	name string
	set  func(*Config, string)
}{
	{"MEMORIA_LLM_PROVIDER", func(c *Config, v string) { c.Provider = v }},
	{"MEMORIA_ANTHROPIC_API_KEY", func(c *Config, v string) { c.Anthropic.APIKey = v }},
	{"MEMORIA_ANTHROPIC_MODEL", func(c *Config, v string) { c.Anthropic.Model = v }},
	{"MEMORIA_OPENAI_API_KEY", func(c *Config, v string) { c.OpenAI.APIKey = v }},
	{"MEMORIA_OPENAI_MODEL", func(c *Config, v string) { c.OpenAI.Model = v }},
	{"MEMORIA_OPENAI_BASE_URL", func(c *Config, v string) { c.OpenAI.BaseURL = v }},
	{"MEMORIA_GEMINI_API_KEY", func(c *Config, v string) { c.Gemini.APIKey = v }},
	{"MEMORIA_GEMINI_MODEL", func(c *Config, v string) { c.Gemini.Model = v }},
	{"MEMORIA_OPENROUTER_API_KEY", func(c *Config, v string) { c.OpenRouter.APIKey = v }},
	{"MEMORIA_OPENROUTER_MODEL", func(c *Config, v string) { c.OpenRouter.Model = v }},
}

// ConfigFromEnv builds a Config from MEMORIA_* variables over defaults.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	for _, l := range envLookups {
		if v := os.Getenv(l.name); v != "" {
			l.set(&cfg, v)
		}
	}
	return cfg
}

// DiscoverConfig probes the vendors' standard API key variables in
// priority order (Gemini, OpenAI, Anthropic, OpenRouter) and returns a
// Config for the first one found.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()

	switch {
	case os.Getenv("GEMINI_API_KEY") != "":
		cfg.Provider = "gemini"
		cfg.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	case os.Getenv("OPENAI_API_KEY") != "":
		cfg.Provider = "openai"
		cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	case os.Getenv("ANTHROPIC_API_KEY") != "":
		cfg.Provider = "anthropic"
		cfg.Anthropic.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	case os.Getenv("OPENROUTER_API_KEY") != "":
		cfg.Provider = "openrouter"
		cfg.OpenRouter.APIKey = os.Getenv("OPENROUTER_API_KEY")
	default:
		return Config{}, false
	}
	return cfg, true
}

// Override applies a provider and model chosen in the application config.
// Empty values leave the current setting.
func (c *Config) Override(provider, model string) {
	if provider != "" {
		c.Provider = provider
	}
	if model == "" {
		return
	}
	switch c.Provider {
	case "anthropic":
		c.Anthropic.Model = model
	case "openai":
		c.OpenAI.Model = model
	case "gemini":
		c.Gemini.Model = model
	case "openrouter":
		c.OpenRouter.Model = model
	}
}

// Validate checks that the selected provider has its required API key set.
func (c Config) Validate() error {
	var key, env string
	switch c.Provider {
	case "anthropic":
		key, env = c.Anthropic.APIKey, "MEMORIA_ANTHROPIC_API_KEY"
	case "openai":
		key, env = c.OpenAI.APIKey, "MEMORIA_OPENAI_API_KEY"
	case "gemini":
		key, env = c.Gemini.APIKey, "MEMORIA_GEMINI_API_KEY"
	case "openrouter":
		key, env = c.OpenRouter.APIKey, "MEMORIA_OPENROUTER_API_KEY"
	case "mock":
		return nil
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if key == "" {
		return fmt.Errorf("%s is required for the %s provider", env, c.Provider)
	}
	return nil
}
