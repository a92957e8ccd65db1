package llm

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// NewProvider creates a Provider from configuration, wrapped so that the
// caller talks to retry, which talks to logging, which talks to the vendor.
func NewProvider(ctx context.Context, cfg Config, log zerolog.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "mock":
		return NewMockProvider(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	return WithRetry(WithLogging(base, cfg.Provider, log), cfg.Retry, log), nil
}

// NewProviderFromEnv builds a provider from MEMORIA_* variables, falling
// back to the vendors' standard API key variables when no provider is
// configured explicitly. provider and model, when non-empty, override the
// environment.
func NewProviderFromEnv(ctx context.Context, provider, model string, log zerolog.Logger) (Provider, error) {
	cfg := ConfigFromEnv()
	if os.Getenv("MEMORIA_LLM_PROVIDER") == "" && provider == "" {
		if discovered, ok := DiscoverConfig(); ok {
			cfg = discovered
		}
	}
	cfg.Override(provider, model)
	return NewProvider(ctx, cfg, log)
}
