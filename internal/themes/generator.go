// Package themes turns a free-text theme into a deck catalog with the help
// of an LLM.
package themes

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/abhisek/memoria/internal/deck"
	"github.com/abhisek/memoria/internal/llm"
)

const systemPrompt = `You design card faces for a memory matching game.
Given a theme, list distinct, easily recognisable things that belong to it.
Each face has a short lower-case name and a single emoji glyph.
Names and glyphs must not repeat. Prefer concrete nouns over abstract ideas.`

// Config tunes theme generation.
type Config struct {
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// DefaultConfig returns the generation settings used by the CLI and TUI.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   800,
		Temperature: 0.7,
		Timeout:     30 * time.Second,
	}
}

// Generator asks an LLM provider for themed catalogs.
type Generator struct {
	provider llm.Provider
	config   Config
}

// New creates a Generator backed by provider.
func New(provider llm.Provider, cfg Config) *Generator {
	return &Generator{provider: provider, config: cfg}
}

type catalogOutput struct {
	Faces []deck.Face `json:"faces"`
}

// Generate returns a catalog of faces for theme. The provider's output has
// already been checked against CatalogSchema; deck.NewCatalog then enforces
// unique names.
func (g *Generator) Generate(ctx context.Context, theme string) (deck.Catalog, error) {
	theme = strings.TrimSpace(theme)
	if theme == "" {
		return deck.Catalog{}, fmt.Errorf("empty theme")
	}

	if g.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.config.Timeout)
		defer cancel()
	}
	ctx = llm.WithPurpose(ctx, "theme")

	req := llm.Prompt(systemPrompt, fmt.Sprintf("Theme: %s\nReturn between %d and %d faces.", theme, minFaces, maxFaces))
	req.Schema = CatalogSchema
	req.MaxTokens = g.config.MaxTokens
	req.Temperature = g.config.Temperature

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return deck.Catalog{}, fmt.Errorf("generate theme %q: %w", theme, err)
	}

	var out catalogOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return deck.Catalog{}, fmt.Errorf("parse theme %q: %w", theme, err)
	}
	c, err := deck.NewCatalog(out.Faces)
	if err != nil {
		return deck.Catalog{}, fmt.Errorf("theme %q: %w", theme, err)
	}
	return c, nil
}

// Resolve returns the catalog for theme, or the built-in catalog when the
// theme is empty, no generator is configured or generation fails.
func Resolve(ctx context.Context, gen *Generator, theme string, log zerolog.Logger) deck.Catalog {
	if strings.TrimSpace(theme) == "" || gen == nil {
		return deck.Default()
	}
	c, err := gen.Generate(ctx, theme)
	if err != nil {
		log.Warn().Err(err).Str("theme", theme).Msg("falling back to default catalog")
		return deck.Default()
	}
	log.Info().Str("theme", theme).Int("faces", c.Len()).Msg("theme catalog ready")
	return c
}
