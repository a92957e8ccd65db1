package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/abhisek/memoria/assets"
	"github.com/abhisek/memoria/internal/config"
	"github.com/abhisek/memoria/internal/deck"
	"github.com/abhisek/memoria/internal/feedback"
	"github.com/abhisek/memoria/internal/llm"
	"github.com/abhisek/memoria/internal/logging"
	"github.com/abhisek/memoria/internal/scoring"
	"github.com/abhisek/memoria/internal/store"
	"github.com/abhisek/memoria/internal/themes"
)

// env bundles what every command needs: resolved config, a logger and,
// once opened, the store.
type env struct {
	cfg     *config.Config
	log     zerolog.Logger
	store   *store.Store
	closers []io.Closer
}

// newEnv loads configuration and sets up logging. The TUI owns the
// terminal, so its logs go to a file; every other command logs to stderr.
func newEnv(cmd *cobra.Command, logToFile bool) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg}

	var w io.Writer = logging.Console(os.Stderr)
	if logToFile {
		f, err := logging.OpenFile(cfg.Log.File)
		if err != nil {
			return nil, err
		}
		e.closers = append(e.closers, f)
		w = f
	}
	e.log, err = logging.New(cfg.Log.Level, w)
	if err != nil {
		e.Close()
		return nil, err
	}
	return e, nil
}

// openStore opens the SQLite store and registers it for Close.
func (e *env) openStore() (*store.Store, error) {
	dbPath, err := resolveDBPath(e.cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	e.log.Debug().Str("path", dbPath).Msg("store opened")
	e.store = st
	e.closers = append(e.closers, st)
	return st, nil
}

// Close releases resources in reverse order of acquisition.
func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i].Close(); err != nil {
			e.log.Warn().Err(err).Msg("close")
		}
	}
	e.closers = nil
}

func (e *env) difficulty() (deck.Difficulty, error) {
	return deck.ParseDifficulty(e.cfg.Game.Difficulty)
}

func (e *env) policy() (scoring.Policy, error) {
	return scoring.Parse(e.cfg.Scoring.Policy)
}

// notifier plays terminal cues on stderr when sound is enabled.
func (e *env) notifier() feedback.Notifier {
	if !e.cfg.Feedback.Sound {
		return feedback.Nop{}
	}
	return feedback.NewPlayer(assets.Cues(), os.Stderr, e.log)
}

// provider builds the LLM provider named by the config, or discovers one
// from the environment.
func (e *env) provider(ctx context.Context) (llm.Provider, error) {
	return llm.NewProviderFromEnv(ctx, e.cfg.LLM.Provider, e.cfg.LLM.Model, e.log)
}

// catalog returns the deck for the configured theme. A theme that cannot
// be generated falls back to the built-in animals.
func (e *env) catalog(ctx context.Context) deck.Catalog {
	theme := e.cfg.Game.Theme
	if theme == "" {
		return deck.Default()
	}
	p, err := e.provider(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
		fmt.Fprintln(os.Stderr, "Using the default deck.")
		return deck.Default()
	}
	return themes.Resolve(ctx, themes.New(p, themes.DefaultConfig()), theme, e.log)
}
