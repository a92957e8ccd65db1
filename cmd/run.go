package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/memoria/internal/app"
	"github.com/abhisek/memoria/internal/screens/board"
)

type tuiOptions struct {
	skipWelcome bool
	startBoard  bool
}

// runTUI opens the store, builds dependencies, and launches the TUI.
func runTUI(cmd *cobra.Command, o tuiOptions) error {
	ctx := cmd.Context()

	e, err := newEnv(cmd, true)
	if err != nil {
		return err
	}
	defer e.Close()

	st, err := e.openStore()
	if err != nil {
		return err
	}
	d, err := e.difficulty()
	if err != nil {
		return err
	}
	policy, err := e.policy()
	if err != nil {
		return err
	}

	opts := app.Options{
		Board: board.Options{
			Catalog:      e.catalog(ctx),
			Policy:       policy,
			ResolveDelay: e.cfg.Game.ResolveDelay,
			Feedback:     e.notifier(),
			Results:      st.ResultRepo(),
			Player:       os.Getenv("USER"),
			Log:          e.log,
		},
		Difficulty:  d,
		Settings:    st.SettingsRepo(),
		SkipWelcome: o.skipWelcome,
		StartBoard:  o.startBoard,
		Log:         e.log,
	}

	e.log.Info().
		Str("difficulty", string(d)).
		Str("policy", policy.Name()).
		Msg("starting tui")
	if err := app.Run(ctx, opts); err != nil {
		return fmt.Errorf("memoria: %w", err)
	}
	return nil
}
