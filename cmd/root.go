package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/abhisek/memoria/internal/config"
	"github.com/abhisek/memoria/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "memoria",
	Short: "Memory matching card game for the terminal",
	Long: "Memoria flips a grid of face-down cards and asks you to find every pair.\n" +
		"Scores are kept in a local SQLite database.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		skip, _ := cmd.Flags().GetBool("no-welcome")
		return runTUI(cmd, tuiOptions{skipWelcome: skip})
	},
}

// Execute runs the command tree with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides MEMORIA_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: trace, debug, info, warn or error")

	addGameFlags(rootCmd)
	rootCmd.Flags().Bool("no-welcome", false, "Skip the welcome screen")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(themeCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(updateCmd)
}

// addGameFlags registers the flags that shape a new game.
func addGameFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("difficulty", "d", "", "Starting difficulty: easy, medium or hard")
	cmd.Flags().String("theme", "", "Generate a themed deck with the configured LLM provider")
	cmd.Flags().String("policy", "", "Scoring policy: decayed, decayed-penalty, flat or flat-penalty")
}

// configFlags maps config keys to the flags that override them. Commands
// that do not define a flag simply leave the key to the other sources.
var configFlags = map[string]string{
	"store.path":      "db",
	"log.level":       "log-level",
	"game.difficulty": "difficulty",
	"game.theme":      "theme",
	"scoring.policy":  "policy",
	"server.addr":     "addr",
	"llm.provider":    "provider",
	"llm.model":       "model",
}

// loadConfig resolves configuration for cmd, letting its flags win.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := make(map[string]*pflag.Flag, len(configFlags))
	for key, name := range configFlags {
		if f := cmd.Flags().Lookup(name); f != nil {
			flags[key] = f
		}
	}
	path, _ := cmd.Flags().GetString("config")
	return config.Load(config.LoadOptions{ConfigFile: path, Flags: flags})
}

// resolveDBPath returns the configured database path (--db, then
// MEMORIA_STORE_PATH or the config file), then MEMORIA_DB, then the default
// XDG path.
func resolveDBPath(cfg *config.Config) (string, error) {
	if p := cfg.Store.Path; p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}
