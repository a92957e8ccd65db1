package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/memoria/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Host games over HTTP and WebSocket",
	Long: "Serve exposes the game engine as a JSON API. Each client creates a\n" +
		"session, flips cards over HTTP or a WebSocket, and posts finished games\n" +
		"to the shared leaderboard.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		e, err := newEnv(cmd, false)
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
		ttl, _ := cmd.Flags().GetDuration("session-ttl")

		srv := server.New(server.Options{
			Results:      st.ResultRepo(),
			Catalog:      e.catalog(ctx),
			Policy:       policy,
			ResolveDelay: e.cfg.Game.ResolveDelay,
			Difficulty:   d,
			SessionTTL:   ttl,
			Log:          e.log,
		})
		return srv.Run(ctx, e.cfg.Server.Addr)
	},
}

func init() {
	addGameFlags(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (default :8080)")
	serveCmd.Flags().Duration("session-ttl", server.DefaultSessionTTL, "Drop sessions idle for this long")
}
