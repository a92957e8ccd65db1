package cmd

import (
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start a game right away, skipping the menu",
	Example: `  memoria play --difficulty hard
  memoria play --theme "deep sea" --policy flat`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd, tuiOptions{startBoard: true})
	},
}

func init() {
	addGameFlags(playCmd)
}
