package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete saved scores and settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes && !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "Delete all saved scores and settings?") {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}

		e, err := newEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		st, err := e.openStore()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if err := st.ResultRepo().Clear(ctx); err != nil {
			return fmt.Errorf("clear results: %w", err)
		}
		if err := st.SettingsRepo().Clear(ctx); err != nil {
			return fmt.Errorf("clear settings: %w", err)
		}
		e.log.Info().Msg("scores and settings cleared")
		fmt.Fprintln(cmd.OutOrStdout(), "All scores and settings deleted.")
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}

// confirm asks a yes/no question; anything but y or yes is a no.
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N] ", question)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
