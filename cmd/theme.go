package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/memoria/internal/themes"
)

var themeCmd = &cobra.Command{
	Use:   "theme <name>",
	Short: "Preview the deck an LLM generates for a theme",
	Example: `  memoria theme "space"
  memoria theme dinosaurs --provider openai --model gpt-4o-mini`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.Join(args, " ")

		e, err := newEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()

		p, err := e.provider(ctx)
		if err != nil {
			return fmt.Errorf("LLM provider not configured: %w", err)
		}
		c, err := themes.New(p, themes.DefaultConfig()).Generate(ctx, name)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Theme %q (%s): %d faces\n\n", name, p.ModelID(), c.Len())
		for i, f := range c.Faces() {
			fmt.Fprintf(out, "%3d  %s  %s\n", i+1, f.Glyph, f.Name)
		}
		return nil
	},
}

func init() {
	themeCmd.Flags().String("provider", "", "LLM provider: anthropic, openai, gemini, openrouter or mock")
	themeCmd.Flags().String("model", "", "Model name or alias for the provider")
}
