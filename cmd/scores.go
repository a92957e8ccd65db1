package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/memoria/internal/deck"
	"github.com/abhisek/memoria/internal/store"
)

var scoresCmd = &cobra.Command{
	Use:       "scores [easy|medium|hard|all]",
	Short:     "Show the leaderboard",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"easy", "medium", "hard", "all"},
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := "all"
		if len(args) == 1 {
			filter = args[0]
		}
		limit, _ := cmd.Flags().GetInt("limit")
		asJSON, _ := cmd.Flags().GetBool("json")

		e, err := newEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		st, err := e.openStore()
		if err != nil {
			return err
		}
		repo := st.ResultRepo()
		results, err := repo.Top(cmd.Context(), filter, limit)
		if err != nil {
			return fmt.Errorf("load leaderboard: %w", err)
		}
		if asJSON {
			return writeScoresJSON(cmd.OutOrStdout(), results)
		}
		stats, err := repo.Stats(cmd.Context())
		if err != nil {
			return fmt.Errorf("load stats: %w", err)
		}
		writeScores(cmd.OutOrStdout(), filter, results, stats)
		return nil
	},
}

func init() {
	scoresCmd.Flags().IntP("limit", "n", store.DefaultTopLimit, "Number of results to show")
	scoresCmd.Flags().Bool("json", false, "Print results as JSON")
}

// writeScores prints a ranked table followed by per-difficulty totals.
func writeScores(w io.Writer, filter string, results []store.Result, stats []store.DifficultyStats) {
	title := "ALL DIFFICULTIES"
	if d, err := deck.ParseDifficulty(filter); err == nil {
		title = d.DisplayName()
	}
	fmt.Fprintf(w, "Leaderboard: %s\n\n", title)

	if len(results) == 0 {
		fmt.Fprintln(w, "No games recorded yet.")
		return
	}

	fmt.Fprintf(w, "%-4s %-20s %-8s %7s %6s %7s  %s\n", "#", "NAME", "LEVEL", "SCORE", "MOVES", "TIME", "DATE")
	for i, r := range results {
		fmt.Fprintf(w, "%-4d %-20s %-8s %7d %6d %7s  %s\n",
			i+1, clip(r.Player, 20), r.Difficulty, r.Score, r.Moves,
			clockTime(r.Duration), r.CompletedAt.Local().Format("2006-01-02"))
	}

	if len(stats) > 0 {
		fmt.Fprintln(w)
		for _, s := range stats {
			fmt.Fprintf(w, "%s: %d played, best %d\n", s.Difficulty, s.Played, s.BestScore)
		}
	}
}

type scoreJSON struct {
	Name        string    `json:"name"`
	Difficulty  string    `json:"difficulty"`
	Policy      string    `json:"policy"`
	Score       int       `json:"score"`
	Moves       int       `json:"moves"`
	DurationMS  int64     `json:"duration_ms"`
	CompletedAt time.Time `json:"completed_at"`
}

func writeScoresJSON(w io.Writer, results []store.Result) error {
	out := make([]scoreJSON, 0, len(results))
	for _, r := range results {
		out = append(out, scoreJSON{
			Name:        r.Player,
			Difficulty:  r.Difficulty,
			Policy:      r.Policy,
			Score:       r.Score,
			Moves:       r.Moves,
			DurationMS:  r.Duration.Milliseconds(),
			CompletedAt: r.CompletedAt,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func clockTime(d time.Duration) string {
	secs := int(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
