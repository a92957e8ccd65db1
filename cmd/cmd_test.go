package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/memoria/internal/store"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_STATE_HOME", dir)
	for _, k := range []string{"MEMORIA_DB", "MEMORIA_STORE_PATH", "MEMORIA_GAME_DIFFICULTY", "MEMORIA_LOG_LEVEL"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	return dir
}

func TestLoadConfig_FlagsOverride(t *testing.T) {
	dir := isolate(t)
	dbPath := filepath.Join(dir, "games.db")

	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("db", "", "")
	cmd.Flags().String("config", "", "")
	addGameFlags(cmd)
	require.NoError(t, cmd.Flags().Parse([]string{"--difficulty", "hard", "--db", dbPath}))

	cfg, err := loadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, "hard", cfg.Game.Difficulty)
	assert.Equal(t, dbPath, cfg.Store.Path)
	assert.Equal(t, "decayed", cfg.Scoring.Policy, "unset flags keep defaults")

	got, err := resolveDBPath(cfg)
	require.NoError(t, err)
	assert.Equal(t, dbPath, got)
}

func TestLoadConfig_InvalidFlag(t *testing.T) {
	isolate(t)
	cmd := &cobra.Command{Use: "test"}
	addGameFlags(cmd)
	require.NoError(t, cmd.Flags().Parse([]string{"--policy", "generous"}))

	_, err := loadConfig(cmd)
	assert.Error(t, err)
}

func TestWriteScores(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	results := []store.Result{
		{Player: "ada", Difficulty: "hard", Score: 540, Moves: 12, Duration: 83 * time.Second, CompletedAt: at},
		{Player: "a-very-long-player-name-indeed", Difficulty: "hard", Score: 300, Moves: 20, Duration: 5 * time.Second, CompletedAt: at},
	}
	stats := []store.DifficultyStats{{Difficulty: "hard", Played: 2, BestScore: 540}}

	var buf bytes.Buffer
	writeScores(&buf, "hard", results, stats)
	out := buf.String()

	assert.Contains(t, out, "Leaderboard: HARD")
	assert.Contains(t, out, "ada")
	assert.Contains(t, out, "1:23")
	assert.Contains(t, out, "0:05")
	assert.Contains(t, out, "a-very-long-player-…")
	assert.Contains(t, out, "hard: 2 played, best 540")
	assert.Less(t, strings.Index(out, "ada"), strings.Index(out, "a-very"))
}

func TestWriteScores_Empty(t *testing.T) {
	var buf bytes.Buffer
	writeScores(&buf, "all", nil, nil)
	assert.Contains(t, buf.String(), "ALL DIFFICULTIES")
	assert.Contains(t, buf.String(), "No games recorded yet.")
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		assert.Equal(t, tt.want, confirm(strings.NewReader(tt.input), &out, "Sure?"), "input %q", tt.input)
		assert.Equal(t, "Sure? [y/N] ", out.String())
	}
}

func execute(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetIn(nil)
	})
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))
	return out.String()
}

func TestScoresAndReset(t *testing.T) {
	dir := isolate(t)
	dbPath := filepath.Join(dir, "memoria.db")

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	repo := st.ResultRepo()
	ctx := context.Background()
	require.NoError(t, repo.Append(ctx, &store.Result{Player: "ada", Difficulty: "easy", Policy: "decayed", Score: 120, Moves: 6, Duration: time.Minute}))
	require.NoError(t, repo.Append(ctx, &store.Result{Player: "bob", Difficulty: "hard", Policy: "flat", Score: 90, Moves: 14, Duration: 2 * time.Minute}))
	require.NoError(t, st.Close())

	out := execute(t, "", "scores", "easy", "--json", "--db", dbPath, "--log-level", "error")
	var got []scoreJSON
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "ada", got[0].Name)
	assert.Equal(t, int64(60000), got[0].DurationMS)

	out = execute(t, "n\n", "reset", "--db", dbPath, "--log-level", "error")
	assert.Contains(t, out, "Aborted.")

	out = execute(t, "", "reset", "--yes", "--db", dbPath, "--log-level", "error")
	assert.Contains(t, out, "All scores and settings deleted.")

	out = execute(t, "", "scores", "all", "--json=false", "--db", dbPath, "--log-level", "error")
	assert.Contains(t, out, "No games recorded yet.")
}

func TestVersion(t *testing.T) {
	out := execute(t, "", "version")
	assert.Equal(t, "memoria (devel)\n", out)
}
