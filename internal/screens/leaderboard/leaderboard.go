// Package leaderboard lists the best recorded games.
package leaderboard

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/memoria/internal/deck"
	"github.com/abhisek/memoria/internal/screen"
	"github.com/abhisek/memoria/internal/store"
	"github.com/abhisek/memoria/internal/ui/layout"
	"github.com/abhisek/memoria/internal/ui/theme"
)

// FilterAll shows every difficulty.
const FilterAll = "all"

var filters = []string{FilterAll, string(deck.Easy), string(deck.Medium), string(deck.Hard)}

type loadedMsg struct {
	filter  string
	results []store.Result
	stats   []store.DifficultyStats
	err     error
}

// LeaderboardScreen displays the top results, filterable by difficulty.
type LeaderboardScreen struct {
	repo    store.ResultRepo
	filter  string
	results []store.Result
	stats   []store.DifficultyStats
	loaded  bool
	errMsg  string
}

var _ screen.Screen = (*LeaderboardScreen)(nil)
var _ screen.KeyHintProvider = (*LeaderboardScreen)(nil)

// New creates a LeaderboardScreen. An empty or unknown filter shows all
// difficulties.
func New(repo store.ResultRepo, filter string) *LeaderboardScreen {
	if !validFilter(filter) {
		filter = FilterAll
	}
	return &LeaderboardScreen{repo: repo, filter: filter}
}

func validFilter(f string) bool {
	for _, v := range filters {
		if v == f {
			return true
		}
	}
	return false
}

func (s *LeaderboardScreen) Init() tea.Cmd {
	return s.load()
}

func (s *LeaderboardScreen) load() tea.Cmd {
	repo, filter := s.repo, s.filter
	return func() tea.Msg {
		if repo == nil {
			return loadedMsg{filter: filter}
		}
		ctx := context.Background()
		results, err := repo.Top(ctx, filter, store.DefaultTopLimit)
		if err != nil {
			return loadedMsg{filter: filter, err: err}
		}
		stats, err := repo.Stats(ctx)
		if err != nil {
			return loadedMsg{filter: filter, results: results, err: err}
		}
		return loadedMsg{filter: filter, results: results, stats: stats}
	}
}

func (s *LeaderboardScreen) Title() string {
	return "Leaderboard"
}

func (s *LeaderboardScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab", Description: "Difficulty"},
		{Key: "Esc", Description: "Back"},
	}
}

// Filter returns the difficulty currently shown.
func (s *LeaderboardScreen) Filter() string {
	return s.filter
}

func (s *LeaderboardScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.filter != s.filter {
			return s, nil
		}
		s.loaded = true
		s.errMsg = ""
		if msg.err != nil {
			s.errMsg = msg.err.Error()
		}
		s.results = msg.results
		s.stats = msg.stats
		return s, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "tab", "right", "l":
			s.cycle(1)
			return s, s.load()
		case "shift+tab", "left", "h":
			s.cycle(-1)
			return s, s.load()
		}
	}
	return s, nil
}

func (s *LeaderboardScreen) cycle(step int) {
	i := 0
	for j, f := range filters {
		if f == s.filter {
			i = j
		}
	}
	i = (i + step + len(filters)) % len(filters)
	s.filter = filters[i]
	s.loaded = false
}

func (s *LeaderboardScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.renderTabs()))
	b.WriteString("\n\n")

	center := func(style lipgloss.Style, text string) string {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(text))
	}

	switch {
	case s.errMsg != "":
		b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Error), "Error: "+s.errMsg))
		return b.String()
	case !s.loaded:
		b.WriteString(center(theme.Hint, "Loading scores..."))
		return b.String()
	case len(s.results) == 0:
		b.WriteString(center(theme.Hint.Italic(true), "No games recorded yet. Go play!"))
		return b.String()
	}

	header := fmt.Sprintf("%-4s %-16s %-7s %6s %6s %6s", "#", "PLAYER", "LEVEL", "SCORE", "MOVES", "TIME")
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.TextDim).Bold(true), header))
	b.WriteString("\n")
	for i, r := range s.results {
		secs := int(r.Duration.Seconds())
		line := fmt.Sprintf("%-4d %-16s %-7s %6d %6d %3d:%02d",
			i+1, truncate(r.Player, 16), r.Difficulty, r.Score, r.Moves, secs/60, secs%60)
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == 0 {
			style = style.Foreground(theme.Gold).Bold(true)
		}
		b.WriteString(center(style, line))
		b.WriteString("\n")
	}

	if len(s.stats) > 0 {
		b.WriteString("\n")
		parts := make([]string, 0, len(s.stats))
		for _, st := range s.stats {
			parts = append(parts, fmt.Sprintf("%s: %d played, best %d", st.Difficulty, st.Played, st.BestScore))
		}
		b.WriteString(center(theme.Hint, strings.Join(parts, "   ")))
	}
	return b.String()
}

func (s *LeaderboardScreen) renderTabs() string {
	tabs := make([]string, 0, len(filters))
	for _, f := range filters {
		label := " " + strings.ToUpper(f) + " "
		if f == s.filter {
			tabs = append(tabs, theme.Selected.Render(label))
		} else {
			tabs = append(tabs, theme.Unselected.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
