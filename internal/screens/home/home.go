// Package home is the main menu.
package home

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/memoria/internal/deck"
	"github.com/abhisek/memoria/internal/router"
	"github.com/abhisek/memoria/internal/screen"
	"github.com/abhisek/memoria/internal/screens/board"
	"github.com/abhisek/memoria/internal/screens/leaderboard"
	"github.com/abhisek/memoria/internal/store"
	"github.com/abhisek/memoria/internal/ui/components"
	"github.com/abhisek/memoria/internal/ui/layout"
)

type statsLoadedMsg struct {
	stats []store.DifficultyStats
}

// HomeScreen is the main menu of the application.
type HomeScreen struct {
	opts       board.Options
	difficulty deck.Difficulty
	menu       components.Menu
	stats      []store.DifficultyStats

	// game is the last board started from here; the player may change its
	// difficulty in play.
	game *board.BoardScreen
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)

// New creates a HomeScreen. Games started from the menu use opts and the
// selected difficulty.
func New(opts board.Options, d deck.Difficulty) *HomeScreen {
	if !d.Valid() {
		d = deck.Easy
	}
	h := &HomeScreen{opts: opts, difficulty: d}

	h.menu = components.NewMenu([]components.MenuItem{
		components.StaticItem("PLAY", func() tea.Cmd {
			next := h.NewGame()
			return func() tea.Msg { return router.PushScreenMsg{Screen: next} }
		}),
		{
			Label: func() string { return "DIFFICULTY: " + h.difficulty.DisplayName() },
			Action: func() tea.Cmd {
				h.difficulty = h.difficulty.Next()
				return nil
			},
		},
		components.StaticItem("LEADERBOARD", func() tea.Cmd {
			next := leaderboard.New(h.opts.Results, string(h.difficulty))
			return func() tea.Msg { return router.PushScreenMsg{Screen: next} }
		}),
		components.StaticItem("QUIT", func() tea.Cmd {
			return tea.Quit
		}),
	})
	return h
}

// NewGame deals a board at the selected difficulty. The difficulty the
// board ends on is picked up when home resumes.
func (h *HomeScreen) NewGame() *board.BoardScreen {
	h.game = board.New(h.opts, h.difficulty)
	return h.game
}

// Difficulty returns the difficulty new games start at.
func (h *HomeScreen) Difficulty() deck.Difficulty {
	return h.difficulty
}

func (h *HomeScreen) Init() tea.Cmd {
	repo := h.opts.Results
	if repo == nil {
		return nil
	}
	log := h.opts.Log
	return func() tea.Msg {
		stats, err := repo.Stats(context.Background())
		if err != nil {
			log.Warn().Err(err).Msg("failed to load stats")
		}
		return statsLoadedMsg{stats: stats}
	}
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case statsLoadedMsg:
		h.stats = msg.stats
		return h, nil
	case router.ScreenResumedMsg:
		if h.game != nil {
			h.difficulty = h.game.Engine().Difficulty()
			h.game = nil
		}
		// Scores may have changed while a game was on top.
		return h, h.Init()
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	// height is the content area; add back header and footer.
	termHeight := height + layout.HeaderHeight + layout.FooterHeight
	compact := layout.IsCompactHeight(termHeight) || layout.IsCompactWidth(width)

	cw := components.ContentWidth(width)

	sections := []string{renderTitle(cw, compact)}
	if !compact {
		variant := MascotIdle
		if len(h.stats) > 0 {
			variant = MascotCelebrating
		}
		sections = append(sections, renderMascotBox(variant, cw))
	}
	sections = append(sections,
		renderStatsBar(h.stats, cw, compact),
		centerBlock(h.menu.View(buttonWidth), cw))

	return components.CabinetFrame(strings.Join(sections, "\n\n"), width, height)
}
