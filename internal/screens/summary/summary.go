// Package summary shows the result of a finished game and records it on
// the leaderboard.
package summary

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/rs/zerolog"

	"github.com/abhisek/memoria/internal/game"
	"github.com/abhisek/memoria/internal/router"
	"github.com/abhisek/memoria/internal/screen"
	"github.com/abhisek/memoria/internal/screens/leaderboard"
	"github.com/abhisek/memoria/internal/store"
	"github.com/abhisek/memoria/internal/ui/components"
	"github.com/abhisek/memoria/internal/ui/layout"
	"github.com/abhisek/memoria/internal/ui/theme"
)

// MaxNameLength bounds player names on the leaderboard.
const MaxNameLength = 32

const saveTimeout = 5 * time.Second

// Input is everything the summary needs from the finished game.
type Input struct {
	Snapshot game.Snapshot
	Results  store.ResultRepo
	Player   string
	Log      zerolog.Logger
}

type savedMsg struct {
	err error
}

// SummaryScreen displays the final score and asks for a name to save it
// under.
type SummaryScreen struct {
	in     Input
	name   components.TextInput
	saving bool
	saved  bool
	errMsg string
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a SummaryScreen.
func New(in Input) *SummaryScreen {
	name := components.NewTextInput("your name", MaxNameLength)
	name.SetValue(in.Player)
	return &SummaryScreen{in: in, name: name}
}

func (s *SummaryScreen) Init() tea.Cmd {
	if s.in.Results == nil {
		return nil
	}
	return s.name.Init()
}

func (s *SummaryScreen) Title() string {
	return "Game Over"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	if s.saved || s.in.Results == nil {
		hints := []layout.KeyHint{{Key: "Enter", Description: "Continue"}}
		if s.in.Results != nil {
			hints = append(hints, layout.KeyHint{Key: "L", Description: "Leaderboard"})
		}
		return hints
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Save score"},
		{Key: "Esc", Description: "Skip"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case savedMsg:
		s.saving = false
		if msg.err != nil {
			s.errMsg = msg.err.Error()
			return s, nil
		}
		s.saved = true
		s.name.Submit(true)
		return s, nil

	case tea.KeyPressMsg:
		key := msg.String()
		if s.saved || s.in.Results == nil {
			switch key {
			case "enter":
				return s, func() tea.Msg { return router.PopScreenMsg{} }
			case "l":
				if s.in.Results != nil {
					next := leaderboard.New(s.in.Results, string(s.in.Snapshot.Difficulty))
					return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
				}
			}
			return s, nil
		}
		if key == "enter" {
			return s, s.save()
		}
	}

	if s.saved || s.saving || s.in.Results == nil {
		return s, nil
	}
	var cmd tea.Cmd
	s.name, cmd = s.name.Update(msg)
	return s, cmd
}

func (s *SummaryScreen) save() tea.Cmd {
	if s.saving {
		return nil
	}
	player := s.name.Value()
	if player == "" {
		s.errMsg = "Enter a name to save your score."
		return nil
	}
	s.errMsg = ""
	s.saving = true

	snap := s.in.Snapshot
	res := &store.Result{
		Player:      player,
		Difficulty:  string(snap.Difficulty),
		Policy:      snap.Policy,
		Score:       snap.Score,
		Moves:       snap.Moves,
		Duration:    snap.Elapsed(snap.FinishedAt),
		CompletedAt: snap.FinishedAt,
	}
	repo, log := s.in.Results, s.in.Log
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		if err := repo.Append(ctx, res); err != nil {
			log.Error().Err(err).Str("player", res.Player).Msg("failed to save result")
			return savedMsg{err: err}
		}
		log.Info().Str("player", res.Player).Int("score", res.Score).Str("difficulty", res.Difficulty).Msg("result saved")
		return savedMsg{}
	}
}

func (s *SummaryScreen) View(width, height int) string {
	snap := s.in.Snapshot
	center := func(style lipgloss.Style, text string) string {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(text))
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(center(theme.Title, "All pairs found!"))
	b.WriteString("\n\n")

	stats := fmt.Sprintf("Score: %d        Moves: %d        Time: %s",
		snap.Score, snap.Moves, formatDuration(snap.Elapsed(snap.FinishedAt)))
	b.WriteString(center(theme.Body, stats))
	b.WriteString("\n")
	b.WriteString(center(theme.Hint, fmt.Sprintf("%s · %s scoring", snap.Difficulty.DisplayName(), snap.Policy)))
	b.WriteString("\n\n")

	if s.in.Results == nil {
		b.WriteString(center(theme.Hint, "Scores are not being recorded."))
		return b.String()
	}

	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.TextDim), "Name"))
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.name.View()))
	b.WriteString("\n\n")

	switch {
	case s.errMsg != "":
		b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Error), s.errMsg))
	case s.saving:
		b.WriteString(center(theme.Hint, "Saving..."))
	case s.saved:
		b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Success), "Score saved!"))
	}
	return b.String()
}

func formatDuration(d time.Duration) string {
	secs := int(d.Seconds())
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
