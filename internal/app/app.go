// Package app hosts the Bubble Tea program: a screen router inside a
// header and footer frame.
package app

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog"

	"github.com/abhisek/memoria/internal/deck"
	"github.com/abhisek/memoria/internal/feedback"
	"github.com/abhisek/memoria/internal/router"
	"github.com/abhisek/memoria/internal/screen"
	"github.com/abhisek/memoria/internal/screens/board"
	"github.com/abhisek/memoria/internal/screens/home"
	"github.com/abhisek/memoria/internal/screens/welcome"
	"github.com/abhisek/memoria/internal/store"
	"github.com/abhisek/memoria/internal/ui/layout"
)

// Options configures the TUI.
type Options struct {
	Board      board.Options
	Difficulty deck.Difficulty

	// Settings records whether the welcome cue has played. Without it the
	// cue is skipped.
	Settings feedback.FlagStore

	SkipWelcome bool
	// StartBoard opens a game on top of the home screen.
	StartBoard bool

	Log zerolog.Logger
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	width  int
	height int
}

func newAppModel(ctx context.Context, opts Options) AppModel {
	homeScreen := home.New(opts.Board, opts.Difficulty)

	var first screen.Screen = homeScreen
	if !opts.SkipWelcome && !opts.StartBoard {
		first = welcome.New(func() screen.Screen { return homeScreen }, greeter(ctx, opts))
	}

	r := router.New(first)
	if opts.StartBoard {
		r.Push(homeScreen.NewGame())
	}
	return AppModel{router: r}
}

// greeter plays the welcome cue the first time the app runs.
func greeter(ctx context.Context, opts Options) func() {
	if opts.Settings == nil || opts.Board.Feedback == nil {
		return nil
	}
	return func() {
		played, err := feedback.WelcomeOnce(ctx, opts.Board.Feedback, opts.Settings, store.SettingWelcomePlayed)
		if err != nil {
			opts.Log.Warn().Err(err).Msg("welcome cue")
			return
		}
		opts.Log.Debug().Bool("played", played).Msg("welcome cue")
	}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

func (m AppModel) render() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title, status := "", ""
	if active != nil {
		title = active.Title()
		if sp, ok := active.(screen.StatusProvider); ok {
			status = sp.Status()
		}
	}
	header := layout.RenderHeader(title, status, m.width)

	var hints []layout.KeyHint
	if kp, ok := active.(screen.KeyHintProvider); ok {
		hints = kp.KeyHints()
	} else if m.router.Depth() > 1 {
		hints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	footer := layout.RenderFooter(hints, m.width)

	content := m.router.View(m.width, layout.ContentHeight(m.height))
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(newAppModel(ctx, opts), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
