// Package welcome is the launch animation shown before the home screen.
package welcome

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/memoria/internal/router"
	"github.com/abhisek/memoria/internal/screen"
	"github.com/abhisek/memoria/internal/ui/theme"
)

const (
	tickInterval = 100 * time.Millisecond
	phase1End    = 500 * time.Millisecond
	phase2End    = 1500 * time.Millisecond
	totalDur     = 3500 * time.Millisecond
)

// Three cards flip over one after another.
var cardFrames = [][3]string{
	{"?", "?", "?"},
	{"🦁", "?", "?"},
	{"🦁", "🦁", "?"},
	{"🦁", "🦁", "★"},
}

var sparkleFrames = []string{"★", "✦"}

type tickMsg time.Time

// WelcomeScreen shows a splash animation, then replaces itself with the
// home screen when the animation ends or a key is pressed.
type WelcomeScreen struct {
	homeFactory  func() screen.Screen
	greet        func()
	elapsed      time.Duration
	tickCount    int
	transitioned bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)

// New creates a WelcomeScreen. greet runs once in the background when the
// screen starts; it may be nil.
func New(homeFactory func() screen.Screen, greet func()) *WelcomeScreen {
	return &WelcomeScreen{
		homeFactory: homeFactory,
		greet:       greet,
	}
}

func (w *WelcomeScreen) Title() string {
	return ""
}

func (w *WelcomeScreen) Init() tea.Cmd {
	cmds := []tea.Cmd{tick()}
	if greet := w.greet; greet != nil {
		cmds = append(cmds, func() tea.Msg {
			greet()
			return nil
		})
	}
	return tea.Batch(cmds...)
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg.(type) {
	case tickMsg:
		if w.transitioned {
			return w, nil
		}
		w.elapsed += tickInterval
		w.tickCount++
		if w.elapsed >= totalDur {
			w.elapsed = totalDur
			return w, w.transition()
		}
		return w, tick()

	case tea.KeyPressMsg:
		return w, w.transition()
	}

	return w, nil
}

func (w *WelcomeScreen) transition() tea.Cmd {
	if w.transitioned {
		return nil
	}
	w.transitioned = true
	homeScreen := w.homeFactory()
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: homeScreen}
	}
}

func (w *WelcomeScreen) renderCards() string {
	step := int(w.elapsed / phase1End)
	frame := cardFrames[min(step, len(cardFrames)-1)]

	back := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Primary).
		Foreground(theme.TextDim).
		Width(5).
		Align(lipgloss.Center).
		Padding(1, 0)
	front := back.BorderForeground(theme.Gold).Foreground(theme.Gold)

	cards := make([]string, len(frame))
	for i, face := range frame {
		if face == "?" {
			cards[i] = back.Render(face)
		} else {
			cards[i] = front.Render(face)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, cards[0], " ", cards[1], " ", cards[2])
}

func (w *WelcomeScreen) View(width, height int) string {
	rendered := w.renderCards()

	if w.elapsed >= phase1End {
		sparkle := sparkleFrames[w.tickCount%len(sparkleFrames)]
		s1 := lipgloss.NewStyle().Foreground(theme.Accent).Render(sparkle)
		s2 := lipgloss.NewStyle().Foreground(theme.Secondary).Render(sparkle)

		lines := strings.Split(rendered, "\n")
		if len(lines) > 2 {
			lines[0] = s1 + "  " + lines[0] + "  " + s2
			lines[2] = s2 + "  " + lines[2] + "  " + s1
			for i := range lines {
				if i != 0 && i != 2 {
					lines[i] = "   " + lines[i] + "   "
				}
			}
		}
		rendered = strings.Join(lines, "\n")
	}

	sections := []string{rendered}

	if w.elapsed >= phase2End {
		tagline := lipgloss.NewStyle().
			Foreground(theme.Text).
			Bold(true).
			Render("Find every pair!")
		hint := lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Italic(true).
			Render("press any key to continue")
		sections = append(sections, "", RenderBanner(width), "", tagline, "", hint)
	}

	content := strings.Join(sections, "\n")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
