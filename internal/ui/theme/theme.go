package theme

import (
	"charm.land/lipgloss/v2"
)

// Palette, tuned for dark terminals.
var (
	Primary   = lipgloss.Color("#8B5CF6") // violet
	Secondary = lipgloss.Color("#14B8A6") // teal
	Accent    = lipgloss.Color("#F97316") // orange
	Gold      = lipgloss.Color("#FACC15")
	Cyan      = lipgloss.Color("#22D3EE")
	Success   = lipgloss.Color("#22C55E")
	Error     = lipgloss.Color("#F43F5E")
	Text      = lipgloss.Color("#F8FAFC")
	TextDim   = lipgloss.Color("#94A3B8")
	BgDark    = lipgloss.Color("#0F172A")
	BgCard    = lipgloss.Color("#1E293B")
	Border    = lipgloss.Color("#334155")
)

var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		Align(lipgloss.Center)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)
)

// Card faces on the board. Each card is a fixed-size tile so the grid
// stays aligned whatever the glyph width.
var (
	cardBase = lipgloss.NewStyle().
			Width(CardWidth).
			Height(CardHeight).
			Align(lipgloss.Center, lipgloss.Center).
			Border(lipgloss.RoundedBorder())

	CardBack = cardBase.
			Foreground(TextDim).
			Background(BgCard).
			BorderForeground(Border)

	CardUp = cardBase.
		Foreground(Text).
		Bold(true).
		BorderForeground(Cyan)

	CardMatched = cardBase.
			Foreground(Success).
			BorderForeground(Success)
)

// WithCursor marks a card style as being under the cursor.
func WithCursor(s lipgloss.Style) lipgloss.Style {
	return s.Border(lipgloss.ThickBorder()).BorderForeground(Gold)
}

const (
	CardWidth  = 10
	CardHeight = 3
)

var (
	Selected = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	Unselected = lipgloss.NewStyle().
			Foreground(Text)

	Correct = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Incorrect = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)
)

var (
	ProgressFilled = lipgloss.NewStyle().
			Background(Secondary)

	ProgressEmpty = lipgloss.NewStyle().
			Background(Border)
)
