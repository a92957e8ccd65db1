package home

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/memoria/internal/ui/theme"
)

// MascotVariant selects which mascot art to display.
type MascotVariant int

const (
	MascotIdle        MascotVariant = iota // face-down card
	MascotCelebrating                      // face-up card, shown once a game has been won
)

const mascotIdle = `┌─────┐
│ ╭─╮ │
│  ?  │
│ ╰─╯ │
└─────┘`

const mascotCelebrating = `┌─────┐ ┌─────┐
│ ★ ★ │ │ ★ ★ │
│  ▿  │ │  ▿  │
│ ✓✓✓ │ │ ✓✓✓ │
└─────┘ └─────┘`

// RenderMascot returns the mascot art for the given variant.
func RenderMascot(variant MascotVariant) string {
	art, fg := mascotIdle, theme.Primary
	if variant == MascotCelebrating {
		art, fg = mascotCelebrating, theme.Gold
	}
	return lipgloss.NewStyle().Foreground(fg).Render(art)
}
