package components

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/memoria/internal/ui/theme"
)

// ContentWidth returns the inner width shared by every boxed section so
// they line up inside the cabinet frame.
func ContentWidth(frameWidth int) int {
	// cabinet border (2) + inner padding (4)
	return min(max(frameWidth-6, 20), 60)
}

// CabinetFrame wraps content in a double border and centers it.
func CabinetFrame(content string, width, height int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Primary).
		Width(width - 2).
		Height(height - 2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

// ArcadeButton renders a menu entry, highlighted when selected.
func ArcadeButton(label string, selected bool, width int) string {
	style := lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1)
	if selected {
		return style.
			Bold(true).
			Foreground(theme.BgDark).
			Background(theme.Gold).
			BorderForeground(theme.Gold).
			Render("▸ " + label)
	}
	return style.
		Foreground(theme.Text).
		BorderForeground(theme.Border).
		Render(label)
}
