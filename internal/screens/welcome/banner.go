package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/memoria/internal/ui/theme"
)

const bannerArt = `
███╗   ███╗███████╗███╗   ███╗ ██████╗ ██████╗ ██╗ █████╗
████╗ ████║██╔════╝████╗ ████║██╔═══██╗██╔══██╗██║██╔══██╗
██╔████╔██║█████╗  ██╔████╔██║██║   ██║██████╔╝██║███████║
██║╚██╔╝██║██╔══╝  ██║╚██╔╝██║██║   ██║██╔══██╗██║██╔══██║
██║ ╚═╝ ██║███████╗██║ ╚═╝ ██║╚██████╔╝██║  ██║██║██║  ██║
╚═╝     ╚═╝╚══════╝╚═╝     ╚═╝ ╚═════╝ ╚═╝  ╚═╝╚═╝╚═╝  ╚═╝`

const bannerCompact = "M E M O R I A"

// RenderBanner returns the MEMORIA banner styled in the primary color,
// falling back to plain letters below 60 columns.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < 60 {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
