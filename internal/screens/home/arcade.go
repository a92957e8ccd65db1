package home

import (
	"fmt"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/memoria/internal/store"
	"github.com/abhisek/memoria/internal/ui/theme"
)

// Block-letter title (same art as welcome/banner.go).
const arcadeTitleFull = `███╗   ███╗███████╗███╗   ███╗ ██████╗ ██████╗ ██╗ █████╗
████╗ ████║██╔════╝████╗ ████║██╔═══██╗██╔══██╗██║██╔══██╗
██╔████╔██║█████╗  ██╔████╔██║██║   ██║██████╔╝██║███████║
██║╚██╔╝██║██╔══╝  ██║╚██╔╝██║██║   ██║██╔══██╗██║██╔══██║
██║ ╚═╝ ██║███████╗██║ ╚═╝ ██║╚██████╔╝██║  ██║██║██║  ██║
╚═╝     ╚═╝╚══════╝╚═╝     ╚═╝ ╚═════╝ ╚═╝  ╚═╝╚═╝╚═╝  ╚═╝`

const arcadeTitleCompact = "M · E · M · O · R · I · A"

// buttonWidth is the fixed width for menu buttons.
const buttonWidth = 24

func renderTitle(cw int, compact bool) string {
	style := lipgloss.NewStyle().Foreground(theme.Gold).Bold(true)
	art := arcadeTitleFull
	if compact {
		art = arcadeTitleCompact
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(style.Render(art))
}

// renderStatsBar shows games played and best score, across difficulties.
func renderStatsBar(stats []store.DifficultyStats, cw int, compact bool) string {
	played, best := 0, 0
	for _, s := range stats {
		played += s.Played
		best = max(best, s.BestScore)
	}

	playedStyle := lipgloss.NewStyle().Foreground(theme.Gold).Bold(true)
	bestStyle := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(theme.TextDim)

	var text string
	switch {
	case played == 0:
		text = dimStyle.Render("NO GAMES YET")
	case compact:
		text = fmt.Sprintf("%s %s",
			playedStyle.Render(fmt.Sprintf("▣%d", played)),
			bestStyle.Render(fmt.Sprintf("★%d", best)))
	default:
		text = fmt.Sprintf("%s  %s",
			playedStyle.Render(fmt.Sprintf("▣ %d PLAYED", played)),
			bestStyle.Render(fmt.Sprintf("★ BEST %d", best)))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Cyan).
		Width(cw - 2).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(text)
}

func renderMascotBox(variant MascotVariant, cw int) string {
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(RenderMascot(variant))
}

func centerBlock(block string, cw int) string {
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(block)
}
