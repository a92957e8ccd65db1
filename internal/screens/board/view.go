package board

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/memoria/internal/feedback"
	"github.com/abhisek/memoria/internal/game"
	"github.com/abhisek/memoria/internal/ui/components"
	"github.com/abhisek/memoria/internal/ui/theme"
)

const maxNameWidth = theme.CardWidth - 2

func (b *BoardScreen) View(width, height int) string {
	snap := b.engine.Snapshot()
	catalog := b.engine.Catalog()
	cols := columns(len(snap.Cards))

	var rows []string
	for start := 0; start < len(snap.Cards); start += cols {
		end := min(start+cols, len(snap.Cards))
		tiles := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			tiles = append(tiles, b.renderCard(snap.Cards[i], catalog.Glyph(snap.Cards[i].Face), i == b.cursor))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, tiles...))
	}
	grid := lipgloss.JoinVertical(lipgloss.Center, rows...)

	progress := components.NewProgressBar("Pairs", snap.MatchedPairs(), snap.Pairs(), min(width-4, 48)).View()

	sections := []string{progress, "", grid, "", b.renderFlash(snap)}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, sections...))
}

func (b *BoardScreen) renderCard(c game.Card, glyph string, cursor bool) string {
	var style lipgloss.Style
	var label string
	switch {
	case c.Matched:
		style = theme.CardMatched
		label = glyph + "\n" + truncate(c.Face, maxNameWidth)
	case c.FaceUp:
		style = theme.CardUp
		label = glyph + "\n" + truncate(c.Face, maxNameWidth)
	default:
		style = theme.CardBack
		label = "?"
	}
	if cursor {
		style = theme.WithCursor(style)
	}
	return style.Render(label)
}

func (b *BoardScreen) renderFlash(snap game.Snapshot) string {
	switch {
	case snap.Completed:
		return theme.Correct.Render("All pairs found!")
	case b.flash == feedback.HapticSuccess:
		return theme.Correct.Render("✓ Match!")
	case b.flash == feedback.HapticError:
		return theme.Incorrect.Render("✗ No match")
	case snap.Locked:
		return theme.Hint.Render("...")
	}
	return theme.Hint.Render(" ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n-1])) + "…"
}
