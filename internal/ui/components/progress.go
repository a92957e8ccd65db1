package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/memoria/internal/ui/theme"
)

// ProgressBar displays a horizontal bar for done out of total.
type ProgressBar struct {
	Label string
	Done  int
	Total int
	Width int
}

// NewProgressBar creates a progress bar.
func NewProgressBar(label string, done, total, width int) ProgressBar {
	return ProgressBar{Label: label, Done: done, Total: total, Width: width}
}

// Percent returns the completed fraction in [0, 1].
func (p ProgressBar) Percent() float64 {
	if p.Total <= 0 {
		return 0
	}
	return min(max(float64(p.Done)/float64(p.Total), 0), 1)
}

func (p ProgressBar) View() string {
	var result string
	if p.Label != "" {
		result = lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}
	count := fmt.Sprintf("  %d/%d", p.Done, p.Total)

	barWidth := max(p.Width-lipgloss.Width(result)-len(count), 4)
	filled := int(float64(barWidth) * p.Percent())

	result += theme.ProgressFilled.Render(strings.Repeat(" ", filled)) +
		theme.ProgressEmpty.Render(strings.Repeat(" ", barWidth-filled)) +
		lipgloss.NewStyle().Foreground(theme.TextDim).Render(count)
	return result
}
