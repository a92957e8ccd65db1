package components

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/memoria/internal/ui/theme"
)

// TextInput wraps bubbles/textinput with the app styling.
type TextInput struct {
	Model     textinput.Model
	submitted bool
	valid     bool
}

// NewTextInput creates a focused text input limited to maxLen characters.
func NewTextInput(placeholder string, maxLen int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	if maxLen > 0 {
		ti.CharLimit = maxLen
	}
	ti.Focus()
	return TextInput{Model: ti}
}

func (t TextInput) Init() tea.Cmd {
	return textinput.Blink
}

func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	if t.submitted {
		return t, nil
	}
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

func (t TextInput) View() string {
	view := t.Model.View()
	if t.submitted {
		if t.valid {
			view += " " + lipgloss.NewStyle().Foreground(theme.Success).Render("✓")
		} else {
			view += " " + lipgloss.NewStyle().Foreground(theme.Error).Render("✗")
		}
	}
	return view
}

// Value returns the trimmed input.
func (t TextInput) Value() string {
	return strings.TrimSpace(t.Model.Value())
}

// SetValue replaces the input contents.
func (t *TextInput) SetValue(v string) {
	t.Model.SetValue(v)
	t.Model.CursorEnd()
}

// Submit freezes the input and records whether the value was accepted.
func (t *TextInput) Submit(valid bool) {
	t.submitted = true
	t.valid = valid
	t.Model.Blur()
}
