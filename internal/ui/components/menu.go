package components

import (
	tea "charm.land/bubbletea/v2"
)

// MenuItem is a single entry in a Menu. Label is a func so entries such
// as the difficulty toggle can reflect current state.
type MenuItem struct {
	Label    func() string
	Action   func() tea.Cmd
	Disabled bool
}

// StaticItem returns a MenuItem with a fixed label.
func StaticItem(label string, action func() tea.Cmd) MenuItem {
	return MenuItem{Label: func() string { return label }, Action: action}
}

// Menu is a vertical navigation menu.
type Menu struct {
	Items    []MenuItem
	Selected int
}

// NewMenu creates a menu with the first enabled item selected.
func NewMenu(items []MenuItem) Menu {
	selected := 0
	for i, item := range items {
		if !item.Disabled {
			selected = i
			break
		}
	}
	return Menu{Items: items, Selected: selected}
}

// Update handles up/down (or k/j) navigation and enter.
func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return m, nil
	}

	switch kmsg.String() {
	case "up", "k":
		for i := m.Selected - 1; i >= 0; i-- {
			if !m.Items[i].Disabled {
				m.Selected = i
				break
			}
		}
	case "down", "j":
		for i := m.Selected + 1; i < len(m.Items); i++ {
			if !m.Items[i].Disabled {
				m.Selected = i
				break
			}
		}
	case "enter", "space":
		if m.Selected >= 0 && m.Selected < len(m.Items) {
			item := m.Items[m.Selected]
			if item.Action != nil && !item.Disabled {
				return m, item.Action()
			}
		}
	}
	return m, nil
}

// Labels returns the current label of every item.
func (m Menu) Labels() []string {
	out := make([]string, len(m.Items))
	for i, item := range m.Items {
		out[i] = item.Label()
	}
	return out
}

// View renders the menu as a column of arcade buttons of the given width.
func (m Menu) View(width int) string {
	var s string
	for i, label := range m.Labels() {
		if i > 0 {
			s += "\n"
		}
		s += ArcadeButton(label, i == m.Selected, width)
	}
	return s
}
