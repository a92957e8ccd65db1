package router

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/memoria/internal/screen"
)

// PushScreenMsg asks the router to push a screen onto the stack.
type PushScreenMsg struct {
	Screen screen.Screen
}

// PopScreenMsg asks the router to pop the active screen.
type PopScreenMsg struct{}

// ReplaceScreenMsg asks the router to swap the active screen in place.
type ReplaceScreenMsg struct {
	Screen screen.Screen
}

// ScreenResumedMsg is delivered to a screen that becomes active again
// after the screen above it was popped.
type ScreenResumedMsg struct{}

// Router manages a stack of screens.
type Router struct {
	stack []screen.Screen
}

// New creates a Router with the given initial screen.
func New(initial screen.Screen) *Router {
	return &Router{stack: []screen.Screen{initial}}
}

// Push adds a screen on top of the stack and returns its Init command.
func (r *Router) Push(s screen.Screen) tea.Cmd {
	r.stack = append(r.stack, s)
	return s.Init()
}

// Pop removes the top screen. The bottom screen is never popped. The
// returned command resumes the screen underneath.
func (r *Router) Pop() tea.Cmd {
	if len(r.stack) <= 1 {
		return nil
	}
	r.stack[len(r.stack)-1] = nil
	r.stack = r.stack[:len(r.stack)-1]
	return func() tea.Msg { return ScreenResumedMsg{} }
}

// Replace swaps the top screen, keeping the stack depth.
func (r *Router) Replace(s screen.Screen) tea.Cmd {
	r.stack[len(r.stack)-1] = s
	return s.Init()
}

// Active returns the top screen on the stack.
func (r *Router) Active() screen.Screen {
	if len(r.stack) == 0 {
		return nil
	}
	return r.stack[len(r.stack)-1]
}

// Depth returns the number of screens on the stack.
func (r *Router) Depth() int {
	return len(r.stack)
}

// Update handles navigation messages and forwards everything else to the
// active screen.
func (r *Router) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case PushScreenMsg:
		return r.Push(msg.Screen)
	case PopScreenMsg:
		return r.Pop()
	case ReplaceScreenMsg:
		return r.Replace(msg.Screen)
	}

	active := r.Active()
	if active == nil {
		return nil
	}
	updated, cmd := active.Update(msg)
	r.stack[len(r.stack)-1] = updated
	return cmd
}

// View renders the active screen.
func (r *Router) View(width, height int) string {
	active := r.Active()
	if active == nil {
		return ""
	}
	return active.View(width, height)
}
