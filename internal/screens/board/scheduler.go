package board

import (
	"time"

	tea "charm.land/bubbletea/v2"
)

// resolveMsg fires a callback held by a teaScheduler.
type resolveMsg struct {
	id int
}

// teaScheduler turns engine callbacks into Bubble Tea ticks so that the
// resolution runs on the update loop like any other message. It is only
// touched from the update loop and needs no locking.
type teaScheduler struct {
	seq     int
	pending map[int]func()
	queued  []tea.Cmd
}

func newTeaScheduler() *teaScheduler {
	return &teaScheduler{pending: make(map[int]func())}
}

// Schedule implements game.Scheduler.
func (s *teaScheduler) Schedule(d time.Duration, fn func()) func() {
	s.seq++
	id := s.seq
	s.pending[id] = fn
	s.queued = append(s.queued, tea.Tick(d, func(time.Time) tea.Msg {
		return resolveMsg{id: id}
	}))
	return func() { delete(s.pending, id) }
}

// drain returns the ticks queued since the last call.
func (s *teaScheduler) drain() tea.Cmd {
	if len(s.queued) == 0 {
		return nil
	}
	cmds := s.queued
	s.queued = nil
	return tea.Batch(cmds...)
}

// fire runs the callback for id unless it was cancelled.
func (s *teaScheduler) fire(id int) bool {
	fn, ok := s.pending[id]
	if !ok {
		return false
	}
	delete(s.pending, id)
	fn()
	return true
}
