package game

import (
	"sync"
	"time"
)

// Scheduler runs fn once after d elapses. The returned cancel func stops a
// callback that has not started yet; calling it more than once is safe.
//
// Schedule is called with the engine's lock held, so implementations must
// never invoke fn synchronously.
type Scheduler interface {
	Schedule(d time.Duration, fn func()) (cancel func())
}

// TimerScheduler runs callbacks on their own goroutine via time.AfterFunc.
type TimerScheduler struct{}

// Schedule implements Scheduler.
func (TimerScheduler) Schedule(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// ManualScheduler queues callbacks until Fire is called. It suits hosts
// that drive the clock themselves and deterministic tests.
type ManualScheduler struct {
	mu    sync.Mutex
	seq   int
	queue []manualTask
}

type manualTask struct {
	id    int
	delay time.Duration
	fn    func()
}

// Schedule implements Scheduler.
func (m *ManualScheduler) Schedule(d time.Duration, fn func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	id := m.seq
	m.queue = append(m.queue, manualTask{id: id, delay: d, fn: fn})
	return func() { m.remove(id) }
}

func (m *ManualScheduler) remove(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, t := range m.queue {
		if t.id == id {
			m.queue = append(m.queue[:i], m.queue[i+1:]...)
			return
		}
	}
}

// Pending returns the number of queued callbacks.
func (m *ManualScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// LastDelay returns the delay of the most recently queued callback.
func (m *ManualScheduler) LastDelay() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.queue) == 0 {
		return 0
	}
	return m.queue[len(m.queue)-1].delay
}

// Fire runs every queued callback in scheduling order and reports how many
// ran. Callbacks scheduled while firing are left for the next call.
func (m *ManualScheduler) Fire() int {
	m.mu.Lock()
	tasks := m.queue
	m.queue = nil
	m.mu.Unlock()

	for _, t := range tasks {
		t.fn()
	}
	return len(tasks)
}

// Capture takes the queued callbacks without running them. Tests use it to
// simulate a timer that fired before a reset but ran after it.
func (m *ManualScheduler) Capture() []func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]func(), len(m.queue))
	for i, t := range m.queue {
		out[i] = t.fn
	}
	m.queue = nil
	return out
}
