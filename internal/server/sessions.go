package server

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/memoria/internal/deck"
	"github.com/abhisek/memoria/internal/game"
)

// ErrSessionNotFound is returned for unknown or expired session ids.
var ErrSessionNotFound = errors.New("session not found")

// EngineFactory builds the engine behind a new session.
type EngineFactory func(d deck.Difficulty) *game.Engine

// Session is one hosted game.
type Session struct {
	ID        string
	Engine    *game.Engine
	CreatedAt time.Time

	lastSeen atomic.Int64
	watchers atomic.Int32
	ended    chan struct{}
	endOnce  sync.Once
}

func (s *Session) touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

// attach registers a live connection. Sessions with live connections are
// never swept.
func (s *Session) attach() (detach func()) {
	s.watchers.Add(1)
	var once sync.Once
	return func() { once.Do(func() { s.watchers.Add(-1) }) }
}

// Ended is closed once the session is deleted or swept.
func (s *Session) Ended() <-chan struct{} {
	return s.ended
}

func (s *Session) end() {
	s.endOnce.Do(func() { close(s.ended) })
}

// LastSeen returns when the session was last used.
func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

// Registry holds the live sessions.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	factory  EngineFactory
	now      func() time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry(factory EngineFactory) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		factory:  factory,
		now:      time.Now,
	}
}

// Create deals a new game and registers it.
func (r *Registry) Create(d deck.Difficulty) *Session {
	now := r.now()
	sess := &Session{
		ID:        uuid.NewString(),
		Engine:    r.factory(d),
		CreatedAt: now,
		ended:     make(chan struct{}),
	}
	sess.touch(now)

	r.mu.Lock()
	r.sessions[sess.ID] = sess
	r.mu.Unlock()
	return sess
}

// Get returns a session and marks it used.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	sess, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.touch(r.now())
	return sess, nil
}

// Delete removes a session and ends its connections. Unknown ids are
// ignored.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	sess, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok {
		sess.end()
	}
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep removes sessions idle for longer than ttl and returns how many
// were removed. Sessions with a live connection are kept.
func (r *Registry) Sweep(ttl time.Duration) int {
	cutoff := r.now().Add(-ttl)

	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, sess := range r.sessions {
		if sess.watchers.Load() == 0 && sess.LastSeen().Before(cutoff) {
			delete(r.sessions, id)
			sess.end()
			n++
		}
	}
	return n
}
