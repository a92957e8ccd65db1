package game

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/abhisek/memoria/internal/deck"
	"github.com/abhisek/memoria/internal/scoring"
)

// DefaultResolveDelay is how long a pair stays face up before it resolves.
const DefaultResolveDelay = 500 * time.Millisecond

// Option configures an Engine.
type Option func(*Engine)

// WithCatalog sets the face catalog cards are dealt from.
func WithCatalog(c deck.Catalog) Option {
	return func(e *Engine) { e.catalog = c }
}

// WithPolicy sets the scoring policy.
func WithPolicy(p scoring.Policy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithResolveDelay sets the delay between the second flip and resolution.
func WithResolveDelay(d time.Duration) Option {
	return func(e *Engine) {
		if d >= 0 {
			e.delay = d
		}
	}
}

// WithScheduler sets how resolutions are scheduled.
func WithScheduler(s Scheduler) Option {
	return func(e *Engine) { e.sched = s }
}

// WithRand sets the shuffle source.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.rng = r }
}

// WithFeedback sets the cue hooks called on match and mismatch.
func WithFeedback(f Feedback) Option {
	return func(e *Engine) {
		if f != nil {
			e.feedback = f
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLogger sets the engine logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// Engine owns the state of one game. All methods are safe for concurrent
// use; state changes are reported to observers after the lock is released.
type Engine struct {
	mu sync.Mutex

	catalog  deck.Catalog
	policy   scoring.Policy
	delay    time.Duration
	sched    Scheduler
	rng      *rand.Rand
	feedback Feedback
	now      func() time.Time
	log      zerolog.Logger

	difficulty deck.Difficulty
	cards      []Card
	score      int
	moves      int
	pending    []int
	locked     bool
	completed  bool
	startedAt  time.Time
	finishedAt time.Time

	// generation changes on every reset; ticket changes on every scheduled
	// or completed resolution. A callback runs only if both still match.
	generation uint64
	ticket     uint64
	cancel     func()

	observers []observerEntry
	nextObsID int
}

type observerEntry struct {
	id int
	fn Observer
}

// New creates an engine and deals a first game at the given difficulty.
func New(d deck.Difficulty, opts ...Option) *Engine {
	e := &Engine{
		catalog:  deck.Default(),
		policy:   scoring.Default(),
		delay:    DefaultResolveDelay,
		sched:    TimerScheduler{},
		feedback: nopFeedback{},
		now:      time.Now,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	e.mu.Lock()
	e.resetLocked(d)
	e.mu.Unlock()
	return e
}

// Subscribe registers an observer and returns a func that removes it.
func (e *Engine) Subscribe(fn Observer) (unsubscribe func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextObsID++
	id := e.nextObsID
	e.observers = append(e.observers, observerEntry{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			for i, o := range e.observers {
				if o.id == id {
					e.observers = append(e.observers[:i:i], e.observers[i+1:]...)
					return
				}
			}
		})
	}
}

// Reset deals a new game. Any pending resolution is cancelled.
func (e *Engine) Reset(d deck.Difficulty) {
	e.mu.Lock()
	ev := e.resetLocked(d)
	obs := e.observerSnapshot()
	e.mu.Unlock()

	notify(obs, ev)
}

func (e *Engine) resetLocked(d deck.Difficulty) Event {
	if !d.Valid() {
		d = deck.Easy
	}
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.generation++
	e.ticket++

	faces := e.catalog.Deal(d, e.rng)
	e.cards = make([]Card, len(faces))
	for i, f := range faces {
		e.cards[i] = Card{ID: uuid.NewString(), Face: f}
	}
	e.difficulty = d
	e.score = 0
	e.moves = 0
	e.pending = nil
	e.locked = false
	e.completed = false
	e.startedAt = e.now()
	e.finishedAt = time.Time{}

	e.log.Debug().Str("difficulty", string(d)).Uint64("generation", e.generation).Int("cards", len(e.cards)).Msg("game reset")
	return Event{Kind: EventReset, Generation: e.generation}
}

// Flip turns a card face up. It returns false, changing nothing, if the
// card is unknown, already face up, already matched, or a pair is resolving.
func (e *Engine) Flip(cardID string) bool {
	e.mu.Lock()
	idx := -1
	for i := range e.cards {
		if e.cards[i].ID == cardID {
			idx = i
			break
		}
	}
	if idx < 0 {
		e.mu.Unlock()
		return false
	}
	return e.flipAndUnlock(idx)
}

// FlipAt flips the card at a board position.
func (e *Engine) FlipAt(index int) bool {
	e.mu.Lock()
	if index < 0 || index >= len(e.cards) {
		e.mu.Unlock()
		return false
	}
	return e.flipAndUnlock(index)
}

func (e *Engine) flipAndUnlock(idx int) bool {
	c := &e.cards[idx]
	if e.locked || c.FaceUp || c.Matched {
		e.mu.Unlock()
		return false
	}

	c.FaceUp = true
	c.FlipCount++
	e.pending = append(e.pending, idx)
	events := []Event{{Kind: EventFlipped, Generation: e.generation, Cards: []int{idx}}}

	if len(e.pending) == 2 {
		e.locked = true
		e.ticket++
		gen, ticket := e.generation, e.ticket
		e.cancel = e.sched.Schedule(e.delay, func() { e.resolve(gen, ticket) })
		events = append(events, Event{Kind: EventLocked, Generation: gen, Cards: e.pendingCopy()})
	}

	obs := e.observerSnapshot()
	e.mu.Unlock()

	notify(obs, events...)
	return true
}

// ResolvePending resolves the face-up pair immediately instead of waiting
// for the scheduled callback, which is cancelled. It reports whether a pair
// was resolved.
func (e *Engine) ResolvePending() bool {
	e.mu.Lock()
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	return e.resolveAndUnlock()
}

func (e *Engine) resolve(gen, ticket uint64) {
	e.mu.Lock()
	if gen != e.generation || ticket != e.ticket {
		e.log.Debug().Uint64("generation", gen).Uint64("current", e.generation).Msg("stale resolution ignored")
		e.mu.Unlock()
		return
	}
	e.cancel = nil
	e.resolveAndUnlock()
}

func (e *Engine) resolveAndUnlock() bool {
	gen := e.generation
	if len(e.pending) != 2 {
		wasLocked := e.locked
		e.locked = false
		obs := e.observerSnapshot()
		e.mu.Unlock()
		if wasLocked {
			notify(obs, Event{Kind: EventUnlocked, Generation: gen})
		}
		return false
	}

	a, b := &e.cards[e.pending[0]], &e.cards[e.pending[1]]
	pair := e.pendingCopy()
	matched := a.Face == b.Face

	var events []Event
	if matched {
		a.Matched, b.Matched = true, true
		delta := e.policy.MatchReward(a.FlipCount, b.FlipCount)
		e.score += delta
		events = append(events, Event{Kind: EventMatched, Generation: gen, Cards: pair, ScoreDelta: delta})
	} else {
		a.FaceUp, b.FaceUp = false, false
		delta := -e.policy.Penalty()
		e.score += delta
		events = append(events, Event{Kind: EventMismatched, Generation: gen, Cards: pair, ScoreDelta: delta})
	}
	e.moves++
	e.pending = nil
	e.locked = false
	e.ticket++
	events = append(events, Event{Kind: EventUnlocked, Generation: gen})

	if matched && e.allMatched() {
		e.completed = true
		e.finishedAt = e.now()
		events = append(events, Event{Kind: EventCompleted, Generation: gen})
		e.log.Debug().Int("score", e.score).Int("moves", e.moves).Msg("game completed")
	}

	obs := e.observerSnapshot()
	fb := e.feedback
	e.mu.Unlock()

	if matched {
		fb.Success()
	} else {
		fb.Failure()
	}
	notify(obs, events...)
	return true
}

// Snapshot returns a deep copy of the current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	cards := make([]Card, len(e.cards))
	copy(cards, e.cards)
	return Snapshot{
		Generation: e.generation,
		Difficulty: e.difficulty,
		Policy:     e.policy.Name(),
		Cards:      cards,
		Score:      e.score,
		Moves:      e.moves,
		Pending:    e.pendingCopy(),
		Locked:     e.locked,
		Completed:  e.completed,
		StartedAt:  e.startedAt,
		FinishedAt: e.finishedAt,
	}
}

// Difficulty returns the difficulty of the current game.
func (e *Engine) Difficulty() deck.Difficulty {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.difficulty
}

// Catalog returns the face catalog.
func (e *Engine) Catalog() deck.Catalog {
	return e.catalog
}

// Policy returns the scoring policy.
func (e *Engine) Policy() scoring.Policy {
	return e.policy
}

func (e *Engine) allMatched() bool {
	for _, c := range e.cards {
		if !c.Matched {
			return false
		}
	}
	return true
}

func (e *Engine) pendingCopy() []int {
	if len(e.pending) == 0 {
		return nil
	}
	return append([]int(nil), e.pending...)
}

func (e *Engine) observerSnapshot() []Observer {
	if len(e.observers) == 0 {
		return nil
	}
	out := make([]Observer, len(e.observers))
	for i, o := range e.observers {
		out[i] = o.fn
	}
	return out
}

func notify(obs []Observer, events ...Event) {
	for _, ev := range events {
		for _, fn := range obs {
			fn(ev)
		}
	}
}
