// Package board is the playing screen: a grid of cards driven by a
// game.Engine.
package board

import (
	"fmt"
	"math/rand/v2"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog"

	"github.com/abhisek/memoria/internal/deck"
	"github.com/abhisek/memoria/internal/feedback"
	"github.com/abhisek/memoria/internal/game"
	"github.com/abhisek/memoria/internal/router"
	"github.com/abhisek/memoria/internal/scoring"
	"github.com/abhisek/memoria/internal/screen"
	"github.com/abhisek/memoria/internal/screens/summary"
	"github.com/abhisek/memoria/internal/store"
	"github.com/abhisek/memoria/internal/ui/layout"
)

const (
	flashDuration = 400 * time.Millisecond
	finishDelay   = 700 * time.Millisecond
	clockInterval = time.Second
	defaultPlayer = "player"
)

// Options configures the games started from the TUI.
type Options struct {
	Catalog      deck.Catalog
	Policy       scoring.Policy
	ResolveDelay time.Duration
	Feedback     feedback.Notifier
	Results      store.ResultRepo
	Player       string
	Log          zerolog.Logger

	// Rand and Clock are for tests.
	Rand  *rand.Rand
	Clock func() time.Time
}

func (o Options) clock() func() time.Time {
	if o.Clock != nil {
		return o.Clock
	}
	return time.Now
}

type flashClearMsg struct{ seq int }

type clockMsg struct{ seq int }

type finishMsg struct{ generation uint64 }

// BoardScreen shows one game and maps keys to engine operations.
type BoardScreen struct {
	opts   Options
	engine *game.Engine
	sched  *teaScheduler
	cursor int

	flash        feedback.Haptic
	flashSeq     int
	flashPending bool
	finishing    bool

	// clockSeq identifies the live clock chain; ticks from older chains
	// are dropped.
	clockSeq int
}

var _ screen.Screen = (*BoardScreen)(nil)
var _ screen.KeyHintProvider = (*BoardScreen)(nil)
var _ screen.StatusProvider = (*BoardScreen)(nil)

// New deals a game at difficulty d.
func New(opts Options, d deck.Difficulty) *BoardScreen {
	b := &BoardScreen{opts: opts, sched: newTeaScheduler()}

	notifier := opts.Feedback
	if notifier == nil {
		notifier = feedback.Nop{}
	}
	engineOpts := []game.Option{
		game.WithPolicy(opts.Policy),
		game.WithResolveDelay(opts.ResolveDelay),
		game.WithScheduler(b.sched),
		game.WithFeedback(feedback.WithHaptics(notifier, b.pulse)),
		game.WithClock(opts.clock()),
		game.WithLogger(opts.Log),
	}
	if opts.Catalog.Len() > 0 {
		engineOpts = append(engineOpts, game.WithCatalog(opts.Catalog))
	}
	if opts.Rand != nil {
		engineOpts = append(engineOpts, game.WithRand(opts.Rand))
	}
	b.engine = game.New(d, engineOpts...)
	return b
}

// Engine exposes the underlying engine.
func (b *BoardScreen) Engine() *game.Engine {
	return b.engine
}

func (b *BoardScreen) Init() tea.Cmd {
	return b.clockTick()
}

func (b *BoardScreen) clockTick() tea.Cmd {
	seq := b.clockSeq
	return tea.Tick(clockInterval, func(time.Time) tea.Msg { return clockMsg{seq: seq} })
}

func (b *BoardScreen) Title() string {
	return "Board · " + b.engine.Difficulty().DisplayName()
}

func (b *BoardScreen) Status() string {
	snap := b.engine.Snapshot()
	return fmt.Sprintf("Score %d   Moves %d   %s", snap.Score, snap.Moves, formatElapsed(snap.Elapsed(b.opts.clock()())))
}

func (b *BoardScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "←↑↓→", Description: "Move"},
		{Key: "Space", Description: "Flip"},
		{Key: "R", Description: "Restart"},
		{Key: "1/2/3", Description: "Difficulty"},
		{Key: "Esc", Description: "Back"},
	}
}

// pulse receives haptic feedback from the engine and shows it as a brief
// flash on the board.
func (b *BoardScreen) pulse(h feedback.Haptic) {
	b.flash = h
	b.flashSeq++
	b.flashPending = true
}

func (b *BoardScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case resolveMsg:
		b.sched.fire(msg.id)
		return b, b.afterEngine()

	case flashClearMsg:
		if msg.seq == b.flashSeq {
			b.flash = ""
		}
		return b, nil

	case clockMsg:
		if msg.seq != b.clockSeq || b.finishing {
			return b, nil
		}
		return b, b.clockTick()

	case finishMsg:
		snap := b.engine.Snapshot()
		if !snap.Completed || snap.Generation != msg.generation {
			b.finishing = false
			return b, nil
		}
		next := summary.New(summary.Input{
			Snapshot: snap,
			Results:  b.opts.Results,
			Player:   b.player(),
			Log:      b.opts.Log,
		})
		return b, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }

	case tea.KeyPressMsg:
		return b, b.handleKey(msg.String())
	}
	return b, nil
}

func (b *BoardScreen) handleKey(key string) tea.Cmd {
	n := len(b.engine.Snapshot().Cards)
	cols := columns(n)

	switch key {
	case "left", "h":
		if b.cursor%cols > 0 {
			b.cursor--
		}
	case "right", "l":
		if b.cursor%cols < cols-1 && b.cursor+1 < n {
			b.cursor++
		}
	case "up", "k":
		if b.cursor-cols >= 0 {
			b.cursor -= cols
		}
	case "down", "j":
		if b.cursor+cols < n {
			b.cursor += cols
		}
	case "space", "enter":
		b.engine.FlipAt(b.cursor)
		return b.afterEngine()
	case "r":
		b.restart(b.engine.Difficulty())
		return b.clockTick()
	case "1", "2", "3":
		b.restart(deck.AllDifficulties()[key[0]-'1'])
		return b.clockTick()
	}
	return nil
}

func (b *BoardScreen) restart(d deck.Difficulty) {
	b.engine.Reset(d)
	b.cursor = 0
	b.flash = ""
	b.finishing = false
	b.clockSeq++
}

// afterEngine collects the follow-up work of an engine call: scheduled
// resolutions, a feedback flash and the hand-off to the summary screen.
func (b *BoardScreen) afterEngine() tea.Cmd {
	cmds := []tea.Cmd{b.sched.drain()}

	if b.flashPending {
		b.flashPending = false
		seq := b.flashSeq
		cmds = append(cmds, tea.Tick(flashDuration, func(time.Time) tea.Msg { return flashClearMsg{seq: seq} }))
	}

	snap := b.engine.Snapshot()
	if snap.Completed && !b.finishing {
		b.finishing = true
		gen := snap.Generation
		cmds = append(cmds, tea.Tick(finishDelay, func(time.Time) tea.Msg { return finishMsg{generation: gen} }))
	}
	return tea.Batch(cmds...)
}

func (b *BoardScreen) player() string {
	if b.opts.Player != "" {
		return b.opts.Player
	}
	return defaultPlayer
}

// columns picks a grid width that keeps every deal rectangular:
// 4x2, 7x2 and 5x4.
func columns(n int) int {
	switch {
	case n <= 8:
		return 4
	case n%7 == 0:
		return 7
	default:
		return 5
	}
}

func formatElapsed(d time.Duration) string {
	secs := int(d.Seconds())
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
