package feedback

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sync"

	"github.com/rs/zerolog"
)

// Cue names an audio cue asset.
type Cue string

const (
	CueSuccess Cue = "success"
	CueFailure Cue = "failure"
	CueWelcome Cue = "welcome"
)

// Haptic names a haptic pulse. Terminals have no vibration, so hosts map
// these to a visual flash.
type Haptic string

const (
	HapticSuccess Haptic = "success"
	HapticError   Haptic = "error"
)

// Notifier receives fire-and-forget feedback requests. Implementations
// never fail; a cue that cannot play is skipped.
type Notifier interface {
	Success()
	Failure()
	Welcome()
}

// Nop ignores every cue.
type Nop struct{}

func (Nop) Success() {}
func (Nop) Failure() {}
func (Nop) Welcome() {}

// Player writes cue assets read from an fs.FS to a sink. For the terminal
// the sink is stderr and the assets are bell sequences.
type Player struct {
	fsys fs.FS
	sink io.Writer
	log  zerolog.Logger

	mu    sync.Mutex
	cache map[Cue][]byte
}

// NewPlayer creates a Player. A nil sink makes every cue a no-op.
func NewPlayer(fsys fs.FS, sink io.Writer, log zerolog.Logger) *Player {
	return &Player{
		fsys:  fsys,
		sink:  sink,
		log:   log,
		cache: make(map[Cue][]byte),
	}
}

func (p *Player) Success() { p.Play(CueSuccess) }
func (p *Player) Failure() { p.Play(CueFailure) }
func (p *Player) Welcome() { p.Play(CueWelcome) }

// Play emits a cue. Missing assets and write failures are logged at debug
// level and otherwise ignored.
func (p *Player) Play(c Cue) {
	data, err := p.load(c)
	if err != nil {
		p.log.Debug().Err(err).Str("cue", string(c)).Msg("cue unavailable, skipping")
		return
	}
	if p.sink == nil || len(data) == 0 {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := p.sink.Write(data); err != nil {
		p.log.Debug().Err(err).Str("cue", string(c)).Msg("cue playback failed")
	}
}

func (p *Player) load(c Cue) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if data, ok := p.cache[c]; ok {
		return data, nil
	}
	if p.fsys == nil {
		return nil, fmt.Errorf("no cue assets: %w", fs.ErrNotExist)
	}
	data, err := fs.ReadFile(p.fsys, string(c)+".cue")
	if err != nil {
		return nil, err
	}
	p.cache[c] = data
	return data, nil
}

// WithHaptics wraps n so that match and mismatch cues also pulse fn.
func WithHaptics(n Notifier, fn func(Haptic)) Notifier {
	if fn == nil {
		return n
	}
	return &hapticNotifier{Notifier: n, pulse: fn}
}

type hapticNotifier struct {
	Notifier
	pulse func(Haptic)
}

func (h *hapticNotifier) Success() {
	h.Notifier.Success()
	h.pulse(HapticSuccess)
}

func (h *hapticNotifier) Failure() {
	h.Notifier.Failure()
	h.pulse(HapticError)
}

// FlagStore persists boolean flags.
type FlagStore interface {
	GetBool(ctx context.Context, key string) (bool, error)
	SetBool(ctx context.Context, key string, v bool) error
}

// WelcomeOnce plays the welcome cue unless key is already set in flags,
// then sets it. It reports whether the cue played.
func WelcomeOnce(ctx context.Context, n Notifier, flags FlagStore, key string) (bool, error) {
	if flags == nil {
		return false, errors.New("welcome once: no flag store")
	}
	played, err := flags.GetBool(ctx, key)
	if err != nil {
		return false, fmt.Errorf("read welcome flag: %w", err)
	}
	if played {
		return false, nil
	}
	n.Welcome()
	if err := flags.SetBool(ctx, key, true); err != nil {
		return true, fmt.Errorf("save welcome flag: %w", err)
	}
	return true, nil
}
