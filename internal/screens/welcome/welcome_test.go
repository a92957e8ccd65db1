package welcome

import (
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/memoria/internal/router"
	"github.com/abhisek/memoria/internal/screen"
)

// stubScreen is a minimal screen implementation for testing.
type stubScreen struct{}

func (s *stubScreen) Init() tea.Cmd                           { return nil }
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                    { return "home" }
func (s *stubScreen) Title() string                           { return "Home" }

func newTestWelcomeWithCounter() (*WelcomeScreen, *int) {
	callCount := 0
	factory := func() screen.Screen {
		callCount++
		return &stubScreen{}
	}
	return New(factory, nil), &callCount
}

func sendTicks(w *WelcomeScreen, n int) tea.Cmd {
	var cmd tea.Cmd
	for i := 0; i < n; i++ {
		_, cmd = w.Update(tickMsg(time.Now()))
	}
	return cmd
}

func containsBanner(s string) bool {
	return strings.Contains(s, "Find every pair")
}

func TestPhaseTransitions(t *testing.T) {
	w, _ := newTestWelcomeWithCounter()

	view := w.View(80, 24)
	if containsBanner(view) {
		t.Error("banner should not be visible at start")
	}

	sendTicks(w, 5)
	if w.elapsed != 500*time.Millisecond {
		t.Errorf("expected elapsed 500ms, got %v", w.elapsed)
	}

	sendTicks(w, 10)
	if w.elapsed != 1500*time.Millisecond {
		t.Errorf("expected elapsed 1500ms, got %v", w.elapsed)
	}
	view = w.View(80, 24)
	if !containsBanner(view) {
		t.Error("banner should be visible after phase 2")
	}
}

func TestKeypressDuringAnimationSkipsToTransition(t *testing.T) {
	w, callCount := newTestWelcomeWithCounter()
	sendTicks(w, 3)

	_, cmd := w.Update(tea.KeyPressMsg{Code: ' '})
	if cmd == nil {
		t.Fatal("keypress during animation should trigger transition")
	}
	if _, ok := cmd().(router.ReplaceScreenMsg); !ok {
		t.Fatalf("expected ReplaceScreenMsg, got %T", cmd())
	}
	if *callCount != 1 {
		t.Errorf("factory should be called once, got %d", *callCount)
	}
}

func TestAutoTransitionAtEnd(t *testing.T) {
	w, callCount := newTestWelcomeWithCounter()

	ticks := int(totalDur / tickInterval)
	cmd := sendTicks(w, ticks-1)
	if *callCount != 0 {
		t.Fatalf("factory called before the animation ended")
	}
	if cmd == nil {
		t.Fatal("expected another tick")
	}

	cmd = sendTicks(w, 1)
	if cmd == nil {
		t.Fatal("expected a transition command")
	}
	msg, ok := cmd().(router.ReplaceScreenMsg)
	if !ok || msg.Screen == nil {
		t.Fatalf("expected ReplaceScreenMsg with a screen, got %#v", cmd())
	}
	if *callCount != 1 {
		t.Errorf("factory should be called once, got %d", *callCount)
	}
	if w.elapsed != totalDur {
		t.Errorf("expected elapsed capped at %v, got %v", totalDur, w.elapsed)
	}

	// Ticks already in flight stop quietly.
	if cmd := sendTicks(w, 1); cmd != nil {
		t.Error("expected no command after transition")
	}
}

func TestFactoryCalledOnce(t *testing.T) {
	w, callCount := newTestWelcomeWithCounter()

	w.Update(tea.KeyPressMsg{Code: 'a'})
	_, cmd := w.Update(tea.KeyPressMsg{Code: 'b'})
	if cmd != nil {
		t.Error("second keypress should not produce a command")
	}
	sendTicks(w, 50)
	if *callCount != 1 {
		t.Errorf("factory should be called exactly once, got %d", *callCount)
	}
}

func TestGreetRunsFromInit(t *testing.T) {
	greeted := 0
	w := New(func() screen.Screen { return &stubScreen{} }, func() { greeted++ })

	cmd := w.Init()
	if cmd == nil {
		t.Fatal("expected init command")
	}
	batch, ok := cmd().(tea.BatchMsg)
	if !ok {
		t.Fatalf("expected BatchMsg, got %T", cmd())
	}
	for _, c := range batch {
		if c == nil {
			continue
		}
		if msg := c(); msg != nil {
			if _, isTick := msg.(tickMsg); !isTick {
				t.Errorf("unexpected message %T", msg)
			}
		}
	}
	if greeted != 1 {
		t.Errorf("greet should run once, got %d", greeted)
	}
}

func TestTitleEmpty(t *testing.T) {
	w, _ := newTestWelcomeWithCounter()
	if w.Title() != "" {
		t.Errorf("expected empty title, got %q", w.Title())
	}
}
