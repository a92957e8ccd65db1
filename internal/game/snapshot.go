package game

import (
	"time"

	"github.com/abhisek/memoria/internal/deck"
)

// Card is a single card on the board.
type Card struct {
	ID        string `json:"id"`
	Face      string `json:"face"`
	FaceUp    bool   `json:"face_up"`
	Matched   bool   `json:"matched"`
	FlipCount int    `json:"flip_count"`
}

// Revealed reports whether the card's face is visible.
func (c Card) Revealed() bool {
	return c.FaceUp || c.Matched
}

// Snapshot is a read-only deep copy of the engine state.
type Snapshot struct {
	Generation uint64          `json:"generation"`
	Difficulty deck.Difficulty `json:"difficulty"`
	Policy     string          `json:"policy"`
	Cards      []Card          `json:"cards"`
	Score      int             `json:"score"`
	Moves      int             `json:"moves"`
	Pending    []int           `json:"pending,omitempty"`
	Locked     bool            `json:"locked"`
	Completed  bool            `json:"completed"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at,omitzero"`
}

// Pairs returns the number of pairs dealt.
func (s Snapshot) Pairs() int {
	return len(s.Cards) / 2
}

// MatchedPairs returns the number of pairs found so far.
func (s Snapshot) MatchedPairs() int {
	n := 0
	for _, c := range s.Cards {
		if c.Matched {
			n++
		}
	}
	return n / 2
}

// Elapsed returns play time, frozen once the game is completed.
func (s Snapshot) Elapsed(now time.Time) time.Duration {
	if s.StartedAt.IsZero() {
		return 0
	}
	if !s.FinishedAt.IsZero() {
		return s.FinishedAt.Sub(s.StartedAt)
	}
	return now.Sub(s.StartedAt)
}

// Masked returns a copy with the faces of hidden cards cleared, suitable
// for sending to remote players.
func (s Snapshot) Masked() Snapshot {
	out := s
	out.Cards = make([]Card, len(s.Cards))
	for i, c := range s.Cards {
		if !c.Revealed() {
			c.Face = ""
		}
		out.Cards[i] = c
	}
	out.Pending = append([]int(nil), s.Pending...)
	return out
}
