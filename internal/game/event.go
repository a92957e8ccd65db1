package game

// EventKind identifies an engine state change.
type EventKind int

const (
	EventReset EventKind = iota
	EventFlipped
	EventLocked
	EventMatched
	EventMismatched
	EventUnlocked
	EventCompleted
)

var eventNames = map[EventKind]string{
	EventReset:      "reset",
	EventFlipped:    "flipped",
	EventLocked:     "locked",
	EventMatched:    "matched",
	EventMismatched: "mismatched",
	EventUnlocked:   "unlocked",
	EventCompleted:  "completed",
}

func (k EventKind) String() string {
	if s, ok := eventNames[k]; ok {
		return s
	}
	return "unknown"
}

// MarshalText lets events serialize with readable kinds.
func (k EventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Event describes one state change. Cards holds the indices involved and
// ScoreDelta the score change caused by a resolution.
type Event struct {
	Kind       EventKind `json:"kind"`
	Generation uint64    `json:"generation"`
	Cards      []int     `json:"cards,omitempty"`
	ScoreDelta int       `json:"score_delta,omitempty"`
}

// Observer receives engine events. Observers run after the engine lock is
// released and may call back into the engine.
type Observer func(Event)

// Feedback receives fire-and-forget cues when a pair resolves.
type Feedback interface {
	Success()
	Failure()
}

type nopFeedback struct{}

func (nopFeedback) Success() {}
func (nopFeedback) Failure() {}
