package store

import (
	"context"
	"time"
)

// DefaultTopLimit is the leaderboard size used when no limit is given.
const DefaultTopLimit = 10

// Setting keys.
const (
	SettingWelcomePlayed = "welcome_played"
)

// Result is one completed game.
type Result struct {
	ID          string
	Player      string
	Difficulty  string
	Policy      string
	Score       int
	Moves       int
	Duration    time.Duration
	CompletedAt time.Time
}

// DifficultyStats aggregates results for one difficulty.
type DifficultyStats struct {
	Difficulty string
	Played     int
	BestScore  int
}

// ResultRepo manages completed game results.
type ResultRepo interface {
	// Append stores a result. An empty ID is replaced with a new one.
	Append(ctx context.Context, r *Result) error

	// Top returns the best results, highest score first and faster games
	// breaking ties. An empty difficulty (or "all") matches every difficulty.
	Top(ctx context.Context, difficulty string, limit int) ([]Result, error)

	// Stats returns per-difficulty aggregates ordered by difficulty name.
	Stats(ctx context.Context) ([]DifficultyStats, error)

	// Clear deletes every result.
	Clear(ctx context.Context) error
}

// SettingsRepo is a small key-value store for local flags.
type SettingsRepo interface {
	// GetBool returns the flag value, false if it was never set.
	GetBool(ctx context.Context, key string) (bool, error)

	// SetBool stores a flag value.
	SetBool(ctx context.Context, key string, v bool) error

	// Clear deletes every setting.
	Clear(ctx context.Context) error
}
