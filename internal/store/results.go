package store

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

const gamesTable = "games"

// resultRepo implements ResultRepo with ent's SQL builder.
type resultRepo struct {
	drv *entsql.Driver
}

func (r *resultRepo) Append(ctx context.Context, res *Result) error {
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	if res.CompletedAt.IsZero() {
		res.CompletedAt = time.Now()
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(gamesTable).
		Columns("id", "player", "difficulty", "policy", "score", "moves", "duration_ms", "completed_at").
		Values(res.ID, res.Player, res.Difficulty, res.Policy, res.Score, res.Moves,
			res.Duration.Milliseconds(), res.CompletedAt.UnixMilli()).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	return nil
}

func (r *resultRepo) Top(ctx context.Context, difficulty string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = DefaultTopLimit
	}

	b := entsql.Dialect(dialect.SQLite)
	sel := b.Select("id", "player", "difficulty", "policy", "score", "moves", "duration_ms", "completed_at").
		From(b.Table(gamesTable)).
		OrderBy(entsql.Desc("score"), entsql.Asc("duration_ms"), entsql.Asc("completed_at")).
		Limit(limit)
	if difficulty != "" && difficulty != "all" {
		sel.Where(entsql.EQ("difficulty", difficulty))
	}

	query, args := sel.Query()
	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("query top results: %w", err)
	}
	defer rows.Close()

	var out []Result
	for rows.Next() {
		var (
			res        Result
			durationMs int64
			completed  int64
		)
		if err := rows.Scan(&res.ID, &res.Player, &res.Difficulty, &res.Policy,
			&res.Score, &res.Moves, &durationMs, &completed); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		res.Duration = time.Duration(durationMs) * time.Millisecond
		res.CompletedAt = time.UnixMilli(completed)
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return out, nil
}

func (r *resultRepo) Stats(ctx context.Context) ([]DifficultyStats, error) {
	b := entsql.Dialect(dialect.SQLite)
	query, args := b.Select("difficulty", entsql.Count("*"), entsql.Max("score")).
		From(b.Table(gamesTable)).
		GroupBy("difficulty").
		OrderBy(entsql.Asc("difficulty")).
		Query()

	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	var out []DifficultyStats
	for rows.Next() {
		var st DifficultyStats
		if err := rows.Scan(&st.Difficulty, &st.Played, &st.BestScore); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stats: %w", err)
	}
	return out, nil
}

func (r *resultRepo) Clear(ctx context.Context) error {
	query, args := entsql.Dialect(dialect.SQLite).Delete(gamesTable).Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("clear results: %w", err)
	}
	return nil
}
