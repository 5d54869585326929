// Package milestone implements the milestone celebration history using PostgreSQL.
package milestone

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/tannibunni/dramaword-backend/internal/adapter/postgres"
	"github.com/tannibunni/dramaword-backend/internal/domain"
)

const table = "milestones"

// Repo provides milestone persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new milestone repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// History returns every celebrated threshold and the word count recorded
// with the most recent one.
func (r *Repo) History(ctx context.Context) (domain.MilestoneState, error) {
	state := domain.MilestoneState{CelebrationHistory: map[int]struct{}{}}

	query, args, err := postgres.Builder.
		Select("threshold", "total_words").
		From(table).
		OrderBy("celebrated_at", "threshold").
		ToSql()
	if err != nil {
		return state, fmt.Errorf("build query: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return state, postgres.MapError(err, "milestone", "history")
	}
	defer rows.Close()

	for rows.Next() {
		var threshold, total int
		if err := rows.Scan(&threshold, &total); err != nil {
			return state, postgres.MapError(err, "milestone", "history")
		}
		state.CelebrationHistory[threshold] = struct{}{}
		state.TotalWords = total
	}
	if err := rows.Err(); err != nil {
		return state, postgres.MapError(err, "milestone", "history")
	}
	return state, nil
}

// Record appends threshold to the history. Recording a threshold twice
// keeps the first row and reports inserted=false.
func (r *Repo) Record(ctx context.Context, threshold, totalWords int) (inserted bool, err error) {
	n, err := postgres.Exec(ctx, postgres.QuerierFromCtx(ctx, r.pool), postgres.Builder.
		Insert(table).
		Columns("threshold", "total_words").
		Values(threshold, totalWords).
		Suffix("ON CONFLICT (threshold) DO NOTHING"))
	if err != nil {
		return false, postgres.MapError(err, "milestone", threshold)
	}
	return n == 1, nil
}
