// Package session implements the daily review session store using PostgreSQL.
// There is at most one row per calendar date.
package session

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/tannibunni/dramaword-backend/internal/adapter/postgres"
	"github.com/tannibunni/dramaword-backend/internal/domain"
)

const table = "review_sessions"

var columns = []string{"date", "words_reviewed", "correct_answers", "accuracy"}

// Repo provides review session persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new session repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Get returns the session of a calendar date, locking the row when called
// inside a transaction. Returns domain.ErrNotFound if there is none.
func (r *Repo) Get(ctx context.Context, date time.Time) (*domain.ReviewSession, error) {
	query, args, err := postgres.Builder.
		Select(columns...).
		From(table).
		Where(sq.Eq{"date": date}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	s, err := scanSession(postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, "review_session", date.Format(time.DateOnly))
	}
	return s, nil
}

// Upsert writes s, replacing the session of the same date.
func (r *Repo) Upsert(ctx context.Context, s domain.ReviewSession) error {
	_, err := postgres.Exec(ctx, postgres.QuerierFromCtx(ctx, r.pool), postgres.Builder.
		Insert(table).
		Columns(columns...).
		Values(s.Date, s.WordsReviewed, s.CorrectAnswers, s.Accuracy).
		Suffix(`ON CONFLICT (date) DO UPDATE SET
			words_reviewed = EXCLUDED.words_reviewed,
			correct_answers = EXCLUDED.correct_answers,
			accuracy = EXCLUDED.accuracy`))
	if err != nil {
		return postgres.MapError(err, "review_session", s.Date.Format(time.DateOnly))
	}
	return nil
}

// ListSince returns sessions dated on or after since, newest first.
// Returns an empty slice (not nil) when there are none.
func (r *Repo) ListSince(ctx context.Context, since time.Time) ([]domain.ReviewSession, error) {
	query, args, err := postgres.Builder.
		Select(columns...).
		From(table).
		Where(sq.GtOrEq{"date": since}).
		OrderBy("date DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, postgres.MapError(err, "review_session", "list")
	}
	defer rows.Close()

	sessions := []domain.ReviewSession{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, postgres.MapError(err, "review_session", "list")
		}
		sessions = append(sessions, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, "review_session", "list")
	}
	return sessions, nil
}

// DeleteBefore removes sessions dated strictly before cutoff and returns how
// many were removed.
func (r *Repo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	n, err := postgres.Exec(ctx, postgres.QuerierFromCtx(ctx, r.pool), postgres.Builder.
		Delete(table).
		Where(sq.Lt{"date": cutoff}))
	if err != nil {
		return 0, postgres.MapError(err, "review_session", "prune")
	}
	return n, nil
}

func scanSession(row pgx.Row) (*domain.ReviewSession, error) {
	var s domain.ReviewSession
	if err := row.Scan(&s.Date, &s.WordsReviewed, &s.CorrectAnswers, &s.Accuracy); err != nil {
		return nil, err
	}
	return &s, nil
}
