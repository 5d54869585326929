// Package schedule implements the review schedule store using PostgreSQL.
package schedule

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/tannibunni/dramaword-backend/internal/adapter/postgres"
	"github.com/tannibunni/dramaword-backend/internal/domain"
)

const table = "review_schedules"

var columns = []string{
	"word_id", "next_review_date", "review_count", "correct_count",
	"difficulty", "last_reviewed", "created_at",
}

// Repo provides review schedule persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new schedule repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Get returns the schedule of a word, locking the row when called inside a
// transaction. Returns domain.ErrNotFound if the word was never reviewed.
func (r *Repo) Get(ctx context.Context, wordID uuid.UUID) (*domain.ReviewSchedule, error) {
	query, args, err := postgres.Builder.
		Select(columns...).
		From(table).
		Where(sq.Eq{"word_id": wordID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var s domain.ReviewSchedule
	err = postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...).Scan(
		&s.WordID, &s.NextReviewDate, &s.ReviewCount, &s.CorrectCount,
		&s.Difficulty, &s.LastReviewed, &s.CreatedAt,
	)
	if err != nil {
		return nil, postgres.MapError(err, "review_schedule", wordID)
	}
	return &s, nil
}

// Upsert writes s, replacing any existing schedule of the same word except
// its created_at. Returns domain.ErrNotFound if the word does not exist.
func (r *Repo) Upsert(ctx context.Context, s domain.ReviewSchedule) error {
	_, err := postgres.Exec(ctx, postgres.QuerierFromCtx(ctx, r.pool), postgres.Builder.
		Insert(table).
		Columns(columns...).
		Values(s.WordID, s.NextReviewDate, s.ReviewCount, s.CorrectCount, s.Difficulty, s.LastReviewed, s.CreatedAt).
		Suffix(`ON CONFLICT (word_id) DO UPDATE SET
			next_review_date = EXCLUDED.next_review_date,
			review_count = EXCLUDED.review_count,
			correct_count = EXCLUDED.correct_count,
			difficulty = EXCLUDED.difficulty,
			last_reviewed = EXCLUDED.last_reviewed`))
	if err != nil {
		return postgres.MapError(err, "review_schedule", s.WordID)
	}
	return nil
}

// ListDue returns the ids of words due on or before day, earliest date first
// and then in creation order, at most limit of them.
func (r *Repo) ListDue(ctx context.Context, day time.Time, limit int) ([]uuid.UUID, error) {
	query, args, err := postgres.Builder.
		Select("word_id").
		From(table).
		Where(sq.LtOrEq{"next_review_date": day}).
		OrderBy("next_review_date", "created_at", "word_id").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, postgres.MapError(err, "review_schedule", "due")
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, postgres.MapError(err, "review_schedule", "due")
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, "review_schedule", "due")
	}
	return ids, nil
}

// DeleteAll removes every schedule and returns how many were removed.
func (r *Repo) DeleteAll(ctx context.Context) (int64, error) {
	n, err := postgres.Exec(ctx, postgres.QuerierFromCtx(ctx, r.pool), postgres.Builder.Delete(table))
	if err != nil {
		return 0, postgres.MapError(err, "review_schedule", "all")
	}
	return n, nil
}
