// Package word implements the word record store using PostgreSQL.
// Meanings are stored as JSONB; the string lists as text arrays.
package word

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/tannibunni/dramaword-backend/internal/adapter/postgres"
	"github.com/tannibunni/dramaword-backend/internal/domain"
)

const table = "words"

var columns = []string{
	"id", "term", "phonetic", "audio_url", "meanings", "translations", "derivatives",
	"synonyms", "difficulty", "created_at", "last_queried", "query_count",
}

// Repo provides word persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new word repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// FindByTerm returns the record for a normalized term.
// Returns domain.ErrNotFound if the term was never stored.
func (r *Repo) FindByTerm(ctx context.Context, term string) (*domain.WordRecord, error) {
	query, args, err := postgres.Builder.
		Select(columns...).
		From(table).
		Where(sq.Eq{"term": term}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rec, err := scanWord(postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, "word", term)
	}
	return rec, nil
}

// Upsert inserts rec or, when its term already exists, replaces the content
// columns. The stored id, created_at and query_count are kept on conflict.
// Returns the persisted row.
func (r *Repo) Upsert(ctx context.Context, rec domain.WordRecord) (*domain.WordRecord, error) {
	meanings, err := json.Marshal(nonNilMeanings(rec.Meanings))
	if err != nil {
		return nil, fmt.Errorf("marshal meanings: %w", err)
	}

	query, args, err := postgres.Builder.
		Insert(table).
		Columns(columns...).
		Values(
			rec.ID, rec.Term, rec.Phonetic, rec.AudioURL, meanings,
			nonNil(rec.Translations), nonNil(rec.Derivatives), nonNil(rec.Synonyms),
			rec.Difficulty, rec.CreatedAt, rec.LastQueried, rec.QueryCount,
		).
		Suffix(`ON CONFLICT (term) DO UPDATE SET
			phonetic = EXCLUDED.phonetic,
			audio_url = EXCLUDED.audio_url,
			meanings = EXCLUDED.meanings,
			translations = EXCLUDED.translations,
			derivatives = EXCLUDED.derivatives,
			synonyms = EXCLUDED.synonyms,
			difficulty = EXCLUDED.difficulty,
			last_queried = GREATEST(words.last_queried, EXCLUDED.last_queried)`).
		Suffix("RETURNING " + strings.Join(columns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	saved, err := scanWord(postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, "word", rec.Term)
	}
	return saved, nil
}

// Touch records one more lookup of term at the given time.
// Returns domain.ErrNotFound if the term does not exist.
func (r *Repo) Touch(ctx context.Context, term string, at time.Time) error {
	n, err := postgres.Exec(ctx, postgres.QuerierFromCtx(ctx, r.pool), postgres.Builder.
		Update(table).
		Set("query_count", sq.Expr("query_count + 1")).
		Set("last_queried", at).
		Where(sq.Eq{"term": term}))
	if err != nil {
		return postgres.MapError(err, "word", term)
	}
	if n == 0 {
		return fmt.Errorf("word %s: %w", term, domain.ErrNotFound)
	}
	return nil
}

// List returns stored words, most recently queried first.
// Returns an empty slice (not nil) when there are none.
func (r *Repo) List(ctx context.Context, limit, offset int) ([]domain.WordRecord, error) {
	query, args, err := postgres.Builder.
		Select(columns...).
		From(table).
		OrderBy("last_queried DESC", "term").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, postgres.MapError(err, "word", "list")
	}
	defer rows.Close()

	words := []domain.WordRecord{}
	for rows.Next() {
		rec, err := scanWord(rows)
		if err != nil {
			return nil, postgres.MapError(err, "word", "list")
		}
		words = append(words, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, "word", "list")
	}
	return words, nil
}

// Count returns the number of stored words.
func (r *Repo) Count(ctx context.Context) (int, error) {
	query, args, err := postgres.Builder.Select("count(*)").From(table).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	var n int
	if err := postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, postgres.MapError(err, "word", "count")
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// Scanning
// ---------------------------------------------------------------------------

func scanWord(row pgx.Row) (*domain.WordRecord, error) {
	var (
		rec      domain.WordRecord
		meanings []byte
	)
	err := row.Scan(
		&rec.ID, &rec.Term, &rec.Phonetic, &rec.AudioURL, &meanings,
		&rec.Translations, &rec.Derivatives, &rec.Synonyms,
		&rec.Difficulty, &rec.CreatedAt, &rec.LastQueried, &rec.QueryCount,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(meanings, &rec.Meanings); err != nil {
		return nil, fmt.Errorf("unmarshal meanings: %w", err)
	}
	rec.Meanings = nonNilMeanings(rec.Meanings)
	rec.Translations = nonNil(rec.Translations)
	rec.Derivatives = nonNil(rec.Derivatives)
	rec.Synonyms = nonNil(rec.Synonyms)
	return &rec, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilMeanings(m []domain.Meaning) []domain.Meaning {
	if m == nil {
		return []domain.Meaning{}
	}
	return m
}
