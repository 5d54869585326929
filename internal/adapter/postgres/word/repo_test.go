package word_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tannibunni/dramaword-backend/internal/adapter/postgres/testhelper"
	"github.com/tannibunni/dramaword-backend/internal/adapter/postgres/word"
	"github.com/tannibunni/dramaword-backend/internal/domain"
)

func newRecord(term string, now time.Time) domain.WordRecord {
	return domain.WordRecord{
		ID:       uuid.New(),
		Term:     term,
		Phonetic: "tɛl",
		AudioURL: "https://example.com/tell.mp3",
		Meanings: []domain.Meaning{
			{PartOfSpeech: "verb", Definition: "To say.", DefinitionLocalized: "告诉", ExampleSource: "Tell me.", ExampleLocalized: "告诉我。"},
		},
		Translations: []string{"告诉", "讲述"},
		Derivatives:  []string{"teller"},
		Synonyms:     []string{"inform"},
		Difficulty:   2,
		CreatedAt:    now,
		LastQueried:  now,
		QueryCount:   1,
	}
}

func TestRepo_UpsertAndFind(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := word.New(pool)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	rec := newRecord("tell-"+uuid.NewString()[:8], now)
	saved, err := repo.Upsert(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, saved.ID)

	got, err := repo.FindByTerm(ctx, rec.Term)
	require.NoError(t, err)
	assert.Equal(t, rec.Term, got.Term)
	assert.Equal(t, rec.Phonetic, got.Phonetic)
	assert.Equal(t, rec.AudioURL, got.AudioURL)
	assert.Equal(t, rec.Meanings, got.Meanings)
	assert.Equal(t, rec.Translations, got.Translations)
	assert.Equal(t, rec.Derivatives, got.Derivatives)
	assert.Equal(t, rec.Synonyms, got.Synonyms)
	assert.Equal(t, 2, got.Difficulty)
	assert.Equal(t, 1, got.QueryCount)
	assert.True(t, got.CreatedAt.Equal(now))
}

func TestRepo_UpsertConflictKeepsIdentity(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := word.New(pool)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	term := "run-" + uuid.NewString()[:8]
	first, err := repo.Upsert(ctx, newRecord(term, now))
	require.NoError(t, err)

	second := newRecord(term, now.Add(time.Hour))
	second.Difficulty = 4
	second.Translations = []string{"跑"}
	saved, err := repo.Upsert(ctx, second)
	require.NoError(t, err)

	assert.Equal(t, first.ID, saved.ID, "id survives a conflicting upsert")
	assert.Equal(t, 4, saved.Difficulty)
	assert.Equal(t, []string{"跑"}, saved.Translations)
	assert.True(t, saved.CreatedAt.Equal(now))
}

func TestRepo_UpsertEmptyLists(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := word.New(pool)
	ctx := context.Background()

	rec := domain.NewPlaceholderRecord("zzz-"+uuid.NewString()[:8], time.Now().UTC())
	rec.Translations = nil

	_, err := repo.Upsert(ctx, rec)
	require.NoError(t, err)

	got, err := repo.FindByTerm(ctx, rec.Term)
	require.NoError(t, err)
	assert.True(t, got.IsPlaceholder())
	assert.NotNil(t, got.Translations)
	assert.Empty(t, got.Translations)
}

func TestRepo_FindByTerm_NotFound(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := word.New(pool)

	_, err := repo.FindByTerm(context.Background(), "missing-"+uuid.NewString())
	assert.True(t, errors.Is(err, domain.ErrNotFound), "got %v", err)
}

func TestRepo_Touch(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := word.New(pool)
	ctx := context.Background()

	seeded := testhelper.SeedWord(t, pool)
	later := seeded.LastQueried.Add(time.Hour)

	require.NoError(t, repo.Touch(ctx, seeded.Term, later))
	require.NoError(t, repo.Touch(ctx, seeded.Term, later))

	got, err := repo.FindByTerm(ctx, seeded.Term)
	require.NoError(t, err)
	assert.Equal(t, seeded.QueryCount+2, got.QueryCount)
	assert.True(t, got.LastQueried.Equal(later))

	err = repo.Touch(ctx, "missing-"+uuid.NewString(), later)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRepo_ListAndCount(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	testhelper.Truncate(t, pool, "words")
	repo := word.New(pool)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Microsecond)

	for i, term := range []string{"alpha", "beta", "gamma"} {
		rec := newRecord(term, base.Add(time.Duration(i)*time.Minute))
		_, err := repo.Upsert(ctx, rec)
		require.NoError(t, err)
	}

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	page, err := repo.List(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "gamma", page[0].Term)
	assert.Equal(t, "beta", page[1].Term)

	page, err = repo.List(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "alpha", page[0].Term)

	page, err = repo.List(ctx, 2, 10)
	require.NoError(t, err)
	assert.NotNil(t, page)
	assert.Empty(t, page)
}
