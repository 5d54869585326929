package testhelper

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tannibunni/dramaword-backend/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedWord inserts a word with a unique term and returns it.
func SeedWord(t *testing.T, pool *pgxpool.Pool) domain.WordRecord {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Microsecond)
	word := domain.WordRecord{
		ID:       uuid.New(),
		Term:     "word-" + uniqueSuffix(),
		Phonetic: "wɜːd",
		Meanings: []domain.Meaning{{
			PartOfSpeech:        "noun",
			Definition:          "A unit of language.",
			DefinitionLocalized: "单词",
		}},
		Translations: []string{"单词"},
		Derivatives:  []string{},
		Synonyms:     []string{"term"},
		Difficulty:   2,
		CreatedAt:    now,
		LastQueried:  now,
		QueryCount:   1,
	}

	meanings, err := json.Marshal(word.Meanings)
	if err != nil {
		t.Fatalf("testhelper: SeedWord marshal meanings: %v", err)
	}

	_, err = pool.Exec(context.Background(),
		`INSERT INTO words (id, term, phonetic, audio_url, meanings, translations, derivatives, synonyms,
		                    difficulty, created_at, last_queried, query_count)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		word.ID, word.Term, word.Phonetic, word.AudioURL, meanings, word.Translations, word.Derivatives,
		word.Synonyms, word.Difficulty, word.CreatedAt, word.LastQueried, word.QueryCount,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedWord insert: %v", err)
	}

	return word
}
