package domain

import (
	"time"

	"github.com/google/uuid"
)

// Record limits and defaults.
const (
	MaxMeanings       = 3
	MaxTranslations   = 4
	DefaultDifficulty = 3
	MinDifficulty     = 1
	MaxDifficulty     = 5

	// PlaceholderPartOfSpeech marks meanings that carry no real definition.
	PlaceholderPartOfSpeech = "unknown"
	// PlaceholderDefinition is shown when no source could define a term.
	PlaceholderDefinition = "no definition available"
)

// Meaning is one sense of a word.
// Definition is in the source language (English); DefinitionLocalized is
// in the learner's language. Either may be empty depending on which source
// produced the meaning.
type Meaning struct {
	PartOfSpeech        string `json:"partOfSpeech"`
	Definition          string `json:"definition,omitempty"`
	DefinitionLocalized string `json:"definitionLocalized,omitempty"`
	ExampleSource       string `json:"exampleSource,omitempty"`
	ExampleLocalized    string `json:"exampleLocalized,omitempty"`
}

// WordRecord is the canonical, merged definition record of a term.
type WordRecord struct {
	ID           uuid.UUID `json:"id"`
	Term         string    `json:"term"`
	Phonetic     string    `json:"phonetic,omitempty"`
	AudioURL     string    `json:"audioUrl,omitempty"`
	Meanings     []Meaning `json:"meanings"`
	Translations []string  `json:"translations"`
	Derivatives  []string  `json:"derivatives"`
	Synonyms     []string  `json:"synonyms"`
	Difficulty   int       `json:"difficulty"`
	CreatedAt    time.Time `json:"createdAt"`
	LastQueried  time.Time `json:"lastQueried"`
	QueryCount   int       `json:"queryCount"`
}

// IsPlaceholder reports whether the record is the "no definition" fallback.
func (w *WordRecord) IsPlaceholder() bool {
	return len(w.Meanings) == 1 &&
		w.Meanings[0].PartOfSpeech == PlaceholderPartOfSpeech &&
		w.Meanings[0].DefinitionLocalized == PlaceholderDefinition
}

// NewPlaceholderRecord builds the fallback record used when every source
// failed for term. term must already be normalized.
func NewPlaceholderRecord(term string, now time.Time) WordRecord {
	return WordRecord{
		ID:   uuid.New(),
		Term: term,
		Meanings: []Meaning{{
			PartOfSpeech:        PlaceholderPartOfSpeech,
			DefinitionLocalized: PlaceholderDefinition,
		}},
		Translations: []string{},
		Derivatives:  []string{},
		Synonyms:     []string{},
		Difficulty:   DefaultDifficulty,
		CreatedAt:    now,
		LastQueried:  now,
	}
}

// ClampDifficulty forces a content difficulty into [MinDifficulty, MaxDifficulty].
func ClampDifficulty(d int) int {
	if d < MinDifficulty {
		return MinDifficulty
	}
	if d > MaxDifficulty {
		return MaxDifficulty
	}
	return d
}
