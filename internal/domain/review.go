package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Review difficulty bounds. Independent of WordRecord.Difficulty.
const (
	MinReviewDifficulty     = 1.0
	MaxReviewDifficulty     = 5.0
	InitialReviewDifficulty = 3.0
)

// ReviewSchedule tracks when a word should be shown again.
// Dates are calendar days (see DateOf).
type ReviewSchedule struct {
	WordID         uuid.UUID `json:"wordId"`
	NextReviewDate time.Time `json:"nextReviewDate"`
	ReviewCount    int       `json:"reviewCount"`
	CorrectCount   int       `json:"correctCount"`
	Difficulty     float64   `json:"difficulty"`
	LastReviewed   time.Time `json:"lastReviewed"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Validate checks the schedule invariants. A schedule that fails
// validation is treated as malformed and reinitialized by the scheduler.
func (s *ReviewSchedule) Validate() error {
	switch {
	case s.WordID == uuid.Nil:
		return fmt.Errorf("%w: empty word id", ErrMalformed)
	case s.ReviewCount < 0 || s.CorrectCount < 0:
		return fmt.Errorf("%w: negative counters", ErrMalformed)
	case s.CorrectCount > s.ReviewCount:
		return fmt.Errorf("%w: correct count %d exceeds review count %d", ErrMalformed, s.CorrectCount, s.ReviewCount)
	case s.Difficulty < MinReviewDifficulty || s.Difficulty > MaxReviewDifficulty:
		return fmt.Errorf("%w: difficulty %.2f out of range", ErrMalformed, s.Difficulty)
	case s.NextReviewDate.IsZero():
		return fmt.Errorf("%w: missing next review date", ErrMalformed)
	}
	return nil
}

// ReviewSession aggregates one calendar day of reviewing.
type ReviewSession struct {
	Date           time.Time `json:"date"`
	WordsReviewed  int       `json:"wordsReviewed"`
	CorrectAnswers int       `json:"correctAnswers"`
	Accuracy       int       `json:"accuracy"`
}
