package review

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/tannibunni/dramaword-backend/internal/domain"
)

// baseIntervals is the day progression for a word answered at the default
// difficulty. Higher difficulty compresses it, lower stretches it.
var baseIntervals = [...]int{1, 3, 7, 15, 30, 90}

const (
	correctStep   = 0.1
	incorrectStep = 0.2
)

// NextInterval returns the number of days until the next review for a word
// that has been reviewed reviewCount times at the given difficulty. Always ≥ 1.
func NextInterval(reviewCount int, difficulty float64) int {
	idx := min(max(reviewCount-1, 0), len(baseIntervals)-1)
	// The epsilon absorbs float error such as 6-5.4 = 0.5999….
	days := int(math.Floor(float64(baseIntervals[idx])*(6-difficulty)/3 + 1e-9))
	return max(days, 1)
}

// Advance is a pure function. It applies one review outcome on today (a
// calendar date from domain.DateOf) to prev, or creates a new schedule when
// prev is nil.
func Advance(prev *domain.ReviewSchedule, wordID uuid.UUID, correct bool, today time.Time) domain.ReviewSchedule {
	if prev == nil {
		next := today
		if correct {
			next = domain.AddDays(today, 1)
		}
		return domain.ReviewSchedule{
			WordID:         wordID,
			NextReviewDate: next,
			ReviewCount:    1,
			CorrectCount:   boolToInt(correct),
			Difficulty:     domain.InitialReviewDifficulty,
			LastReviewed:   today,
			CreatedAt:      today,
		}
	}

	s := *prev
	s.ReviewCount++
	if correct {
		s.CorrectCount++
		s.Difficulty = clampDifficulty(s.Difficulty - correctStep)
		s.NextReviewDate = domain.AddDays(today, NextInterval(s.ReviewCount, s.Difficulty))
	} else {
		s.Difficulty = clampDifficulty(s.Difficulty + incorrectStep)
		s.NextReviewDate = domain.AddDays(today, max(1, NextInterval(s.ReviewCount, s.Difficulty)/2))
	}
	s.LastReviewed = today
	return s
}

// clampDifficulty keeps one decimal so repeated ±0.1 steps do not drift.
func clampDifficulty(d float64) float64 {
	d = math.Round(d*10) / 10
	return min(max(d, domain.MinReviewDifficulty), domain.MaxReviewDifficulty)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
