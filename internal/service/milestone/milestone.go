// Package milestone detects vocabulary-size milestones. Each threshold is
// celebrated at most once.
package milestone

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/tannibunni/dramaword-backend/internal/domain"
)

// Thresholds are the vocabulary sizes worth celebrating, ascending.
var Thresholds = []int{
	10, 20, 30, 40, 50, 75, 100, 150, 200, 300, 500, 750,
	1000, 1500, 2000, 3000, 5000, 10000,
}

// CheckMilestone is a pure function. It returns the smallest threshold that
// currentCount has reached and that is not yet in the history, or nil.
func CheckMilestone(state domain.MilestoneState, currentCount int) *domain.Milestone {
	for _, threshold := range Thresholds {
		if threshold > currentCount {
			return nil
		}
		if !state.Celebrated(threshold) {
			m := newMilestone(threshold)
			return &m
		}
	}
	return nil
}

func newMilestone(threshold int) domain.Milestone {
	var message string
	switch {
	case threshold < 100:
		message = fmt.Sprintf("You have collected %d words. Keep going!", threshold)
	case threshold < 1000:
		message = fmt.Sprintf("%d words in your vocabulary. Your shows are getting easier to follow.", threshold)
	default:
		message = fmt.Sprintf("%d words! You are reading like a native.", threshold)
	}
	return domain.Milestone{
		Threshold: threshold,
		Title:     fmt.Sprintf("%d words", threshold),
		Message:   message,
	}
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

type wordCounter interface {
	Count(ctx context.Context) (int, error)
}

type historyRepo interface {
	History(ctx context.Context) (domain.MilestoneState, error)
	Record(ctx context.Context, threshold, totalWords int) (bool, error)
}

// Service checks the stored vocabulary size against the celebration history.
type Service struct {
	log     *slog.Logger
	words   wordCounter
	history historyRepo
}

// NewService creates a new milestone service.
func NewService(logger *slog.Logger, words wordCounter, history historyRepo) *Service {
	return &Service{
		log:     logger.With("service", "milestone"),
		words:   words,
		history: history,
	}
}

// RecordMilestone appends threshold to the history with a snapshot of the
// word count. Recording the same threshold again is a no-op.
func (s *Service) RecordMilestone(ctx context.Context, threshold, totalWords int) error {
	if !slices.Contains(Thresholds, threshold) {
		return domain.NewValidationError("threshold", "unknown threshold")
	}
	if totalWords < 0 {
		return domain.NewValidationError("total_words", "must not be negative")
	}

	if _, err := s.history.Record(ctx, threshold, totalWords); err != nil {
		return fmt.Errorf("record milestone: %w", err)
	}
	return nil
}

// Celebrate returns the next uncelebrated milestone reached by the stored
// vocabulary and records it, or nil when there is nothing to celebrate.
func (s *Service) Celebrate(ctx context.Context) (*domain.Milestone, error) {
	count, err := s.words.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count words: %w", err)
	}

	state, err := s.history.History(ctx)
	if err != nil {
		return nil, fmt.Errorf("milestone history: %w", err)
	}

	m := CheckMilestone(state, count)
	if m == nil {
		return nil, nil
	}

	inserted, err := s.history.Record(ctx, m.Threshold, count)
	if err != nil {
		return nil, fmt.Errorf("record milestone: %w", err)
	}
	if !inserted {
		// A concurrent call celebrated it first.
		return nil, nil
	}

	s.log.InfoContext(ctx, "milestone reached",
		slog.Int("threshold", m.Threshold),
		slog.Int("total_words", count),
	)
	return m, nil
}
