// Package review schedules word re-exposure and tracks daily review sessions.
package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/tannibunni/dramaword-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type scheduleRepo interface {
	Get(ctx context.Context, wordID uuid.UUID) (*domain.ReviewSchedule, error)
	Upsert(ctx context.Context, s domain.ReviewSchedule) error
	ListDue(ctx context.Context, day time.Time, limit int) ([]uuid.UUID, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type sessionRepo interface {
	Get(ctx context.Context, date time.Time) (*domain.ReviewSession, error)
	Upsert(ctx context.Context, s domain.ReviewSession) error
	ListSince(ctx context.Context, since time.Time) ([]domain.ReviewSession, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Config controls the calendar and limits of the scheduler.
type Config struct {
	// Location defines "today". Nil means UTC.
	Location             *time.Location
	DailyLimit           int
	SessionRetentionDays int
}

// Service implements the review scheduler.
type Service struct {
	log       *slog.Logger
	tx        txManager
	schedules scheduleRepo
	sessions  sessionRepo
	cfg       Config
	now       func() time.Time
}

// NewService creates a new review service.
func NewService(
	logger *slog.Logger,
	tx txManager,
	schedules scheduleRepo,
	sessions sessionRepo,
	cfg Config,
) *Service {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.DailyLimit <= 0 {
		cfg.DailyLimit = 20
	}
	if cfg.SessionRetentionDays <= 0 {
		cfg.SessionRetentionDays = 30
	}
	return &Service{
		log:       logger.With("service", "review"),
		tx:        tx,
		schedules: schedules,
		sessions:  sessions,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *Service) today() time.Time {
	return domain.DateOf(s.now(), s.cfg.Location)
}

// ---------------------------------------------------------------------------
// Schedules
// ---------------------------------------------------------------------------

// UpdateReview records one review outcome for a word and returns the new
// schedule. When the store cannot be reached the outcome is dropped: the
// error is logged and (nil, nil) is returned. An unknown word yields
// domain.ErrNotFound.
func (s *Service) UpdateReview(ctx context.Context, wordID uuid.UUID, correct bool) (*domain.ReviewSchedule, error) {
	if wordID == uuid.Nil {
		return nil, domain.NewValidationError("word_id", "required")
	}

	today := s.today()
	var updated domain.ReviewSchedule

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		prev, err := s.schedules.Get(ctx, wordID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			prev = nil
		case err != nil:
			return fmt.Errorf("get schedule: %w", err)
		default:
			if verr := prev.Validate(); verr != nil {
				s.log.WarnContext(ctx, "malformed schedule reinitialized",
					slog.String("word_id", wordID.String()),
					slog.String("error", verr.Error()),
				)
				prev = nil
			}
		}

		updated = Advance(prev, wordID, correct, today)
		if prev != nil {
			updated.CreatedAt = prev.CreatedAt
		}

		if err := s.schedules.Upsert(ctx, updated); err != nil {
			return fmt.Errorf("upsert schedule: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrValidation) ||
			errors.Is(err, context.Canceled) {
			return nil, err
		}
		s.log.ErrorContext(ctx, "review not recorded",
			slog.String("word_id", wordID.String()),
			slog.Bool("correct", correct),
			slog.String("error", err.Error()),
		)
		return nil, nil
	}

	s.log.InfoContext(ctx, "review recorded",
		slog.String("word_id", wordID.String()),
		slog.Bool("correct", correct),
		slog.Int("review_count", updated.ReviewCount),
		slog.Float64("difficulty", updated.Difficulty),
		slog.Time("next_review_date", updated.NextReviewDate),
	)

	return &updated, nil
}

// DueToday returns the ids of words due for review today, earliest first.
func (s *Service) DueToday(ctx context.Context) ([]uuid.UUID, error) {
	ids, err := s.schedules.ListDue(ctx, s.today(), s.cfg.DailyLimit)
	if err != nil {
		return nil, fmt.Errorf("list due schedules: %w", err)
	}
	return ids, nil
}

// Reset removes every schedule. Words become new again on their next review.
func (s *Service) Reset(ctx context.Context) (int64, error) {
	n, err := s.schedules.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("reset schedules: %w", err)
	}
	s.log.InfoContext(ctx, "schedules reset", slog.Int64("deleted", n))
	return n, nil
}

// ---------------------------------------------------------------------------
// Sessions
// ---------------------------------------------------------------------------

// RecordSession adds a batch of answers to today's session. Repeated calls on
// the same day accumulate. Sessions older than the retention window are
// pruned on every write.
func (s *Service) RecordSession(ctx context.Context, correct, total int) (*domain.ReviewSession, error) {
	var errs []domain.FieldError
	if total < 0 {
		errs = append(errs, domain.FieldError{Field: "total", Message: "must not be negative"})
	}
	if correct < 0 {
		errs = append(errs, domain.FieldError{Field: "correct", Message: "must not be negative"})
	}
	if correct > total {
		errs = append(errs, domain.FieldError{Field: "correct", Message: "must not exceed total"})
	}
	if len(errs) > 0 {
		return nil, domain.NewValidationErrors(errs)
	}

	today := s.today()
	var session domain.ReviewSession

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		existing, err := s.sessions.Get(ctx, today)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			session = domain.ReviewSession{Date: today}
		case err != nil:
			return fmt.Errorf("get session: %w", err)
		default:
			session = *existing
		}

		session.WordsReviewed += total
		session.CorrectAnswers += correct
		session.Accuracy = accuracy(session.CorrectAnswers, session.WordsReviewed)

		if err := s.sessions.Upsert(ctx, session); err != nil {
			return fmt.Errorf("upsert session: %w", err)
		}

		cutoff := domain.AddDays(today, -s.cfg.SessionRetentionDays)
		pruned, err := s.sessions.DeleteBefore(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("prune sessions: %w", err)
		}
		if pruned > 0 {
			s.log.DebugContext(ctx, "old sessions pruned", slog.Int64("count", pruned))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &session, nil
}

// LearningStreak returns the number of consecutive days with a session,
// ending today or yesterday.
func (s *Service) LearningStreak(ctx context.Context) (int, error) {
	today := s.today()
	sessions, err := s.recentSessions(ctx, today)
	if err != nil {
		return 0, err
	}
	return calculateStreak(sessions, today), nil
}

// Stats summarizes the sessions kept in the retention window.
type Stats struct {
	Sessions       []domain.ReviewSession `json:"sessions"`
	Streak         int                    `json:"streak"`
	WordsReviewed  int                    `json:"wordsReviewed"`
	CorrectAnswers int                    `json:"correctAnswers"`
	Accuracy       int                    `json:"accuracy"`
}

// Stats returns recent sessions, newest first, with totals and the streak.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	today := s.today()
	sessions, err := s.recentSessions(ctx, today)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{
		Sessions: sessions,
		Streak:   calculateStreak(sessions, today),
	}
	for _, sess := range sessions {
		stats.WordsReviewed += sess.WordsReviewed
		stats.CorrectAnswers += sess.CorrectAnswers
	}
	stats.Accuracy = accuracy(stats.CorrectAnswers, stats.WordsReviewed)
	return stats, nil
}

func (s *Service) recentSessions(ctx context.Context, today time.Time) ([]domain.ReviewSession, error) {
	since := domain.AddDays(today, -s.cfg.SessionRetentionDays)
	sessions, err := s.sessions.ListSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	if sessions == nil {
		sessions = []domain.ReviewSession{}
	}
	return sessions, nil
}

// calculateStreak counts consecutive session days walking back from today.
// sessions must be sorted DESC by date. A gap of more than one day between
// counted days ends the walk.
func calculateStreak(sessions []domain.ReviewSession, today time.Time) int {
	streak := 0
	prev := today
	for _, sess := range sessions {
		gap := domain.DaysBetween(sess.Date, prev)
		if gap < 0 {
			// Session dated in the future (timezone change); ignore.
			continue
		}
		if gap > 1 {
			break
		}
		streak++
		prev = sess.Date
	}
	return streak
}

func accuracy(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(correct) / float64(total)))
}
