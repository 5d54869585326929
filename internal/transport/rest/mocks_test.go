package rest

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tannibunni/dramaword-backend/internal/domain"
	"github.com/tannibunni/dramaword-backend/internal/service/review"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type wordServiceMock struct {
	LookupFunc func(ctx context.Context, term string) (*domain.WordRecord, error)
	ListFunc   func(ctx context.Context, limit, offset int) ([]domain.WordRecord, error)
	CountFunc  func(ctx context.Context) (int, error)
}

func (m *wordServiceMock) Lookup(ctx context.Context, term string) (*domain.WordRecord, error) {
	return m.LookupFunc(ctx, term)
}

func (m *wordServiceMock) List(ctx context.Context, limit, offset int) ([]domain.WordRecord, error) {
	return m.ListFunc(ctx, limit, offset)
}

func (m *wordServiceMock) Count(ctx context.Context) (int, error) {
	return m.CountFunc(ctx)
}

type reviewServiceMock struct {
	UpdateReviewFunc   func(ctx context.Context, wordID uuid.UUID, correct bool) (*domain.ReviewSchedule, error)
	DueTodayFunc       func(ctx context.Context) ([]uuid.UUID, error)
	RecordSessionFunc  func(ctx context.Context, correct, total int) (*domain.ReviewSession, error)
	LearningStreakFunc func(ctx context.Context) (int, error)
	StatsFunc          func(ctx context.Context) (review.Stats, error)
	ResetFunc          func(ctx context.Context) (int64, error)
}

func (m *reviewServiceMock) UpdateReview(ctx context.Context, wordID uuid.UUID, correct bool) (*domain.ReviewSchedule, error) {
	return m.UpdateReviewFunc(ctx, wordID, correct)
}

func (m *reviewServiceMock) DueToday(ctx context.Context) ([]uuid.UUID, error) {
	return m.DueTodayFunc(ctx)
}

func (m *reviewServiceMock) RecordSession(ctx context.Context, correct, total int) (*domain.ReviewSession, error) {
	return m.RecordSessionFunc(ctx, correct, total)
}

func (m *reviewServiceMock) LearningStreak(ctx context.Context) (int, error) {
	return m.LearningStreakFunc(ctx)
}

func (m *reviewServiceMock) Stats(ctx context.Context) (review.Stats, error) {
	return m.StatsFunc(ctx)
}

func (m *reviewServiceMock) Reset(ctx context.Context) (int64, error) {
	return m.ResetFunc(ctx)
}

type milestoneServiceMock struct {
	CelebrateFunc func(ctx context.Context) (*domain.Milestone, error)
}

func (m *milestoneServiceMock) Celebrate(ctx context.Context) (*domain.Milestone, error) {
	return m.CelebrateFunc(ctx)
}
