package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/tannibunni/dramaword-backend/internal/domain"
	"github.com/tannibunni/dramaword-backend/internal/service/review"
)

type reviewService interface {
	UpdateReview(ctx context.Context, wordID uuid.UUID, correct bool) (*domain.ReviewSchedule, error)
	DueToday(ctx context.Context) ([]uuid.UUID, error)
	RecordSession(ctx context.Context, correct, total int) (*domain.ReviewSession, error)
	LearningStreak(ctx context.Context) (int, error)
	Stats(ctx context.Context) (review.Stats, error)
	Reset(ctx context.Context) (int64, error)
}

// ReviewHandler serves the spaced-repetition endpoints.
type ReviewHandler struct {
	svc reviewService
	log *slog.Logger
}

// NewReviewHandler creates a ReviewHandler.
func NewReviewHandler(svc reviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{svc: svc, log: logger.With("handler", "reviews")}
}

type reviewRequest struct {
	Correct *bool `json:"correct" validate:"required"`
}

// reviewResponse reports recorded=false when the outcome was dropped
// because the store was unreachable.
type reviewResponse struct {
	Recorded bool                   `json:"recorded"`
	Schedule *domain.ReviewSchedule `json:"schedule,omitempty"`
}

type sessionRequest struct {
	Correct int `json:"correct" validate:"gte=0,ltefield=Total"`
	Total   int `json:"total"   validate:"gte=0,lte=10000"`
}

// UpdateReview handles POST /reviews/{wordId}.
func (h *ReviewHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	wordID, err := uuid.Parse(r.PathValue("wordId"))
	if err != nil {
		handleError(h.log, w, r, domain.NewValidationError("wordId", "must be a UUID"))
		return
	}

	var req reviewRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	schedule, err := h.svc.UpdateReview(r.Context(), wordID, *req.Correct)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, reviewResponse{Recorded: schedule != nil, Schedule: schedule})
}

// DueToday handles GET /reviews/today.
func (h *ReviewHandler) DueToday(w http.ResponseWriter, r *http.Request) {
	ids, err := h.svc.DueToday(r.Context())
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"wordIds": ids})
}

// RecordSession handles POST /reviews/sessions.
func (h *ReviewHandler) RecordSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	session, err := h.svc.RecordSession(r.Context(), req.Correct, req.Total)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// Streak handles GET /reviews/streak.
func (h *ReviewHandler) Streak(w http.ResponseWriter, r *http.Request) {
	streak, err := h.svc.LearningStreak(r.Context())
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"streak": streak})
}

// Stats handles GET /reviews/sessions.
func (h *ReviewHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Reset handles DELETE /reviews.
func (h *ReviewHandler) Reset(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Reset(r.Context())
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}
