package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/tannibunni/dramaword-backend/internal/domain"
)

type milestoneService interface {
	Celebrate(ctx context.Context) (*domain.Milestone, error)
}

// MilestoneHandler serves vocabulary milestones.
type MilestoneHandler struct {
	svc milestoneService
	log *slog.Logger
}

// NewMilestoneHandler creates a MilestoneHandler.
func NewMilestoneHandler(svc milestoneService, logger *slog.Logger) *MilestoneHandler {
	return &MilestoneHandler{svc: svc, log: logger.With("handler", "milestones")}
}

type celebrateResponse struct {
	Milestone *domain.Milestone `json:"milestone"`
}

// Celebrate handles POST /milestones/celebrate. The milestone is null when
// there is nothing new to celebrate.
func (h *MilestoneHandler) Celebrate(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.Celebrate(r.Context())
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, celebrateResponse{Milestone: m})
}
