package rest

import (
	"net/http"

	"github.com/tannibunni/dramaword-backend/internal/transport/middleware"
)

// Handlers groups every HTTP handler served by the router.
type Handlers struct {
	Words      *WordHandler
	Reviews    *ReviewHandler
	Milestones *MilestoneHandler
	Health     *HealthHandler
}

// NewRouter registers all routes. lookupLimit wraps the endpoints that reach
// external dictionaries; common wraps everything.
func NewRouter(h Handlers, lookupLimit, common middleware.Middleware) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /live", h.Health.Live)
	mux.HandleFunc("GET /ready", h.Health.Ready)
	mux.HandleFunc("GET /health", h.Health.Health)

	mux.Handle("GET /words/{term}", lookupLimit(http.HandlerFunc(h.Words.Lookup)))
	mux.HandleFunc("GET /words", h.Words.List)

	mux.HandleFunc("GET /reviews/today", h.Reviews.DueToday)
	mux.HandleFunc("GET /reviews/streak", h.Reviews.Streak)
	mux.HandleFunc("GET /reviews/sessions", h.Reviews.Stats)
	mux.HandleFunc("POST /reviews/sessions", h.Reviews.RecordSession)
	mux.HandleFunc("POST /reviews/{wordId}", h.Reviews.UpdateReview)
	mux.HandleFunc("DELETE /reviews", h.Reviews.Reset)

	mux.HandleFunc("POST /milestones/celebrate", h.Milestones.Celebrate)

	return common(mux)
}
