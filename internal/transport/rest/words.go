package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/tannibunni/dramaword-backend/internal/domain"
)

// DegradedHeader is set when a lookup answer could not be persisted.
const DegradedHeader = "X-Degraded"

type wordService interface {
	Lookup(ctx context.Context, term string) (*domain.WordRecord, error)
	List(ctx context.Context, limit, offset int) ([]domain.WordRecord, error)
	Count(ctx context.Context) (int, error)
}

// WordHandler serves word lookup and vocabulary listing.
type WordHandler struct {
	svc wordService
	log *slog.Logger
}

// NewWordHandler creates a WordHandler.
func NewWordHandler(svc wordService, logger *slog.Logger) *WordHandler {
	return &WordHandler{svc: svc, log: logger.With("handler", "words")}
}

type lookupParams struct {
	Term string `json:"term" validate:"required,max=100"`
}

type listResponse struct {
	Words []domain.WordRecord `json:"words"`
	Total int                 `json:"total"`
}

// Lookup handles GET /words/{term}.
func (h *WordHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	params := lookupParams{Term: r.PathValue("term")}
	if err := validateStruct(params); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	rec, err := h.svc.Lookup(r.Context(), params.Term)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrStoreUnavailable) && rec != nil:
		// The placeholder is still a usable answer.
		w.Header().Set(DegradedHeader, "store-unavailable")
	default:
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, wordResponse(*rec))
}

// List handles GET /words?limit=&offset=.
func (h *WordHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	words, err := h.svc.List(r.Context(), limit, offset)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	total, err := h.svc.Count(r.Context())
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	resp := listResponse{Words: make([]domain.WordRecord, 0, len(words)), Total: total}
	for _, rec := range words {
		resp.Words = append(resp.Words, wordResponse(rec))
	}
	writeJSON(w, http.StatusOK, resp)
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError(name, "must be an integer")
	}
	return n, nil
}

// wordResponse renders empty lists as [] instead of null.
func wordResponse(rec domain.WordRecord) domain.WordRecord {
	if rec.Meanings == nil {
		rec.Meanings = []domain.Meaning{}
	}
	if rec.Translations == nil {
		rec.Translations = []string{}
	}
	if rec.Derivatives == nil {
		rec.Derivatives = []string{}
	}
	if rec.Synonyms == nil {
		rec.Synonyms = []string{}
	}
	return rec
}
