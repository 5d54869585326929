package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tannibunni/dramaword-backend/internal/domain"
)

func serveWords(svc wordService, method, target string) *httptest.ResponseRecorder {
	h := NewWordHandler(svc, discardLogger())
	mux := http.NewServeMux()
	mux.HandleFunc("GET /words/{term}", h.Lookup)
	mux.HandleFunc("GET /words", h.List)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestWordHandler_Lookup(t *testing.T) {
	t.Parallel()

	var gotTerm string
	svc := &wordServiceMock{LookupFunc: func(_ context.Context, term string) (*domain.WordRecord, error) {
		gotTerm = term
		return &domain.WordRecord{
			ID:       uuid.New(),
			Term:     "break the ice",
			Meanings: []domain.Meaning{{PartOfSpeech: "phrase", DefinitionLocalized: "打破僵局"}},
		}, nil
	}}

	rec := serveWords(svc, http.MethodGet, "/words/break%20the%20ice")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "break the ice", gotTerm)
	assert.Empty(t, rec.Header().Get(DegradedHeader))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "break the ice", body["term"])
	assert.Equal(t, []any{}, body["translations"], "empty lists render as []")
}

func TestWordHandler_Lookup_StoreUnavailableStillAnswers(t *testing.T) {
	t.Parallel()

	placeholder := domain.NewPlaceholderRecord("xyzzy", domain.DateOf(testTime, nil))
	svc := &wordServiceMock{LookupFunc: func(context.Context, string) (*domain.WordRecord, error) {
		return &placeholder, fmt.Errorf("lookup: %w", domain.ErrStoreUnavailable)
	}}

	rec := serveWords(svc, http.MethodGet, "/words/xyzzy")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "store-unavailable", rec.Header().Get(DegradedHeader))
	assert.Contains(t, rec.Body.String(), domain.PlaceholderDefinition)
}

func TestWordHandler_Lookup_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		target   string
		err      error
		wantCode int
	}{
		{"validation from service", "/words/%20", domain.NewValidationError("term", "required"), http.StatusBadRequest},
		{"term too long", "/words/" + strings.Repeat("a", 101), nil, http.StatusBadRequest},
		{"unexpected error", "/words/tell", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := &wordServiceMock{LookupFunc: func(context.Context, string) (*domain.WordRecord, error) {
				return nil, tt.err
			}}

			rec := serveWords(svc, http.MethodGet, tt.target)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.NotContains(t, rec.Body.String(), "boom", "internal errors are not leaked")
		})
	}
}

func TestWordHandler_List(t *testing.T) {
	t.Parallel()

	var gotLimit, gotOffset int
	svc := &wordServiceMock{
		ListFunc: func(_ context.Context, limit, offset int) ([]domain.WordRecord, error) {
			gotLimit, gotOffset = limit, offset
			return []domain.WordRecord{{Term: "tell"}, {Term: "ice"}}, nil
		},
		CountFunc: func(context.Context) (int, error) { return 57, nil },
	}

	rec := serveWords(svc, http.MethodGet, "/words?limit=2&offset=10")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, gotLimit)
	assert.Equal(t, 10, gotOffset)

	var body listResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 57, body.Total)
	require.Len(t, body.Words, 2)
	assert.Equal(t, "tell", body.Words[0].Term)
	assert.NotNil(t, body.Words[0].Synonyms)
}

func TestWordHandler_List_BadQuery(t *testing.T) {
	t.Parallel()

	svc := &wordServiceMock{}
	rec := serveWords(svc, http.MethodGet, "/words?limit=ten")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"limit"`)
}
