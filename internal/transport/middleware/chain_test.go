package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tannibunni/dramaword-backend/pkg/ctxutil"
)

func tagging(name string, trace *[]string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*trace = append(*trace, name+">")
			next.ServeHTTP(w, r)
			*trace = append(*trace, "<"+name)
		})
	}
}

func TestChain_FirstRunsOutermost(t *testing.T) {
	var trace []string
	h := Chain(tagging("a", &trace), tagging("b", &trace), tagging("c", &trace))(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			trace = append(trace, "h")
			w.WriteHeader(http.StatusNoContent)
		}),
	)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/words", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"a>", "b>", "c>", "h", "<c", "<b", "<a"}, trace)
}

func TestChain_NoMiddlewareIsIdentity(t *testing.T) {
	called := false
	h := Chain()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.True(t, called)
}

// Recovery placed after RequestID sees the id, so a panic still yields a
// correlated JSON error.
func TestChain_ServerStackOrder(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	var seenID string

	h := Chain(RequestID(), Logger(logger), Recovery(logger))(
		http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			seenID = ctxutil.RequestIDFromCtx(r.Context())
			panic("boom")
		}),
	)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/reviews/x", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotEmpty(t, seenID)
	assert.Equal(t, seenID, rec.Header().Get(RequestIDHeader))
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
}
