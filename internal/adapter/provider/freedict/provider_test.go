package freedict

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tannibunni/dramaword-backend/internal/provider"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestProvider(url string) *Provider {
	p := NewProvider(url, newTestLogger())
	p.retryDelay = time.Millisecond
	return p
}

func jsonServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestProvider_Fetch_Success(t *testing.T) {
	t.Parallel()

	body := `[{
		"word": "hello",
		"phonetic": "/həˈloʊ/",
		"phonetics": [
			{"text": "/hɛˈləʊ/", "audio": ""},
			{"text": "/həˈloʊ/", "audio": "https://example.com/hello-us.mp3"}
		],
		"meanings": [
			{
				"partOfSpeech": "noun",
				"definitions": [
					{"definition": "A greeting.", "example": "She gave a cheerful hello.", "synonyms": ["greeting"]}
				]
			},
			{
				"partOfSpeech": "interjection",
				"definitions": [
					{"definition": "Used as a greeting.", "example": "Hello, how are you?", "synonyms": ["hi", "greeting"]},
					{"definition": "Used to attract attention.", "example": ""}
				]
			}
		]
	}]`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/hello" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(body))
	}))
	defer srv.Close()

	p := newTestProvider(srv.URL)
	result, err := p.Fetch(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Phonetic != "/həˈloʊ/" {
		t.Errorf("Phonetic = %q, want entry-level phonetic", result.Phonetic)
	}
	if result.AudioURL != "https://example.com/hello-us.mp3" {
		t.Errorf("AudioURL = %q, want first non-empty audio", result.AudioURL)
	}

	if len(result.Definitions) != 3 {
		t.Fatalf("len(Definitions) = %d, want 3", len(result.Definitions))
	}
	d0 := result.Definitions[0]
	if d0.PartOfSpeech != "noun" || d0.Text != "A greeting." || d0.Example != "She gave a cheerful hello." {
		t.Errorf("Definitions[0] = %+v", d0)
	}
	if d2 := result.Definitions[2]; d2.PartOfSpeech != "interjection" || d2.Example != "" {
		t.Errorf("Definitions[2] = %+v", d2)
	}

	wantSyn := []string{"greeting", "hi"}
	if len(result.Synonyms) != len(wantSyn) {
		t.Fatalf("Synonyms = %v, want %v", result.Synonyms, wantSyn)
	}
	for i := range wantSyn {
		if result.Synonyms[i] != wantSyn[i] {
			t.Errorf("Synonyms[%d] = %q, want %q", i, result.Synonyms[i], wantSyn[i])
		}
	}
}

func TestProvider_Fetch_PhoneticFallsBackToList(t *testing.T) {
	t.Parallel()

	srv := jsonServer(t, http.StatusOK, `[{
		"word": "cat",
		"phonetics": [{"text": "", "audio": ""}, {"text": "/kæt/", "audio": ""}],
		"meanings": []
	}]`)

	result, err := newTestProvider(srv.URL).Fetch(context.Background(), "cat")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Phonetic != "/kæt/" {
		t.Errorf("Phonetic = %q, want /kæt/", result.Phonetic)
	}
	if result.AudioURL != "" {
		t.Errorf("AudioURL = %q, want empty", result.AudioURL)
	}
	if len(result.Definitions) != 0 {
		t.Errorf("len(Definitions) = %d, want 0", len(result.Definitions))
	}
}

func TestProvider_Fetch_CapsDefinitions(t *testing.T) {
	t.Parallel()

	// Four parts of speech across two entries, three definitions for verb.
	body := `[
		{
			"word": "run",
			"meanings": [
				{"partOfSpeech": "verb", "definitions": [
					{"definition": "To move fast."},
					{"definition": "To operate."},
					{"definition": "To flow."}
				]},
				{"partOfSpeech": "noun", "definitions": [{"definition": "An act of running."}]}
			]
		},
		{
			"word": "run",
			"meanings": [
				{"partOfSpeech": "adjective", "definitions": [{"definition": "Melted."}]},
				{"partOfSpeech": "adverb", "definitions": [{"definition": "Never used."}]},
				{"partOfSpeech": "noun", "definitions": [{"definition": "A series."}, {"definition": "Dropped."}]}
			]
		}
	]`
	srv := jsonServer(t, http.StatusOK, body)

	result, err := newTestProvider(srv.URL).Fetch(context.Background(), "run")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []provider.Definition{
		{PartOfSpeech: "verb", Text: "To move fast."},
		{PartOfSpeech: "verb", Text: "To operate."},
		{PartOfSpeech: "noun", Text: "An act of running."},
		{PartOfSpeech: "adjective", Text: "Melted."},
		{PartOfSpeech: "noun", Text: "A series."},
	}
	if len(result.Definitions) != len(want) {
		t.Fatalf("Definitions = %+v, want %d items", result.Definitions, len(want))
	}
	for i := range want {
		if result.Definitions[i] != want[i] {
			t.Errorf("Definitions[%d] = %+v, want %+v", i, result.Definitions[i], want[i])
		}
	}
}

func TestProvider_Fetch_NotFound(t *testing.T) {
	t.Parallel()

	srv := jsonServer(t, http.StatusNotFound, `{"title":"No Definitions Found"}`)

	_, err := newTestProvider(srv.URL).Fetch(context.Background(), "asdfxyz")
	if err == nil {
		t.Fatal("expected error for 404")
	}
	var failure *provider.AdapterFailure
	if !errors.As(err, &failure) {
		t.Fatalf("error type = %T, want *provider.AdapterFailure", err)
	}
	if failure.Source != provider.SourceOpenDict {
		t.Errorf("Source = %q, want %q", failure.Source, provider.SourceOpenDict)
	}
	if !errors.Is(err, provider.ErrNoResult) {
		t.Errorf("error = %v, want ErrNoResult", err)
	}
}

func TestProvider_Fetch_EmptyArray(t *testing.T) {
	t.Parallel()

	srv := jsonServer(t, http.StatusOK, `[]`)

	_, err := newTestProvider(srv.URL).Fetch(context.Background(), "nothing")
	if !errors.Is(err, provider.ErrNoResult) {
		t.Fatalf("error = %v, want ErrNoResult", err)
	}
}

func TestProvider_Fetch_ServerErrorRetrySuccess(t *testing.T) {
	t.Parallel()

	var callCount atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := callCount.Add(1)
		if n == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`[{"word":"test","phonetics":[],"meanings":[{"partOfSpeech":"noun","definitions":[{"definition":"A trial."}]}]}]`))
	}))
	defer srv.Close()

	result, err := newTestProvider(srv.URL).Fetch(context.Background(), "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Definitions) != 1 {
		t.Errorf("len(Definitions) = %d, want 1", len(result.Definitions))
	}
	if got := callCount.Load(); got != 2 {
		t.Errorf("call count = %d, want 2", got)
	}
}

func TestProvider_Fetch_ServerErrorBothAttemptsFail(t *testing.T) {
	t.Parallel()

	var callCount atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		callCount.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestProvider(srv.URL).Fetch(context.Background(), "fail")
	if err == nil {
		t.Fatal("expected error when both attempts fail")
	}
	if got := callCount.Load(); got != 2 {
		t.Errorf("call count = %d, want 2", got)
	}
}

func TestProvider_Fetch_NoRetryOnCancelledContext(t *testing.T) {
	t.Parallel()

	var callCount atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		callCount.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestProvider(srv.URL).Fetch(ctx, "word")
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if got := callCount.Load(); got != 0 {
		t.Errorf("call count = %d, want 0", got)
	}
}

func TestProvider_Fetch_InvalidJSON(t *testing.T) {
	t.Parallel()

	srv := jsonServer(t, http.StatusOK, `not valid json`)

	_, err := newTestProvider(srv.URL).Fetch(context.Background(), "bad")
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestProvider_Fetch_UnexpectedStatus(t *testing.T) {
	t.Parallel()

	srv := jsonServer(t, http.StatusTooManyRequests, `{}`)

	_, err := newTestProvider(srv.URL).Fetch(context.Background(), "busy")
	if err == nil {
		t.Fatal("expected error for 429")
	}
}

func TestProvider_Fetch_Timeout(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := newTestProvider(srv.URL).Fetch(ctx, "slow")
	if err == nil {
		t.Fatal("expected error on deadline")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Fetch took %v, want it to honor the deadline", elapsed)
	}
}
