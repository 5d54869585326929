package freedict

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tannibunni/dramaword-backend/internal/domain"
	"github.com/tannibunni/dramaword-backend/internal/provider"
)

const (
	defaultBaseURL = "https://api.dictionaryapi.dev/api/v2/entries/en"

	maxPartsOfSpeech     = 3
	maxDefinitionsPerPOS = 2
	maxSynonyms          = 10
)

// Provider fetches source-language definitions from the FreeDictionary API.
type Provider struct {
	baseURL    string
	httpClient *http.Client
	retryDelay time.Duration
	log        *slog.Logger
}

// NewProvider creates a Provider. An empty baseURL selects the public API.
func NewProvider(baseURL string, logger *slog.Logger) *Provider {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Provider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		retryDelay: 500 * time.Millisecond,
		log:        logger.With("adapter", "freedict"),
	}
}

// Fetch looks up term. Every error is a *provider.AdapterFailure; an unknown
// word (HTTP 404) fails with provider.ErrNoResult.
func (p *Provider) Fetch(ctx context.Context, term string) (*provider.OpenDictPartial, error) {
	reqURL := p.baseURL + "/" + url.PathEscape(term)

	p.log.DebugContext(ctx, "freedict request", slog.String("term", term))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, provider.Failf(provider.SourceOpenDict, term, "create request: %w", err)
	}

	resp, err := p.doWithRetry(ctx, req, term)
	if err != nil {
		p.log.WarnContext(ctx, "freedict request failed", slog.String("term", term), slog.String("error", err.Error()))
		return nil, provider.Failf(provider.SourceOpenDict, term, "request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, provider.Fail(provider.SourceOpenDict, term, provider.ErrNoResult)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, provider.Failf(provider.SourceOpenDict, term, "unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, provider.Failf(provider.SourceOpenDict, term, "read body: %w", err)
	}

	var entries []apiEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, provider.Failf(provider.SourceOpenDict, term, "decode json: %w", err)
	}
	if len(entries) == 0 {
		return nil, provider.Fail(provider.SourceOpenDict, term, provider.ErrNoResult)
	}

	result := mapAPIResponse(entries)

	p.log.DebugContext(ctx, "freedict response",
		slog.String("term", term),
		slog.Int("definitions", len(result.Definitions)),
		slog.Int("synonyms", len(result.Synonyms)),
	)

	return result, nil
}

// doWithRetry executes the request with a single retry on 5xx or network errors.
func (p *Provider) doWithRetry(ctx context.Context, req *http.Request, term string) (*http.Response, error) {
	resp, err := p.httpClient.Do(req)

	shouldRetry := err != nil || (resp != nil && resp.StatusCode >= 500)
	if !shouldRetry {
		return resp, err
	}

	// Don't retry if context is already cancelled.
	if ctx.Err() != nil {
		return resp, err
	}

	reason := "network error"
	if err == nil && resp != nil {
		reason = fmt.Sprintf("status %d", resp.StatusCode)
	}
	p.log.WarnContext(ctx, "freedict retry", slog.String("term", term), slog.String("reason", reason))

	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	select {
	case <-ctx.Done():
		return nil, errors.Join(ctx.Err(), err)
	case <-time.After(p.retryDelay):
	}

	return p.httpClient.Do(req)
}

// mapAPIResponse flattens all entries into one partial. Parts of speech are
// taken in order of first appearance, at most maxPartsOfSpeech of them, each
// contributing up to maxDefinitionsPerPOS definitions.
func mapAPIResponse(entries []apiEntry) *provider.OpenDictPartial {
	result := &provider.OpenDictPartial{
		Definitions: []provider.Definition{},
		Synonyms:    []string{},
	}

	perPOS := make(map[string]int)
	var synonyms []string

	for _, entry := range entries {
		if result.Phonetic == "" {
			result.Phonetic = pickPhonetic(entry)
		}
		if result.AudioURL == "" {
			result.AudioURL = pickAudio(entry.Phonetics)
		}

		for _, meaning := range entry.Meanings {
			pos := strings.ToLower(strings.TrimSpace(meaning.PartOfSpeech))
			for _, def := range meaning.Definitions {
				synonyms = append(synonyms, def.Synonyms...)

				text := strings.TrimSpace(def.Definition)
				if text == "" {
					continue
				}
				count, seen := perPOS[pos]
				if !seen && len(perPOS) >= maxPartsOfSpeech {
					continue
				}
				if count >= maxDefinitionsPerPOS {
					continue
				}
				perPOS[pos] = count + 1
				result.Definitions = append(result.Definitions, provider.Definition{
					PartOfSpeech: pos,
					Text:         text,
					Example:      strings.TrimSpace(def.Example),
				})
			}
		}
	}

	result.Synonyms = domain.DedupStrings(synonyms, maxSynonyms)
	return result
}

// pickPhonetic prefers the entry-level transcription, then the first
// non-empty one in the phonetics list.
func pickPhonetic(entry apiEntry) string {
	if s := strings.TrimSpace(entry.Phonetic); s != "" {
		return s
	}
	for _, ph := range entry.Phonetics {
		if s := strings.TrimSpace(ph.Text); s != "" {
			return s
		}
	}
	return ""
}

func pickAudio(phonetics []apiPhonetic) string {
	for _, ph := range phonetics {
		if s := strings.TrimSpace(ph.Audio); s != "" {
			return s
		}
	}
	return ""
}
