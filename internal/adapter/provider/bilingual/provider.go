// Package bilingual is the source adapter for a signed bilingual dictionary
// API (Youdao-compatible). It contributes a phonetic transcription, short
// translations and meanings already written in the learner's language.
package bilingual

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tannibunni/dramaword-backend/internal/domain"
	"github.com/tannibunni/dramaword-backend/internal/provider"
)

const defaultBaseURL = "https://openapi.youdao.com/api"

// Config holds the API endpoint and credentials.
type Config struct {
	BaseURL   string
	AppKey    string
	AppSecret string
	From      string
	To        string
}

// Provider fetches bilingual dictionary data.
type Provider struct {
	cfg        Config
	httpClient *http.Client
	now        func() time.Time
	newSalt    func() string
	log        *slog.Logger
}

// NewProvider creates a Provider. Missing credentials are not an error here;
// every Fetch fails instead.
func NewProvider(cfg Config, logger *slog.Logger) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.From == "" {
		cfg.From = "en"
	}
	if cfg.To == "" {
		cfg.To = "zh-CHS"
	}
	return &Provider{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		now:        time.Now,
		newSalt:    func() string { return uuid.New().String() },
		log:        logger.With("adapter", "bilingual"),
	}
}

// Fetch looks up term. Every error is a *provider.AdapterFailure.
func (p *Provider) Fetch(ctx context.Context, term string) (*provider.BilingualPartial, error) {
	if p.cfg.AppKey == "" || p.cfg.AppSecret == "" {
		return nil, provider.Fail(provider.SourceBilingual, term, provider.ErrMissingCredential)
	}

	form := p.signedForm(term)

	p.log.DebugContext(ctx, "bilingual request", slog.String("term", term))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, provider.Failf(provider.SourceBilingual, term, "create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.log.WarnContext(ctx, "bilingual request failed", slog.String("term", term), slog.String("error", err.Error()))
		return nil, provider.Failf(provider.SourceBilingual, term, "request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, provider.Failf(provider.SourceBilingual, term, "unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, provider.Failf(provider.SourceBilingual, term, "read body: %w", err)
	}

	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, provider.Failf(provider.SourceBilingual, term, "decode json: %w", err)
	}
	if parsed.ErrorCode != "0" {
		p.log.WarnContext(ctx, "bilingual api error", slog.String("term", term), slog.String("error_code", parsed.ErrorCode))
		return nil, provider.Failf(provider.SourceBilingual, term, "api error code %s", parsed.ErrorCode)
	}

	result := &provider.BilingualPartial{
		Phonetic:     pickPhonetic(parsed.Basic),
		Meanings:     []provider.LocalizedMeaning{},
		Translations: domain.DedupStrings(parsed.Translation, 0),
	}
	if parsed.Basic != nil {
		result.Meanings = parseExplains(parsed.Basic.Explains)
	}

	if len(result.Meanings) == 0 && len(result.Translations) == 0 {
		return nil, provider.Fail(provider.SourceBilingual, term, provider.ErrNoResult)
	}

	p.log.DebugContext(ctx, "bilingual response",
		slog.String("term", term),
		slog.Int("meanings", len(result.Meanings)),
		slog.Int("translations", len(result.Translations)),
	)

	return result, nil
}

// signedForm builds the v3 request form: sign = sha256(appKey + input + salt + curtime + appSecret).
func (p *Provider) signedForm(term string) url.Values {
	salt := p.newSalt()
	curtime := strconv.FormatInt(p.now().Unix(), 10)

	form := url.Values{}
	form.Set("q", term)
	form.Set("from", p.cfg.From)
	form.Set("to", p.cfg.To)
	form.Set("appKey", p.cfg.AppKey)
	form.Set("salt", salt)
	form.Set("signType", "v3")
	form.Set("curtime", curtime)
	form.Set("sign", sign(p.cfg.AppKey, term, salt, curtime, p.cfg.AppSecret))
	return form
}

func sign(appKey, q, salt, curtime, appSecret string) string {
	sum := sha256.Sum256([]byte(appKey + truncate(q) + salt + curtime + appSecret))
	return hex.EncodeToString(sum[:])
}

// truncate shortens queries longer than 20 characters to
// first10 + length + last10, counted in runes.
func truncate(q string) string {
	r := []rune(q)
	if len(r) <= 20 {
		return q
	}
	return string(r[:10]) + strconv.Itoa(len(r)) + string(r[len(r)-10:])
}
