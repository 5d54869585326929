// Package llm is the generative completion source. Given what the
// dictionaries already returned, it asks a Claude model for localized
// meanings aligned with the source definitions, plus derivatives, synonyms,
// a difficulty estimate and extra translations.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/tannibunni/dramaword-backend/internal/domain"
	"github.com/tannibunni/dramaword-backend/internal/provider"
)

// Config holds model selection and credentials.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	MaxTokens      int64
	TargetLanguage string
}

// Provider calls the Anthropic Messages API.
type Provider struct {
	client anthropic.Client
	cfg    Config
	log    *slog.Logger
}

// NewProvider creates a Provider. Extra request options are appended to the
// ones derived from cfg.
func NewProvider(cfg Config, logger *slog.Logger, opts ...option.RequestOption) *Provider {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1024
	}
	if cfg.TargetLanguage == "" {
		cfg.TargetLanguage = "Simplified Chinese"
	}

	clientOpts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(cfg.BaseURL))
	}
	clientOpts = append(clientOpts, opts...)

	return &Provider{
		client: anthropic.NewClient(clientOpts...),
		cfg:    cfg,
		log:    logger.With("adapter", "llm"),
	}
}

// completionReply is the JSON object the model is instructed to return.
type completionReply struct {
	Meanings     []domain.Meaning `json:"meanings"`
	Derivatives  []string         `json:"derivatives"`
	Synonyms     []string         `json:"synonyms"`
	Difficulty   int              `json:"difficulty"`
	Translations []string         `json:"translations"`
}

var errMisaligned = errors.New("meanings not aligned with source definitions")

// Complete enriches term using whatever the dictionaries produced; either
// partial may be nil. Every error is a *provider.AdapterFailure.
func (p *Provider) Complete(
	ctx context.Context,
	term string,
	bilingual *provider.BilingualPartial,
	openDict *provider.OpenDictPartial,
) (*provider.CompletionPartial, error) {
	if p.cfg.APIKey == "" {
		return nil, provider.Fail(provider.SourceCompletion, term, provider.ErrMissingCredential)
	}

	senses := sourceSenses(bilingual, openDict)
	var known []string
	if bilingual != nil {
		known = bilingual.Translations
	}

	prompt, err := buildPrompt(term, p.cfg.TargetLanguage, senses, known)
	if err != nil {
		return nil, provider.Fail(provider.SourceCompletion, term, err)
	}

	p.log.DebugContext(ctx, "llm request", slog.String("term", term), slog.Int("senses", len(senses)))

	msg, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.cfg.Model),
		MaxTokens: p.cfg.MaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		p.log.WarnContext(ctx, "llm request failed", slog.String("term", term), slog.String("error", err.Error()))
		return nil, provider.Failf(provider.SourceCompletion, term, "api call: %w", err)
	}

	reply, err := parseReply(responseText(msg))
	if err != nil {
		return nil, provider.Fail(provider.SourceCompletion, term, err)
	}

	result, err := alignReply(reply, senses)
	if err != nil {
		p.log.WarnContext(ctx, "llm reply rejected", slog.String("term", term), slog.String("error", err.Error()))
		return nil, provider.Fail(provider.SourceCompletion, term, err)
	}

	p.log.DebugContext(ctx, "llm response",
		slog.String("term", term),
		slog.Int("meanings", len(result.Meanings)),
		slog.Int("difficulty", result.Difficulty),
	)

	return result, nil
}

func responseText(msg *anthropic.Message) string {
	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String()
}

func parseReply(text string) (completionReply, error) {
	var reply completionReply
	if strings.TrimSpace(text) == "" {
		return reply, fmt.Errorf("empty response")
	}
	jsonStr, err := extractJSON(text)
	if err != nil {
		return reply, err
	}
	if err := json.Unmarshal([]byte(jsonStr), &reply); err != nil {
		return reply, fmt.Errorf("decode reply: %w", err)
	}
	return reply, nil
}

// alignReply checks the reply against the definitions that were sent and
// fills blank fields of each meaning from its source definition.
func alignReply(reply completionReply, senses []sourceSense) (*provider.CompletionPartial, error) {
	if len(reply.Meanings) != len(senses) {
		return nil, fmt.Errorf("%w: got %d, want %d", errMisaligned, len(reply.Meanings), len(senses))
	}
	if reply.Difficulty < domain.MinDifficulty || reply.Difficulty > domain.MaxDifficulty {
		return nil, fmt.Errorf("difficulty %d out of range", reply.Difficulty)
	}

	meanings := make([]domain.Meaning, len(reply.Meanings))
	for i, m := range reply.Meanings {
		m.PartOfSpeech = strings.ToLower(strings.TrimSpace(m.PartOfSpeech))
		if m.PartOfSpeech == "" {
			m.PartOfSpeech = senses[i].PartOfSpeech
		}
		switch {
		case senses[i].localized && strings.TrimSpace(m.DefinitionLocalized) == "":
			m.DefinitionLocalized = senses[i].Definition
		case !senses[i].localized && strings.TrimSpace(m.Definition) == "":
			m.Definition = senses[i].Definition
		}
		if strings.TrimSpace(m.ExampleSource) == "" {
			m.ExampleSource = senses[i].Example
		}
		meanings[i] = m
	}

	return &provider.CompletionPartial{
		Meanings:     meanings,
		Derivatives:  domain.DedupStrings(reply.Derivatives, 0),
		Synonyms:     domain.DedupStrings(reply.Synonyms, 0),
		Difficulty:   reply.Difficulty,
		Translations: domain.DedupStrings(reply.Translations, 0),
	}, nil
}
