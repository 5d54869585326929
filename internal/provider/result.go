// Package provider defines what each external word source contributes to a
// lookup. Every source has its own partial type; the merge step switches on
// the concrete type, so a new source cannot be merged by accident.
package provider

import (
	"errors"
	"fmt"

	"github.com/tannibunni/dramaword-backend/internal/domain"
)

// Source identifies the origin of a partial record.
type Source string

const (
	SourceBilingual  Source = "bilingual"
	SourceOpenDict   Source = "freedict"
	SourceCompletion Source = "llm"
)

// Partial is one source's contribution to a word. Implemented only by the
// three partial types in this package.
type Partial interface {
	Source() Source
	isPartial()
}

// BilingualPartial is produced by the bilingual (localized) dictionary.
type BilingualPartial struct {
	Phonetic     string
	Meanings     []LocalizedMeaning
	Translations []string
}

// LocalizedMeaning is a definition already written in the learner's language.
type LocalizedMeaning struct {
	PartOfSpeech string
	Definition   string
}

// OpenDictPartial is produced by the open (source-language) dictionary.
type OpenDictPartial struct {
	Phonetic    string
	AudioURL    string
	Definitions []Definition
	// Synonyms is the pool collected from individual definitions.
	Synonyms []string
}

// Definition is a source-language definition.
type Definition struct {
	PartOfSpeech string
	Text         string
	Example      string
}

// CompletionPartial is produced by the generative completion source.
// Meanings are aligned one-to-one with the definitions the source was asked
// to localize.
type CompletionPartial struct {
	Meanings     []domain.Meaning
	Derivatives  []string
	Synonyms     []string
	Difficulty   int
	Translations []string
}

func (BilingualPartial) Source() Source  { return SourceBilingual }
func (OpenDictPartial) Source() Source   { return SourceOpenDict }
func (CompletionPartial) Source() Source { return SourceCompletion }

func (BilingualPartial) isPartial()  {}
func (OpenDictPartial) isPartial()   {}
func (CompletionPartial) isPartial() {}

// ErrMissingCredential is returned by sources whose API credentials are not configured.
var ErrMissingCredential = errors.New("missing credential")

// ErrNoResult is returned when a source has no entry for the term.
var ErrNoResult = errors.New("no result")

// AdapterFailure is the single failure type of every source. The
// orchestrator treats all failures alike regardless of Err.
type AdapterFailure struct {
	Source Source
	Term   string
	Err    error
}

func (e *AdapterFailure) Error() string {
	return fmt.Sprintf("%s: %q: %v", e.Source, e.Term, e.Err)
}

func (e *AdapterFailure) Unwrap() error { return e.Err }

// Fail wraps err into an AdapterFailure for source.
func Fail(source Source, term string, err error) *AdapterFailure {
	return &AdapterFailure{Source: source, Term: term, Err: err}
}

// Failf is Fail with a formatted cause.
func Failf(source Source, term, format string, args ...any) *AdapterFailure {
	return &AdapterFailure{Source: source, Term: term, Err: fmt.Errorf(format, args...)}
}
