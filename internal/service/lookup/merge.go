package lookup

import (
	"time"

	"github.com/tannibunni/dramaword-backend/internal/domain"
	"github.com/tannibunni/dramaword-backend/internal/provider"
)

// Merge combines source partials into one word record. It is pure: the
// result depends only on its arguments, and the record has no ID yet.
//
// Field priority:
//   - phonetic: bilingual, then open dictionary
//   - audio: open dictionary only
//   - meanings: completion, else bilingual, else open dictionary (never mixed)
//   - translations: bilingual then completion, de-duplicated
//   - derivatives: completion only
//   - synonyms: completion, else the open dictionary pool
//   - difficulty: completion estimate, else the default
//
// The bool is false when no partial was given; the caller then substitutes
// the placeholder record. A record whose sources produced no meaning gets
// the placeholder meaning.
func Merge(term string, now time.Time, partials ...provider.Partial) (domain.WordRecord, bool) {
	bil, open, comp := split(partials)
	if bil == nil && open == nil && comp == nil {
		return domain.WordRecord{}, false
	}

	rec := domain.WordRecord{
		Term:         term,
		Meanings:     []domain.Meaning{},
		Translations: []string{},
		Derivatives:  []string{},
		Synonyms:     []string{},
		Difficulty:   domain.DefaultDifficulty,
		CreatedAt:    now,
		LastQueried:  now,
	}

	switch {
	case bil != nil && bil.Phonetic != "":
		rec.Phonetic = bil.Phonetic
	case open != nil:
		rec.Phonetic = open.Phonetic
	}
	if open != nil {
		rec.AudioURL = open.AudioURL
	}

	rec.Meanings = mergeMeanings(bil, open, comp)

	var translations []string
	if bil != nil {
		translations = append(translations, bil.Translations...)
	}
	if comp != nil {
		translations = append(translations, comp.Translations...)
	}
	rec.Translations = domain.DedupStrings(translations, domain.MaxTranslations)

	if comp != nil {
		rec.Derivatives = domain.DedupStrings(comp.Derivatives, 0)
		rec.Synonyms = domain.DedupStrings(comp.Synonyms, 0)
		rec.Difficulty = domain.ClampDifficulty(comp.Difficulty)
	}
	if len(rec.Synonyms) == 0 && open != nil {
		rec.Synonyms = domain.DedupStrings(open.Synonyms, 0)
	}

	return rec, true
}

func mergeMeanings(bil *provider.BilingualPartial, open *provider.OpenDictPartial, comp *provider.CompletionPartial) []domain.Meaning {
	var out []domain.Meaning

	switch {
	case comp != nil && len(comp.Meanings) > 0:
		out = append(out, comp.Meanings...)
	case bil != nil && len(bil.Meanings) > 0:
		for _, m := range bil.Meanings {
			out = append(out, domain.Meaning{PartOfSpeech: m.PartOfSpeech, DefinitionLocalized: m.Definition})
		}
	case open != nil && len(open.Definitions) > 0:
		for _, d := range open.Definitions {
			out = append(out, domain.Meaning{PartOfSpeech: d.PartOfSpeech, Definition: d.Text, ExampleSource: d.Example})
		}
	default:
		return []domain.Meaning{{
			PartOfSpeech:        domain.PlaceholderPartOfSpeech,
			DefinitionLocalized: domain.PlaceholderDefinition,
		}}
	}

	if len(out) > domain.MaxMeanings {
		out = out[:domain.MaxMeanings]
	}
	return out
}

// split picks the first partial of each source. Both value and pointer
// forms are accepted; nil pointers count as absent.
func split(partials []provider.Partial) (*provider.BilingualPartial, *provider.OpenDictPartial, *provider.CompletionPartial) {
	var (
		bil  *provider.BilingualPartial
		open *provider.OpenDictPartial
		comp *provider.CompletionPartial
	)
	for _, p := range partials {
		switch v := p.(type) {
		case provider.BilingualPartial:
			if bil == nil {
				bil = &v
			}
		case *provider.BilingualPartial:
			if bil == nil && v != nil {
				bil = v
			}
		case provider.OpenDictPartial:
			if open == nil {
				open = &v
			}
		case *provider.OpenDictPartial:
			if open == nil && v != nil {
				open = v
			}
		case provider.CompletionPartial:
			if comp == nil {
				comp = &v
			}
		case *provider.CompletionPartial:
			if comp == nil && v != nil {
				comp = v
			}
		}
	}
	return bil, open, comp
}
