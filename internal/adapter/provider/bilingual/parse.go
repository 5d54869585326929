package bilingual

import (
	"regexp"
	"strings"

	"github.com/tannibunni/dramaword-backend/internal/domain"
	"github.com/tannibunni/dramaword-backend/internal/provider"
)

var explainLine = regexp.MustCompile(`^([a-z]+\.)\s*(.+)$`)

var partsOfSpeech = map[string]string{
	"n.":      "noun",
	"v.":      "verb",
	"vt.":     "verb",
	"vi.":     "verb",
	"adj.":    "adjective",
	"a.":      "adjective",
	"adv.":    "adverb",
	"prep.":   "preposition",
	"conj.":   "conjunction",
	"pron.":   "pronoun",
	"int.":    "interjection",
	"interj.": "interjection",
	"num.":    "numeral",
	"art.":    "article",
	"aux.":    "auxiliary verb",
	"abbr.":   "abbreviation",
	"pl.":     "plural",
}

// expandPartOfSpeech maps a dictionary abbreviation such as "vt." to a full
// part of speech. Unknown abbreviations are returned without the period.
func expandPartOfSpeech(abbr string) string {
	if pos, ok := partsOfSpeech[abbr]; ok {
		return pos
	}
	return strings.TrimSuffix(abbr, ".")
}

// parseExplains turns "n. 你好；问候" style lines into localized meanings.
// A line without a recognizable abbreviation becomes one meaning with an
// unknown part of speech.
func parseExplains(lines []string) []provider.LocalizedMeaning {
	meanings := make([]provider.LocalizedMeaning, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		m := explainLine.FindStringSubmatch(line)
		if m == nil {
			meanings = append(meanings, provider.LocalizedMeaning{
				PartOfSpeech: domain.PlaceholderPartOfSpeech,
				Definition:   line,
			})
			continue
		}
		meanings = append(meanings, provider.LocalizedMeaning{
			PartOfSpeech: expandPartOfSpeech(m[1]),
			Definition:   strings.TrimSpace(m[2]),
		})
	}
	return meanings
}

func pickPhonetic(b *apiBasic) string {
	if b == nil {
		return ""
	}
	if s := strings.TrimSpace(b.USPhonetic); s != "" {
		return s
	}
	return strings.TrimSpace(b.Phonetic)
}
