package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tannibunni/dramaword-backend/internal/provider"
)

// sourceSense is one definition the model is asked to localize.
type sourceSense struct {
	PartOfSpeech string `json:"partOfSpeech"`
	Definition   string `json:"definition"`
	Example      string `json:"example,omitempty"`

	// localized is set when Definition is already in the learner's language.
	localized bool
}

// sourceSenses picks the list to localize: open dictionary definitions when
// available, otherwise the bilingual meanings.
func sourceSenses(bilingual *provider.BilingualPartial, openDict *provider.OpenDictPartial) []sourceSense {
	if openDict != nil && len(openDict.Definitions) > 0 {
		out := make([]sourceSense, 0, len(openDict.Definitions))
		for _, d := range openDict.Definitions {
			out = append(out, sourceSense{PartOfSpeech: d.PartOfSpeech, Definition: d.Text, Example: d.Example})
		}
		return out
	}
	if bilingual != nil {
		out := make([]sourceSense, 0, len(bilingual.Meanings))
		for _, m := range bilingual.Meanings {
			out = append(out, sourceSense{PartOfSpeech: m.PartOfSpeech, Definition: m.Definition, localized: true})
		}
		return out
	}
	return []sourceSense{}
}

// buildPrompt creates the completion prompt for a single term.
func buildPrompt(term, targetLanguage string, senses []sourceSense, translations []string) (string, error) {
	sensesJSON, err := json.MarshalIndent(senses, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal senses: %w", err)
	}

	known := "none"
	if len(translations) > 0 {
		known = strings.Join(translations, ", ")
	}

	return fmt.Sprintf(`You are a bilingual dictionary editor helping %[2]s speakers learn English.

The English word or phrase is "%[1]s".
Known short translations: %[3]s

Definitions to localize (%[4]d items):
%[5]s

Output ONLY a valid JSON object matching this exact schema:
{
  "meanings": [
    {
      "partOfSpeech": "<noun|verb|adjective|adverb|...>",
      "definition": "<the English definition, copied or tidied>",
      "definitionLocalized": "<the definition in %[2]s>",
      "exampleSource": "<a short natural English example>",
      "exampleLocalized": "<the example in %[2]s>"
    }
  ],
  "derivatives": ["<English derived forms>"],
  "synonyms": ["<English synonyms>"],
  "difficulty": <integer 1-5, 1 = beginner, 5 = advanced>,
  "translations": ["<up to 4 short %[2]s translations>"]
}

Rules:
- "meanings" must contain exactly %[4]d items, one per definition above, in the same order
- Keep the part of speech of each definition
- Use lowercase part of speech names
- Output ONLY the JSON, no markdown, no explanations`, term, targetLanguage, known, len(senses), string(sensesJSON)), nil
}

// extractJSON finds the first complete JSON object in a string.
func extractJSON(s string) (string, error) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end <= start {
		return "", fmt.Errorf("no JSON object found in response")
	}
	return s[start : end+1], nil
}
