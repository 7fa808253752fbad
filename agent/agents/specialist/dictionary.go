package specialist

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	contractx "github.com/tanpawarit/goal-pipeline/agent/contract"
	plannerx "github.com/tanpawarit/goal-pipeline/agent/planner"
)

const maxDefinitionsPerMeaning = 3

var errNoWord = errors.New("no word to define found in goal")

var wordPattern = regexp.MustCompile(`(?i)(?:define|definition of|meaning of|what does)\s+(?:the\s+word\s+)?["']?([a-z][a-z\-']*)`)

// Dictionary looks up the word named in the goal and writes it under
// contract.KeyDefinition.
type Dictionary struct {
	baseURL string
	http    *jsonClient
}

var _ contractx.Agent = (*Dictionary)(nil)

func NewDictionary(cfg DictionaryConfig) *Dictionary {
	return &Dictionary{baseURL: cfg.BaseURL, http: newJSONClient(cfg.Timeout)}
}

func (a *Dictionary) Name() string { return plannerx.AgentDictionary }

func (a *Dictionary) Description() string {
	return "Looks up English word definitions, phonetics and parts of speech."
}

type dictionaryEntry struct {
	Word     string `json:"word"`
	Phonetic string `json:"phonetic"`
	Meanings []struct {
		PartOfSpeech string `json:"partOfSpeech"`
		Definitions  []struct {
			Definition string `json:"definition"`
			Example    string `json:"example"`
		} `json:"definitions"`
	} `json:"meanings"`
}

func (a *Dictionary) Run(ctx context.Context, in contractx.Context) (contractx.Context, error) {
	out := in.Clone()
	goal := in.Goal()

	word, err := ExtractWord(goal)
	if err != nil {
		out[contractx.KeyDefinition] = failure(err, goal)
		return out, nil
	}

	var entries []dictionaryEntry
	if err := a.http.get(ctx, joinURL(a.baseURL, url.PathEscape(word)), nil, &entries); err != nil {
		if errors.Is(err, errNotFound) {
			err = fmt.Errorf("no definition found for %q", word)
		} else {
			err = fmt.Errorf("dictionary lookup: %w", err)
		}
		result := failure(err, goal)
		result["word"] = word
		out[contractx.KeyDefinition] = result
		return out, nil
	}
	if len(entries) == 0 {
		result := failure(fmt.Errorf("no definition found for %q", word), goal)
		result["word"] = word
		out[contractx.KeyDefinition] = result
		return out, nil
	}

	entry := entries[0]
	meanings := make([]map[string]any, 0, len(entry.Meanings))
	for _, m := range entry.Meanings {
		defs := make([]string, 0, maxDefinitionsPerMeaning)
		for _, d := range m.Definitions {
			if len(defs) == maxDefinitionsPerMeaning {
				break
			}
			defs = append(defs, d.Definition)
		}
		meanings = append(meanings, map[string]any{
			"part_of_speech": m.PartOfSpeech,
			"definitions":    defs,
		})
	}

	out[contractx.KeyDefinition] = map[string]any{
		"success":  true,
		"word":     entry.Word,
		"phonetic": entry.Phonetic,
		"meanings": meanings,
	}
	return out, nil
}

// ExtractWord returns the lower-cased word following define, definition of,
// meaning of or what does.
func ExtractWord(goal string) (string, error) {
	m := wordPattern.FindStringSubmatch(goal)
	if len(m) < 2 {
		return "", errNoWord
	}
	word := strings.Trim(strings.ToLower(m[1]), "-'")
	if word == "" {
		return "", errNoWord
	}
	return word, nil
}
