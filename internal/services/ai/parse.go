package ai

import (
	"encoding/json"
	"regexp"
	"strings"
)

// arrayPattern greedily matches from the first '[' to the last ']',
// recovering a JSON array wrapped in model chatter.
var arrayPattern = regexp.MustCompile(`(?s)\[.*\]`)

// ParseFlashcardArray parses model text output into raw cards. Direct
// parse first; on invalid JSON, bracket-extraction recovery; valid JSON
// that is not a card array is an empty result rather than a parse
// failure.
func ParseFlashcardArray(content string) ([]RawCard, error) {
	trimmed := strings.TrimSpace(content)

	var cards []RawCard
	if err := json.Unmarshal([]byte(trimmed), &cards); err == nil {
		// A literal null decodes without error but carries no array.
		if cards == nil {
			return nil, ErrEmptyResult
		}
		return cards, nil
	}

	var probe any
	if err := json.Unmarshal([]byte(trimmed), &probe); err == nil {
		// Parsed fine, just not an array of cards.
		return nil, ErrEmptyResult
	}

	if match := arrayPattern.FindString(trimmed); match != "" {
		if err := json.Unmarshal([]byte(match), &cards); err == nil {
			return cards, nil
		}
	}

	return nil, ErrResponseParse
}
