package planner

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/asapobra/quote-service/internal/quote"
)

const (
	suggestionsOpen  = "[SUGESTOES_INICIO]"
	suggestionsClose = "[SUGESTOES_FIM]"
)

var (
	suggestionsRe = regexp.MustCompile(`(?s)\[SUGESTOES_INICIO\](.*?)\[SUGESTOES_FIM\]`)
	leadingNumRe  = regexp.MustCompile(`^\s*(\d+(?:[.,]\d+)?)`)
)

// rawSuggestion tolerates the quantity field being a number or a string
// like "10 sacos"; models emit both.
type rawSuggestion struct {
	MaterialID int64           `json:"materialId"`
	Quantity   json.RawMessage `json:"quantity"`
	Rationale  string          `json:"rationale"`
}

type suggestionBlock struct {
	Suggestions []rawSuggestion `json:"suggestions"`
}

// ExtractSuggestions splits an assistant reply into the prose for the
// buyer and the decoded suggestion block. A missing or malformed block
// yields the full text and no suggestions; the conversation goes on
// without the sidecar.
func ExtractSuggestions(text string) (string, []quote.Suggestion) {
	match := suggestionsRe.FindStringSubmatchIndex(text)
	if match == nil {
		return strings.TrimSpace(text), nil
	}

	prose := strings.TrimSpace(text[:match[0]] + text[match[1]:])
	blockJSON := text[match[2]:match[3]]

	var block suggestionBlock
	if err := json.Unmarshal([]byte(blockJSON), &block); err != nil {
		log.Warn().Err(err).Msg("suggestion block is not valid JSON, ignoring")
		return prose, nil
	}

	suggestions := make([]quote.Suggestion, 0, len(block.Suggestions))
	for _, raw := range block.Suggestions {
		if raw.MaterialID <= 0 {
			continue
		}
		suggestions = append(suggestions, quote.Suggestion{
			MaterialID: raw.MaterialID,
			Quantity:   ParseQuantity(raw.Quantity),
			Rationale:  raw.Rationale,
		})
	}
	return prose, suggestions
}

// ParseQuantity extracts a positive quantity from a JSON number or a
// free-form string, defaulting to 1 when nothing usable is found.
func ParseQuantity(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 1
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		if n > 0 {
			return n
		}
		return 1
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 1
	}
	m := leadingNumRe.FindStringSubmatch(s)
	if m == nil {
		return 1
	}
	n, err := strconv.ParseFloat(strings.Replace(m[1], ",", ".", 1), 64)
	if err != nil || n <= 0 {
		return 1
	}
	return n
}
