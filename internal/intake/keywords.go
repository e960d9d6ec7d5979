package intake

import (
	"regexp"
	"strings"
)

// MaxKeywords caps the keyword list shown to users.
const MaxKeywords = 10

var wordPattern = regexp.MustCompile(`\b\w{4,}\b`)

// KeywordExtractor turns free text into normalized keywords.
type KeywordExtractor struct {
	stop  map[string]struct{}
	limit int
}

// NewKeywordExtractor builds an extractor that drops the given stop-words.
func NewKeywordExtractor(stopWords []string) *KeywordExtractor {
	return &KeywordExtractor{stop: toSet(stopWords), limit: MaxKeywords}
}

// Tokens returns every lowercase word of four or more word characters that is
// not a stop-word, in order of appearance and with repeats.
func (e *KeywordExtractor) Tokens(text string) []string {
	if text == "" {
		return nil
	}
	words := wordPattern.FindAllString(strings.ToLower(text), -1)
	tokens := words[:0]
	for _, w := range words {
		if _, skip := e.stop[w]; skip {
			continue
		}
		tokens = append(tokens, w)
	}
	return tokens
}

// Extract returns up to ten distinct keywords in first-occurrence order.
func (e *KeywordExtractor) Extract(text string) []string {
	tokens := e.Tokens(text)
	keywords := make([]string, 0, min(len(tokens), e.limit))
	seen := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		if len(keywords) == e.limit {
			break
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		keywords = append(keywords, tok)
	}
	return keywords
}
