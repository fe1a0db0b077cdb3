package search

import (
	"strings"
	"unicode"
)

// SearchFilters holds the extracted filters and the remaining clean query
type SearchFilters struct {
	FileName    string   // restrict retrieval to one document, lowercased
	SearchQuery string   // the remaining text
	Terms       []string // lowercased keywords from SearchQuery, stopwords removed
}

// ParseQuery extracts filters from the raw query string
// Supported:
// /file:<name> OR /in:<name> -> Restrict to one document
// <text> -> Remaining text is the SearchQuery
func ParseQuery(raw string) SearchFilters {
	filters := SearchFilters{}
	parts := strings.Fields(raw)
	var cleanParts []string

	for _, part := range parts {
		lowerPart := strings.ToLower(part)

		if strings.HasPrefix(lowerPart, "/file:") {
			filters.FileName = strings.TrimPrefix(lowerPart, "/file:")
		} else if strings.HasPrefix(lowerPart, "/in:") {
			// Alias for /file:
			filters.FileName = strings.TrimPrefix(lowerPart, "/in:")
		} else {
			cleanParts = append(cleanParts, part)
		}
	}

	filters.SearchQuery = strings.Join(cleanParts, " ")
	filters.Terms = Tokenize(filters.SearchQuery)
	return filters
}

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "by": {},
	"do": {}, "does": {}, "for": {}, "from": {}, "how": {}, "i": {}, "in": {}, "is": {},
	"it": {}, "of": {}, "on": {}, "or": {}, "the": {}, "this": {}, "to": {}, "was": {},
	"what": {}, "when": {}, "where": {}, "which": {}, "who": {}, "why": {}, "with": {},
}

// Tokenize lowercases text and returns its distinct non-stopword words.
func Tokenize(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]struct{}, len(words))
	terms := make([]string, 0, len(words))
	for _, w := range words {
		if _, skip := stopwords[w]; skip {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		terms = append(terms, w)
	}
	return terms
}

// Score counts how many of terms occur as words in text.
func Score(text string, terms []string) int {
	if len(terms) == 0 {
		return 0
	}
	present := make(map[string]struct{})
	for _, w := range Tokenize(text) {
		present[w] = struct{}{}
	}

	score := 0
	for _, t := range terms {
		if _, ok := present[t]; ok {
			score++
		}
	}
	return score
}
