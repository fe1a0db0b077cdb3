package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantFile  string
		wantQuery string
		wantTerms []string
	}{
		{
			name:      "plain query",
			raw:       "What is the refund policy?",
			wantQuery: "What is the refund policy?",
			wantTerms: []string{"refund", "policy"},
		},
		{
			name:      "file filter",
			raw:       "/file:Terms.txt refund window",
			wantFile:  "terms.txt",
			wantQuery: "refund window",
			wantTerms: []string{"refund", "window"},
		},
		{
			name:      "alias filter",
			raw:       "deadline /in:plan.md",
			wantFile:  "plan.md",
			wantQuery: "deadline",
			wantTerms: []string{"deadline"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseQuery(tt.raw)
			assert.Equal(t, tt.wantFile, got.FileName)
			assert.Equal(t, tt.wantQuery, got.SearchQuery)
			assert.Equal(t, tt.wantTerms, got.Terms)
		})
	}
}

func TestScore(t *testing.T) {
	terms := Tokenize("refund policy window")
	assert.Equal(t, 2, Score("Our refund policy is generous.", terms))
	assert.Equal(t, 0, Score("Nothing relevant here.", terms))
	assert.Equal(t, 0, Score("anything", nil))
}
