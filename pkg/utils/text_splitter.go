package utils

import (
	"strings"
	"unicode"
)

// SplitText splits text into chunks of at most chunkSize runes. Each chunk
// after the first repeats the last overlap runes of the previous one. A cut is
// moved back to the nearest whitespace when one is in the second half of the
// window.
func SplitText(text string, chunkSize int, overlap int) []string {
	runes := []rune(text)
	if chunkSize <= 0 || len(runes) <= chunkSize {
		return []string{text}
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0
	}

	var chunks []string
	for start := 0; start < len(runes); {
		end := start + chunkSize
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}

		for i := end; i > start+chunkSize/2; i-- {
			if unicode.IsSpace(runes[i-1]) {
				end = i
				break
			}
		}
		chunks = append(chunks, string(runes[start:end]))

		next := end - overlap
		if next <= start {
			next = end
		}
		start = next
	}
	return chunks
}

// StreamTokens splits text into word pieces, each carrying its leading
// whitespace, so that joining them restores text exactly.
func StreamTokens(text string) []string {
	var (
		tokens []string
		b      strings.Builder
		inWord bool
	)
	for _, r := range text {
		if unicode.IsSpace(r) && inWord {
			tokens = append(tokens, b.String())
			b.Reset()
			inWord = false
		}
		if !unicode.IsSpace(r) {
			inWord = true
		}
		b.WriteRune(r)
	}
	if b.Len() > 0 {
		tokens = append(tokens, b.String())
	}
	return tokens
}
