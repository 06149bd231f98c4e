package extractor

import "strings"

// TokenCounter estimates the token count of a text for usage accounting.
// The counts are advisory; swap in a real model tokenizer when precise
// billing numbers matter.
type TokenCounter interface {
	Count(text string) int
}

// ApproxTokenCounter approximates token counts without a model vocabulary:
// the larger of the whitespace word count and len/4, which tracks common
// BPE tokenizers closely enough for dashboard display.
type ApproxTokenCounter struct{}

// Count returns the approximate token count of text.
func (ApproxTokenCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	words := len(strings.Fields(text))
	byLength := (len(text) + 3) / 4
	if words > byLength {
		return words
	}
	return byLength
}
