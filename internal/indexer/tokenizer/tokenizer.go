// Package tokenizer turns document lines into index words. Lines are split
// on whitespace and every resulting field is reduced to its ASCII letters,
// lower-cased. Non-letters are dropped, not treated as separators, so
// "don't" becomes "dont" and "e-mail" becomes "email".
package tokenizer

import (
	"strings"
)

// Words splits line on whitespace and filters each field. Fields that carry
// no letters are omitted.
func Words(line string) []string {
	fields := strings.Fields(line)
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		if w := Filter(f); w != "" {
			words = append(words, w)
		}
	}
	return words
}

// Filter keeps the ASCII letters of word, lower-cased.
func Filter(word string) string {
	clean := true
	for i := 0; i < len(word); i++ {
		c := word[i]
		if c < 'a' || c > 'z' {
			clean = false
			break
		}
	}
	if clean {
		return word
	}
	var b strings.Builder
	b.Grow(len(word))
	for i := 0; i < len(word); i++ {
		c := word[i]
		switch {
		case c >= 'a' && c <= 'z':
			b.WriteByte(c)
		case c >= 'A' && c <= 'Z':
			b.WriteByte(c + ('a' - 'A'))
		}
	}
	return b.String()
}
