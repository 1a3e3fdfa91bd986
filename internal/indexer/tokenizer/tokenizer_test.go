package tokenizer

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWords(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"simple", "cats and dogs", []string{"cats", "and", "dogs"}},
		{"case folded", "The Quick BROWN fox", []string{"the", "quick", "brown", "fox"}},
		{"punctuation dropped", "don't stop, e-mail!", []string{"dont", "stop", "email"}},
		{"digits only field skipped", "route 66 west", []string{"route", "west"}},
		{"tabs and runs of spaces", "a\t\tb   c", []string{"a", "b", "c"}},
		{"empty", "", []string{}},
		{"whitespace only", "   \t ", []string{}},
		{"non ascii letters dropped", "café naïve", []string{"caf", "nave"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Words(tt.line))
		})
	}
}

func TestFilter(t *testing.T) {
	assert.Equal(t, "hello", Filter("hello"))
	assert.Equal(t, "hello", Filter("HeLLo!"))
	assert.Equal(t, "", Filter("1234"))
	assert.Equal(t, "ab", Filter("a1b2"))
}

func BenchmarkWords(b *testing.B) {
	sizes := []int{10, 100, 1000}
	base := "Distributed search, analytics & platform indexing "
	for _, size := range sizes {
		line := strings.Repeat(base, size/len(base)+1)[:size]
		b.Run(fmt.Sprintf("bytes_%d", size), func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(line)))
			for i := 0; i < b.N; i++ {
				_ = Words(line)
			}
		})
	}
}
