package trie

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchWildcard(t *testing.T) {
	tr := New()
	tr.BeginGeneration(1)
	for _, w := range []string{"abcd", "fox", "foxes", "fish", "ab"} {
		tr.Insert(w)
	}

	tests := []struct {
		pattern string
		want    bool
	}{
		{"ab*", true},
		{"abc*", true},
		{"abx*", false},
		{"*", true},
		{"*cd", true},
		{"*d", true},
		{"*bd", false},
		{"f*x", true},
		{"f*s", true},
		{"f*h", true},
		{"f*z", false},
		{"a*d", true},
		{"ab*d", true},
		{"fox", true},
		{"fo", false},
		{"abcd*", true},
		{"", false},
		{"f?x", false},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			assert.Equal(t, tt.want, tr.MatchWildcard(tt.pattern))
		})
	}
}

func TestMatchWildcardIgnoresStaleBranches(t *testing.T) {
	tr := New()
	tr.BeginGeneration(1)
	tr.Insert("helix")

	tr.BeginGeneration(2)
	tr.Insert("help")

	assert.True(t, tr.MatchWildcard("h*p"))
	assert.False(t, tr.MatchWildcard("h*x"))
	assert.False(t, tr.MatchWildcard("hel*x"))
	assert.True(t, tr.MatchWildcard("hel*"))
}

func TestMatchWildcardRequiresWholeWord(t *testing.T) {
	tr := New()
	tr.BeginGeneration(1)
	tr.Insert("foxes")

	assert.False(t, tr.MatchWildcard("f*x"), "fox is only a prefix of foxes")
	assert.True(t, tr.MatchWildcard("f*s"))
	assert.True(t, tr.MatchWildcard("f*"))
}
