package trie

// MatchWildcard reports whether some word of the current generation matches
// pattern, where '*' stands for any run of letters. A trailing '*' accepts
// any continuation, including none, so "ab*" is "starts with ab". Elsewhere
// the star may consume zero or more letters before the rest of the pattern
// has to match through to the end of a word.
func (t *Trie) MatchWildcard(pattern string) bool {
	return t.matchFrom(pattern, 0, Root)
}

func (t *Trie) matchFrom(pattern string, pos int, n NodeIndex) bool {
	if pos == len(pattern) {
		return t.nodes[n].end
	}
	if pattern[pos] == '*' {
		if pos == len(pattern)-1 {
			return true
		}
		if t.matchFrom(pattern, pos+1, n) {
			return true
		}
		for _, child := range t.nodes[n].children {
			if child == Root || t.nodes[child].generation != t.generation {
				continue
			}
			if t.matchFrom(pattern, pos, child) {
				return true
			}
		}
		return false
	}
	next, ok := t.live(n, pattern[pos])
	if !ok {
		return false
	}
	return t.matchFrom(pattern, pos+1, next)
}
