// Package trie implements a 26-way, case-insensitive trie whose nodes are
// stamped with a generation tag. Advancing the generation logically empties
// the trie in O(1): a node whose tag differs from the current generation is
// treated as absent by every lookup, and is recycled (re-stamped, end flag
// cleared) the next time an insert walks through it. Staleness is a
// read-time predicate, never a write-time clear.
//
// Nodes live in a single arena slice and reference their children by index,
// so the whole structure is released as one unit.
package trie

// NodeIndex addresses a node in the arena.
type NodeIndex int32

// Root is the index of the root node. The root is never anyone's child, so
// a zero child slot means "no child".
const Root NodeIndex = 0

const alphabet = 26

type node struct {
	children   [alphabet]NodeIndex
	generation int
	end        bool
}

// Trie is not safe for concurrent mutation. Any number of readers may run
// concurrently as long as no insert is in progress.
type Trie struct {
	nodes      []node
	generation int
}

// New returns a trie holding only its root.
func New() *Trie {
	t := &Trie{
		nodes: make([]node, 1, 1024),
	}
	return t
}

// BeginGeneration makes g the current generation. Nothing is freed or
// cleared.
func (t *Trie) BeginGeneration(g int) {
	t.generation = g
}

// Generation returns the current generation.
func (t *Trie) Generation() int {
	return t.generation
}

// Len returns the number of allocated nodes, live and stale, root included.
func (t *Trie) Len() int {
	return len(t.nodes)
}

// Insert adds word front-to-back.
func (t *Trie) Insert(word string) {
	curr, touched := Root, false
	for i := 0; i < len(word); i++ {
		idx, ok := letterIndex(word[i])
		if !ok {
			continue
		}
		curr = t.step(curr, idx)
		touched = true
	}
	if touched {
		t.nodes[curr].end = true
	}
}

// InsertReversed adds word back-to-front, for suffix lookups.
func (t *Trie) InsertReversed(word string) {
	curr, touched := Root, false
	for i := len(word) - 1; i >= 0; i-- {
		idx, ok := letterIndex(word[i])
		if !ok {
			continue
		}
		curr = t.step(curr, idx)
		touched = true
	}
	if touched {
		t.nodes[curr].end = true
	}
}

// step descends from parent into the child for letter idx, allocating it
// or recycling it if it is stale.
func (t *Trie) step(parent NodeIndex, idx int) NodeIndex {
	child := t.nodes[parent].children[idx]
	if child == Root {
		child = NodeIndex(len(t.nodes))
		t.nodes = append(t.nodes, node{generation: t.generation})
		// append may have moved the arena; index again.
		t.nodes[parent].children[idx] = child
		return child
	}
	n := &t.nodes[child]
	if n.generation != t.generation {
		n.end = false
		n.generation = t.generation
	}
	return child
}

// ExactMove walks word front-to-back and returns the node it ends on. It
// fails as soon as a letter has no live child. An empty word returns the
// root.
func (t *Trie) ExactMove(word string) (NodeIndex, bool) {
	curr := Root
	for i := 0; i < len(word); i++ {
		next, ok := t.live(curr, word[i])
		if !ok {
			return Root, false
		}
		curr = next
	}
	return curr, true
}

// ExactMoveReversed walks word back-to-front.
func (t *Trie) ExactMoveReversed(word string) (NodeIndex, bool) {
	curr := Root
	for i := len(word) - 1; i >= 0; i-- {
		next, ok := t.live(curr, word[i])
		if !ok {
			return Root, false
		}
		curr = next
	}
	return curr, true
}

// IsWord reports whether a complete word ends at n.
func (t *Trie) IsWord(n NodeIndex) bool {
	return t.nodes[n].end
}

// HasPrefix reports whether any word of the current generation starts with
// prefix.
func (t *Trie) HasPrefix(prefix string) bool {
	_, ok := t.ExactMove(prefix)
	return ok
}

// HasWord reports whether word was inserted in the current generation.
func (t *Trie) HasWord(word string) bool {
	n, ok := t.ExactMove(word)
	return ok && t.IsWord(n)
}

// HasSuffix reports whether any word of the current generation ends with
// suffix. Only meaningful on a trie filled with InsertReversed.
func (t *Trie) HasSuffix(suffix string) bool {
	_, ok := t.ExactMoveReversed(suffix)
	return ok
}

// live returns the child of parent for byte c if it exists and belongs to
// the current generation.
func (t *Trie) live(parent NodeIndex, c byte) (NodeIndex, bool) {
	idx, ok := letterIndex(c)
	if !ok {
		return Root, false
	}
	child := t.nodes[parent].children[idx]
	if child == Root || t.nodes[child].generation != t.generation {
		return Root, false
	}
	return child, true
}

func letterIndex(c byte) (int, bool) {
	switch {
	case c >= 'a' && c <= 'z':
		return int(c - 'a'), true
	case c >= 'A' && c <= 'Z':
		return int(c - 'A'), true
	}
	return 0, false
}
