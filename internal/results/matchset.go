// Package results collects per-query matches, renders them in the output
// file format and hands finished runs to sinks.
package results

import (
	"github.com/RoaringBitmap/roaring"
)

// MatchSet is the ascending set of document ids a query matched.
type MatchSet struct {
	bm *roaring.Bitmap
}

func NewMatchSet() *MatchSet {
	return &MatchSet{bm: roaring.New()}
}

// MatchSetOf builds a set from ids in any order.
func MatchSetOf(ids ...int) *MatchSet {
	m := NewMatchSet()
	for _, id := range ids {
		m.Add(id)
	}
	return m
}

func (m *MatchSet) Add(id int) {
	m.bm.Add(uint32(id))
}

func (m *MatchSet) Contains(id int) bool {
	return m.bm.Contains(uint32(id))
}

func (m *MatchSet) Len() int {
	return int(m.bm.GetCardinality())
}

func (m *MatchSet) Empty() bool {
	return m.bm.IsEmpty()
}

// IDs returns the ids in ascending order.
func (m *MatchSet) IDs() []int {
	raw := m.bm.ToArray()
	ids := make([]int, len(raw))
	for i, v := range raw {
		ids[i] = int(v)
	}
	return ids
}
