package results

// QueryResult is the outcome of one query line.
type QueryResult struct {
	Query  string   `json:"query"`
	DocIDs []int    `json:"doc_ids"`
	Titles []string `json:"titles"`
	Cached bool     `json:"-"`
}

// Collection accumulates matches for a fixed list of queries while the
// pipeline runs. It is not safe for concurrent use; the pipeline records
// matches after each query fan-out has joined.
type Collection struct {
	queries []string
	sets    []*MatchSet
	titles  map[int]string
	docs    int
}

func NewCollection(queries []string) *Collection {
	sets := make([]*MatchSet, len(queries))
	for i := range sets {
		sets[i] = NewMatchSet()
	}
	return &Collection{
		queries: queries,
		sets:    sets,
		titles:  make(map[int]string),
	}
}

// Len returns the number of queries.
func (c *Collection) Len() int {
	return len(c.queries)
}

// AddDocument records the title of a processed document.
func (c *Collection) AddDocument(id int, title string) {
	if _, ok := c.titles[id]; !ok {
		c.docs++
	}
	c.titles[id] = title
}

// Documents returns how many distinct documents were processed.
func (c *Collection) Documents() int {
	return c.docs
}

// Record marks document id as a match for query q.
func (c *Collection) Record(q, id int) {
	c.sets[q].Add(id)
}

func (c *Collection) Set(q int) *MatchSet {
	return c.sets[q]
}

// Titles returns the titles matched by query q in ascending id order.
func (c *Collection) Titles(q int) []string {
	ids := c.sets[q].IDs()
	titles := make([]string, len(ids))
	for i, id := range ids {
		titles[i] = c.titles[id]
	}
	return titles
}

// Result returns query q as a QueryResult.
func (c *Collection) Result(q int) QueryResult {
	return QueryResult{
		Query:  c.queries[q],
		DocIDs: c.sets[q].IDs(),
		Titles: c.Titles(q),
	}
}

// Results returns every query's result in input order.
func (c *Collection) Results() []QueryResult {
	out := make([]QueryResult, len(c.queries))
	for i := range c.queries {
		out[i] = c.Result(i)
	}
	return out
}
