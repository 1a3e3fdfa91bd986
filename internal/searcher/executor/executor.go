package executor

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/searcher/parser"
)

// Index is the read side of the engine a query is evaluated against.
type Index interface {
	HasPrefix(prefix string) bool
	HasSuffix(suffix string) bool
	HasWord(word string) bool
	MatchWildcard(pattern string) bool
}

// Match evaluates a single term.
func Match(term parser.Term, idx Index) bool {
	switch term.Kind {
	case parser.KindPrefix:
		return idx.HasPrefix(term.Text)
	case parser.KindSuffix:
		return idx.HasSuffix(term.Text)
	case parser.KindExact:
		return idx.HasWord(term.Text)
	case parser.KindWildcard:
		return idx.MatchWildcard(term.Text)
	default:
		return false
	}
}

// Evaluate folds the query left to right with no precedence. A step is
// skipped when (op == '/') equals the running result: '/' after true and
// any other operator after false leave it unchanged. Otherwise '/' and '+'
// replace the running result with the term and '-' with its negation, so
// the chain reads as OR, AND and AND-NOT. Unknown operators never change
// the result.
func Evaluate(q *parser.Query, idx Index) bool {
	if q.Empty() {
		return false
	}
	matched := Match(q.First, idx)
	for _, step := range q.Steps {
		if (step.Op == parser.OpOr) == matched {
			continue
		}
		switch step.Op {
		case parser.OpOr, parser.OpAnd:
			matched = Match(step.Term, idx)
		case parser.OpAndNot:
			matched = !Match(step.Term, idx)
		}
	}
	return matched
}

// Executor evaluates a fixed set of queries against an index, in parallel
// across queries.
type Executor struct {
	workers int
}

// New returns an Executor using at most workers goroutines; zero means
// GOMAXPROCS.
func New(workers int) *Executor {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Executor{workers: workers}
}

// EvaluateAll evaluates every query against idx. The index must not be
// mutated until EvaluateAll returns. Each goroutine owns its result slot.
func (e *Executor) EvaluateAll(ctx context.Context, queries []*parser.Query, idx Index) ([]bool, error) {
	results := make([]bool, len(queries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, q := range queries {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			results[i] = Evaluate(q, idx)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("evaluating queries: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("evaluating queries: %w", err)
	}
	return results, nil
}
