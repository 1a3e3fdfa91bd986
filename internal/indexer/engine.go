package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/trie"
	"github.com/Adithya-Monish-Kumar-K/trie-search/pkg/metrics"
)

// Engine owns the prefix and suffix tries for the document currently being
// searched. Both tries are always on the same generation.
//
// Line splitting and word filtering run in parallel; the inserts themselves
// run serially under the write lock, so no two goroutines ever touch the
// same child slot. Lookups take the read lock and may run concurrently.
type Engine struct {
	mu      sync.RWMutex
	prefix  *trie.Trie
	suffix  *trie.Trie
	workers int
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewEngine creates an Engine that tokenises with at most workers
// goroutines; zero means GOMAXPROCS. m may be nil.
func NewEngine(workers int, m *metrics.Metrics) *Engine {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Engine{
		prefix:  trie.New(),
		suffix:  trie.New(),
		workers: workers,
		metrics: m,
		logger:  slog.Default().With("component", "indexer"),
	}
}

// IndexDocument rebuilds both tries for one document: it advances them to
// generation and inserts every word of lines. Words from earlier
// generations become invisible without being freed.
func (e *Engine) IndexDocument(ctx context.Context, generation int, lines []string) error {
	start := time.Now()
	words, err := e.tokenize(ctx, lines)
	if err != nil {
		return fmt.Errorf("tokenizing document %d: %w", generation, err)
	}

	e.mu.Lock()
	e.prefix.BeginGeneration(generation)
	e.suffix.BeginGeneration(generation)
	count := 0
	for _, lineWords := range words {
		for _, w := range lineWords {
			e.prefix.Insert(w)
			e.suffix.InsertReversed(w)
		}
		count += len(lineWords)
	}
	prefixNodes, suffixNodes := e.prefix.Len(), e.suffix.Len()
	e.mu.Unlock()

	if e.metrics != nil {
		e.metrics.DocsIndexedTotal.Inc()
		e.metrics.IndexDocumentLatency.Observe(time.Since(start).Seconds())
		e.metrics.TrieNodes.WithLabelValues("prefix").Set(float64(prefixNodes))
		e.metrics.TrieNodes.WithLabelValues("suffix").Set(float64(suffixNodes))
	}
	e.logger.Debug("document indexed",
		"generation", generation,
		"lines", len(lines),
		"words", count,
		"prefix_nodes", prefixNodes,
		"suffix_nodes", suffixNodes,
	)
	return nil
}

// tokenize splits every non-empty line into filtered words. Each goroutine
// writes only its own line's slot.
func (e *Engine) tokenize(ctx context.Context, lines []string) ([][]string, error) {
	words := make([][]string, len(lines))
	if len(lines) <= 1 {
		for i, line := range lines {
			if line != "" {
				words[i] = tokenizer.Words(line)
			}
		}
		return words, nil
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, line := range lines {
		if line == "" {
			continue
		}
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			words[i] = tokenizer.Words(line)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return words, nil
}

// Generation returns the generation both tries are on.
func (e *Engine) Generation() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.prefix.Generation()
}

// HasPrefix reports whether the current document has a word starting with
// prefix.
func (e *Engine) HasPrefix(prefix string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.prefix.HasPrefix(prefix)
}

// HasSuffix reports whether the current document has a word ending with
// suffix.
func (e *Engine) HasSuffix(suffix string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.suffix.HasSuffix(suffix)
}

// HasWord reports whether the current document contains word.
func (e *Engine) HasWord(word string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.prefix.HasWord(word)
}

// MatchWildcard reports whether a word of the current document matches
// pattern.
func (e *Engine) MatchWildcard(pattern string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.prefix.MatchWildcard(pattern)
}

// Stats returns the allocated node counts of the prefix and suffix tries.
func (e *Engine) Stats() (prefixNodes, suffixNodes int) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.prefix.Len(), e.suffix.Len()
}
