// Package pipeline drives the windowed build-then-query loop: load a window
// of documents, and for each document in id order rebuild the tries and
// evaluate every query against them.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/results"
	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/trie-search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/trie-search/pkg/metrics"
)

// State is a step of the orchestrator's loop.
type State int

const (
	StateLoadingWindow State = iota
	StateIndexingDocument
	StateEvaluatingQueries
	StateDone
)

func (s State) String() string {
	switch s {
	case StateLoadingWindow:
		return "LoadingWindow"
	case StateIndexingDocument:
		return "IndexingDocument"
	case StateEvaluatingQueries:
		return "EvaluatingQueries"
	case StateDone:
		return "Done"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Orchestrator owns the window buffer shared by successive windows. It is
// not safe for concurrent Runs.
type Orchestrator struct {
	windowSize   int
	maxDocuments int
	indexWorkers int
	loader       *corpus.Loader
	exec         *executor.Executor
	metrics      *metrics.Metrics
	logger       *slog.Logger
}

// New builds an Orchestrator reading from src. m may be nil.
func New(src corpus.Source, cfg config.EngineConfig, m *metrics.Metrics) *Orchestrator {
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = config.Default().Engine.WindowSize
	}
	return &Orchestrator{
		windowSize:   cfg.WindowSize,
		maxDocuments: cfg.MaxDocuments,
		loader:       corpus.NewLoader(src, cfg.WindowSize, cfg.LoadWorkers, m),
		indexWorkers: cfg.IndexWorkers,
		exec:         executor.New(cfg.QueryWorkers),
		metrics:      m,
		logger:       slog.Default().With("component", "pipeline"),
	}
}

// Run processes documents 0, 1, 2, ... in windows until the id space is
// exhausted or a document is unavailable. The window holding the first
// unavailable id is still processed up to that id; no later id is ever
// opened. Only context cancellation makes Run fail.
//
// Each Run starts from empty tries, since generations restart at id 0.
func (o *Orchestrator) Run(ctx context.Context, queries []*parser.Query) (*results.Collection, error) {
	engine := indexer.NewEngine(o.indexWorkers, o.metrics)
	raw := make([]string, len(queries))
	for i, q := range queries {
		raw[i] = q.RawQuery
	}
	coll := results.NewCollection(raw)

	for start := 0; start < o.maxDocuments; start += o.windowSize {
		end := min(start+o.windowSize, o.maxDocuments)
		windowStart := time.Now()

		o.enter(StateLoadingWindow, "start", start, "end", end)
		w, err := o.loader.LoadWindow(ctx, start, end)
		if err != nil {
			return nil, err
		}
		if len(w.Docs) == 0 {
			break
		}
		for i := range w.Docs {
			if err := o.process(ctx, engine, &w.Docs[i], queries, coll); err != nil {
				return nil, err
			}
		}
		if o.metrics != nil {
			o.metrics.WindowLatency.Observe(time.Since(windowStart).Seconds())
		}
		if w.Short() {
			o.logger.Info("corpus ends inside window",
				"start", start,
				"last_id", start+len(w.Docs)-1,
			)
			break
		}
	}
	o.enter(StateDone, "documents", coll.Documents())
	return coll, nil
}

func (o *Orchestrator) process(ctx context.Context, engine *indexer.Engine, doc *corpus.Document, queries []*parser.Query, coll *results.Collection) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("processing document %d: %w", doc.ID, err)
	}
	o.enter(StateIndexingDocument, "id", doc.ID)
	if err := engine.IndexDocument(ctx, doc.ID, doc.Lines); err != nil {
		return err
	}
	coll.AddDocument(doc.ID, doc.Title)
	if len(queries) == 0 {
		return nil
	}

	o.enter(StateEvaluatingQueries, "id", doc.ID)
	matched, err := o.exec.EvaluateAll(ctx, queries, engine)
	if err != nil {
		return fmt.Errorf("document %d: %w", doc.ID, err)
	}
	hits := 0
	for qi, ok := range matched {
		if ok {
			coll.Record(qi, doc.ID)
			hits++
		}
	}
	if o.metrics != nil {
		o.metrics.QueryEvaluationsTotal.WithLabelValues("match").Add(float64(hits))
		o.metrics.QueryEvaluationsTotal.WithLabelValues("no_match").Add(float64(len(matched) - hits))
	}
	return nil
}

func (o *Orchestrator) enter(s State, args ...any) {
	o.logger.Debug("state", append([]any{"state", s.String()}, args...)...)
}
