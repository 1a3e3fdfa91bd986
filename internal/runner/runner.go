// Package runner executes one search job end to end: read the queries,
// answer what the result cache already knows, run the pipeline for the
// rest, write the output file and hand the report to the remote sinks.
package runner

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/cache"
	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/pipeline"
	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/results"
	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/trie-search/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/trie-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/trie-search/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/trie-search/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/trie-search/pkg/resilience"
)

// Job names the three paths of one invocation.
type Job struct {
	DataDir    string
	QueryFile  string
	OutputFile string
}

type Runner struct {
	cfg     *config.Config
	metrics *metrics.Metrics
	cache   *cache.QueryCache
	sinks   []results.Sink
	now     func() time.Time
}

type Option func(*Runner)

// WithCache answers repeated queries from c.
func WithCache(c *cache.QueryCache) Option {
	return func(r *Runner) { r.cache = c }
}

// WithSinks adds sinks that receive the report after the output file is
// written.
func WithSinks(sinks ...results.Sink) Option {
	return func(r *Runner) { r.sinks = append(r.sinks, sinks...) }
}

// New creates a Runner. m may be nil.
func New(cfg *config.Config, m *metrics.Metrics, opts ...Option) *Runner {
	r := &Runner{cfg: cfg, metrics: m, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes job. Failing to read the query file or to write the output
// file is fatal; everything past the output file is best effort.
func (r *Runner) Run(ctx context.Context, job Job) (*results.Report, error) {
	started := r.now()
	runID := uuid.NewString()
	ctx = logger.WithRunID(ctx, runID)
	log := logger.FromContext(ctx).With("component", "runner")

	queries, err := readQueries(job.QueryFile)
	if err != nil {
		return nil, err
	}
	lines := make([]string, len(queries))
	for i, q := range queries {
		lines[i] = q.RawQuery
	}
	log.Info("run started",
		"data_dir", job.DataDir,
		"queries", len(queries),
		"window_size", r.cfg.Engine.WindowSize,
		"max_documents", r.cfg.Engine.MaxDocuments,
	)

	src := corpus.NewDirSource(job.DataDir, r.cfg.Corpus.Extension)
	if _, err := os.Stat(job.DataDir); err != nil {
		log.Warn("data directory not readable, every query will be empty", "error", err)
	}

	out := make([]results.QueryResult, len(queries))
	pending := make([]int, 0, len(queries))
	fingerprint, documents := "", 0
	if r.cache != nil {
		fingerprint, documents, err = src.Fingerprint(r.cfg.Engine.MaxDocuments)
		if err != nil {
			log.Warn("corpus fingerprint failed, cache disabled for this run", "error", err)
			fingerprint = ""
		}
	}
	if fingerprint != "" {
		for i, e := range r.cache.LookupAll(ctx, fingerprint, lines) {
			if e == nil {
				pending = append(pending, i)
				continue
			}
			out[i] = results.QueryResult{Query: lines[i], DocIDs: e.DocIDs, Titles: e.Titles, Cached: true}
		}
	} else {
		for i := range queries {
			pending = append(pending, i)
		}
	}

	if len(pending) > 0 || len(queries) == 0 {
		todo := make([]*parser.Query, len(pending))
		for j, i := range pending {
			todo[j] = queries[i]
		}
		coll, err := pipeline.New(src, r.cfg.Engine, r.metrics).Run(ctx, todo)
		if err != nil {
			return nil, fmt.Errorf("running pipeline: %w", err)
		}
		documents = coll.Documents()
		for j, i := range pending {
			out[i] = coll.Result(j)
			if fingerprint != "" {
				r.cache.Set(ctx, fingerprint, lines[i], &cache.Entry{DocIDs: out[i].DocIDs, Titles: out[i].Titles})
			}
		}
	} else {
		log.Info("every query answered from cache, corpus not scanned")
	}

	report := &results.Report{
		RunID:     runID,
		DataDir:   job.DataDir,
		StartedAt: started,
		Documents: documents,
		Results:   out,
	}
	if err := results.NewFileSink(job.OutputFile).Write(ctx, report); err != nil {
		return nil, apperrors.Newf(apperrors.ErrSinkFailed, "writing %s: %v", job.OutputFile, err)
	}
	report.Elapsed = r.now().Sub(started)

	r.deliver(ctx, report)

	summary := analytics.Summarize(report)
	zero := 0
	for _, qr := range out {
		if len(qr.DocIDs) == 0 {
			zero++
		}
	}
	log.Info("run complete",
		"elapsed_ms", report.Elapsed.Milliseconds(),
		"documents", report.Documents,
		"queries", len(out),
		"cached_queries", len(out)-len(pending),
		"matches", summary.Matches,
		"zero_result_queries", zero,
	)
	return report, nil
}

// deliver writes report to every sink concurrently. Each write is retried
// and bounded by the sink timeout; failures are logged and counted only.
func (r *Runner) deliver(ctx context.Context, report *results.Report) {
	if len(r.sinks) == 0 {
		return
	}
	log := logger.FromContext(ctx).With("component", "runner")
	retry := resilience.RetryConfig{MaxAttempts: r.cfg.Sinks.RetryAttempts}

	var wg sync.WaitGroup
	for _, sink := range r.sinks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			name := sink.Name()
			err := resilience.Retry(ctx, name, retry, func(ctx context.Context) error {
				return resilience.WithTimeout(ctx, r.cfg.Sinks.Timeout, name, func(ctx context.Context) error {
					return sink.Write(ctx, report)
				})
			})
			status := "ok"
			if err != nil {
				status = "error"
				log.Error("result sink failed", "sink", name, "error", err)
			}
			if r.metrics != nil {
				r.metrics.SinkWritesTotal.WithLabelValues(name, status).Inc()
			}
		}()
	}
	wg.Wait()
}

func readQueries(path string) ([]*parser.Query, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening query file: %w", err)
	}
	defer f.Close()
	return parser.ReadQueries(f)
}
