package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/Adithya-Monish-Kumar-K/trie-search/pkg/kafka"
)

type AggregatedStats struct {
	Runs              int64        `json:"runs"`
	Matches           int64        `json:"matches"`
	DocumentsSearched int64        `json:"documents_searched"`
	QueriesRun        int64        `json:"queries_run"`
	CachedQueries     int64        `json:"cached_queries"`
	AvgElapsedMs      float64      `json:"avg_elapsed_ms"`
	P50ElapsedMs      int64        `json:"p50_elapsed_ms"`
	P95ElapsedMs      int64        `json:"p95_elapsed_ms"`
	TopQueries        []QueryCount `json:"top_queries"`
	TopDocuments      []QueryCount `json:"top_documents"`
	ZeroResultQueries []QueryCount `json:"zero_result_queries"`
}

// QueryCount pairs a key (a query line or a document title) with a count.
type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// Aggregator folds match and run events into totals. It is safe for
// concurrent use.
type Aggregator struct {
	mu                sync.Mutex
	stats             AggregatedStats
	elapsed           []int64
	queryCounts       map[string]int64
	titleCounts       map[string]int64
	zeroResultQueries map[string]int64
	topN              int
	logger            *slog.Logger
}

// NewAggregator keeps the topN most frequent entries in each ranking.
func NewAggregator(topN int) *Aggregator {
	if topN <= 0 {
		topN = 10
	}
	return &Aggregator{
		queryCounts:       make(map[string]int64),
		titleCounts:       make(map[string]int64),
		zeroResultQueries: make(map[string]int64),
		topN:              topN,
		logger:            slog.Default().With("component", "analytics-aggregator"),
	}
}

func (a *Aggregator) RecordMatch(e MatchEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stats.Matches++
	a.queryCounts[e.Query]++
	a.titleCounts[e.Title]++
}

func (a *Aggregator) RecordRun(e RunEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stats.Runs++
	a.stats.DocumentsSearched += int64(e.Documents)
	a.stats.QueriesRun += int64(e.Queries)
	a.stats.CachedQueries += int64(e.CachedQueries)
	a.elapsed = append(a.elapsed, e.ElapsedMs)
	for _, q := range e.ZeroResult {
		a.zeroResultQueries[q]++
	}
}

// Handler decodes consumed messages and records them. Messages of an
// unknown type are skipped; undecodable ones are logged and skipped so a
// bad message never blocks the partition.
func (a *Aggregator) Handler() kafka.MessageHandler {
	return func(ctx context.Context, key []byte, value []byte) error {
		_, err := a.Record(value)
		if err != nil {
			a.logger.Error("failed to decode analytics event", "key", string(key), "error", err)
		}
		return nil
	}
}

// Record decodes one event and records it, returning the decoded event.
func (a *Aggregator) Record(value []byte) (any, error) {
	env, err := kafka.DecodeJSON[envelope](value)
	if err != nil {
		return nil, err
	}
	switch env.Type {
	case EventMatch:
		e, err := kafka.DecodeJSON[MatchEvent](value)
		if err != nil {
			return nil, err
		}
		a.RecordMatch(e)
		return e, nil
	case EventRunCompleted:
		e, err := kafka.DecodeJSON[RunEvent](value)
		if err != nil {
			return nil, err
		}
		a.RecordRun(e)
		return e, nil
	default:
		return nil, fmt.Errorf("unknown event type %q", env.Type)
	}
}

func (a *Aggregator) Stats() AggregatedStats {
	a.mu.Lock()
	defer a.mu.Unlock()

	stats := a.stats
	if len(a.elapsed) > 0 {
		sorted := make([]int64, len(a.elapsed))
		copy(sorted, a.elapsed)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
		var sum int64
		for _, v := range sorted {
			sum += v
		}
		stats.AvgElapsedMs = float64(sum) / float64(len(sorted))
		stats.P50ElapsedMs = percentile(sorted, 50)
		stats.P95ElapsedMs = percentile(sorted, 95)
	}
	stats.TopQueries = topN(a.queryCounts, a.topN)
	stats.TopDocuments = topN(a.titleCounts, a.topN)
	stats.ZeroResultQueries = topN(a.zeroResultQueries, a.topN)
	return stats
}

func percentile(sorted []int64, pct int) int64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (pct * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// topN ranks by count, then by key so ties are stable.
func topN(counts map[string]int64, n int) []QueryCount {
	result := make([]QueryCount, 0, len(counts))
	for k, c := range counts {
		result = append(result, QueryCount{Query: k, Count: c})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Query < result[j].Query
	})
	if len(result) > n {
		result = result[:n]
	}
	return result
}
