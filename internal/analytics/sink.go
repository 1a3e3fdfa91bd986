package analytics

import (
	"context"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/analytics/collector"
	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/results"
)

// Events converts a report into one MatchEvent per (query, document) pair
// followed by a single RunEvent. All events are keyed by run id so they
// land on one partition in order.
func Events(r *results.Report) []any {
	now := time.Now().UTC()
	var out []any
	run := RunEvent{
		Type:      EventRunCompleted,
		RunID:     r.RunID,
		Documents: r.Documents,
		Queries:   len(r.Results),
		ElapsedMs: r.Elapsed.Milliseconds(),
		Timestamp: now,
	}
	for qi, qr := range r.Results {
		if qr.Cached {
			run.CachedQueries++
		}
		if len(qr.DocIDs) == 0 {
			run.ZeroResult = append(run.ZeroResult, qr.Query)
		}
		for i, id := range qr.DocIDs {
			out = append(out, MatchEvent{
				Type:       EventMatch,
				RunID:      r.RunID,
				QueryIndex: qi,
				Query:      qr.Query,
				DocID:      id,
				Title:      qr.Titles[i],
				Timestamp:  now,
			})
		}
	}
	return append(out, run)
}

// Summarize aggregates a single report without going through Kafka.
func Summarize(r *results.Report) AggregatedStats {
	agg := NewAggregator(5)
	for _, e := range Events(r) {
		switch e := e.(type) {
		case MatchEvent:
			agg.RecordMatch(e)
		case RunEvent:
			agg.RecordRun(e)
		}
	}
	return agg.Stats()
}

// EventSink publishes reports as events through a BatchCollector. A Write
// that fails part-way can be repeated: events already accepted by the
// broker are not sent again.
type EventSink struct {
	collector *collector.BatchCollector
	mu        sync.Mutex
	enqueued  *results.Report
}

func NewEventSink(c *collector.BatchCollector) *EventSink {
	return &EventSink{collector: c}
}

func (s *EventSink) Name() string { return "kafka" }

func (s *EventSink) Write(ctx context.Context, r *results.Report) error {
	s.mu.Lock()
	if s.enqueued != r {
		for _, e := range Events(r) {
			s.collector.Track(r.RunID, e)
		}
		s.enqueued = r
	}
	s.mu.Unlock()
	return s.collector.Flush(ctx)
}
