// Package analytics turns finished runs into events for Kafka and folds
// consumed events back into per-query statistics.
package analytics

import "time"

type EventType string

const (
	EventMatch        EventType = "match"
	EventRunCompleted EventType = "run_completed"
)

// MatchEvent records that one document matched one query of a run.
type MatchEvent struct {
	Type       EventType `json:"type"`
	RunID      string    `json:"run_id"`
	QueryIndex int       `json:"query_index"`
	Query      string    `json:"query"`
	DocID      int       `json:"doc_id"`
	Title      string    `json:"title"`
	Timestamp  time.Time `json:"timestamp"`
}

// RunEvent closes a run. It is published after all of the run's match
// events.
type RunEvent struct {
	Type          EventType `json:"type"`
	RunID         string    `json:"run_id"`
	Documents     int       `json:"documents"`
	Queries       int       `json:"queries"`
	CachedQueries int       `json:"cached_queries"`
	ZeroResult    []string  `json:"zero_result"`
	ElapsedMs     int64     `json:"elapsed_ms"`
	Timestamp     time.Time `json:"timestamp"`
}

// envelope is decoded first to find out which event a message holds.
type envelope struct {
	Type EventType `json:"type"`
}
