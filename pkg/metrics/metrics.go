// Package metrics defines the Prometheus collectors used by the batch
// pipeline and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for a run.
type Metrics struct {
	DocsIndexedTotal          prometheus.Counter
	DocumentsUnavailableTotal prometheus.Counter
	WindowsLoadedTotal        prometheus.Counter
	QueryEvaluationsTotal     *prometheus.CounterVec
	IndexDocumentLatency      prometheus.Histogram
	WindowLatency             prometheus.Histogram
	TrieNodes                 *prometheus.GaugeVec
	CacheHitsTotal            prometheus.Counter
	CacheMissesTotal          prometheus.Counter
	SinkWritesTotal           *prometheus.CounterVec
}

// New creates all collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		DocsIndexedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "docs_indexed_total",
				Help: "Total documents indexed into the tries.",
			},
		),
		DocumentsUnavailableTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "documents_unavailable_total",
				Help: "Documents that could not be opened or read.",
			},
		),
		WindowsLoadedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "windows_loaded_total",
				Help: "Document windows loaded.",
			},
		),
		QueryEvaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "query_evaluations_total",
				Help: "Query evaluations by result (match, no_match).",
			},
			[]string{"result"},
		),
		IndexDocumentLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "index_document_seconds",
				Help:    "Time to rebuild both tries for one document.",
				Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
			},
		),
		WindowLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "window_seconds",
				Help:    "Time to load, index and query one window.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
		),
		TrieNodes: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "trie_nodes",
				Help: "Allocated trie nodes, live and stale.",
			},
			[]string{"trie"},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Queries answered from the result cache.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Queries not found in the result cache.",
			},
		),
		SinkWritesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sink_writes_total",
				Help: "Result sink writes by sink and status.",
			},
			[]string{"sink", "status"},
		),
	}

	reg.MustRegister(
		m.DocsIndexedTotal,
		m.DocumentsUnavailableTotal,
		m.WindowsLoadedTotal,
		m.QueryEvaluationsTotal,
		m.IndexDocumentLatency,
		m.WindowLatency,
		m.TrieNodes,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.SinkWritesTotal,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler for g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
