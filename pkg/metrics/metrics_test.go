package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistersOnPrivateRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.DocsIndexedTotal.Add(3)
	m.QueryEvaluationsTotal.WithLabelValues("match").Inc()
	m.TrieNodes.WithLabelValues("prefix").Set(42)

	assert.Equal(t, float64(3), testutil.ToFloat64(m.DocsIndexedTotal))
	assert.Equal(t, float64(42), testutil.ToFloat64(m.TrieNodes.WithLabelValues("prefix")))

	// A second set on a fresh registry must not collide.
	assert.NotPanics(t, func() { New(prometheus.NewRegistry()) })
}

func TestHandlerServesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.WindowsLoadedTotal.Inc()

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "windows_loaded_total 1")
}
