package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func up(context.Context) error { return nil }

func TestRunAllUp(t *testing.T) {
	c := NewChecker()
	c.Register("redis", up)
	c.Register("postgres", up)

	r := c.Run(context.Background())
	assert.Equal(t, StatusUp, r.Status)
	assert.Equal(t, []string{"postgres", "redis"}, r.Names())
}

func TestRunOneDown(t *testing.T) {
	c := NewChecker()
	c.Register("redis", up)
	c.Register("kafka", func(context.Context) error { return errors.New("dial tcp: connection refused") })

	r := c.Run(context.Background())
	assert.Equal(t, StatusDown, r.Status)
	assert.Equal(t, StatusUp, r.Components["redis"].Status)
	assert.Equal(t, "dial tcp: connection refused", r.Components["kafka"].Message)
}

func TestRunNoProbes(t *testing.T) {
	r := NewChecker().Run(context.Background())
	assert.Equal(t, StatusUp, r.Status)
	assert.Empty(t, r.Components)
}

func TestReadyHandler(t *testing.T) {
	c := NewChecker()
	c.Register("redis", up)
	rec := httptest.NewRecorder()
	c.ReadyHandler(time.Second).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	c.Register("postgres", func(context.Context) error { return errors.New("down") })
	rec = httptest.NewRecorder()
	c.ReadyHandler(time.Second).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var report Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, StatusDown, report.Status)
	assert.Len(t, report.Components, 2)
}
