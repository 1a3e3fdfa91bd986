package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/cache"
	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/results"
	"github.com/Adithya-Monish-Kumar-K/trie-search/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/trie-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/trie-search/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/trie-search/pkg/redis"
)

func writeCorpus(t *testing.T) (dataDir, queryFile, outFile string) {
	t.Helper()
	root := t.TempDir()
	dataDir = filepath.Join(root, "data")
	require.NoError(t, os.Mkdir(dataDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "0.txt"), []byte("Pets\ncats and dogs\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "1.txt"), []byte("Wild\nfoxes and fish\n"), 0o644))
	queryFile = filepath.Join(root, "queries.txt")
	require.NoError(t, os.WriteFile(queryFile, []byte("cat\n<f*s>\n<f*x>\nand - fish\n"), 0o644))
	outFile = filepath.Join(root, "out.txt")
	return dataDir, queryFile, outFile
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Sinks.Timeout = time.Second
	cfg.Sinks.RetryAttempts = 2
	return cfg
}

const wantOutput = "Pets\nWild\nNot Found!\nPets\n"

func TestRunWritesOutput(t *testing.T) {
	dataDir, queryFile, outFile := writeCorpus(t)
	r := New(testConfig(), nil)

	report, err := r.Run(context.Background(), Job{DataDir: dataDir, QueryFile: queryFile, OutputFile: outFile})
	require.NoError(t, err)

	got, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Equal(t, wantOutput, string(got))
	assert.Equal(t, 2, report.Documents)
	assert.NotEmpty(t, report.RunID)
	require.Len(t, report.Results, 4)
	assert.Equal(t, "<f*x>", report.Results[2].Query)
}

func TestRunMissingQueryFile(t *testing.T) {
	dataDir, _, outFile := writeCorpus(t)
	_, err := New(testConfig(), nil).Run(context.Background(), Job{
		DataDir: dataDir, QueryFile: filepath.Join(t.TempDir(), "nope"), OutputFile: outFile,
	})
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunUnwritableOutput(t *testing.T) {
	dataDir, queryFile, _ := writeCorpus(t)
	_, err := New(testConfig(), nil).Run(context.Background(), Job{
		DataDir: dataDir, QueryFile: queryFile, OutputFile: filepath.Join(t.TempDir(), "missing", "out.txt"),
	})
	require.ErrorIs(t, err, apperrors.ErrSinkFailed)
}

func TestRunMissingDataDir(t *testing.T) {
	_, queryFile, outFile := writeCorpus(t)
	report, err := New(testConfig(), nil).Run(context.Background(), Job{
		DataDir: filepath.Join(t.TempDir(), "absent"), QueryFile: queryFile, OutputFile: outFile,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Documents)
	got, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Equal(t, "Not Found!\nNot Found!\nNot Found!\nNot Found!\n", string(got))
}

type recordingSink struct {
	mu      sync.Mutex
	name    string
	fails   int
	reports []*results.Report
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Write(_ context.Context, r *results.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fails > 0 {
		s.fails--
		return errors.New("temporarily unavailable")
	}
	s.reports = append(s.reports, r)
	return nil
}

func TestRunDeliversToSinks(t *testing.T) {
	dataDir, queryFile, outFile := writeCorpus(t)
	m := metrics.New(prometheus.NewRegistry())
	flaky := &recordingSink{name: "flaky", fails: 1}
	broken := &recordingSink{name: "broken", fails: 100}
	r := New(testConfig(), m, WithSinks(flaky, broken))

	report, err := r.Run(context.Background(), Job{DataDir: dataDir, QueryFile: queryFile, OutputFile: outFile})
	require.NoError(t, err, "sink failures are not fatal")

	require.Len(t, flaky.reports, 1)
	assert.Same(t, report, flaky.reports[0])
	assert.Empty(t, broken.reports)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.SinkWritesTotal.WithLabelValues("flaky", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.SinkWritesTotal.WithLabelValues("broken", "error")))
}

type memStore struct {
	mu   sync.Mutex
	data map[string]string
}

func (s *memStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return "", pkgredis.Nil
	}
	return v, nil
}

func (s *memStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = string(value.([]byte))
	return nil
}

func (s *memStore) FlushByPattern(context.Context, string) (int64, error) { return 0, nil }

func TestRunServesRepeatedQueriesFromCache(t *testing.T) {
	dataDir, queryFile, outFile := writeCorpus(t)
	m := metrics.New(prometheus.NewRegistry())
	qc := cache.New(&memStore{data: make(map[string]string)}, time.Hour, m)
	r := New(testConfig(), m, WithCache(qc))
	job := Job{DataDir: dataDir, QueryFile: queryFile, OutputFile: outFile}

	first, err := r.Run(context.Background(), job)
	require.NoError(t, err)
	for _, qr := range first.Results {
		assert.False(t, qr.Cached)
	}
	indexed := testutil.ToFloat64(m.DocsIndexedTotal)
	assert.Equal(t, float64(2), indexed)

	second, err := r.Run(context.Background(), job)
	require.NoError(t, err)
	for _, qr := range second.Results {
		assert.True(t, qr.Cached, qr.Query)
	}
	assert.Equal(t, indexed, testutil.ToFloat64(m.DocsIndexedTotal), "corpus scanned again")
	assert.Equal(t, 2, second.Documents)

	got, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Equal(t, wantOutput, string(got))
}

func TestRunCacheMissesAfterCorpusChange(t *testing.T) {
	dataDir, queryFile, outFile := writeCorpus(t)
	qc := cache.New(&memStore{data: make(map[string]string)}, time.Hour, nil)
	r := New(testConfig(), nil, WithCache(qc))
	job := Job{DataDir: dataDir, QueryFile: queryFile, OutputFile: outFile}

	_, err := r.Run(context.Background(), job)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "2.txt"), []byte("Farm\ncattle\n"), 0o644))

	report, err := r.Run(context.Background(), job)
	require.NoError(t, err)
	assert.False(t, report.Results[0].Cached)
	assert.Equal(t, []string{"Pets", "Farm"}, report.Results[0].Titles)
}
