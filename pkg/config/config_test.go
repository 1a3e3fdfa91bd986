package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Adithya-Monish-Kumar-K/trie-search/pkg/errors"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 1000, cfg.Engine.WindowSize)
	assert.Equal(t, 10000, cfg.Engine.MaxDocuments)
	assert.Equal(t, ".txt", cfg.Corpus.Extension)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.Kafka.Enabled)
	assert.False(t, cfg.Postgres.Enabled)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trisearch.yaml")
	yamlDoc := `
engine:
  windowSize: 250
  maxDocuments: 5000
  queryWorkers: 4
redis:
  enabled: true
  addr: cache:6379
  cacheTTL: 10m
logging:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(yamlDoc), 0o644))
	t.Setenv("TS_ENGINE_MAX_DOCUMENTS", "20000")
	t.Setenv("TS_KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 250, cfg.Engine.WindowSize)
	assert.Equal(t, 20000, cfg.Engine.MaxDocuments)
	assert.Equal(t, 4, cfg.Engine.QueryWorkers)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, 10*time.Minute, cfg.Redis.CacheTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, ".txt", cfg.Corpus.Extension, "defaults survive a partial file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero window", func(c *Config) { c.Engine.WindowSize = 0 }},
		{"negative max documents", func(c *Config) { c.Engine.MaxDocuments = -1 }},
		{"negative workers", func(c *Config) { c.Engine.QueryWorkers = -2 }},
		{"kafka without topic", func(c *Config) { c.Kafka.Enabled = true; c.Kafka.Topic = "" }},
		{"redis without addr", func(c *Config) { c.Redis.Enabled = true; c.Redis.Addr = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrInvalidConfig))
		})
	}
	assert.NoError(t, Default().Validate())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestPostgresDSN(t *testing.T) {
	p := Default().Postgres
	assert.Equal(t, "host=localhost port=5432 user=trisearch password=localdev dbname=trisearch sslmode=disable", p.DSN())
}
