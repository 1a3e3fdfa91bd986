// Package config loads and validates trisearch configuration from YAML files
// with environment-variable overrides. It provides typed structs for the
// engine, the corpus layout, and every optional collaborator (Redis result
// cache, Kafka match events, PostgreSQL report store, Prometheus metrics).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "github.com/Adithya-Monish-Kumar-K/trie-search/pkg/errors"
)

// Config is the top-level application configuration.
type Config struct {
	Engine   EngineConfig   `yaml:"engine"`
	Corpus   CorpusConfig   `yaml:"corpus"`
	Postgres PostgresConfig `yaml:"postgres"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Redis    RedisConfig    `yaml:"redis"`
	Sinks    SinkConfig     `yaml:"sinks"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// EngineConfig controls windowing and parallelism of the batch pipeline.
// Worker counts of zero mean GOMAXPROCS.
type EngineConfig struct {
	WindowSize   int `yaml:"windowSize"`
	MaxDocuments int `yaml:"maxDocuments"`
	LoadWorkers  int `yaml:"loadWorkers"`
	IndexWorkers int `yaml:"indexWorkers"`
	QueryWorkers int `yaml:"queryWorkers"`
}

// CorpusConfig describes how document files are named.
type CorpusConfig struct {
	Extension string `yaml:"extension"`
}

// PostgresConfig holds PostgreSQL connection parameters for the report
// store.
type PostgresConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// KafkaConfig holds broker and topic settings for match events.
type KafkaConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Brokers       []string      `yaml:"brokers"`
	Topic         string        `yaml:"topic"`
	ConsumerGroup string        `yaml:"consumerGroup"`
	BatchSize     int           `yaml:"batchSize"`
	FlushInterval time.Duration `yaml:"flushInterval"`
}

// RedisConfig holds Redis connection and result-cache parameters.
type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"poolSize"`
	CacheTTL time.Duration `yaml:"cacheTTL"`
}

// SinkConfig bounds every remote result sink.
type SinkConfig struct {
	Timeout       time.Duration `yaml:"timeout"`
	RetryAttempts int           `yaml:"retryAttempts"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided), applies environment-variable
// overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the reference configuration: windows of 1000 documents
// over ids 0..9999, every external collaborator disabled.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			WindowSize:   1000,
			MaxDocuments: 10000,
		},
		Corpus: CorpusConfig{
			Extension: ".txt",
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "trisearch",
			User:            "trisearch",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    5,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers:       []string{"localhost:9092"},
			Topic:         "trisearch-matches",
			ConsumerGroup: "trisearch-events",
			BatchSize:     500,
			FlushInterval: 2 * time.Second,
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			PoolSize: 10,
			CacheTTL: time.Hour,
		},
		Sinks: SinkConfig{
			Timeout:       30 * time.Second,
			RetryAttempts: 3,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
		},
	}
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Engine.WindowSize <= 0:
		return apperrors.Newf(apperrors.ErrInvalidConfig, "engine.windowSize must be positive, got %d", c.Engine.WindowSize)
	case c.Engine.MaxDocuments <= 0:
		return apperrors.Newf(apperrors.ErrInvalidConfig, "engine.maxDocuments must be positive, got %d", c.Engine.MaxDocuments)
	case c.Engine.LoadWorkers < 0 || c.Engine.IndexWorkers < 0 || c.Engine.QueryWorkers < 0:
		return apperrors.New(apperrors.ErrInvalidConfig, "engine worker counts must not be negative")
	case c.Kafka.Enabled && (len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == ""):
		return apperrors.New(apperrors.ErrInvalidConfig, "kafka.brokers and kafka.topic are required when kafka is enabled")
	case c.Redis.Enabled && c.Redis.Addr == "":
		return apperrors.New(apperrors.ErrInvalidConfig, "redis.addr is required when redis is enabled")
	}
	return nil
}

// applyEnvOverrides reads TS_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	setInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	setBool := func(key string, dst *bool) {
		if v := os.Getenv(key); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}

	setInt("TS_ENGINE_WINDOW_SIZE", &cfg.Engine.WindowSize)
	setInt("TS_ENGINE_MAX_DOCUMENTS", &cfg.Engine.MaxDocuments)
	setInt("TS_ENGINE_QUERY_WORKERS", &cfg.Engine.QueryWorkers)
	if v := os.Getenv("TS_CORPUS_EXTENSION"); v != "" {
		cfg.Corpus.Extension = v
	}
	setBool("TS_POSTGRES_ENABLED", &cfg.Postgres.Enabled)
	if v := os.Getenv("TS_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	setInt("TS_POSTGRES_PORT", &cfg.Postgres.Port)
	if v := os.Getenv("TS_POSTGRES_DATABASE"); v != "" {
		cfg.Postgres.Database = v
	}
	if v := os.Getenv("TS_POSTGRES_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("TS_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	setBool("TS_KAFKA_ENABLED", &cfg.Kafka.Enabled)
	if v := os.Getenv("TS_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("TS_KAFKA_TOPIC"); v != "" {
		cfg.Kafka.Topic = v
	}
	if v := os.Getenv("TS_KAFKA_CONSUMER_GROUP"); v != "" {
		cfg.Kafka.ConsumerGroup = v
	}
	setBool("TS_REDIS_ENABLED", &cfg.Redis.Enabled)
	if v := os.Getenv("TS_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("TS_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("TS_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("TS_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	setBool("TS_METRICS_ENABLED", &cfg.Metrics.Enabled)
	setInt("TS_METRICS_PORT", &cfg.Metrics.Port)
}
