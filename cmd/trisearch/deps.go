package main

import (
	"context"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/analytics/collector"
	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/cache"
	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/results"
	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/runner"
	"github.com/Adithya-Monish-Kumar-K/trie-search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/trie-search/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/trie-search/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/trie-search/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/trie-search/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/trie-search/pkg/redis"
)

// dependencies holds the optional collaborators of a run. Each one that
// fails to connect is logged and left out; the search itself never needs
// them.
type dependencies struct {
	cache   *cache.QueryCache
	sinks   []results.Sink
	checker *health.Checker
	closers []func() error
}

func connect(ctx context.Context, cfg *config.Config, m *metrics.Metrics) *dependencies {
	d := &dependencies{checker: health.NewChecker()}

	if cfg.Redis.Enabled {
		rc, err := pkgredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, result cache disabled", "addr", cfg.Redis.Addr, "error", err)
			d.checker.Register("redis", failed(err))
		} else {
			d.cache = cache.New(rc, cfg.Redis.CacheTTL, m)
			d.checker.Register("redis", rc.Ping)
			d.closers = append(d.closers, rc.Close)
		}
	}

	if cfg.Postgres.Enabled {
		db, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			slog.Warn("postgres unavailable, report store disabled", "host", cfg.Postgres.Host, "error", err)
			d.checker.Register("postgres", failed(err))
		} else {
			store := results.NewPGStore(db)
			if err := store.EnsureSchema(ctx); err != nil {
				slog.Warn("postgres schema setup failed, report store disabled", "error", err)
				d.checker.Register("postgres", failed(err))
				db.Close()
			} else {
				d.sinks = append(d.sinks, store)
				d.checker.Register("postgres", db.Ping)
				d.closers = append(d.closers, db.Close)
			}
		}
	}

	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka)
		d.sinks = append(d.sinks, analytics.NewEventSink(collector.NewBatchCollector(producer, cfg.Kafka.BatchSize)))
		brokers := cfg.Kafka.Brokers
		d.checker.Register("kafka", func(ctx context.Context) error { return kafka.Ping(ctx, brokers) })
		d.closers = append(d.closers, producer.Close)
	}
	return d
}

// failed reports a connection error from startup on every probe.
func failed(err error) health.Probe {
	return func(context.Context) error { return err }
}

func (d *dependencies) options() []runner.Option {
	opts := []runner.Option{runner.WithSinks(d.sinks...)}
	if d.cache != nil {
		opts = append(opts, runner.WithCache(d.cache))
	}
	return opts
}

func (d *dependencies) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			slog.Warn("closing dependency", "error", err)
		}
	}
}
