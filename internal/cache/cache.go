// Package cache stores finished query results in Redis, keyed by the query
// line and a fingerprint of the corpus it ran against. A changed corpus
// yields new keys, so stale entries are never served; they simply expire.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/trie-search/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/trie-search/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/trie-search/pkg/resilience"
)

const (
	keyPrefix      = "trisearch:"
	lookupParallel = 16

	breakerThreshold = 5
	breakerCooldown  = 30 * time.Second
)

// Store is the subset of the Redis client the cache needs.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
}

// Entry is a cached query result.
type Entry struct {
	DocIDs []int    `json:"doc_ids"`
	Titles []string `json:"titles"`
}

type QueryCache struct {
	store   Store
	ttl     time.Duration
	group   singleflight.Group
	breaker *resilience.Breaker
	metrics *metrics.Metrics
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

// New returns a cache over store. After repeated store failures the cache
// stops calling the store for a while and answers every Get as a miss. m
// may be nil.
func New(store Store, ttl time.Duration, m *metrics.Metrics) *QueryCache {
	return &QueryCache{
		store:   store,
		ttl:     ttl,
		breaker: resilience.NewBreaker("redis-cache", breakerThreshold, breakerCooldown),
		metrics: m,
		logger:  slog.Default().With("component", "query-cache"),
	}
}

// Get returns the entry for query against the corpus identified by
// fingerprint. Any store failure counts as a miss.
func (c *QueryCache) Get(ctx context.Context, fingerprint, query string) (*Entry, bool) {
	key := BuildKey(fingerprint, query)
	v, err, _ := c.group.Do(key, func() (any, error) {
		var data string
		found := false
		err := c.breaker.Execute(func() error {
			d, err := c.store.Get(ctx, key)
			if pkgredis.IsNilError(err) {
				return nil
			}
			if err != nil {
				return err
			}
			data, found = d, true
			return nil
		})
		if err != nil || !found {
			return nil, err
		}
		var e Entry
		if err := json.Unmarshal([]byte(data), &e); err != nil {
			return nil, fmt.Errorf("decoding cached entry: %w", err)
		}
		return &e, nil
	})
	if err != nil && !errors.Is(err, resilience.ErrCircuitOpen) {
		c.logger.Warn("cache get failed", "key", key, "error", err)
	}
	e, _ := v.(*Entry)
	if e == nil {
		c.miss()
		return nil, false
	}
	c.hit()
	c.logger.Debug("cache hit", "query", query, "key", key)
	return e, true
}

// Set stores e for query. Failures are logged and otherwise ignored.
func (c *QueryCache) Set(ctx context.Context, fingerprint, query string, e *Entry) {
	key := BuildKey(fingerprint, query)
	data, err := json.Marshal(e)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	err = c.breaker.Execute(func() error {
		return c.store.Set(ctx, key, data, c.ttl)
	})
	if err != nil && !errors.Is(err, resilience.ErrCircuitOpen) {
		c.logger.Warn("cache set failed", "key", key, "error", err)
	}
}

// LookupAll looks every query up concurrently. The returned slice is
// aligned with queries and holds nil for each miss. Identical query lines
// share one round trip.
func (c *QueryCache) LookupAll(ctx context.Context, fingerprint string, queries []string) []*Entry {
	entries := make([]*Entry, len(queries))
	var g errgroup.Group
	g.SetLimit(lookupParallel)
	for i, q := range queries {
		g.Go(func() error {
			if e, ok := c.Get(ctx, fingerprint, q); ok {
				entries[i] = e
			}
			return nil
		})
	}
	_ = g.Wait()
	return entries
}

// Invalidate removes every cached entry.
func (c *QueryCache) Invalidate(ctx context.Context) error {
	deleted, err := c.store.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidate", "keys_deleted", deleted)
	return nil
}

func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *QueryCache) hit() {
	c.hits.Add(1)
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.Inc()
	}
}

func (c *QueryCache) miss() {
	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.Inc()
	}
}

// BuildKey derives the Redis key for query against fingerprint. Queries
// that differ only in letter case or in runs of spaces share a key, since
// matching ignores both.
func BuildKey(fingerprint, query string) string {
	raw := fingerprint + "|" + NormalizeQuery(query)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}

// NormalizeQuery lower-cases query and joins its space-separated tokens
// with single spaces.
func NormalizeQuery(query string) string {
	tokens := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool { return r == ' ' })
	return strings.Join(tokens, " ")
}
