// Package collector buffers analytics events and publishes them in
// fixed-size batches.
package collector

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Adithya-Monish-Kumar-K/trie-search/pkg/kafka"
)

// Publisher writes a batch of events; *kafka.Producer implements it.
type Publisher interface {
	PublishBatch(ctx context.Context, events []kafka.Event) error
}

// BatchCollector accumulates events and publishes them batchSize at a time
// on Flush. Events stay buffered until their batch is accepted, so a failed
// Flush can simply be called again and resumes where it stopped, in order.
type BatchCollector struct {
	publisher Publisher
	batchSize int

	flushMu sync.Mutex
	mu      sync.Mutex
	buffer  []kafka.Event
	logger  *slog.Logger
}

// NewBatchCollector creates a collector. batchSize defaults to 100.
func NewBatchCollector(publisher Publisher, batchSize int) *BatchCollector {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &BatchCollector{
		publisher: publisher,
		batchSize: batchSize,
		buffer:    make([]kafka.Event, 0, batchSize),
		logger:    slog.Default().With("component", "batch-collector"),
	}
}

// Track buffers one event.
func (bc *BatchCollector) Track(key string, value any) {
	bc.mu.Lock()
	bc.buffer = append(bc.buffer, kafka.Event{Key: key, Value: value})
	bc.mu.Unlock()
}

// Flush publishes every buffered event in order. On error the failed batch
// and everything after it remain buffered.
func (bc *BatchCollector) Flush(ctx context.Context) error {
	bc.flushMu.Lock()
	defer bc.flushMu.Unlock()

	sent := 0
	for {
		bc.mu.Lock()
		n := min(len(bc.buffer), bc.batchSize)
		batch := bc.buffer[:n:n]
		bc.mu.Unlock()
		if n == 0 {
			break
		}
		if err := bc.publisher.PublishBatch(ctx, batch); err != nil {
			bc.logger.Error("batch flush failed",
				"batch_size", n,
				"pending", bc.BufferLen(),
				"error", err,
			)
			return err
		}
		bc.mu.Lock()
		bc.buffer = bc.buffer[n:]
		bc.mu.Unlock()
		sent += n
	}
	bc.logger.Debug("events flushed", "events", sent)
	return nil
}

// BufferLen returns the number of events not yet published.
func (bc *BatchCollector) BufferLen() int {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	return len(bc.buffer)
}
