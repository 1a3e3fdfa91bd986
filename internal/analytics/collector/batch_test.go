package collector

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/trie-search/pkg/kafka"
)

type recordingPublisher struct {
	mu      sync.Mutex
	batches [][]kafka.Event
	failOn  int // 1-based call number that fails; 0 never
	calls   int
}

func (p *recordingPublisher) PublishBatch(_ context.Context, events []kafka.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.calls == p.failOn {
		return errors.New("broker unavailable")
	}
	p.batches = append(p.batches, append([]kafka.Event(nil), events...))
	return nil
}

func (p *recordingPublisher) keys() []string {
	var keys []string
	for _, b := range p.batches {
		for _, e := range b {
			keys = append(keys, e.Key)
		}
	}
	return keys
}

func TestFlushSplitsIntoBatches(t *testing.T) {
	pub := &recordingPublisher{}
	bc := NewBatchCollector(pub, 2)
	for _, k := range []string{"a", "b", "c", "d", "e"} {
		bc.Track(k, k)
	}
	assert.Equal(t, 5, bc.BufferLen())

	require.NoError(t, bc.Flush(context.Background()))
	assert.Equal(t, 0, bc.BufferLen())
	require.Len(t, pub.batches, 3)
	assert.Len(t, pub.batches[2], 1)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, pub.keys())
}

func TestFlushResumesAfterFailure(t *testing.T) {
	pub := &recordingPublisher{failOn: 2}
	bc := NewBatchCollector(pub, 2)
	for _, k := range []string{"a", "b", "c", "d", "e"} {
		bc.Track(k, k)
	}

	require.Error(t, bc.Flush(context.Background()))
	assert.Equal(t, 3, bc.BufferLen())

	require.NoError(t, bc.Flush(context.Background()))
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, pub.keys())
}

func TestFlushEmpty(t *testing.T) {
	pub := &recordingPublisher{}
	bc := NewBatchCollector(pub, 0)
	require.NoError(t, bc.Flush(context.Background()))
	assert.Zero(t, pub.calls)
}
