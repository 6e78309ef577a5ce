package export

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/llm-gateway/models"
	"go.uber.org/zap"
)

// captureSink records writes for assertions
type captureSink struct {
	mu      sync.Mutex
	records []models.UsageRecord
	closed  bool
}

func (c *captureSink) Write(ctx context.Context, tenantID string, rec models.UsageRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, rec)
	return nil
}

func (c *captureSink) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *captureSink) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}

func TestPump_DeliversAllEvents(t *testing.T) {
	sink := &captureSink{}
	pump := NewPump(sink, zap.NewNop(), Config{BufferSize: 128, WorkerCount: 3})
	require.NoError(t, pump.Start())

	for i := 0; i < 100; i++ {
		pump.Enqueue("public", models.UsageRecord{TraceID: fmt.Sprintf("t%d", i)})
	}

	require.NoError(t, pump.Stop(5*time.Second))
	assert.Equal(t, 100, sink.count())
	assert.True(t, sink.closed)
}

func TestPump_DoubleStart(t *testing.T) {
	pump := NewPump(&captureSink{}, zap.NewNop(), DefaultConfig())
	require.NoError(t, pump.Start())
	assert.Error(t, pump.Start())
	require.NoError(t, pump.Stop(time.Second))
}

func TestPump_StopWithoutStart(t *testing.T) {
	pump := NewPump(&captureSink{}, zap.NewNop(), DefaultConfig())
	assert.Error(t, pump.Stop(time.Second))
}

func TestPump_EnqueueAfterStopIsNoop(t *testing.T) {
	sink := &captureSink{}
	pump := NewPump(sink, zap.NewNop(), DefaultConfig())
	require.NoError(t, pump.Start())
	require.NoError(t, pump.Stop(time.Second))

	// must not panic on the closed channel
	pump.Enqueue("public", models.UsageRecord{TraceID: "late"})
	assert.Equal(t, 0, sink.count())
}

func TestPump_EnqueueRacingStopDoesNotPanic(t *testing.T) {
	sink := &captureSink{}
	pump := NewPump(sink, zap.NewNop(), Config{BufferSize: 8, WorkerCount: 1})
	require.NoError(t, pump.Start())

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				pump.Enqueue("public", models.UsageRecord{TraceID: "race"})
			}
		}()
	}

	require.NoError(t, pump.Stop(5*time.Second))
	wg.Wait()
}

func TestPump_FullBufferDropsInsteadOfBlocking(t *testing.T) {
	block := make(chan struct{})
	sink := &blockingSink{unblock: block}
	pump := NewPump(sink, zap.NewNop(), Config{BufferSize: 1, WorkerCount: 1})
	require.NoError(t, pump.Start())

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			pump.Enqueue("public", models.UsageRecord{TraceID: fmt.Sprintf("t%d", i)})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Enqueue blocked on a full buffer")
	}

	close(block)
	require.NoError(t, pump.Stop(5*time.Second))
}

type blockingSink struct {
	unblock <-chan struct{}
}

func (b *blockingSink) Write(ctx context.Context, tenantID string, rec models.UsageRecord) error {
	<-b.unblock
	return nil
}

func (b *blockingSink) Close() error { return nil }
