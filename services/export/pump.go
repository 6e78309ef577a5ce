package export

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/upb/llm-gateway/models"
	"go.uber.org/zap"
)

// event is one queued export
type event struct {
	tenantID string
	record   models.UsageRecord
}

// Pump delivers usage records to a sink asynchronously so ledger commits
// never wait on the export store. When the buffer is full, events are
// dropped with a logged warning rather than blocking the request path.
type Pump struct {
	sink        UsageSink
	logger      *zap.Logger
	eventChan   chan event
	workerCount int
	wg          sync.WaitGroup
	mu          sync.Mutex
	started     bool
	stopped     bool
}

// Config holds configuration for the export pump
type Config struct {
	BufferSize  int // Size of the event buffer channel
	WorkerCount int // Number of concurrent workers
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		BufferSize:  4096,
		WorkerCount: 2,
	}
}

// NewPump creates a new export pump over the given sink
func NewPump(sink UsageSink, logger *zap.Logger, config Config) *Pump {
	if config.BufferSize <= 0 {
		config.BufferSize = DefaultConfig().BufferSize
	}
	if config.WorkerCount <= 0 {
		config.WorkerCount = DefaultConfig().WorkerCount
	}
	return &Pump{
		sink:        sink,
		logger:      logger,
		eventChan:   make(chan event, config.BufferSize),
		workerCount: config.WorkerCount,
	}
}

// Start starts the background workers
func (p *Pump) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return fmt.Errorf("export pump already started")
	}

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	p.started = true
	p.logger.Info("started usage export pump",
		zap.Int("worker_count", p.workerCount),
		zap.Int("buffer_size", cap(p.eventChan)))
	return nil
}

// Stop drains pending events and shuts the workers down, waiting up to
// timeout for the backlog to flush.
func (p *Pump) Stop(timeout time.Duration) error {
	p.mu.Lock()
	if !p.started || p.stopped {
		p.mu.Unlock()
		return fmt.Errorf("export pump not running")
	}
	p.stopped = true
	p.mu.Unlock()

	p.logger.Info("stopping usage export pump", zap.Int("pending_events", len(p.eventChan)))
	close(p.eventChan)

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return p.sink.Close()
	case <-time.After(timeout):
		return fmt.Errorf("export pump stop timeout after %v", timeout)
	}
}

// Enqueue queues one record for export without blocking. A full buffer drops
// the event: the ledger already holds the authoritative copy.
func (p *Pump) Enqueue(tenantID string, rec models.UsageRecord) {
	// the lock is held across the send so Stop cannot close the channel
	// between the stopped check and the enqueue
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started || p.stopped {
		return
	}

	select {
	case p.eventChan <- event{tenantID: tenantID, record: rec}:
	default:
		p.logger.Warn("usage export buffer full, dropping event",
			zap.String("tenant_id", tenantID),
			zap.String("trace_id", rec.TraceID))
	}
}

// worker drains the event channel into the sink
func (p *Pump) worker(id int) {
	defer p.wg.Done()

	for ev := range p.eventChan {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := p.sink.Write(ctx, ev.tenantID, ev.record); err != nil {
			p.logger.Error("failed to export usage record",
				zap.Int("worker", id),
				zap.String("tenant_id", ev.tenantID),
				zap.String("trace_id", ev.record.TraceID),
				zap.Error(err))
		}
		cancel()
	}
}
