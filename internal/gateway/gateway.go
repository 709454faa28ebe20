package gateway

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"inferd/internal/engine"
)

// Gateway owns request admission, batching, and lifecycle management for a
// single engine instance. Admission and validation run concurrently; dispatch
// to the engine is serialized (one batch in flight at a time).
type Gateway struct {
	mu      sync.RWMutex
	state   State
	eng     engine.Engine
	lastErr string

	engineFactory EngineFactory
	maxBatchSize  int
	maxBatchWait  time.Duration
	maxQueueDepth int
	drainTimeout  time.Duration
	publisher     EventPublisher

	queue    []*PendingRequest
	pending  map[*PendingRequest]struct{}
	notify   chan struct{}
	batches  chan *batch
	stopCh   chan struct{}
	stopOnce sync.Once
	loops    sync.WaitGroup

	runCtx    context.Context
	runCancel context.CancelFunc

	startTime     time.Time
	nextID        atomic.Uint64
	batchesTotal  atomic.Uint64
	requestsTotal atomic.Uint64
}

// Ready reports whether the gateway is accepting requests.
func (g *Gateway) Ready() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state == StateReady
}

// State returns the current lifecycle state.
func (g *Gateway) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// noteTerminal is installed on every PendingRequest and runs once when it
// reaches a terminal state.
func (g *Gateway) noteTerminal(p *PendingRequest) {
	g.mu.Lock()
	delete(g.pending, p)
	g.mu.Unlock()
	g.requestsTotal.Add(1)
	requestsFinished.WithLabelValues(p.State().String()).Inc()
}

// admittedCount returns the number of admitted, non-terminal requests.
func (g *Gateway) admittedCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.pending)
}

func (g *Gateway) setLastErr(msg string) {
	g.mu.Lock()
	g.lastErr = msg
	g.mu.Unlock()
}
