package gateway

import (
	"time"

	"inferd/internal/engine"
)

// Defaults applied when corresponding Config fields are unset.
const (
	defaultMaxBatchSize  = 8
	defaultMaxBatchWait  = 20 * time.Millisecond
	defaultMaxQueueDepth = 64
	defaultDrainTimeout  = 30 * time.Second
)

// EngineFactory constructs the engine exactly once during Start.
type EngineFactory func() (engine.Engine, error)

// Config encapsulates all tunables for Gateway construction. The engine is
// owned by the gateway and injected via the factory; nothing else touches it.
type Config struct {
	Engine EngineFactory
	// MaxBatchSize closes a batch once this many requests have accumulated.
	MaxBatchSize int
	// MaxBatchWait closes a batch this long after the oldest queued request
	// arrived, even if the batch is not full.
	MaxBatchWait time.Duration
	// MaxQueueDepth bounds admitted (non-terminal) requests; beyond it,
	// admission fails with a queue-full error.
	MaxQueueDepth int
	// DrainTimeout bounds how long Stop waits for in-flight work.
	DrainTimeout time.Duration
	// Publisher receives lifecycle events; nil means drop them.
	Publisher EventPublisher
}

// NewWithConfig constructs a Gateway from Config. Call Start before serving.
func NewWithConfig(cfg Config) *Gateway {
	g := &Gateway{
		state:         StateUninitialized,
		engineFactory: cfg.Engine,
		maxBatchSize:  cfg.MaxBatchSize,
		maxBatchWait:  cfg.MaxBatchWait,
		maxQueueDepth: cfg.MaxQueueDepth,
		drainTimeout:  cfg.DrainTimeout,
		publisher:     cfg.Publisher,
		pending:       make(map[*PendingRequest]struct{}),
		notify:        make(chan struct{}, 1),
		batches:       make(chan *batch),
		stopCh:        make(chan struct{}),
	}
	if g.maxBatchSize <= 0 {
		g.maxBatchSize = defaultMaxBatchSize
	}
	if g.maxBatchWait <= 0 {
		g.maxBatchWait = defaultMaxBatchWait
	}
	if g.maxQueueDepth <= 0 {
		g.maxQueueDepth = defaultMaxQueueDepth
	}
	if g.drainTimeout <= 0 {
		g.drainTimeout = defaultDrainTimeout
	}
	if g.publisher == nil {
		g.publisher = noopPublisher{}
	}
	return g
}

// New constructs a Gateway with package defaults around the given engine
// factory.
func New(factory EngineFactory) *Gateway {
	return NewWithConfig(Config{Engine: factory})
}
