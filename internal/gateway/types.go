package gateway

import (
	"context"
	"sync"
	"time"

	"inferd/internal/engine"
)

// State represents the gateway lifecycle.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateReady         State = "ready"
	StateDraining      State = "draining"
	StateShutdown      State = "shutdown"
)

// ReqState tracks one admitted request through the pipeline.
// Pipeline states advance one step at a time; Cancelled is reachable from any
// non-terminal state.
type ReqState int

const (
	ReqQueued ReqState = iota
	ReqBatched
	ReqDispatched
	ReqCompleted
	ReqFailed
	ReqCancelled
)

func (s ReqState) String() string {
	switch s {
	case ReqQueued:
		return "queued"
	case ReqBatched:
		return "batched"
	case ReqDispatched:
		return "dispatched"
	case ReqCompleted:
		return "completed"
	case ReqFailed:
		return "failed"
	case ReqCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

func (s ReqState) terminal() bool { return s >= ReqCompleted }

// PendingRequest is one admitted client request moving through the
// queue/batch/dispatch pipeline. The gateway owns it until terminal; the
// completion signal is fulfilled exactly once with outputs or an error.
type PendingRequest struct {
	id      uint64
	prompts []string
	params  engine.Params
	arrived time.Time

	mu         sync.Mutex
	state      ReqState
	outputs    []engine.Output
	err        error
	done       chan struct{}
	onTerminal func(*PendingRequest)
}

func newPendingRequest(id uint64, req GenerationRequest, onTerminal func(*PendingRequest)) *PendingRequest {
	return &PendingRequest{
		id:         id,
		prompts:    req.Prompts,
		params:     req.Params,
		arrived:    time.Now(),
		state:      ReqQueued,
		done:       make(chan struct{}),
		onTerminal: onTerminal,
	}
}

// State returns the current pipeline state.
func (p *PendingRequest) State() ReqState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// advance moves the request to the next pipeline state. It refuses to skip
// states and is a no-op (returning false) once the request is terminal.
func (p *PendingRequest) advance(to ReqState) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state.terminal() || to != p.state+1 {
		return false
	}
	p.state = to
	return true
}

// fulfill completes the request with outputs or an error. Returns false when
// the request already reached a terminal state (e.g., cancelled), in which
// case the result is discarded.
func (p *PendingRequest) fulfill(outs []engine.Output, err error) bool {
	p.mu.Lock()
	if p.state.terminal() {
		p.mu.Unlock()
		return false
	}
	if err != nil {
		p.state = ReqFailed
		p.err = err
	} else {
		p.state = ReqCompleted
		p.outputs = outs
	}
	cb := p.onTerminal
	p.mu.Unlock()
	// Run the terminal hook before signalling completion so gateway
	// accounting is settled by the time Wait returns.
	if cb != nil {
		cb(p)
	}
	close(p.done)
	return true
}

// Cancel marks the request cancelled. Work already dispatched to the engine
// runs to completion; its result is discarded on arrival.
func (p *PendingRequest) Cancel() bool {
	p.mu.Lock()
	if p.state.terminal() {
		p.mu.Unlock()
		return false
	}
	p.state = ReqCancelled
	p.err = errRequestCancelled
	cb := p.onTerminal
	p.mu.Unlock()
	if cb != nil {
		cb(p)
	}
	close(p.done)
	return true
}

// Wait blocks until the request reaches a terminal state or ctx is done.
// A ctx cancellation cancels the request and returns the ctx error.
func (p *PendingRequest) Wait(ctx context.Context) ([]engine.Output, error) {
	select {
	case <-p.done:
	case <-ctx.Done():
		p.Cancel()
		return nil, ctx.Err()
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.outputs, p.err
}
