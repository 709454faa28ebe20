package gateway

import (
	"context"
	"errors"
	"log"
	"time"
)

// Start constructs the engine exactly once and transitions the gateway to
// Ready. On any engine construction failure it returns an initialization
// error and the gateway never enters a request-serving state; callers must
// treat that as fatal and not bind a listener.
func (g *Gateway) Start() error {
	g.mu.Lock()
	if g.state != StateUninitialized {
		g.mu.Unlock()
		return errors.New("gateway already started")
	}
	g.mu.Unlock()

	if g.engineFactory == nil {
		err := ErrInitialization(errors.New("no engine factory configured"))
		g.setLastErr(err.Error())
		return err
	}
	eng, err := g.engineFactory()
	if err != nil {
		werr := ErrInitialization(err)
		g.setLastErr(werr.Error())
		g.publisher.Publish(Event{Name: "init_failed", Fields: map[string]any{"error": err.Error()}})
		return werr
	}

	g.mu.Lock()
	g.eng = eng
	g.state = StateReady
	g.startTime = time.Now()
	g.runCtx, g.runCancel = context.WithCancel(context.Background())
	g.mu.Unlock()

	g.loops.Add(2)
	go g.batchLoop()
	go g.dispatchLoop()
	g.publisher.Publish(Event{Name: "ready"})
	return nil
}

// Stop drains the gateway and releases the engine. It transitions to
// Draining (rejecting new admissions), waits up to DrainTimeout for admitted
// requests to reach a terminal state, fails any leftovers, then shuts the
// engine down best-effort. Idempotent.
func (g *Gateway) Stop() error {
	g.mu.Lock()
	switch g.state {
	case StateShutdown:
		g.mu.Unlock()
		return nil
	case StateUninitialized:
		g.state = StateShutdown
		g.mu.Unlock()
		return nil
	}
	g.state = StateDraining
	g.mu.Unlock()
	g.publisher.Publish(Event{Name: "drain_start"})

	deadline := time.Now().Add(g.drainTimeout)
	for {
		n := g.admittedCount()
		if n == 0 {
			break
		}
		if time.Now().After(deadline) {
			g.publisher.Publish(Event{Name: "drain_timeout", Fields: map[string]any{"admitted": n}})
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	g.stopOnce.Do(func() {
		g.runCancel()
		close(g.stopCh)
	})
	g.loops.Wait()
	g.failLeftovers()

	if err := g.eng.Shutdown(); err != nil {
		// Best-effort release: logged, not fatal.
		log.Printf("engine shutdown error: %v", err)
		g.setLastErr("engine shutdown: " + err.Error())
	}

	g.mu.Lock()
	g.state = StateShutdown
	g.mu.Unlock()
	g.publisher.Publish(Event{Name: "shutdown"})
	return nil
}

// failLeftovers terminates any request that survived the drain window so its
// completion signal is still fulfilled exactly once.
func (g *Gateway) failLeftovers() {
	g.mu.Lock()
	leftovers := make([]*PendingRequest, 0, len(g.pending))
	for p := range g.pending {
		leftovers = append(leftovers, p)
	}
	g.queue = nil
	g.mu.Unlock()
	for _, p := range leftovers {
		p.fulfill(nil, ErrEngineExecution(errors.New("gateway shut down before completion")))
	}
	queueDepth.Set(0)
}
