package gateway

import "time"

// enqueue admits a validated request into the batch pipeline. It fails with
// a queue-full error when the admission limit is reached and rejects outright
// while the gateway is not Ready; nothing is ever dropped silently.
func (g *Gateway) enqueue(req GenerationRequest) (*PendingRequest, error) {
	g.mu.Lock()
	if g.state != StateReady {
		state := g.state
		g.mu.Unlock()
		return nil, notAcceptingError{state: state}
	}
	if len(g.pending) >= g.maxQueueDepth {
		limit := g.maxQueueDepth
		g.mu.Unlock()
		return nil, queueFullError{limit: limit}
	}
	p := newPendingRequest(g.nextID.Add(1), req, g.noteTerminal)
	g.pending[p] = struct{}{}
	g.queue = append(g.queue, p)
	depth := len(g.queue)
	g.mu.Unlock()

	queueDepth.Set(float64(depth))
	select {
	case g.notify <- struct{}{}:
	default:
	}
	return p, nil
}

// batchLoop forms batches from the queue using two triggers, whichever fires
// first: the batch reaches maxBatchSize, or maxBatchWait has elapsed since
// the oldest queued request arrived. Strict FIFO per batch boundary; no
// reordering across the deadline.
func (g *Gateway) batchLoop() {
	defer g.loops.Done()
	for {
		select {
		case <-g.stopCh:
			return
		case <-g.notify:
		}
		for {
			g.mu.Lock()
			n := len(g.queue)
			if n == 0 {
				g.mu.Unlock()
				break
			}
			oldest := g.queue[0].arrived
			g.mu.Unlock()

			if n >= g.maxBatchSize || time.Since(oldest) >= g.maxBatchWait {
				b := g.takeBatch()
				if b == nil {
					continue
				}
				select {
				case g.batches <- b:
				case <-g.stopCh:
					return
				}
				continue
			}

			timer := time.NewTimer(g.maxBatchWait - time.Since(oldest))
			select {
			case <-g.stopCh:
				timer.Stop()
				return
			case <-g.notify:
				timer.Stop()
			case <-timer.C:
			}
		}
	}
}

// takeBatch pops up to maxBatchSize requests off the queue in arrival order.
// Requests cancelled while queued are skipped; they are already terminal.
func (g *Gateway) takeBatch() *batch {
	g.mu.Lock()
	n := len(g.queue)
	if n == 0 {
		g.mu.Unlock()
		return nil
	}
	if n > g.maxBatchSize {
		n = g.maxBatchSize
	}
	taken := g.queue[:n]
	g.queue = append([]*PendingRequest(nil), g.queue[n:]...)
	depth := len(g.queue)
	g.mu.Unlock()

	queueDepth.Set(float64(depth))
	reqs := make([]*PendingRequest, 0, n)
	for _, p := range taken {
		if p.advance(ReqBatched) {
			reqs = append(reqs, p)
		}
	}
	if len(reqs) == 0 {
		return nil
	}
	return &batch{reqs: reqs}
}
