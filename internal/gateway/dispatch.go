package gateway

import (
	"inferd/internal/engine"
)

// batch is a group of requests dispatched to the engine together. Member
// order matches arrival order; member prompt counts may differ.
type batch struct {
	reqs []*PendingRequest
}

// dispatchLoop serializes access to the engine handle: at most one batch is
// in flight at a time. The engine is assumed non-reentrant at the handle
// level, so this loop is the only code path that touches it after Start.
func (g *Gateway) dispatchLoop() {
	defer g.loops.Done()
	for {
		select {
		case <-g.stopCh:
			return
		case b := <-g.batches:
			g.dispatch(b)
		}
	}
}

// dispatch flattens a batch into per-prompt slices, submits it, and fans
// results back out to the member requests. Every live member's completion
// signal is fulfilled exactly once; results for members cancelled after
// dispatch are discarded on arrival.
func (g *Gateway) dispatch(b *batch) {
	var (
		live    []*PendingRequest
		offsets []int
		prompts []string
		params  []engine.Params
	)
	for _, p := range b.reqs {
		if !p.advance(ReqDispatched) {
			continue
		}
		live = append(live, p)
		offsets = append(offsets, len(prompts))
		prompts = append(prompts, p.prompts...)
		for range p.prompts {
			params = append(params, p.params)
		}
	}
	if len(live) == 0 {
		return
	}

	g.batchesTotal.Add(1)
	batchesDispatched.Inc()
	batchSize.Observe(float64(len(live)))
	g.publisher.Publish(Event{Name: "batch_dispatched", Fields: map[string]any{
		"requests": len(live),
		"prompts":  len(prompts),
	}})

	outs, err := g.eng.Submit(g.runCtx, prompts, params)
	if err != nil {
		if !engine.IsDependencyUnavailable(err) {
			err = ErrEngineExecution(err)
		}
		g.setLastErr(err.Error())
		for _, p := range live {
			p.fulfill(nil, err)
		}
		return
	}
	if len(outs) != len(prompts) {
		cerr := engineContractError{want: len(prompts), got: len(outs)}
		g.setLastErr(cerr.Error())
		for _, p := range live {
			p.fulfill(nil, cerr)
		}
		return
	}
	for i, p := range live {
		end := len(outs)
		if i+1 < len(live) {
			end = offsets[i+1]
		}
		p.fulfill(outs[offsets[i]:end], nil)
	}
}
