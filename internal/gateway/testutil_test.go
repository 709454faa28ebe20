package gateway

import (
	"context"
	"sync"
	"testing"
	"time"

	"inferd/internal/engine"
	"inferd/pkg/types"
)

func genReq(prompts []string, params map[string]any) types.GenerateRequest {
	return types.GenerateRequest{Prompts: prompts, SamplingParams: params}
}

// echoEngine answers every prompt with its text and length, recording each
// submitted batch.
type echoEngine struct {
	mu        sync.Mutex
	batches   [][]string
	params    [][]engine.Params
	shutdowns int
}

func (e *echoEngine) Submit(ctx context.Context, prompts []string, params []engine.Params) ([]engine.Output, error) {
	e.mu.Lock()
	e.batches = append(e.batches, append([]string(nil), prompts...))
	e.params = append(e.params, append([]engine.Params(nil), params...))
	e.mu.Unlock()
	outs := make([]engine.Output, len(prompts))
	for i, p := range prompts {
		outs[i] = engine.Output{"text": p, "text_length": len(p), "finish_reason": "stop"}
	}
	return outs, nil
}

func (e *echoEngine) Shutdown() error {
	e.mu.Lock()
	e.shutdowns++
	e.mu.Unlock()
	return nil
}

func (e *echoEngine) submitted() [][]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([][]string, len(e.batches))
	copy(out, e.batches)
	return out
}

// blockingEngine parks in Submit until released or the context is canceled.
type blockingEngine struct {
	entered chan struct{} // receives one signal per Submit call
	release chan struct{} // closing it lets all Submits finish
}

func newBlockingEngine() *blockingEngine {
	return &blockingEngine{entered: make(chan struct{}, 16), release: make(chan struct{})}
}

func (e *blockingEngine) Submit(ctx context.Context, prompts []string, params []engine.Params) ([]engine.Output, error) {
	e.entered <- struct{}{}
	select {
	case <-e.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	outs := make([]engine.Output, len(prompts))
	for i, p := range prompts {
		outs[i] = engine.Output{"text": p, "finish_reason": "stop"}
	}
	return outs, nil
}

func (e *blockingEngine) Shutdown() error { return nil }

// brokenEngine silently drops the last output of every batch.
type brokenEngine struct{}

func (brokenEngine) Submit(ctx context.Context, prompts []string, params []engine.Params) ([]engine.Output, error) {
	outs := make([]engine.Output, 0, len(prompts))
	for _, p := range prompts[:len(prompts)-1] {
		outs = append(outs, engine.Output{"text": p})
	}
	return outs, nil
}

func (brokenEngine) Shutdown() error { return nil }

// startGateway builds and starts a gateway around eng, stopping it at test end.
func startGateway(t *testing.T, eng engine.Engine, cfg Config) *Gateway {
	t.Helper()
	cfg.Engine = func() (engine.Engine, error) { return eng, nil }
	g := NewWithConfig(cfg)
	if err := g.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(func() { _ = g.Stop() })
	return g
}

// waitFor polls cond until true or the deadline passes.
func waitFor(t *testing.T, d time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(d)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met within %s", d)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func mustValidate(t *testing.T, prompts []string) GenerationRequest {
	t.Helper()
	gr, err := ValidateRequest(genReq(prompts, nil))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	return gr
}
