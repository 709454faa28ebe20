package gateway

import (
	"context"
	"sync"
	"testing"
	"time"
)

// Batch must close once maxBatchSize requests have accumulated, even though
// the wait deadline is far away.
func TestBatchClosesAtMaxSize(t *testing.T) {
	eng := &echoEngine{}
	g := startGateway(t, eng, Config{MaxBatchSize: 2, MaxBatchWait: time.Hour})

	var wg sync.WaitGroup
	for _, p := range []string{"a", "b"} {
		wg.Add(1)
		go func(p string) {
			defer wg.Done()
			if _, err := g.Generate(context.Background(), genReq([]string{p}, nil)); err != nil {
				t.Errorf("generate %q: %v", p, err)
			}
		}(p)
	}
	wg.Wait()

	batches := eng.submitted()
	if len(batches) != 1 {
		t.Fatalf("batches=%v, want one batch of two", batches)
	}
	if len(batches[0]) != 2 {
		t.Fatalf("batch size=%d", len(batches[0]))
	}
}

// Batch must close at the deadline even with fewer than maxBatchSize items.
func TestBatchClosesAtDeadline(t *testing.T) {
	eng := &echoEngine{}
	g := startGateway(t, eng, Config{MaxBatchSize: 100, MaxBatchWait: 20 * time.Millisecond})

	start := time.Now()
	if _, err := g.Generate(context.Background(), genReq([]string{"solo"}, nil)); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("deadline trigger too slow: %s", elapsed)
	}
	batches := eng.submitted()
	if len(batches) != 1 || len(batches[0]) != 1 {
		t.Fatalf("batches=%v", batches)
	}
}

// Arrival order is preserved within a batch.
func TestBatchPreservesArrivalOrder(t *testing.T) {
	eng := &echoEngine{}
	g := startGateway(t, eng, Config{MaxBatchSize: 3, MaxBatchWait: time.Hour})

	p1, err := g.enqueue(mustValidate(t, []string{"first"}))
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	p2, err := g.enqueue(mustValidate(t, []string{"second"}))
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	p3, err := g.enqueue(mustValidate(t, []string{"third"}))
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	for _, p := range []*PendingRequest{p1, p2, p3} {
		if _, err := p.Wait(context.Background()); err != nil {
			t.Fatalf("wait: %v", err)
		}
	}
	batches := eng.submitted()
	if len(batches) != 1 {
		t.Fatalf("batches=%v", batches)
	}
	want := []string{"first", "second", "third"}
	for i, p := range want {
		if batches[0][i] != p {
			t.Fatalf("batch order %v, want %v", batches[0], want)
		}
	}
}

// The (limit+1)-th request must fail with a queue-full error before being
// queued.
func TestQueueFullBackpressure(t *testing.T) {
	eng := newBlockingEngine()
	g := startGateway(t, eng, Config{MaxBatchSize: 1, MaxBatchWait: time.Millisecond, MaxQueueDepth: 2})

	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := g.Generate(context.Background(), genReq([]string{"p"}, nil))
			results <- err
		}()
	}
	waitFor(t, time.Second, func() bool { return g.admittedCount() == 2 })

	_, err := g.enqueue(mustValidate(t, []string{"overflow"}))
	if !IsQueueFull(err) {
		t.Fatalf("expected queue-full error, got %v", err)
	}

	close(eng.release)
	for i := 0; i < 2; i++ {
		if err := <-results; err != nil {
			t.Fatalf("admitted request failed: %v", err)
		}
	}
}

// Draining and shut-down gateways reject admission outright.
func TestEnqueueRejectedAfterStop(t *testing.T) {
	g := startGateway(t, &echoEngine{}, Config{DrainTimeout: 50 * time.Millisecond})
	if err := g.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	_, err := g.enqueue(mustValidate(t, []string{"late"}))
	if !IsNotAccepting(err) {
		t.Fatalf("expected not-accepting error, got %v", err)
	}
}

// A request cancelled while queued is skipped at batch formation and never
// reaches the engine.
func TestCancelledWhileQueuedSkipsEngine(t *testing.T) {
	eng := &echoEngine{}
	g := startGateway(t, eng, Config{MaxBatchSize: 4, MaxBatchWait: 40 * time.Millisecond})

	p, err := g.enqueue(mustValidate(t, []string{"doomed"}))
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if !p.Cancel() {
		t.Fatalf("cancel failed")
	}
	survivor, err := g.enqueue(mustValidate(t, []string{"ok"}))
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if _, err := survivor.Wait(context.Background()); err != nil {
		t.Fatalf("wait: %v", err)
	}
	for _, b := range eng.submitted() {
		for _, prompt := range b {
			if prompt == "doomed" {
				t.Fatalf("cancelled prompt was submitted: %v", eng.submitted())
			}
		}
	}
}
