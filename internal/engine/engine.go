package engine

import "context"

// Output is one prompt's generation result. Field names are engine-defined;
// the gateway only enforces count and order, never the shape.
type Output = map[string]any

// Params captures sampling parameters for a single prompt.
type Params struct {
	Temperature float64
	TopP        float64
	MaxTokens   int
	Stop        []string
	// Extra holds unrecognized sampling options passed through opaquely.
	Extra map[string]any
}

// Engine abstracts the generation runtime consumed by the gateway.
// Implementations must report completion or failure for every prompt in a
// batch; returning fewer outputs than prompts is a contract violation the
// gateway rejects.
type Engine interface {
	// Submit runs generation for a batch of prompts. params[i] applies to
	// prompts[i]; len(params) == len(prompts). Implementations must return
	// when the context is canceled.
	Submit(ctx context.Context, prompts []string, params []Params) ([]Output, error)
	// Shutdown releases engine resources. Idempotent, best-effort.
	Shutdown() error
}

// Config holds construction parameters for the built-in engine.
type Config struct {
	ModelPath string
	CtxSize   int
	Threads   int
}
