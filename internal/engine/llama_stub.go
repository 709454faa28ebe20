//go:build !llama

package engine

// This file provides a no-CGO stub for the llama engine. It is compiled when
// the 'llama' build tag is NOT set, keeping default builds and CI CGO-free.
// The real engine lives in llama.go (tagged 'llama').

import (
	"context"
)

// stubEngine satisfies Engine but refuses to generate without the 'llama'
// build tag. This avoids any mocked behavior in production binaries built
// without CGO support.
type stubEngine struct{}

// New returns a stub engine. Construction succeeds so the daemon can come up
// for status/health probes; Submit fails fast with a dependency error.
func New(cfg Config) (Engine, error) {
	return stubEngine{}, nil
}

func (stubEngine) Submit(ctx context.Context, prompts []string, params []Params) ([]Output, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	return nil, ErrDependencyUnavailable("llama support not built (missing 'llama' build tag)")
}

func (stubEngine) Shutdown() error { return nil }
