package gateway

import (
	"context"

	"inferd/internal/engine"
	"inferd/pkg/types"
)

// Generate is the gateway's request entry point: validate, admit, wait.
// Validation failures never reach the engine. Cancellation of ctx (client
// disconnect, shutdown) cancels the request; engine work already dispatched
// runs to completion and its result is discarded.
func (g *Gateway) Generate(ctx context.Context, req types.GenerateRequest) (types.GenerateResponse, error) {
	gr, err := ValidateRequest(req)
	if err != nil {
		return types.GenerateResponse{}, err
	}
	p, err := g.enqueue(gr)
	if err != nil {
		return types.GenerateResponse{}, err
	}
	outs, err := p.Wait(ctx)
	if err != nil {
		return types.GenerateResponse{}, err
	}
	return assembleResponse(gr, outs)
}

// assembleResponse maps engine outputs back to the API shape, enforcing the
// one-output-per-prompt contract in input order.
func assembleResponse(req GenerationRequest, outs []engine.Output) (types.GenerateResponse, error) {
	if len(outs) != len(req.Prompts) {
		return types.GenerateResponse{}, engineContractError{want: len(req.Prompts), got: len(outs)}
	}
	return types.GenerateResponse{Outputs: outs}, nil
}
