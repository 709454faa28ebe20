//go:build llama

package engine

import (
	"context"
	"errors"
	"strings"
	"sync"

	llama "github.com/go-skynet/go-llama.cpp"
)

// llamaEngine runs generation in-process through go-llama.cpp. The model is
// loaded once at construction; Submit is not safe for concurrent use, which
// matches the gateway's serialized dispatch path.
type llamaEngine struct {
	mu      sync.Mutex
	model   *llama.LLama
	threads int
}

// New loads the model at cfg.ModelPath. Construction failure is fatal to the
// caller; the gateway never serves against a partially-initialized engine.
func New(cfg Config) (Engine, error) {
	if strings.TrimSpace(cfg.ModelPath) == "" {
		return nil, errors.New("model path is empty")
	}
	mo := []llama.ModelOption{
		llama.SetContext(maxInt(cfg.CtxSize, 512)),
	}
	m, err := llama.New(cfg.ModelPath, mo...)
	if err != nil {
		return nil, err
	}
	return &llamaEngine{model: m, threads: maxInt(cfg.Threads, 1)}, nil
}

func (e *llamaEngine) Submit(ctx context.Context, prompts []string, params []Params) ([]Output, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.model == nil {
		return nil, errors.New("llama model not initialized")
	}
	outs := make([]Output, 0, len(prompts))
	for i, prompt := range prompts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := e.model.Predict(prompt, predictOptions(params[i], e.threads)...)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, err
		}
		reason := "stop"
		if params[i].MaxTokens > 0 && len(text) >= params[i].MaxTokens {
			reason = "length"
		}
		outs = append(outs, Output{"text": text, "finish_reason": reason})
	}
	return outs, nil
}

func (e *llamaEngine) Shutdown() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.model != nil {
		e.model.Free()
		e.model = nil
	}
	return nil
}

// predictOptions converts sampling params into go-llama.cpp options.
func predictOptions(p Params, threads int) []llama.PredictOption {
	po := []llama.PredictOption{
		llama.SetTokens(maxInt(p.MaxTokens, 1)),
		llama.SetThreads(maxInt(threads, 1)),
		llama.SetTopP(zf(float32(p.TopP), llama.DefaultOptions.TopP)),
		llama.SetTemperature(zf(float32(p.Temperature), llama.DefaultOptions.Temperature)),
	}
	if len(p.Stop) > 0 {
		po = append(po, llama.SetStopWords(p.Stop...))
	}
	return po
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func zf(v, def float32) float32 {
	if v > 0 {
		return v
	}
	return def
}
