package gateway

import (
	"encoding/json"
	"fmt"
	"strings"

	"inferd/internal/engine"
	"inferd/pkg/types"
)

// Defaults applied when the client omits the corresponding sampling option.
const (
	defaultTemperature = 0.8
	defaultTopP        = 0.95
)

// GenerationRequest is the validated, normalized form of a client request.
// Immutable after validation.
type GenerationRequest struct {
	Prompts []string
	Params  engine.Params
}

// ValidateRequest checks and normalizes a raw request. Recognized sampling
// options are range-checked; unrecognized options pass through to the engine
// opaquely.
func ValidateRequest(req types.GenerateRequest) (GenerationRequest, error) {
	if len(req.Prompts) == 0 {
		return GenerationRequest{}, validationError{msg: "prompts must not be empty"}
	}
	for i, p := range req.Prompts {
		if strings.TrimSpace(p) == "" {
			return GenerationRequest{}, validationError{msg: fmt.Sprintf("prompts[%d] must not be empty", i)}
		}
	}
	params := engine.Params{Temperature: defaultTemperature, TopP: defaultTopP}
	for k, v := range req.SamplingParams {
		switch k {
		case "temperature":
			f, ok := asFloat(v)
			if !ok {
				return GenerationRequest{}, validationError{msg: "temperature must be a number"}
			}
			if f < 0 {
				return GenerationRequest{}, validationError{msg: "temperature must be >= 0"}
			}
			params.Temperature = f
		case "top_p":
			f, ok := asFloat(v)
			if !ok {
				return GenerationRequest{}, validationError{msg: "top_p must be a number"}
			}
			if f < 0 || f > 1 {
				return GenerationRequest{}, validationError{msg: "top_p must be in [0,1]"}
			}
			params.TopP = f
		case "max_tokens":
			n, ok := asInt(v)
			if !ok || n <= 0 {
				return GenerationRequest{}, validationError{msg: "max_tokens must be a positive integer"}
			}
			params.MaxTokens = n
		case "stop":
			ss, ok := asStringSlice(v)
			if !ok {
				return GenerationRequest{}, validationError{msg: "stop must be a list of strings"}
			}
			params.Stop = ss
		default:
			if params.Extra == nil {
				params.Extra = make(map[string]any)
			}
			params.Extra[k] = v
		}
	}
	return GenerationRequest{Prompts: req.Prompts, Params: params}, nil
}

// asFloat coerces JSON-decoded numeric values.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	case int:
		return n, true
	case int64:
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	default:
		return 0, false
	}
}

func asStringSlice(v any) ([]string, bool) {
	switch s := v.(type) {
	case []string:
		return s, true
	case []any:
		out := make([]string, 0, len(s))
		for _, e := range s {
			str, ok := e.(string)
			if !ok {
				return nil, false
			}
			out = append(out, str)
		}
		return out, true
	default:
		return nil, false
	}
}
