package types

// GenerateRequest represents a generation request payload.
type GenerateRequest struct {
	// Prompts to generate completions for, in order. At least one is required.
	// example: ["Write a haiku about the ocean."]
	Prompts []string `json:"prompts"`
	// Sampling parameters by option name. Recognized options are validated
	// (temperature, top_p, max_tokens, stop); anything else is passed through
	// to the engine untouched.
	// example: {"temperature": 0.8, "top_p": 0.95}
	SamplingParams map[string]any `json:"sampling_params,omitempty"`
}

// GenerateResponse wraps the per-prompt outputs returned by POST /generate.
// Outputs preserve prompt order: outputs[i] corresponds to prompts[i].
type GenerateResponse struct {
	Outputs []map[string]any `json:"outputs"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: prompts must not be empty
	Error string `json:"error" example:"prompts must not be empty"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Gateway lifecycle state (uninitialized, ready, draining, shutdown).
	// example: ready
	State string `json:"state" example:"ready"`
	// Number of requests admitted and not yet terminal.
	// example: 3
	Admitted int `json:"admitted" example:"3"`
	// Requests waiting for a batch to form.
	// example: 2
	QueueLen int `json:"queue_len" example:"2"`
	// Maximum admitted requests before backpressure triggers.
	// example: 64
	MaxQueueDepth int `json:"max_queue_depth" example:"64"`
	// Batch size ceiling.
	// example: 8
	MaxBatchSize int `json:"max_batch_size" example:"8"`
	// Total batches dispatched to the engine.
	// example: 120
	BatchesTotal uint64 `json:"batches_total" example:"120"`
	// Total requests that reached a terminal state.
	// example: 450
	RequestsTotal uint64 `json:"requests_total" example:"450"`
	// Last error observed by the gateway (if any).
	LastError string `json:"last_error,omitempty"`
	// Uptime of the gateway in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}
