package types

// PredictRequest is the payload of POST /v1/predict and /v1/predict/stream.
type PredictRequest struct {
	// Required prompt text to generate a completion for.
	// example: Write a haiku about the ocean.
	Prompt string `json:"prompt" example:"Write a haiku about the ocean."`
	// Optional cap on generated tokens for this request. Zero uses the
	// remaining engine budget.
	// example: 64
	MaxOutputTokens int `json:"max_output_tokens,omitempty" example:"64"`
}

// Usage reports token accounting for a finished generation.
type Usage struct {
	// Tokens in the encoded prompt, including the start token.
	// example: 12
	PromptTokens int `json:"prompt_tokens" example:"12"`
	// Generated tokens.
	// example: 40
	CompletionTokens int `json:"completion_tokens" example:"40"`
	// example: 52
	TotalTokens int `json:"total_tokens" example:"52"`
}

// PredictResponse is returned by POST /v1/predict.
type PredictResponse struct {
	// Generated text with any stop sequence removed.
	// example: Waves fold into foam
	Text string `json:"text" example:"Waves fold into foam"`
	// Always true for a completed request.
	Done bool `json:"done" example:"true"`
	// Why generation ended: stop, length, eos or error.
	// example: stop
	FinishReason string `json:"finish_reason" example:"stop"`
	Usage        Usage  `json:"usage"`
}

// StreamLine is one NDJSON line of POST /v1/predict/stream.
type StreamLine struct {
	// Text flushed since the previous line.
	Text string `json:"text"`
	// True on the last line of the stream.
	Done bool `json:"done"`
	// Set on the last line.
	FinishReason string `json:"finish_reason,omitempty"`
	// Set on the last line.
	Usage *Usage `json:"usage,omitempty"`
	// Generation error, set only on a failing last line.
	Error string `json:"error,omitempty"`
}

// CountRequest is the payload of POST /v1/tokens/count.
type CountRequest struct {
	// example: hello world
	Text string `json:"text" example:"hello world"`
}

// CountResponse is returned by POST /v1/tokens/count.
type CountResponse struct {
	// Number of tokens the engine tokenizer produces for the text.
	// example: 3
	Count int `json:"count" example:"3"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
	// Engine status code for service errors; 13 (internal) when the error
	// carries none.
	// example: 11
	Status int `json:"status,omitempty" example:"11"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Lifecycle state: ready, draining or closed.
	// example: ready
	State string `json:"state" example:"ready"`
	// Generations currently running.
	// example: 1
	Inflight int `json:"inflight" example:"1"`
	// example: 1
	MaxInflight int `json:"max_inflight" example:"1"`
	// Requests waiting for a generation slot.
	// example: 0
	QueueLen int `json:"queue_len" example:"0"`
	// Maximum requests admitted before backpressure triggers.
	// example: 32
	MaxQueueDepth int `json:"max_queue_depth" example:"32"`
	// Engine token budget per session.
	// example: 512
	MaxTokens int `json:"max_tokens" example:"512"`
	// Configured stop sequences.
	StopSequences []string `json:"stop_sequences,omitempty"`
	// Last generation error observed (if any).
	LastError string `json:"last_error,omitempty"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
	// example: 120
	RequestsTotal uint64 `json:"requests_total" example:"120"`
	// Requests rejected by admission.
	// example: 3
	RejectedTotal uint64 `json:"rejected_total" example:"3"`
	// Generations that ended with an error.
	// example: 0
	FailuresTotal uint64 `json:"failures_total" example:"0"`
}
