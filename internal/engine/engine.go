package engine

import (
	"errors"
	"io"
	"sync"
)

// Settings holds the immutable generation parameters of an Engine.
type Settings struct {
	// StartTokenID is prepended to every encoded prompt.
	StartTokenID int
	// StopSequences end generation when any of them appears in the output.
	StopSequences []string
	// MaxTokens is the total token budget (prompt + output) of a session.
	MaxTokens int
}

// Components are the external collaborators owned by an Engine.
type Components struct {
	Tokenizer  Tokenizer
	Normalizer Normalizer // optional
	Backend    Backend
}

// Engine bundles a tokenizer, optional normalizer, backend and generation
// settings. It is immutable after New and shared by all Sessions created from
// it. The Engine must outlive every Session; Close fails while any remain.
type Engine struct {
	tokenizer  Tokenizer
	normalizer Normalizer
	backend    Backend
	startID    int
	stops      []string
	maxTokens  int
	lookahead  int

	// backendMu serializes generations when the backend cannot fork.
	backendMu sync.Mutex

	mu       sync.Mutex
	sessions int
	closed   bool
}

// New validates settings and returns a ready Engine that takes ownership of
// the components. Components implementing io.Closer are closed by Close.
func New(settings Settings, c Components) (*Engine, error) {
	if c.Tokenizer == nil {
		return nil, ErrInvalidArgument("tokenizer is required")
	}
	if c.Backend == nil {
		return nil, ErrInvalidArgument("model backend is required")
	}
	if settings.MaxTokens <= 0 {
		return nil, ErrInvalidArgument("max tokens must be positive, got %d", settings.MaxTokens)
	}
	stops := make([]string, 0, len(settings.StopSequences))
	for i, s := range settings.StopSequences {
		if s == "" {
			return nil, ErrInvalidArgument("stop sequence %d is empty", i)
		}
		stops = append(stops, s)
	}
	return &Engine{
		tokenizer:  c.Tokenizer,
		normalizer: c.Normalizer,
		backend:    c.Backend,
		startID:    settings.StartTokenID,
		stops:      stops,
		maxTokens:  settings.MaxTokens,
		lookahead:  lookaheadFor(stops),
	}, nil
}

// MaxTokens returns the session token budget.
func (e *Engine) MaxTokens() int { return e.maxTokens }

// StopSequences returns a copy of the configured stop sequences.
func (e *Engine) StopSequences() []string { return append([]string(nil), e.stops...) }

// SizeInTokens returns the number of tokens the tokenizer produces for text,
// or -1 and an encode error.
func (e *Engine) SizeInTokens(text string) (int, error) {
	ids, err := safeEncode(e.tokenizer, text)
	if err != nil {
		return -1, encodeError{err: err}
	}
	return len(ids), nil
}

// Close releases the owned components. It returns a failed-precondition error
// while Sessions created from the Engine are still open.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	if e.sessions > 0 {
		return busyError{msg: "engine has open sessions"}
	}
	e.closed = true
	var errs []error
	for _, c := range []any{e.backend, e.normalizer, e.tokenizer} {
		if closer, ok := c.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (e *Engine) acquire() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return busyError{msg: "engine is closed"}
	}
	e.sessions++
	activeSessions.Inc()
	return nil
}

func (e *Engine) release() {
	e.mu.Lock()
	e.sessions--
	e.mu.Unlock()
	activeSessions.Dec()
}

// encodePrompt tokenizes the prompt and prepends the start token.
func (e *Engine) encodePrompt(prompt string) ([]int, error) {
	ids, err := safeEncode(e.tokenizer, prompt)
	if err != nil {
		return nil, encodeError{err: err}
	}
	out := make([]int, 0, len(ids)+1)
	out = append(out, e.startID)
	return append(out, ids...), nil
}
