package engine

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SessionConfig tunes a Session created from an Engine.
type SessionConfig struct {
	// MaxOutputTokens caps generated tokens per request. Zero inherits the
	// Engine budget; the effective ceiling is never above budget minus the
	// encoded prompt length.
	MaxOutputTokens int
}

// Callback receives response chunks on the session worker goroutine. The
// callee owns each Response and must Close it. Callbacks must not call
// Session.Close or Session.Wait.
type Callback func(resp *Response)

// Session is the mutable state of one conversation. It runs at most one
// generation at a time on its own worker goroutine; a second predict while
// one is in flight fails with ErrBusy.
type Session struct {
	id        string
	engine    *Engine
	backend   Backend
	forked    bool
	maxOutput int
	log       zerolog.Logger

	mu     sync.Mutex
	busy   bool
	closed bool
	done   chan struct{} // closed when the current worker returns

	// results of the last generation; written by the worker before done closes
	output string
	finish FinishReason
	usage  Usage
	err    error
}

// NewSession creates a Session referencing e. Backends implementing Forker
// get a private stream per Session.
func (e *Engine) NewSession(cfg SessionConfig) (*Session, error) {
	if cfg.MaxOutputTokens < 0 {
		return nil, ErrInvalidArgument("max output tokens must not be negative, got %d", cfg.MaxOutputTokens)
	}
	if cfg.MaxOutputTokens > e.maxTokens {
		return nil, ErrInvalidArgument("max output tokens %d exceeds engine budget %d", cfg.MaxOutputTokens, e.maxTokens)
	}
	if err := e.acquire(); err != nil {
		return nil, err
	}
	backend, forked := e.backend, false
	if f, ok := e.backend.(Forker); ok {
		b, err := f.Fork()
		if err != nil {
			e.release()
			return nil, fmt.Errorf("fork backend: %w", err)
		}
		backend, forked = b, true
	}
	id := uuid.NewString()
	s := &Session{
		id:        id,
		engine:    e,
		backend:   backend,
		forked:    forked,
		maxOutput: cfg.MaxOutputTokens,
		log:       zlog.With().Str("session_id", id).Logger(),
	}
	s.log.Debug().Bool("forked", forked).Msg("session created")
	return s, nil
}

// ID returns the session identifier used in logs.
func (s *Session) ID() string { return s.id }

// SizeInTokens counts tokens of text with the Engine's tokenizer.
func (s *Session) SizeInTokens(text string) (int, error) {
	return s.engine.SizeInTokens(text)
}

// PredictAsync encodes prompt, validates it against the token budget and
// starts the worker. Encode and budget failures are returned before any
// backend call. cb is invoked zero or more times with Done=false and exactly
// once with Done=true; generation failures arrive in that final Response.
//
// ctx is only consulted before the worker starts; a started generation runs
// to completion.
func (s *Session) PredictAsync(ctx context.Context, prompt string, cb Callback) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return busyError{msg: "session is closed"}
	}
	if s.busy {
		s.mu.Unlock()
		return ErrBusy
	}
	// done is installed before encoding so Close always has a worker to join.
	done := make(chan struct{})
	s.busy = true
	s.done = done
	s.mu.Unlock()

	abort := func(err error) error {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
		close(done)
		return err
	}
	ids, limit, err := s.prepare(prompt)
	if err != nil {
		return abort(err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return abort(busyError{msg: "session is closed"})
	}
	s.output, s.finish, s.usage, s.err = "", FinishNone, Usage{}, nil
	s.mu.Unlock()

	go s.run(ids, limit, cb, done)
	return nil
}

// PredictSync runs PredictAsync with a discarding callback, waits for the
// worker and returns the whole output as a single-entry Response. On a
// generation failure the Response holds the partial output and the error is
// returned both in Response.Err and as the second result.
func (s *Session) PredictSync(ctx context.Context, prompt string) (*Response, error) {
	if err := s.PredictAsync(ctx, prompt, func(r *Response) { r.Close() }); err != nil {
		return nil, err
	}
	s.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	resp := &Response{
		Entries:      []string{s.output},
		Done:         true,
		FinishReason: s.finish,
		Usage:        s.usage,
		Err:          s.err,
	}
	return resp, s.err
}

// Wait blocks until the in-flight generation, if any, has finished.
func (s *Session) Wait() {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Output returns the accumulated output of the last finished generation.
func (s *Session) Output() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.output
}

// Close waits for any in-flight generation, releases a forked backend stream
// and detaches the Session from its Engine.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	done := s.done
	s.mu.Unlock()
	if done != nil {
		<-done
	}
	var err error
	if s.forked {
		if c, ok := s.backend.(io.Closer); ok {
			err = c.Close()
		}
	}
	s.engine.release()
	s.log.Debug().Msg("session closed")
	return err
}

// prepare runs the Encoding state: tokenize, prepend the start token and
// derive the output-token ceiling.
func (s *Session) prepare(prompt string) ([]int, int, error) {
	ids, err := s.engine.encodePrompt(prompt)
	if err != nil {
		return nil, 0, err
	}
	limit := s.engine.maxTokens - len(ids)
	if limit <= 0 {
		return nil, 0, promptTooLongError{promptTokens: len(ids), budget: s.engine.maxTokens}
	}
	if s.maxOutput > 0 && s.maxOutput < limit {
		limit = s.maxOutput
	}
	return ids, limit, nil
}

func (s *Session) run(ids []int, limit int, cb Callback, done chan struct{}) {
	defer close(done)
	if !s.forked {
		s.engine.backendMu.Lock()
		defer s.engine.backendMu.Unlock()
	}

	start := time.Now()
	d := &decoder{
		backend:    s.backend,
		tokenizer:  s.engine.tokenizer,
		normalizer: s.engine.normalizer,
		stops:      s.engine.stops,
		lookahead:  s.engine.lookahead,
		limit:      limit,
	}
	usage := func() Usage {
		return Usage{PromptTokens: len(ids), CompletionTokens: d.emitted, TotalTokens: len(ids) + d.emitted}
	}
	d.emit = func(chunk string, last bool, err error) {
		resp := newResponse(chunk)
		resp.Done = last
		if last {
			resp.FinishReason = d.finish
			resp.Usage = usage()
			resp.Err = err
		}
		if cb != nil {
			cb(resp)
		}
	}

	s.log.Debug().Int("prompt_tokens", len(ids)).Int("limit", limit).Msg("generation start")
	err := d.run(ids)
	if serr := safeStop(s.backend); serr != nil {
		s.log.Warn().Err(serr).Msg("backend stop failed")
	}
	observeGeneration(d.finish, d.emitted, time.Since(start))
	if err != nil {
		s.log.Error().Err(err).Int("tokens", d.emitted).Msg("generation failed")
	} else {
		s.log.Debug().Str("finish_reason", string(d.finish)).Int("tokens", d.emitted).
			Dur("dur", time.Since(start)).Msg("generation end")
	}

	s.mu.Lock()
	s.output = d.output.String()
	s.finish = d.finish
	s.usage = usage()
	s.err = err
	s.busy = false
	s.mu.Unlock()
}
