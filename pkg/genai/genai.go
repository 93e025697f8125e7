// Package genai is the stable boundary of the generation runtime. It wraps
// the internal engine with handle-style functions: success is a nil error
// with a non-nil handle, failure a nil handle and an error whose numeric
// status is reported by Status.
package genai

import (
	"context"

	"genai/internal/engine"
	"genai/internal/loader"
	"genai/pkg/types"
)

// Settings selects and configures the model an Engine is built from.
type Settings = types.ModelSettings

// SessionConfig configures one Session.
type SessionConfig = engine.SessionConfig

// Response is a handoff buffer owned by its receiver until
// CloseResponseContext is called.
type Response = engine.Response

// Engine is an immutable loaded model shared by Sessions.
type Engine struct {
	e *engine.Engine
}

// Session is one conversation bound to an Engine.
type Session struct {
	s *engine.Session
}

// CreateEngine loads the model described by settings.
func CreateEngine(settings Settings) (*Engine, error) {
	e, err := loader.Load(settings)
	if err != nil {
		return nil, err
	}
	return &Engine{e: e}, nil
}

// DeleteEngine releases the model. It fails while Sessions are still open.
func DeleteEngine(e *Engine) error {
	if e == nil {
		return engine.ErrInvalidArgument("nil engine")
	}
	return e.e.Close()
}

// CreateSession opens a Session on e.
func CreateSession(e *Engine, cfg SessionConfig) (*Session, error) {
	if e == nil {
		return nil, engine.ErrInvalidArgument("nil engine")
	}
	s, err := e.e.NewSession(cfg)
	if err != nil {
		return nil, err
	}
	return &Session{s: s}, nil
}

// DeleteSession blocks until any in-flight generation completes, then
// releases the Session.
func DeleteSession(s *Session) error {
	if s == nil {
		return engine.ErrInvalidArgument("nil session")
	}
	return s.s.Close()
}

// PredictSync generates a completion for prompt and returns it as a single
// entry with Done set. A generation failure is returned as the error and also
// recorded in the Response.
func PredictSync(s *Session, prompt string) (*Response, error) {
	if s == nil {
		return nil, engine.ErrInvalidArgument("nil session")
	}
	return s.s.PredictSync(context.Background(), prompt)
}

// PredictAsync starts a generation and returns once it is running. callback
// receives callbackContext with every chunk on the session worker; the last
// call has Done set. Errors raised before the worker starts are returned and
// the callback is never called.
func PredictAsync[T any](s *Session, callbackContext T, prompt string, callback func(T, *Response)) error {
	if s == nil {
		return engine.ErrInvalidArgument("nil session")
	}
	if callback == nil {
		return engine.ErrInvalidArgument("nil callback")
	}
	return s.s.PredictAsync(context.Background(), prompt, func(r *Response) {
		callback(callbackContext, r)
	})
}

// SizeInTokens counts the tokens text encodes to, or returns -1 and an
// encode error.
func SizeInTokens(s *Session, text string) (int, error) {
	if s == nil {
		return -1, engine.ErrInvalidArgument("nil session")
	}
	return s.s.SizeInTokens(text)
}

// CloseResponseContext releases resp. Each Response must be closed exactly
// once; a second call is a caller error.
func CloseResponseContext(resp *Response) {
	if resp != nil {
		resp.Close()
	}
}

// Status returns the numeric status of err: 0 for nil, 13 for errors that
// carry no code.
func Status(err error) int { return int(engine.StatusCode(err)) }
