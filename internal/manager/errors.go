package manager

import (
	"errors"

	"genai/internal/engine"
)

// tooBusyError signals queue timeout/overflow for 429 mapping.
type tooBusyError struct{ reason string }

func (e tooBusyError) Error() string     { return "too busy: " + e.reason }
func (e tooBusyError) Code() engine.Code { return engine.CodeUnavailable }

// IsTooBusy reports whether err indicates backpressure (return 429).
func IsTooBusy(err error) bool {
	var e tooBusyError
	return errors.As(err, &e)
}

// drainingError rejects new work once Shutdown has started.
type drainingError struct{}

func (drainingError) Error() string     { return "server is draining" }
func (drainingError) Code() engine.Code { return engine.CodeUnavailable }

// IsDraining reports whether err was caused by a shutdown in progress.
func IsDraining(err error) bool {
	var e drainingError
	return errors.As(err, &e)
}

// ErrTooBusy builds the backpressure error returned by admission.
func ErrTooBusy(reason string) error { return tooBusyError{reason: reason} }

// ErrDraining is returned for work submitted after Shutdown started.
var ErrDraining error = drainingError{}
