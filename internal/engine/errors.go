package engine

import (
	"errors"
	"fmt"
)

// Code is the numeric status reported across the public boundary.
// Values follow the canonical status codes used by the native runtimes.
type Code int

const (
	CodeOK                 Code = 0
	CodeInvalidArgument    Code = 3
	CodeNotFound           Code = 5
	CodeFailedPrecondition Code = 9
	CodeOutOfRange         Code = 11
	CodeUnimplemented      Code = 12
	CodeInternal           Code = 13
	CodeUnavailable        Code = 14
)

// ErrEndOfSequence is returned by a Backend when the model emitted its
// end-of-sequence token. The decode loop treats it as normal completion.
var ErrEndOfSequence = errors.New("end of sequence")

// StatusCode returns the status code carried by err, CodeOK for nil and
// CodeInternal for errors that do not carry one.
func StatusCode(err error) Code {
	if err == nil {
		return CodeOK
	}
	var c interface{ Code() Code }
	if errors.As(err, &c) {
		return c.Code()
	}
	return CodeInternal
}

// invalidArgumentError signals bad settings or session configuration.
type invalidArgumentError struct{ msg string }

func (e invalidArgumentError) Error() string { return "invalid argument: " + e.msg }
func (e invalidArgumentError) Code() Code    { return CodeInvalidArgument }

// ErrInvalidArgument constructs an invalid-argument construction error.
func ErrInvalidArgument(format string, args ...any) error {
	return invalidArgumentError{msg: fmt.Sprintf(format, args...)}
}

// IsInvalidArgument reports whether err is an invalid-argument error.
func IsInvalidArgument(err error) bool {
	var e invalidArgumentError
	return errors.As(err, &e)
}

// notFoundError signals a missing model artifact.
type notFoundError struct{ what string }

func (e notFoundError) Error() string { return "not found: " + e.what }
func (e notFoundError) Code() Code    { return CodeNotFound }

func ErrNotFound(what string) error { return notFoundError{what: what} }

func IsNotFound(err error) bool {
	var e notFoundError
	return errors.As(err, &e)
}

// busyError signals that the target is in a state that forbids the call:
// a generation is already in flight, or sessions are still alive.
type busyError struct{ msg string }

func (e busyError) Error() string { return e.msg }
func (e busyError) Code() Code    { return CodeFailedPrecondition }

// ErrBusy is returned when a second predict is issued on a Session whose
// generation has not completed.
var ErrBusy error = busyError{msg: "session busy: a generation is already in flight"}

// IsBusy reports whether err is a busy/failed-precondition error.
func IsBusy(err error) bool {
	var e busyError
	return errors.As(err, &e)
}

// promptTooLongError is returned when the encoded prompt leaves no room for
// output tokens within the Engine's budget.
type promptTooLongError struct {
	promptTokens int
	budget       int
}

func (e promptTooLongError) Error() string {
	return fmt.Sprintf("prompt too long: %d tokens leave no room in a budget of %d", e.promptTokens, e.budget)
}
func (e promptTooLongError) Code() Code { return CodeOutOfRange }

func IsPromptTooLong(err error) bool {
	var e promptTooLongError
	return errors.As(err, &e)
}

// encodeError wraps a tokenizer failure on caller-supplied text.
type encodeError struct{ err error }

func (e encodeError) Error() string { return "failed to encode input: " + e.err.Error() }
func (e encodeError) Code() Code    { return CodeInvalidArgument }
func (e encodeError) Unwrap() error { return e.err }

func IsEncode(err error) bool {
	var e encodeError
	return errors.As(err, &e)
}

// generationError wraps a backend or detokenization failure mid-decode.
type generationError struct {
	stage string
	err   error
}

func (e generationError) Error() string {
	return fmt.Sprintf("generation failed during %s: %v", e.stage, e.err)
}
func (e generationError) Code() Code    { return CodeInternal }
func (e generationError) Unwrap() error { return e.err }

func IsGeneration(err error) bool {
	var e generationError
	return errors.As(err, &e)
}

// notImplementedError marks a capability that is not realized.
type notImplementedError struct{ what string }

func (e notImplementedError) Error() string {
	if e.what == "" {
		return "Not implemented"
	}
	return "Not implemented: " + e.what
}
func (e notImplementedError) Code() Code { return CodeUnimplemented }

func ErrNotImplemented(what string) error { return notImplementedError{what: what} }

func IsNotImplemented(err error) bool {
	var e notImplementedError
	return errors.As(err, &e)
}

// unavailableError signals a runtime dependency that was not compiled in or
// could not be initialized (e.g. missing build tag or shared library).
type unavailableError struct{ msg string }

func (e unavailableError) Error() string { return e.msg }
func (e unavailableError) Code() Code    { return CodeUnavailable }

func ErrUnavailable(msg string) error { return unavailableError{msg: msg} }

func IsUnavailable(err error) bool {
	var e unavailableError
	return errors.As(err, &e)
}
