//go:build !llama

package llama

// This file provides a no-CGO stub. It is compiled when the 'llama' build tag
// is NOT set, keeping default builds and CI CGO-free.

import "genai/internal/engine"

// Built reports whether this binary has real llama support.
const Built = false

var errNotBuilt = engine.ErrUnavailable("llama support not built (missing 'llama' build tag)")

// Runtime is never constructed in stub builds.
type Runtime struct{}

// Open always fails: llama runtime not available in this build.
func Open(path string, opts Options) (*Runtime, error) { return nil, errNotBuilt }

func (r *Runtime) Encode(string) ([]int, error)  { return nil, errNotBuilt }
func (r *Runtime) IDToPiece(int) (string, error) { return "", errNotBuilt }
func (r *Runtime) InitInputTokens([]int) error   { return errNotBuilt }
func (r *Runtime) NextToken() ([]int, error)     { return nil, errNotBuilt }
func (r *Runtime) Stop()                         {}
func (r *Runtime) Close() error                  { return nil }
