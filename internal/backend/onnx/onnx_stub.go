//go:build !onnx

package onnx

import "genai/internal/engine"

// Built reports whether this binary has real ONNX Runtime support.
const Built = false

// Model is never constructed in stub builds.
type Model struct{}

// Open always fails: ONNX Runtime not available in this build.
func Open(path string, opts Options) (*Model, error) {
	return nil, engine.ErrUnavailable("onnx support not built (missing 'onnx' build tag)")
}

func (m *Model) Fork() (engine.Backend, error) { return nil, engine.ErrUnavailable("onnx support not built") }
func (m *Model) InitInputTokens([]int) error  { return engine.ErrUnavailable("onnx support not built") }
func (m *Model) NextToken() ([]int, error)    { return nil, engine.ErrUnavailable("onnx support not built") }
