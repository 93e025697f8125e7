//go:build !tokenizers

// Package hftokenizer adapts Hugging Face tokenizer.json files through the
// Rust tokenizers library. Real support requires the 'tokenizers' build tag.
package hftokenizer

import "genai/internal/engine"

// Built reports whether this binary has real tokenizers support.
const Built = false

var errNotBuilt = engine.ErrUnavailable("hf tokenizer support not built (missing 'tokenizers' build tag)")

// Tokenizer is never constructed in stub builds.
type Tokenizer struct{}

func Open(path string) (*Tokenizer, error) { return nil, errNotBuilt }

func (t *Tokenizer) Encode(string) ([]int, error)  { return nil, errNotBuilt }
func (t *Tokenizer) IDToPiece(int) (string, error) { return "", errNotBuilt }
func (t *Tokenizer) Close() error                  { return nil }
