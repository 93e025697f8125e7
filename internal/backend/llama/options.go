// Package llama adapts go-llama.cpp to the engine: one Runtime acts as both
// the tokenizer and the backend. Real support requires the 'llama' build tag;
// default builds get a stub that fails with an unavailable error.
package llama

// Options configure model loading and decoding.
type Options struct {
	ContextSize  int
	Threads      int
	MaxTokens    int
	StartTokenID int
}

// pieceIDBase offsets ids handed out for generated pieces so they never
// collide with vocabulary ids returned by Encode.
const pieceIDBase = 1 << 30

func positive(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
