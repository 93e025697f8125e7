package engine

// Backend abstracts the neural-network forward pass. Concrete implementations
// (bigram, llama.cpp, ONNX Runtime) live under internal/backend.
type Backend interface {
	// InitInputTokens primes the model with the encoded prompt, including the
	// start token. It is called once per generation before NextToken.
	InitInputTokens(ids []int) error
	// NextToken runs one decode step and returns the generated ids; only the
	// first id is consumed. Implementations return ErrEndOfSequence when the
	// model finished on its own.
	NextToken() ([]int, error)
}

// Forker is implemented by backends that can open independent generation
// streams over shared read-only weights. Each Session forks its own stream.
// Backends without it are shared, and the Engine runs one generation at a
// time across its Sessions.
type Forker interface {
	Fork() (Backend, error)
}

// Stopper is implemented by backends that keep work running between
// NextToken calls. Stop is called once per generation after it reached a
// terminal state, before the Session reports itself idle.
type Stopper interface {
	Stop()
}

// Tokenizer encodes text to ids and maps a single id back to a text piece.
type Tokenizer interface {
	Encode(text string) ([]int, error)
	IDToPiece(id int) (string, error)
}

// Normalizer post-processes decoded pieces (e.g. meta-space to ASCII space).
type Normalizer interface {
	Normalize(text string) string
}
