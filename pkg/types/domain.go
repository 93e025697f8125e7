package types

// ModelSettings describes how to assemble an engine: which backend runs the
// forward pass, which tokenizer encodes prompts and the generation limits.
type ModelSettings struct {
	// Backend kind: bigram, llama or onnx.
	// example: llama
	Backend string `json:"backend" yaml:"backend" toml:"backend" example:"llama"`
	// Model file, or a directory holding exactly one file for the backend.
	// example: ~/models/TinyLlama.Q4_K_M.gguf
	ModelPath string `json:"model_path" yaml:"model_path" toml:"model_path" example:"~/models/TinyLlama.Q4_K_M.gguf"`
	// Tokenizer kind: vocab, hf or llama. Empty picks the backend default.
	Tokenizer string `json:"tokenizer,omitempty" yaml:"tokenizer,omitempty" toml:"tokenizer,omitempty"`
	// Tokenizer file for vocab and hf tokenizers.
	TokenizerPath string `json:"tokenizer_path,omitempty" yaml:"tokenizer_path,omitempty" toml:"tokenizer_path,omitempty"`
	// Optional piece normalizer: nfkc.
	Normalizer string `json:"normalizer,omitempty" yaml:"normalizer,omitempty" toml:"normalizer,omitempty"`
	// Id prepended to every encoded prompt.
	// example: 1
	StartTokenID int `json:"start_token_id" yaml:"start_token_id" toml:"start_token_id" example:"1"`
	// Id the onnx backend treats as end of sequence; negative disables it.
	EOSTokenID int `json:"eos_token_id,omitempty" yaml:"eos_token_id,omitempty" toml:"eos_token_id,omitempty"`
	// Output texts that end generation.
	// example: ["</s>"]
	StopSequences []string `json:"stop_sequences,omitempty" yaml:"stop_sequences,omitempty" toml:"stop_sequences,omitempty"`
	// Session token budget: prompt plus output.
	// example: 512
	MaxTokens int `json:"max_tokens" yaml:"max_tokens" toml:"max_tokens" example:"512"`
	// CPU threads for the llama backend.
	Threads int `json:"threads,omitempty" yaml:"threads,omitempty" toml:"threads,omitempty"`
	// Context window for the llama backend.
	ContextSize int `json:"context_size,omitempty" yaml:"context_size,omitempty" toml:"context_size,omitempty"`
	// Vocabulary size of the onnx model logits.
	VocabSize int `json:"vocab_size,omitempty" yaml:"vocab_size,omitempty" toml:"vocab_size,omitempty"`
	// Entries kept by the prompt encode cache; zero disables it.
	EncodeCacheSize int `json:"encode_cache_size,omitempty" yaml:"encode_cache_size,omitempty" toml:"encode_cache_size,omitempty"`
	// Shared library path for ONNX Runtime.
	ONNXLibraryPath string `json:"onnx_library_path,omitempty" yaml:"onnx_library_path,omitempty" toml:"onnx_library_path,omitempty"`
}

// ModelFile is a model artifact found on disk.
type ModelFile struct {
	// File name including extension.
	// example: TinyLlama.Q4_K_M.gguf
	Name string `json:"name" example:"TinyLlama.Q4_K_M.gguf"`
	// Absolute path to the file.
	Path string `json:"path"`
	// Size in bytes.
	Size int64 `json:"size"`
}
