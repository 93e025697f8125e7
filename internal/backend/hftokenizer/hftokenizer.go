//go:build tokenizers

// Package hftokenizer adapts Hugging Face tokenizer.json files through the
// Rust tokenizers library. Real support requires the 'tokenizers' build tag.
package hftokenizer

import (
	"fmt"
	"unicode/utf8"

	"github.com/daulet/tokenizers"
)

// Built reports whether this binary has real tokenizers support.
const Built = true

// Tokenizer wraps a loaded tokenizer.json.
type Tokenizer struct {
	tk *tokenizers.Tokenizer
}

// Open loads a tokenizer.json file.
func Open(path string) (*Tokenizer, error) {
	tk, err := tokenizers.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer %s: %w", path, err)
	}
	return &Tokenizer{tk: tk}, nil
}

// Encode returns ids without special tokens; the engine adds the start token.
func (t *Tokenizer) Encode(text string) ([]int, error) {
	if !utf8.ValidString(text) {
		return nil, fmt.Errorf("input is not valid UTF-8")
	}
	raw, _ := t.tk.Encode(text, false)
	ids := make([]int, len(raw))
	for i, id := range raw {
		ids[i] = int(id)
	}
	return ids, nil
}

func (t *Tokenizer) IDToPiece(id int) (string, error) {
	if id < 0 || uint32(id) >= t.tk.VocabSize() {
		return "", fmt.Errorf("token id %d outside vocabulary of %d", id, t.tk.VocabSize())
	}
	return t.tk.Decode([]uint32{uint32(id)}, false), nil
}

func (t *Tokenizer) Close() error { return t.tk.Close() }
