// Package tokcache wraps a tokenizer with a bounded cache of encoded texts.
package tokcache

import (
	"io"
	"sync"

	"github.com/cespare/xxhash/v2"

	"genai/internal/engine"
)

type entry struct {
	text string
	ids  []int
}

// Tokenizer caches Encode results keyed by the xxhash of the text. The text
// is stored alongside so hash collisions fall through to the inner tokenizer.
// Eviction is first-in first-out.
type Tokenizer struct {
	inner engine.Tokenizer
	size  int

	mu     sync.Mutex
	items  map[uint64]entry
	order  []uint64
	hits   uint64
	misses uint64
}

// Wrap returns inner unchanged when size <= 0.
func Wrap(inner engine.Tokenizer, size int) engine.Tokenizer {
	if size <= 0 {
		return inner
	}
	return &Tokenizer{inner: inner, size: size, items: make(map[uint64]entry, size)}
}

func (t *Tokenizer) Encode(text string) ([]int, error) {
	key := xxhash.Sum64String(text)
	t.mu.Lock()
	if e, ok := t.items[key]; ok && e.text == text {
		t.hits++
		t.mu.Unlock()
		return append([]int(nil), e.ids...), nil
	}
	t.misses++
	t.mu.Unlock()

	ids, err := t.inner.Encode(text)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.items[key]; !ok {
		if len(t.order) >= t.size {
			delete(t.items, t.order[0])
			t.order = t.order[1:]
		}
		t.order = append(t.order, key)
	}
	t.items[key] = entry{text: text, ids: append([]int(nil), ids...)}
	return ids, nil
}

func (t *Tokenizer) IDToPiece(id int) (string, error) { return t.inner.IDToPiece(id) }

// Stats returns cache hits and misses.
func (t *Tokenizer) Stats() (hits, misses uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hits, t.misses
}

// Close closes the inner tokenizer when it owns resources.
func (t *Tokenizer) Close() error {
	if c, ok := t.inner.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
