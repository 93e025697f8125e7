//go:build llama

package llama

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	llama "github.com/go-skynet/go-llama.cpp"

	"genai/internal/engine"
)

// Built reports whether this binary has real llama support.
const Built = true

// maxPrompts bounds the encode-to-text memo used by InitInputTokens.
const maxPrompts = 64

// Runtime owns a loaded model. go-llama.cpp generates from prompt text and
// streams pieces through a token callback; Runtime bridges that push stream
// into the engine's pull-based NextToken with an unbuffered channel.
type Runtime struct {
	model *llama.LLama
	opts  Options

	mu      sync.Mutex
	prompts map[string]string // ids key -> prompt text
	order   []string
	pieces  []string
	pieceID map[string]int

	stream *stream
}

type stream struct {
	pieces chan string
	quit   chan struct{}
	done   chan error
}

// Open loads the model at path.
func Open(path string, opts Options) (*Runtime, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("model path is empty")
	}
	m, err := llama.New(path, llama.SetContext(positive(opts.ContextSize, 512)))
	if err != nil {
		return nil, fmt.Errorf("load llama model: %w", err)
	}
	return &Runtime{
		model:   m,
		opts:    opts,
		prompts: make(map[string]string),
		pieceID: make(map[string]int),
	}, nil
}

func idsKey(ids []int) string {
	var b strings.Builder
	for _, id := range ids {
		fmt.Fprintf(&b, "%d,", id)
	}
	return b.String()
}

// Encode tokenizes text with the model vocabulary.
func (r *Runtime) Encode(text string) ([]int, error) {
	_, toks, err := r.model.TokenizeString(text)
	if err != nil {
		return nil, err
	}
	ids := make([]int, len(toks))
	for i, t := range toks {
		ids[i] = int(t)
	}
	r.remember(ids, text)
	return ids, nil
}

func (r *Runtime) remember(ids []int, text string) {
	key := idsKey(ids)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.prompts[key]; !ok {
		if len(r.order) >= maxPrompts {
			delete(r.prompts, r.order[0])
			r.order = r.order[1:]
		}
		r.order = append(r.order, key)
	}
	r.prompts[key] = text
}

// InitInputTokens starts a generation for the prompt that encoded to ids.
func (r *Runtime) InitInputTokens(ids []int) error {
	if len(ids) > 0 && ids[0] == r.opts.StartTokenID {
		ids = ids[1:]
	}
	r.mu.Lock()
	text, ok := r.prompts[idsKey(ids)]
	r.mu.Unlock()
	if !ok {
		return errors.New("llama: prompt was not encoded by this runtime")
	}
	r.stop()

	s := &stream{pieces: make(chan string), quit: make(chan struct{}), done: make(chan error, 1)}
	r.model.SetTokenCallback(func(tok string) bool {
		select {
		case s.pieces <- tok:
			return true
		case <-s.quit:
			return false
		}
	})
	po := []llama.PredictOption{
		llama.SetTokens(positive(r.opts.MaxTokens, 512)),
		llama.SetThreads(positive(r.opts.Threads, 4)),
		llama.SetTopK(1),
	}
	go func() {
		_, err := r.model.Predict(text, po...)
		s.done <- err
		close(s.pieces)
	}()
	r.stream = s
	return nil
}

// NextToken returns the next streamed piece under a synthetic id.
func (r *Runtime) NextToken() ([]int, error) {
	s := r.stream
	if s == nil {
		return nil, errors.New("llama: NextToken before InitInputTokens")
	}
	piece, ok := <-s.pieces
	if !ok {
		r.stream = nil
		if err := <-s.done; err != nil {
			return nil, err
		}
		return nil, engine.ErrEndOfSequence
	}
	return []int{r.internPiece(piece)}, nil
}

func (r *Runtime) internPiece(piece string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.pieceID[piece]; ok {
		return id
	}
	id := pieceIDBase + len(r.pieces)
	r.pieces = append(r.pieces, piece)
	r.pieceID[piece] = id
	return id
}

// IDToPiece maps an id from NextToken back to its text.
func (r *Runtime) IDToPiece(id int) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := id - pieceIDBase
	if i < 0 || i >= len(r.pieces) {
		return "", fmt.Errorf("llama: unknown piece id %d", id)
	}
	return r.pieces[i], nil
}

// stop ends an unfinished stream and waits for Predict to return.
func (r *Runtime) stop() {
	s := r.stream
	if s == nil {
		return
	}
	r.stream = nil
	close(s.quit)
	for range s.pieces {
	}
}

// Stop ends the running prediction so the model sits idle between generations.
func (r *Runtime) Stop() { r.stop() }

// Close stops any stream and frees the model.
func (r *Runtime) Close() error {
	r.stop()
	if r.model != nil {
		r.model.Free()
		r.model = nil
	}
	return nil
}
