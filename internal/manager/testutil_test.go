package manager

import (
	"errors"
	"sync"
	"testing"

	"genai/internal/engine"
)

// byteTokenizer maps every byte to its value.
type byteTokenizer struct{}

func (byteTokenizer) Encode(text string) ([]int, error) {
	if text == "\xff" {
		return nil, errors.New("bad input")
	}
	ids := make([]int, len(text))
	for i := 0; i < len(text); i++ {
		ids[i] = int(text[i])
	}
	return ids, nil
}

func (byteTokenizer) IDToPiece(id int) (string, error) { return string(rune(id)), nil }

// fakeBackend spells text, then ends the sequence. It forks so parallel
// sessions do not share a cursor.
type fakeBackend struct {
	text   string
	failAt int
	gate   chan struct{}

	mu  sync.Mutex
	pos int
}

func (f *fakeBackend) Fork() (engine.Backend, error) {
	return &fakeBackend{text: f.text, failAt: f.failAt, gate: f.gate}, nil
}

func (f *fakeBackend) InitInputTokens([]int) error {
	f.mu.Lock()
	f.pos = 0
	f.mu.Unlock()
	return nil
}

func (f *fakeBackend) NextToken() ([]int, error) {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAt > 0 && f.pos == f.failAt {
		return nil, errors.New("device lost")
	}
	if f.pos >= len(f.text) {
		return nil, engine.ErrEndOfSequence
	}
	c := f.text[f.pos]
	f.pos++
	return []int{int(c)}, nil
}

func newTestManager(t *testing.T, b engine.Backend, cfg ManagerConfig, stops ...string) *Manager {
	t.Helper()
	e, err := engine.New(engine.Settings{StopSequences: stops, MaxTokens: 128}, engine.Components{
		Tokenizer: byteTokenizer{},
		Backend:   b,
	})
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	cfg.Engine = e
	return NewWithConfig(cfg)
}
