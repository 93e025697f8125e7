package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
	"unicode/utf8"
)

const testStartID = 1

// runeTokenizer maps every rune to its code point, which keeps prompt lengths
// and generated pieces easy to reason about in tests.
type runeTokenizer struct {
	closed bool
}

func (t *runeTokenizer) Encode(text string) ([]int, error) {
	if !utf8.ValidString(text) {
		return nil, errors.New("invalid utf-8")
	}
	ids := make([]int, 0, len(text))
	for _, r := range text {
		ids = append(ids, int(r))
	}
	return ids, nil
}

func (t *runeTokenizer) IDToPiece(id int) (string, error) {
	if id < 0 {
		return "", errors.New("negative id")
	}
	return string(rune(id)), nil
}

func (t *runeTokenizer) Close() error {
	t.closed = true
	return nil
}

// spell returns the ids the runeTokenizer would decode back to s.
func spell(s string) []int {
	var ids []int
	for _, r := range s {
		ids = append(ids, int(r))
	}
	return ids
}

// scriptBackend replays a fixed list of ids, then repeats fill or reports
// the end of sequence.
type scriptBackend struct {
	mu      sync.Mutex
	script  []int
	fill    int
	eos     bool
	failAt  int // 1-based NextToken call that fails; 0 never
	panicAt int
	initErr error
	gate    chan struct{} // when set, each NextToken waits for a value

	inits  [][]int
	calls  int
	pos    int
	stops  int
	closed bool
}

func (b *scriptBackend) InitInputTokens(ids []int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.inits = append(b.inits, append([]int(nil), ids...))
	b.pos = 0
	return b.initErr
}

func (b *scriptBackend) NextToken() ([]int, error) {
	if b.gate != nil {
		<-b.gate
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	if b.failAt > 0 && b.calls == b.failAt {
		return nil, errors.New("backend exploded")
	}
	if b.panicAt > 0 && b.calls == b.panicAt {
		panic("kernel fault")
	}
	if b.pos < len(b.script) {
		id := b.script[b.pos]
		b.pos++
		return []int{id}, nil
	}
	if b.eos {
		return nil, ErrEndOfSequence
	}
	return []int{b.fill}, nil
}

func (b *scriptBackend) Stop() {
	b.mu.Lock()
	b.stops++
	b.mu.Unlock()
}

func (b *scriptBackend) Stops() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stops
}

func (b *scriptBackend) Close() error {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	return nil
}

func (b *scriptBackend) Calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

// forkingBackend hands every Session its own scriptBackend.
type forkingBackend struct {
	script []int
	mu     sync.Mutex
	forks  []*scriptBackend
}

func (f *forkingBackend) InitInputTokens([]int) error { return errors.New("use a fork") }
func (f *forkingBackend) NextToken() ([]int, error)   { return nil, errors.New("use a fork") }

func (f *forkingBackend) Fork() (Backend, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b := &scriptBackend{script: f.script, eos: true}
	f.forks = append(f.forks, b)
	return b, nil
}

type upperNormalizer struct{}

func (upperNormalizer) Normalize(s string) string {
	out := []rune(s)
	for i, r := range out {
		if r >= 'a' && r <= 'z' {
			out[i] = r - 'a' + 'A'
		}
	}
	return string(out)
}

// recorder collects callback responses from the worker goroutine.
type recorder struct {
	mu        sync.Mutex
	responses []*Response
	onChunk   func(*Response)
	final     chan *Response
}

func newRecorder() *recorder { return &recorder{final: make(chan *Response, 1)} }

func (r *recorder) callback(resp *Response) {
	if r.onChunk != nil {
		r.onChunk(resp)
	}
	r.mu.Lock()
	r.responses = append(r.responses, resp)
	r.mu.Unlock()
	if resp.Done {
		r.final <- resp
	}
}

func (r *recorder) wait(t *testing.T) *Response {
	t.Helper()
	select {
	case resp := <-r.final:
		return resp
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for final response")
		return nil
	}
}

func (r *recorder) text() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var s string
	for _, resp := range r.responses {
		s += resp.Text()
	}
	return s
}

func (r *recorder) doneCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, resp := range r.responses {
		if resp.Done {
			n++
		}
	}
	return n
}

func newTestEngine(t *testing.T, b Backend, settings Settings) *Engine {
	t.Helper()
	if settings.MaxTokens == 0 {
		settings.MaxTokens = 256
	}
	settings.StartTokenID = testStartID
	e, err := New(settings, Components{Tokenizer: &runeTokenizer{}, Backend: b})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return e
}

func newTestSession(t *testing.T, e *Engine) *Session {
	t.Helper()
	s, err := e.NewSession(SessionConfig{})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testCtx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return c
}
