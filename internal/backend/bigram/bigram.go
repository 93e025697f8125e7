// Package bigram is a pure-Go greedy bigram language model. It serves as the
// default CPU backend and as a deterministic model for tests and demos.
package bigram

import (
	"fmt"
	"os"
	"strconv"
	"sync"

	json "github.com/goccy/go-json"

	"genai/internal/engine"
)

// Edge is one weighted transition.
type Edge struct {
	To     int     `json:"to"`
	Weight float64 `json:"weight"`
}

// File is the on-disk JSON model format. Transitions are keyed by the decimal
// previous-token id. Default is used for ids without outgoing edges; a
// negative Default with no edges ends the sequence. EOSID is optional: when
// absent or negative only a negative successor ends the sequence.
type File struct {
	EOSID       *int              `json:"eos_id,omitempty"`
	Default     int               `json:"default"`
	Transitions map[string][]Edge `json:"transitions"`
}

// Table is the parsed, read-only model shared by all streams.
type Table struct {
	eos  int // -1 when the model has no EOS token
	def  int
	next map[int]int
}

// Load reads a bigram model file.
func Load(path string) (*Table, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse bigram model %s: %w", path, err)
	}
	return FromFile(f)
}

// FromFile builds a Table, resolving each row to its highest-weight edge.
// Ties go to the edge listed first.
func FromFile(f File) (*Table, error) {
	t := &Table{eos: -1, def: f.Default, next: make(map[int]int, len(f.Transitions))}
	if f.EOSID != nil && *f.EOSID >= 0 {
		t.eos = *f.EOSID
	}
	for k, edges := range f.Transitions {
		from, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("transition key %q is not a token id", k)
		}
		if len(edges) == 0 {
			continue
		}
		best := edges[0]
		for _, e := range edges[1:] {
			if e.Weight > best.Weight {
				best = e
			}
		}
		t.next[from] = best.To
	}
	return t, nil
}

func (t *Table) successor(prev int) int {
	if to, ok := t.next[prev]; ok {
		return to
	}
	return t.def
}

// Model is an engine.Backend and engine.Forker over a Table.
type Model struct {
	table *Table

	mu     sync.Mutex
	last   int
	primed bool
}

// New returns a Model reading from table.
func New(table *Table) *Model { return &Model{table: table} }

// Fork opens an independent stream sharing the table.
func (m *Model) Fork() (engine.Backend, error) { return New(m.table), nil }

// InitInputTokens remembers the last prompt token as decode context.
func (m *Model) InitInputTokens(ids []int) error {
	if len(ids) == 0 {
		return fmt.Errorf("bigram: empty input")
	}
	m.mu.Lock()
	m.last = ids[len(ids)-1]
	m.primed = true
	m.mu.Unlock()
	return nil
}

// NextToken returns the greedy successor of the previous token.
func (m *Model) NextToken() ([]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.primed {
		return nil, fmt.Errorf("bigram: NextToken before InitInputTokens")
	}
	next := m.table.successor(m.last)
	if next < 0 || next == m.table.eos {
		return nil, engine.ErrEndOfSequence
	}
	m.last = next
	return []int{next}, nil
}
