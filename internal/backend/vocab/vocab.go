// Package vocab implements a pure-Go greedy longest-match tokenizer over a
// fixed piece vocabulary, in the SentencePiece style where a space is encoded
// as the meta symbol "▁".
package vocab

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	json "github.com/goccy/go-json"
)

// MetaSpace replaces ASCII spaces in pieces.
const MetaSpace = "▁"

// file accepts either {"pieces": [...], "unk_id": n} or the Hugging Face
// tokenizer.json layout {"model": {"vocab": {"piece": id}, "unk_id": n}}.
type file struct {
	Pieces []string `json:"pieces"`
	UnkID  *int     `json:"unk_id"`
	Model  *struct {
		Vocab map[string]int `json:"vocab"`
		UnkID *int           `json:"unk_id"`
	} `json:"model"`
}

// Tokenizer is safe for concurrent use; it is read-only after construction.
type Tokenizer struct {
	pieces []string
	ids    map[string]int
	unk    int // negative: unknown text is an error
	maxLen int
}

// Load reads a vocabulary file.
func Load(path string) (*Tokenizer, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f file
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse vocabulary %s: %w", path, err)
	}
	unk := -1
	switch {
	case len(f.Pieces) > 0:
		if f.UnkID != nil {
			unk = *f.UnkID
		}
		return New(f.Pieces, unk)
	case f.Model != nil && len(f.Model.Vocab) > 0:
		if f.Model.UnkID != nil {
			unk = *f.Model.UnkID
		}
		pieces := make([]string, len(f.Model.Vocab))
		for p, id := range f.Model.Vocab {
			if id < 0 || id >= len(pieces) {
				return nil, fmt.Errorf("vocabulary id %d out of range for %q", id, p)
			}
			pieces[id] = p
		}
		return New(pieces, unk)
	default:
		return nil, fmt.Errorf("vocabulary %s has no pieces", path)
	}
}

// New builds a Tokenizer where pieces[i] has id i. Empty pieces are holes
// that never match. unk < 0 disables the unknown fallback.
func New(pieces []string, unk int) (*Tokenizer, error) {
	if unk >= len(pieces) {
		return nil, fmt.Errorf("unk id %d outside vocabulary of %d", unk, len(pieces))
	}
	t := &Tokenizer{pieces: pieces, ids: make(map[string]int, len(pieces)), unk: unk}
	for id, p := range pieces {
		if p == "" {
			continue
		}
		if _, dup := t.ids[p]; dup {
			continue
		}
		t.ids[p] = id
		if len(p) > t.maxLen {
			t.maxLen = len(p)
		}
	}
	return t, nil
}

// Size returns the number of ids.
func (t *Tokenizer) Size() int { return len(t.pieces) }

// Encode splits text into the longest matching pieces from left to right.
func (t *Tokenizer) Encode(text string) ([]int, error) {
	if !utf8.ValidString(text) {
		return nil, fmt.Errorf("input is not valid UTF-8")
	}
	s := strings.ReplaceAll(text, " ", MetaSpace)
	ids := make([]int, 0, len(s)/2+1)
	for i := 0; i < len(s); {
		n := min(t.maxLen, len(s)-i)
		matched := false
		for ; n > 0; n-- {
			if id, ok := t.ids[s[i:i+n]]; ok {
				ids = append(ids, id)
				i += n
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if t.unk < 0 {
			return nil, fmt.Errorf("no vocabulary piece for %q at byte %d", r, i)
		}
		ids = append(ids, t.unk)
		i += size
	}
	return ids, nil
}

// IDToPiece returns the raw piece for id, meta spaces included.
func (t *Tokenizer) IDToPiece(id int) (string, error) {
	if id < 0 || id >= len(t.pieces) {
		return "", fmt.Errorf("token id %d outside vocabulary of %d", id, len(t.pieces))
	}
	return t.pieces[id], nil
}
