// Package normalize post-processes decoded pieces before they reach the
// output buffer.
package normalize

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"genai/internal/engine"
)

const metaSpace = "▁"

// NFKC applies Unicode NFKC normalization and maps the SentencePiece meta
// space to an ASCII space.
type NFKC struct{}

func (NFKC) Normalize(s string) string {
	s = strings.ReplaceAll(s, metaSpace, " ")
	if norm.NFKC.IsNormalString(s) {
		return s
	}
	return norm.NFKC.String(s)
}

// ByName returns the normalizer for a configured name; ok is false for
// unknown names. The empty name yields a nil normalizer.
func ByName(name string) (engine.Normalizer, bool) {
	switch strings.ToLower(name) {
	case "":
		return nil, true
	case "nfkc":
		return NFKC{}, true
	default:
		return nil, false
	}
}
