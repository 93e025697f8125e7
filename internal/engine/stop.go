package engine

import (
	"strings"
	"unicode/utf8"
)

// defaultLookahead is the number of trailing bytes held back from flushing so
// that a stop sequence arriving across token boundaries is never split.
const defaultLookahead = 10

// lookaheadFor widens the window when a configured stop sequence would not
// fit in the default one.
func lookaheadFor(stops []string) int {
	n := defaultLookahead
	for _, s := range stops {
		if len(s)-1 > n {
			n = len(s) - 1
		}
	}
	return n
}

// matchStop returns the start index of the earliest stop sequence in text.
// Ties on the same index go to the sequence configured first.
func matchStop(text string, stops []string) (int, bool) {
	best := -1
	for _, s := range stops {
		if s == "" {
			continue
		}
		i := strings.Index(text, s)
		if i < 0 {
			continue
		}
		if best < 0 || i < best {
			best = i
		}
	}
	return best, best >= 0
}

// splitReady splits buf into the part that may be flushed and the tail that
// must stay buffered. Nothing is flushed until buf is longer than keep, and
// the cut never lands inside a multi-byte rune.
func splitReady(buf string, keep int) (ready, tail string) {
	if len(buf) <= keep {
		return "", buf
	}
	cut := len(buf) - keep
	for cut > 0 && !utf8.RuneStart(buf[cut]) {
		cut--
	}
	return buf[:cut], buf[cut:]
}
