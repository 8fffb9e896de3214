// Package moderation masks blacklisted words in chat bodies before
// they are persisted or delivered.
package moderation

import (
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

// Moderator holds a compiled Aho-Corasick automaton over the
// normalized blacklist. Matching is case-insensitive and ignores
// punctuation and spacing inside words.
type Moderator struct {
	machine  *goahocorasick.Machine
	maskRune rune
}

// NewModerator builds the automaton once at startup; Censor calls are
// then read-only and safe for concurrent use.
func NewModerator(words []string, maskRune rune) (*Moderator, error) {
	patterns := make([][]rune, 0, len(words))
	for _, w := range words {
		if norm, _ := normalize(w); len(norm) > 0 {
			patterns = append(patterns, norm)
		}
	}
	machine := new(goahocorasick.Machine)
	if err := machine.Build(patterns); err != nil {
		return nil, err
	}
	return &Moderator{machine: machine, maskRune: maskRune}, nil
}

// Censor replaces every character of a matched word with the mask rune
// while preserving the surrounding text. The boolean reports whether
// anything was masked.
func (m *Moderator) Censor(body string) (string, bool) {
	normalized, origIdx := normalize(body)
	if len(normalized) == 0 {
		return body, false
	}

	spans := m.machine.MultiPatternSearch(normalized, false)
	if len(spans) == 0 {
		return body, false
	}

	out := []rune(body)
	for _, span := range spans {
		start := span.Pos
		end := start + len(span.Word)
		if start < 0 || end > len(origIdx) {
			continue
		}
		for i := origIdx[start]; i <= origIdx[end-1]; i++ {
			out[i] = m.maskRune
		}
	}
	return string(out), true
}

// normalize lowercases the input and drops punctuation, spaces, and
// symbols, keeping a mapping from normalized positions back to the
// original rune positions so Censor can mask the right spot.
func normalize(input string) ([]rune, []int) {
	runes := []rune(input)
	norm := make([]rune, 0, len(runes))
	origIdx := make([]int, 0, len(runes))
	for i, r := range runes {
		if unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r) {
			continue
		}
		norm = append(norm, unicode.ToLower(r))
		origIdx = append(origIdx, i)
	}
	return norm, origIdx
}
