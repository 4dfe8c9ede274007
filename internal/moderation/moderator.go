package moderation

import (
	"strings"
	"unicode"
)

// DefaultDenylist is used when no denylist file is configured.
var DefaultDenylist = []string{"badword", "vulgar", "shit", "fuck", "bitch", "asshole", "damn", "crap"}

// Moderator flags text containing any denylisted pattern.
//
// It scans three views of the input: the lowercased text, every alphanumeric
// token on its own, and the letters-only concatenation (so "s.h.i.t" and
// "s h 1 t" style separators are caught). Matching is plain substring
// matching: "scrap" is flagged because it contains "crap".
type Moderator struct {
	automaton *Automaton
}

// NewModerator compiles the denylist. Patterns are lowercased.
func NewModerator(denylist []string) *Moderator {
	patterns := make([]string, 0, len(denylist))
	for _, p := range denylist {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			patterns = append(patterns, p)
		}
	}
	return &Moderator{automaton: NewAutomaton(patterns)}
}

// Patterns returns how many patterns the moderator checks.
func (m *Moderator) Patterns() int {
	return m.automaton.Len()
}

// Flagged reports whether text should be rejected.
func (m *Moderator) Flagged(text string) bool {
	low := strings.ToLower(text)
	if m.automaton.Matches(low) {
		return true
	}

	for _, tok := range Tokenize(low) {
		if m.automaton.Matches(tok) {
			return true
		}
	}

	var letters strings.Builder
	letters.Grow(len(low))
	for _, r := range low {
		if unicode.IsLetter(r) {
			letters.WriteRune(r)
		}
	}
	return m.automaton.Matches(letters.String())
}

// Tokenize splits s into maximal runs of letters and digits, lowercased.
// Posts, search queries and the moderator share this definition of a token.
func Tokenize(s string) []string {
	var (
		out []string
		cur strings.Builder
	)
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			cur.WriteRune(unicode.ToLower(r))
			continue
		}
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}
