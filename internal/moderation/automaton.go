package moderation

// acNode is addressed by its index in Automaton.nodes; index 0 is the root.
type acNode struct {
	children map[rune]int
	fail     int
	match    bool
	pattern  string
}

// Automaton is an Aho-Corasick matcher built once over a fixed pattern set.
// After construction it is read-only and safe for concurrent use.
type Automaton struct {
	nodes    []acNode
	patterns int
}

// NewAutomaton compiles patterns into a matcher. Empty patterns are ignored.
// Patterns are matched rune for rune, so callers lowercase both sides.
func NewAutomaton(patterns []string) *Automaton {
	a := &Automaton{nodes: []acNode{{children: make(map[rune]int)}}}
	for _, p := range patterns {
		a.add(p)
	}
	a.build()
	return a
}

// Len returns the number of patterns compiled in.
func (a *Automaton) Len() int {
	return a.patterns
}

func (a *Automaton) add(pattern string) {
	if pattern == "" {
		return
	}

	cur := 0
	for _, r := range pattern {
		next, ok := a.nodes[cur].children[r]
		if !ok {
			a.nodes = append(a.nodes, acNode{children: make(map[rune]int)})
			next = len(a.nodes) - 1
			a.nodes[cur].children[r] = next
		}
		cur = next
	}
	a.nodes[cur].match = true
	a.nodes[cur].pattern = pattern
	a.patterns++
}

// build computes failure links breadth first. A node's failure target is the
// deepest proper suffix of its path that is also a trie path; match status is
// inherited along failure links so shorter patterns ending inside longer ones
// are still reported.
func (a *Automaton) build() {
	queue := make([]int, 0, len(a.nodes))
	for _, child := range a.nodes[0].children {
		a.nodes[child].fail = 0
		queue = append(queue, child)
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for r, child := range a.nodes[cur].children {
			queue = append(queue, child)

			f := a.nodes[cur].fail
			for f != 0 {
				if _, ok := a.nodes[f].children[r]; ok {
					break
				}
				f = a.nodes[f].fail
			}

			target := 0
			if next, ok := a.nodes[f].children[r]; ok && next != child {
				target = next
			}
			a.nodes[child].fail = target

			if a.nodes[target].match {
				a.nodes[child].match = true
				if a.nodes[child].pattern == "" {
					a.nodes[child].pattern = a.nodes[target].pattern
				}
			}
		}
	}
}

// step advances from state cur on rune r.
func (a *Automaton) step(cur int, r rune) int {
	for cur != 0 {
		if _, ok := a.nodes[cur].children[r]; ok {
			break
		}
		cur = a.nodes[cur].fail
	}
	if next, ok := a.nodes[cur].children[r]; ok {
		return next
	}
	return 0
}

// FindAll scans text once and returns the pattern reported at every position
// where a match ends.
func (a *Automaton) FindAll(text string) []string {
	if a.patterns == 0 {
		return nil
	}

	var matches []string
	cur := 0
	for _, r := range text {
		cur = a.step(cur, r)
		if a.nodes[cur].match {
			matches = append(matches, a.nodes[cur].pattern)
		}
	}
	return matches
}

// Matches reports whether any pattern occurs in text.
func (a *Automaton) Matches(text string) bool {
	if a.patterns == 0 {
		return false
	}

	cur := 0
	for _, r := range text {
		cur = a.step(cur, r)
		if a.nodes[cur].match {
			return true
		}
	}
	return false
}
