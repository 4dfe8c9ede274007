package trie

import (
	"sort"
	"strings"
)

// node is addressed by its index in Trie.nodes; index 0 is the root.
type node struct {
	children map[rune]int
	terminal bool
	value    string
}

// Trie indexes strings by their lowercased form and returns the original
// spelling on lookup. It is not safe for concurrent use.
type Trie struct {
	nodes []node
	count int
}

// New returns an empty trie.
func New() *Trie {
	t := &Trie{}
	t.Clear()
	return t
}

// Clear removes every key.
func (t *Trie) Clear() {
	t.nodes = []node{{children: make(map[rune]int)}}
	t.count = 0
}

// Len returns the number of distinct lowercased keys stored.
func (t *Trie) Len() int {
	return t.count
}

// Insert adds s under its lowercased path. The most recent spelling wins when
// two strings share a lowercased form. Empty strings are ignored.
func (t *Trie) Insert(s string) {
	if s == "" {
		return
	}

	cur := 0
	for _, r := range strings.ToLower(s) {
		next, ok := t.nodes[cur].children[r]
		if !ok {
			t.nodes = append(t.nodes, node{children: make(map[rune]int)})
			next = len(t.nodes) - 1
			t.nodes[cur].children[r] = next
		}
		cur = next
	}

	if !t.nodes[cur].terminal {
		t.count++
	}
	t.nodes[cur].terminal = true
	t.nodes[cur].value = s
}

// Autocomplete returns up to limit stored values whose lowercased form starts
// with the lowercased prefix. An empty prefix matches nothing.
//
// Children are visited in ascending rune order, so results come back sorted by
// their lowercased key.
func (t *Trie) Autocomplete(prefix string, limit int) []string {
	if prefix == "" || limit <= 0 {
		return nil
	}

	cur := 0
	for _, r := range strings.ToLower(prefix) {
		next, ok := t.nodes[cur].children[r]
		if !ok {
			return nil
		}
		cur = next
	}

	results := make([]string, 0, limit)
	t.collect(cur, &results, limit)
	return results
}

func (t *Trie) collect(idx int, results *[]string, limit int) {
	if len(*results) >= limit {
		return
	}

	n := &t.nodes[idx]
	if n.terminal {
		*results = append(*results, n.value)
	}

	keys := make([]rune, 0, len(n.children))
	for r := range n.children {
		keys = append(keys, r)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	for _, r := range keys {
		if len(*results) >= limit {
			return
		}
		t.collect(n.children[r], results, limit)
	}
}
