package graph

import (
	"strings"

	"socialgraph/internal/model"
	"socialgraph/internal/moderation"
)

// SearchPosts returns ids of posts containing every token of query, ascending.
// Tokens follow the same rules as post indexing. An empty query matches
// nothing.
func (s *Store) SearchPosts(query string) []int64 {
	tokens := moderation.Tokenize(query)
	if len(tokens) == 0 {
		return []int64{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(idSet)
	for id := range s.index[tokens[0]] {
		result[id] = struct{}{}
	}
	for _, tok := range tokens[1:] {
		bucket := s.index[tok]
		for id := range result {
			if _, ok := bucket[id]; !ok {
				delete(result, id)
			}
		}
	}
	return sortedIDs(result)
}

// SearchPostsByPattern returns ids of posts whose lowercased content contains
// pattern as a substring, ascending.
func (s *Store) SearchPostsByPattern(pattern string) []int64 {
	pattern = strings.ToLower(pattern)
	if strings.TrimSpace(pattern) == "" {
		return []int64{}
	}
	matcher := moderation.NewAutomaton([]string{pattern})

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]int64, 0)
	for _, id := range sortedKeys(s.posts) {
		if matcher.Matches(strings.ToLower(s.posts[id].content)) {
			out = append(out, id)
		}
	}
	return out
}

// Autocomplete suggests usernames starting with prefix, case-insensitively.
func (s *Store) Autocomplete(prefix string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return nonNil(s.usernames.Autocomplete(prefix, model.AutocompleteLimit))
}

// AutocompletePosts suggests post keywords starting with prefix.
func (s *Store) AutocompletePosts(prefix string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return nonNil(s.keywords.Autocomplete(prefix, model.AutocompleteLimit))
}

// ModerateContent reports whether text would be rejected as a post.
func (s *Store) ModerateContent(text string) bool {
	return s.moderator.Flagged(text)
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
