package graph

import "socialgraph/internal/model"

// RecomputeAnalytics recomputes every user's activity score from scratch.
// Mutators do not call it; the service layer does after each mutation.
func (s *Store) RecomputeAnalytics() {
	s.mu.Lock()
	defer s.mu.Unlock()

	type agg struct{ posts, likes int }
	byAuthor := make(map[int64]agg, len(s.users))
	for _, p := range s.posts {
		a := byAuthor[p.authorID]
		a.posts++
		a.likes += len(p.likers)
		byAuthor[p.authorID] = a
	}

	scores := make(map[int64]float64, len(s.users))
	for id := range s.users {
		a := byAuthor[id]
		scores[id] = model.ActivityScore(len(s.followers[id]), a.likes, len(s.followees[id]), a.posts)
	}
	s.scores = scores
}
