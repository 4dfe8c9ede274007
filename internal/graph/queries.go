package graph

import (
	"sort"

	"socialgraph/internal/model"
)

// UserExists reports whether id is a registered user.
func (s *Store) UserExists(id int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.users[id]
	return ok
}

// Username returns the username for id.
func (s *Store) Username(id int64) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	name, ok := s.users[id]
	return name, ok
}

// Post returns a single post.
func (s *Store) Post(id int64) (model.PostInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.posts[id]
	if !ok {
		return model.PostInfo{}, false
	}
	return toPostInfo(p), true
}

// UserMetrics returns counts for a user. Unknown users get zero counts.
func (s *Store) UserMetrics(userID int64) model.UserMetrics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m := model.UserMetrics{UserID: userID}
	if _, ok := s.users[userID]; !ok {
		return m
	}

	m.Followers = len(s.followers[userID])
	m.Followings = len(s.followees[userID])
	for _, p := range s.posts {
		if p.authorID == userID {
			m.Posts++
			m.TotalLikes += len(p.likers)
		}
	}
	m.Score = s.scores[userID]
	return m
}

// Followers returns who follows userID, ascending.
func (s *Store) Followers(userID int64) []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedIDs(s.followers[userID])
}

// Followings returns who userID follows, ascending.
func (s *Store) Followings(userID int64) []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedIDs(s.followees[userID])
}

// LikedPosts returns the posts userID has liked, ascending.
func (s *Store) LikedPosts(userID int64) []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]int64, 0)
	for _, id := range sortedKeys(s.posts) {
		if _, ok := s.posts[id].likers[userID]; ok {
			out = append(out, id)
		}
	}
	return out
}

// UserPosts returns the posts authored by userID, ascending.
func (s *Store) UserPosts(userID int64) []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userPostsLocked(userID)
}

// RecentPosts returns up to limit of userID's posts, newest first.
func (s *Store) RecentPosts(userID int64, limit int) []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.userPostsLocked(userID)
	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}
	if limit >= 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids
}

func (s *Store) userPostsLocked(userID int64) []int64 {
	out := make([]int64, 0)
	for _, id := range sortedKeys(s.posts) {
		if s.posts[id].authorID == userID {
			out = append(out, id)
		}
	}
	return out
}

// Users returns one page of users in id order. Pages are 1-based; a page past
// the end is empty.
func (s *Store) Users(page, limit int) []model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := sortedKeys(s.users)
	start, end := pageBounds(len(ids), page, limit)

	out := make([]model.User, 0, end-start)
	for _, id := range ids[start:end] {
		out = append(out, model.User{ID: id, Username: s.users[id]})
	}
	return out
}

// Ranked returns one page of users by descending score. Scores come from the
// last RecomputeAnalytics; equal scores keep ascending id order.
func (s *Store) Ranked(page, limit int) []model.RankedUser {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type agg struct{ posts, likes int }
	byAuthor := make(map[int64]agg)
	for _, p := range s.posts {
		a := byAuthor[p.authorID]
		a.posts++
		a.likes += len(p.likers)
		byAuthor[p.authorID] = a
	}

	all := make([]model.RankedUser, 0, len(s.users))
	for _, id := range sortedKeys(s.users) {
		a := byAuthor[id]
		all = append(all, model.RankedUser{
			ID:         id,
			Username:   s.users[id],
			Score:      s.scores[id],
			Followers:  len(s.followers[id]),
			Followings: len(s.followees[id]),
			TotalLikes: a.likes,
			Posts:      a.posts,
		})
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Score > all[j].Score })

	start, end := pageBounds(len(all), page, limit)
	return all[start:end]
}

// TopPosts returns the most-liked posts, at most model.TopPostsLimit. Equal
// like counts keep ascending id order.
func (s *Store) TopPosts() []model.PostInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.allPostsLocked()
	sort.SliceStable(all, func(i, j int) bool { return all[i].Likes > all[j].Likes })
	if len(all) > model.TopPostsLimit {
		all = all[:model.TopPostsLimit]
	}
	return all
}

// AllPosts returns every post in ascending id order.
func (s *Store) AllPosts() []model.PostInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.allPostsLocked()
}

func (s *Store) allPostsLocked() []model.PostInfo {
	out := make([]model.PostInfo, 0, len(s.posts))
	for _, id := range sortedKeys(s.posts) {
		out = append(out, toPostInfo(s.posts[id]))
	}
	return out
}

func toPostInfo(p *post) model.PostInfo {
	return model.PostInfo{
		ID:       p.id,
		AuthorID: p.authorID,
		Likes:    len(p.likers),
		Content:  p.content,
	}
}

// pageBounds converts a 1-based page into slice bounds over n items.
func pageBounds(n, page, limit int) (int, int) {
	if limit <= 0 {
		return 0, 0
	}
	start := (page - 1) * limit
	if start < 0 {
		start = 0
	}
	if start >= n {
		return 0, 0
	}
	end := start + limit
	if end > n {
		end = n
	}
	return start, end
}
