package service

import (
	"socialgraph/internal/model"
)

// Paging defaults for the list endpoints.
const (
	DefaultUsersPageSize  = 10
	DefaultRankedPageSize = 5
	MaxPageSize           = 100
)

func (s *GraphService) ListUsers(page, limit int) []model.User {
	page, limit = normalizePage(page, limit, DefaultUsersPageSize)
	return s.store.Users(page, limit)
}

func (s *GraphService) RankedUsers(page, limit int) []model.RankedUser {
	page, limit = normalizePage(page, limit, DefaultRankedPageSize)
	return s.store.Ranked(page, limit)
}

// UserMetrics returns ErrUserNotFound for unknown ids rather than zero counts.
func (s *GraphService) UserMetrics(userID int64) (model.UserMetrics, error) {
	if !s.store.UserExists(userID) {
		return model.UserMetrics{}, model.ErrUserNotFound
	}
	return s.store.UserMetrics(userID), nil
}

func (s *GraphService) Followers(userID int64) []int64  { return s.store.Followers(userID) }
func (s *GraphService) Followings(userID int64) []int64 { return s.store.Followings(userID) }
func (s *GraphService) LikedPosts(userID int64) []int64 { return s.store.LikedPosts(userID) }
func (s *GraphService) UserPosts(userID int64) []int64  { return s.store.UserPosts(userID) }

func (s *GraphService) TopPosts() []model.PostInfo { return s.store.TopPosts() }
func (s *GraphService) AllPosts() []model.PostInfo { return s.store.AllPosts() }

func (s *GraphService) ShortestPath(from, to int64) []int64 {
	return s.store.ShortestPath(from, to)
}

func (s *GraphService) Recommendations(userID int64) []int64 {
	return s.store.Recommendations(userID)
}

func (s *GraphService) Communities() []model.Community { return s.store.Communities() }

func (s *GraphService) CommunityMembers(id int64) []int64 {
	return s.store.CommunityMembers(id)
}

func (s *GraphService) SearchPosts(query string) []int64 { return s.store.SearchPosts(query) }

func (s *GraphService) SearchPostsByPattern(pattern string) []int64 {
	return s.store.SearchPostsByPattern(pattern)
}

func (s *GraphService) AutocompleteUsers(prefix string) []string {
	return s.store.Autocomplete(prefix)
}

func (s *GraphService) AutocompletePosts(prefix string) []string {
	return s.store.AutocompletePosts(prefix)
}

// DurabilityErrors is the number of swallowed journal failures.
func (s *GraphService) DurabilityErrors() int64 { return s.store.DurabilityErrors() }

func normalizePage(page, limit, defaultLimit int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}
