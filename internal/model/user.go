package model

import "errors"

// User is a registered account. Usernames are not unique.
type User struct {
	ID       int64  `json:"user_id"`
	Username string `json:"username"`
}

// UserMetrics is a point-in-time view of a user's activity.
// Score is the value from the last analytics recomputation.
type UserMetrics struct {
	UserID     int64   `json:"user_id"`
	Followers  int     `json:"followers"`
	Followings int     `json:"followings"`
	Posts      int     `json:"posts"`
	TotalLikes int     `json:"total_likes"`
	Score      float64 `json:"score"`
}

// RankedUser is one row of the score leaderboard.
type RankedUser struct {
	ID         int64   `json:"user_id"`
	Username   string  `json:"username"`
	Score      float64 `json:"score"`
	Followers  int     `json:"followers"`
	Followings int     `json:"followings"`
	TotalLikes int     `json:"total_likes"`
	Posts      int     `json:"posts"`
}

// Analytics score weights.
const (
	FollowerWeight  = 3.0
	LikeWeight      = 2.0
	FollowingWeight = 1.0
	PostWeight      = 0.5
)

// ActivityScore is the weighted activity score used for ranking.
func ActivityScore(followers, totalLikes, followings, posts int) float64 {
	return FollowerWeight*float64(followers) +
		LikeWeight*float64(totalLikes) +
		FollowingWeight*float64(followings) +
		PostWeight*float64(posts)
}

// MaxUsernameLength caps usernames accepted by the API.
const MaxUsernameLength = 64

var (
	// ErrUserNotFound is returned when a user id is not registered
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidUsername is returned for empty, oversized or multi-line usernames
	ErrInvalidUsername = errors.New("invalid username")

	// ErrInvalidID is returned when an id is not a strictly positive integer
	ErrInvalidID = errors.New("id must be a positive integer")
)
