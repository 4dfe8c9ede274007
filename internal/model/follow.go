package model

import "errors"

// Interaction types accepted by the interaction endpoint.
const (
	InteractionFollow = "follow"
	InteractionLike   = "like"
)

// Community is a group of users with overlapping followee sets.
// ID is the union-find representative of the group.
type Community struct {
	ID      int64   `json:"community_id"`
	Members []int64 `json:"members"`
}

// Graph query limits
const (
	RecommendationLimit  = 10
	AutocompleteLimit    = 10
	CommunityJaccardCut  = 0.1
	CommunityForestSlack = 5
)

var (
	// ErrNotFollowingAuthor is returned when a like is attempted by a user who
	// does not follow the post's author.
	ErrNotFollowingAuthor = errors.New("user must follow author to like their posts")

	ErrInvalidInteraction = errors.New("bad interaction type")
)
