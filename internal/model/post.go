package model

import "errors"

// PostInfo is the read model of a post.
type PostInfo struct {
	ID       int64  `json:"post_id"`
	AuthorID int64  `json:"user_id"`
	Likes    int    `json:"likes"`
	Content  string `json:"content"`
}

// FeedResponse is a page of a user's feed.
type FeedResponse struct {
	Posts      []PostInfo `json:"posts"`
	NextCursor *int64     `json:"next_cursor,omitempty"`
	HasMore    bool       `json:"has_more"`
}

// Post constants
const (
	TopPostsLimit        = 10
	MaxPostContentLength = 2200
)

// Post errors
var (
	ErrPostNotFound = errors.New("post not found")

	// ErrContentFlagged is returned when moderation rejects post content.
	ErrContentFlagged = errors.New("post flagged for containing vulgar language")

	ErrInvalidContent = errors.New("invalid post content")
)
