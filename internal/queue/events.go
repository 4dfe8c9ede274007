package queue

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// Event types on the graph stream
const (
	EventPostCreated  = "post_created"
	EventPostDeleted  = "post_deleted"
	EventUserFollowed = "user_followed"
	EventUserDeleted  = "user_deleted"
)

const (
	StreamGraph = "stream:graph"

	// ConsumerGroupFeed is the group the feed workers read through.
	ConsumerGroupFeed = "feed_workers"
)

// GraphEvent is a graph mutation announced to stream consumers after the store
// has applied it.
type GraphEvent struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`

	// post events
	PostID   int64 `json:"post_id,omitempty"`
	AuthorID int64 `json:"author_id,omitempty"`

	// follow events
	FollowerID int64 `json:"follower_id,omitempty"`
	FolloweeID int64 `json:"followee_id,omitempty"`

	// user events
	UserID int64 `json:"user_id,omitempty"`
}

func NewPostCreatedEvent(postID, authorID int64) GraphEvent {
	return GraphEvent{
		Type:      EventPostCreated,
		Timestamp: time.Now().Unix(),
		PostID:    postID,
		AuthorID:  authorID,
	}
}

func NewPostDeletedEvent(postID, authorID int64) GraphEvent {
	return GraphEvent{
		Type:      EventPostDeleted,
		Timestamp: time.Now().Unix(),
		PostID:    postID,
		AuthorID:  authorID,
	}
}

func NewUserFollowedEvent(followerID, followeeID int64) GraphEvent {
	return GraphEvent{
		Type:       EventUserFollowed,
		Timestamp:  time.Now().Unix(),
		FollowerID: followerID,
		FolloweeID: followeeID,
	}
}

func NewUserDeletedEvent(userID int64) GraphEvent {
	return GraphEvent{
		Type:      EventUserDeleted,
		Timestamp: time.Now().Unix(),
		UserID:    userID,
	}
}

// ToMap converts the event to XADD field-value pairs. The full event is JSON in
// the "data" field; "type" is duplicated for XRANGE readability.
func (e GraphEvent) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"type": e.Type,
		"data": string(data),
	}, nil
}

// ParseGraphEvent decodes a GraphEvent from stream message values.
func ParseGraphEvent(values map[string]interface{}) (GraphEvent, error) {
	data, ok := values["data"].(string)
	if !ok {
		return GraphEvent{}, fmt.Errorf("missing or invalid 'data' field")
	}

	var event GraphEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return GraphEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}
