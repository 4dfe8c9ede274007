package worker

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"socialgraph/internal/cache"
	"socialgraph/internal/queue"
)

// BackfillLimit is how many of the followee's posts a new follow copies into
// the follower's feed.
const BackfillLimit = 20

// FollowerProvider returns who follows a user. The graph store satisfies it.
type FollowerProvider interface {
	Followers(userID int64) []int64
}

// RecentPostsProvider returns a user's newest post ids. The graph store
// satisfies it.
type RecentPostsProvider interface {
	RecentPosts(userID int64, limit int) []int64
}

// Handler applies graph events to the feed cache.
type Handler struct {
	feedCache        cache.FeedCache
	followerProvider FollowerProvider
	postsProvider    RecentPostsProvider
	log              *zap.Logger
}

func NewHandler(
	feedCache cache.FeedCache,
	followerProvider FollowerProvider,
	postsProvider RecentPostsProvider,
	log *zap.Logger,
) *Handler {
	return &Handler{
		feedCache:        feedCache,
		followerProvider: followerProvider,
		postsProvider:    postsProvider,
		log:              log.Named("worker"),
	}
}

// HandleEvent routes an event by type.
func (h *Handler) HandleEvent(ctx context.Context, event queue.GraphEvent) error {
	startTime := time.Now()
	var err error

	switch event.Type {
	case queue.EventPostCreated:
		err = h.handlePostCreated(ctx, event)
	case queue.EventPostDeleted:
		err = h.handlePostDeleted(ctx, event)
	case queue.EventUserFollowed:
		err = h.handleUserFollowed(ctx, event)
	case queue.EventUserDeleted:
		err = h.handleUserDeleted(ctx, event)
	default:
		return fmt.Errorf("unknown event type: %s", event.Type)
	}

	if err != nil {
		return fmt.Errorf("handle %s: %w", event.Type, err)
	}

	h.log.Debug("event handled",
		zap.String("type", event.Type),
		zap.Duration("duration", time.Since(startTime)))
	return nil
}

// handlePostCreated fans the post out to the author's followers and the author.
// A failure for one follower does not stop the rest.
func (h *Handler) handlePostCreated(ctx context.Context, event queue.GraphEvent) error {
	followers := h.followerProvider.Followers(event.AuthorID)

	var failCount int
	for _, followerID := range followers {
		if err := h.feedCache.AddPost(ctx, followerID, event.PostID); err != nil {
			h.log.Warn("fan-out failed",
				zap.Int64("user", followerID),
				zap.Int64("post", event.PostID),
				zap.Error(err))
			failCount++
		}
	}

	if err := h.feedCache.AddPost(ctx, event.AuthorID, event.PostID); err != nil {
		return fmt.Errorf("add to author feed: %w", err)
	}

	h.log.Info("post fanned out",
		zap.Int64("post", event.PostID),
		zap.Int("fanout", len(followers)+1),
		zap.Int("failed", failCount))
	return nil
}

func (h *Handler) handlePostDeleted(ctx context.Context, event queue.GraphEvent) error {
	followers := h.followerProvider.Followers(event.AuthorID)

	var failCount int
	for _, followerID := range followers {
		if err := h.feedCache.RemovePost(ctx, followerID, event.PostID); err != nil {
			h.log.Warn("feed removal failed",
				zap.Int64("user", followerID),
				zap.Int64("post", event.PostID),
				zap.Error(err))
			failCount++
		}
	}

	if err := h.feedCache.RemovePost(ctx, event.AuthorID, event.PostID); err != nil {
		return fmt.Errorf("remove from author feed: %w", err)
	}

	h.log.Info("post removed from feeds",
		zap.Int64("post", event.PostID),
		zap.Int("fanout", len(followers)+1),
		zap.Int("failed", failCount))
	return nil
}

// handleUserFollowed backfills the follower's feed with the followee's newest posts.
func (h *Handler) handleUserFollowed(ctx context.Context, event queue.GraphEvent) error {
	posts := h.postsProvider.RecentPosts(event.FolloweeID, BackfillLimit)
	if len(posts) == 0 {
		return nil
	}

	if err := h.feedCache.WarmCache(ctx, event.FollowerID, posts); err != nil {
		return fmt.Errorf("backfill: %w", err)
	}

	h.log.Info("feed backfilled",
		zap.Int64("follower", event.FollowerID),
		zap.Int64("followee", event.FolloweeID),
		zap.Int("posts", len(posts)))
	return nil
}

// handleUserDeleted drops the deleted user's own feed. Their posts left in
// other feeds are evicted when those feeds are read.
func (h *Handler) handleUserDeleted(ctx context.Context, event queue.GraphEvent) error {
	if err := h.feedCache.Drop(ctx, event.UserID); err != nil {
		return err
	}
	h.log.Info("feed dropped", zap.Int64("user", event.UserID))
	return nil
}
