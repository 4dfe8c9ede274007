package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"socialgraph/internal/cache"
	"socialgraph/internal/model"
	"socialgraph/internal/worker"
)

const (
	FeedDefaultLimit = 20
	FeedMaxLimit     = 50

	// feedReadRounds bounds how many cache pages one request scans while
	// skipping posts that no longer exist.
	feedReadRounds = 5
)

// FeedSource is the read side of the graph the feed needs. The graph store
// satisfies it.
type FeedSource interface {
	UserExists(userID int64) bool
	Followings(userID int64) []int64
	RecentPosts(userID int64, limit int) []int64
	Post(postID int64) (model.PostInfo, bool)
}

type FeedService struct {
	feedCache cache.FeedCache
	source    FeedSource
	log       *zap.Logger
}

func NewFeedService(feedCache cache.FeedCache, source FeedSource, log *zap.Logger) *FeedService {
	return &FeedService{
		feedCache: feedCache,
		source:    source,
		log:       log.Named("feed_service"),
	}
}

// GetFeed returns one page of userID's feed, newest first. cursor is the last
// post id of the previous page.
//
// A missing cache key (new user or expired TTL) is warmed from the graph
// first. Cached ids whose post has since been deleted are evicted as they are
// read.
func (s *FeedService) GetFeed(ctx context.Context, userID int64, cursor *int64, limit int) (*model.FeedResponse, error) {
	startTime := time.Now()

	if !s.source.UserExists(userID) {
		return nil, model.ErrUserNotFound
	}
	if limit <= 0 {
		limit = FeedDefaultLimit
	}
	if limit > FeedMaxLimit {
		limit = FeedMaxLimit
	}

	exists, err := s.feedCache.Exists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("check feed cache: %w", err)
	}
	if !exists {
		if err := s.warmCache(ctx, userID); err != nil {
			s.log.Warn("feed warm failed", zap.Int64("user", userID), zap.Error(err))
		}
	}

	posts := make([]model.PostInfo, 0, limit)
	var evicted int
	for round := 0; round < feedReadRounds && len(posts) < limit; round++ {
		want := limit - len(posts)
		ids, err := s.feedCache.GetFeed(ctx, userID, cursor, want)
		if err != nil {
			return nil, fmt.Errorf("read feed cache: %w", err)
		}

		for _, id := range ids {
			id := id
			cursor = &id
			if p, ok := s.source.Post(id); ok {
				posts = append(posts, p)
				continue
			}
			evicted++
			if err := s.feedCache.RemovePost(ctx, userID, id); err != nil {
				s.log.Warn("evict stale post failed", zap.Int64("post", id), zap.Error(err))
			}
		}
		if len(ids) < want {
			break
		}
	}

	resp := &model.FeedResponse{Posts: posts, HasMore: len(posts) == limit}
	if resp.HasMore {
		next := posts[len(posts)-1].ID
		resp.NextCursor = &next
	}

	s.log.Debug("feed served",
		zap.Int64("user", userID),
		zap.Int("posts", len(posts)),
		zap.Int("evicted", evicted),
		zap.Duration("duration", time.Since(startTime)))
	return resp, nil
}

// warmCache rebuilds a feed from the user's own posts and the newest posts of
// everyone they follow.
func (s *FeedService) warmCache(ctx context.Context, userID int64) error {
	ids := s.source.RecentPosts(userID, worker.BackfillLimit)
	for _, followee := range s.source.Followings(userID) {
		ids = append(ids, s.source.RecentPosts(followee, worker.BackfillLimit)...)
	}
	if len(ids) == 0 {
		return nil
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })
	if len(ids) > cache.FeedCacheCap {
		ids = ids[:cache.FeedCacheCap]
	}
	return s.feedCache.WarmCache(ctx, userID, ids)
}
