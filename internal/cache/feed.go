package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	FeedCachePrefix = "feed:user:"

	// FeedCacheCap is the maximum number of posts kept per user
	FeedCacheCap = 500

	FeedCacheTTL = 7 * 24 * time.Hour
)

// FeedCache holds each user's feed as post ids. Post ids are assigned in
// increasing order, so they double as the recency score.
type FeedCache interface {
	// AddPost inserts a post, trims the feed to FeedCacheCap and refreshes the TTL.
	AddPost(ctx context.Context, userID, postID int64) error

	RemovePost(ctx context.Context, userID, postID int64) error

	// GetFeed returns up to limit post ids, newest first. A non-nil cursor
	// restricts the page to ids strictly below it.
	GetFeed(ctx context.Context, userID int64, cursor *int64, limit int) ([]int64, error)

	// WarmCache bulk-inserts posts.
	WarmCache(ctx context.Context, userID int64, postIDs []int64) error

	// Drop deletes the user's feed entirely.
	Drop(ctx context.Context, userID int64) error

	Size(ctx context.Context, userID int64) (int64, error)

	// Exists reports whether the user has a feed key (false when expired).
	Exists(ctx context.Context, userID int64) (bool, error)
}

// RedisFeedCache implements FeedCache using Redis sorted sets.
type RedisFeedCache struct {
	client *redis.Client
	log    *zap.Logger
}

func NewFeedCache(client *redis.Client, log *zap.Logger) FeedCache {
	return &RedisFeedCache{client: client, log: log.Named("feed_cache")}
}

func feedKey(userID int64) string {
	return fmt.Sprintf("%s%d", FeedCachePrefix, userID)
}

func member(postID int64) redis.Z {
	return redis.Z{Score: float64(postID), Member: strconv.FormatInt(postID, 10)}
}

// AddPost pipelines ZADD, ZREMRANGEBYRANK and EXPIRE.
func (c *RedisFeedCache) AddPost(ctx context.Context, userID, postID int64) error {
	key := feedKey(userID)

	pipe := c.client.Pipeline()
	pipe.ZAdd(ctx, key, member(postID))
	// rank 0 is the oldest; keep the top FeedCacheCap
	pipe.ZRemRangeByRank(ctx, key, 0, int64(-FeedCacheCap-1))
	pipe.Expire(ctx, key, FeedCacheTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("add post to feed: %w", err)
	}

	c.log.Debug("feed add", zap.Int64("user", userID), zap.Int64("post", postID))
	return nil
}

func (c *RedisFeedCache) RemovePost(ctx context.Context, userID, postID int64) error {
	removed, err := c.client.ZRem(ctx, feedKey(userID), strconv.FormatInt(postID, 10)).Result()
	if err != nil {
		return fmt.Errorf("remove post from feed: %w", err)
	}

	c.log.Debug("feed remove",
		zap.Int64("user", userID),
		zap.Int64("post", postID),
		zap.Int64("removed", removed))
	return nil
}

func (c *RedisFeedCache) GetFeed(ctx context.Context, userID int64, cursor *int64, limit int) ([]int64, error) {
	if limit <= 0 {
		return []int64{}, nil
	}

	key := feedKey(userID)
	startTime := time.Now()

	var (
		members []string
		err     error
	)
	if cursor == nil {
		members, err = c.client.ZRevRange(ctx, key, 0, int64(limit-1)).Result()
	} else {
		members, err = c.client.ZRevRangeByScore(ctx, key, &redis.ZRangeBy{
			Min:   "-inf",
			Max:   "(" + strconv.FormatInt(*cursor, 10),
			Count: int64(limit),
		}).Result()
	}
	if err != nil {
		return nil, fmt.Errorf("get feed: %w", err)
	}

	c.client.Expire(ctx, key, FeedCacheTTL)

	postIDs := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse post id %q: %w", m, err)
		}
		postIDs = append(postIDs, id)
	}

	c.log.Debug("feed read",
		zap.Int64("user", userID),
		zap.Int("returned", len(postIDs)),
		zap.Duration("duration", time.Since(startTime)))
	return postIDs, nil
}

func (c *RedisFeedCache) WarmCache(ctx context.Context, userID int64, postIDs []int64) error {
	if len(postIDs) == 0 {
		return nil
	}

	key := feedKey(userID)
	members := make([]redis.Z, len(postIDs))
	for i, id := range postIDs {
		members[i] = member(id)
	}

	pipe := c.client.Pipeline()
	pipe.ZAdd(ctx, key, members...)
	pipe.ZRemRangeByRank(ctx, key, 0, int64(-FeedCacheCap-1))
	pipe.Expire(ctx, key, FeedCacheTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("warm cache: %w", err)
	}

	c.log.Debug("feed warmed", zap.Int64("user", userID), zap.Int("posts", len(postIDs)))
	return nil
}

func (c *RedisFeedCache) Drop(ctx context.Context, userID int64) error {
	if err := c.client.Del(ctx, feedKey(userID)).Err(); err != nil {
		return fmt.Errorf("drop feed: %w", err)
	}
	return nil
}

func (c *RedisFeedCache) Size(ctx context.Context, userID int64) (int64, error) {
	size, err := c.client.ZCard(ctx, feedKey(userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("get cache size: %w", err)
	}
	return size, nil
}

func (c *RedisFeedCache) Exists(ctx context.Context, userID int64) (bool, error) {
	n, err := c.client.Exists(ctx, feedKey(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("check cache exists: %w", err)
	}
	return n > 0, nil
}
