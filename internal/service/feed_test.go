package service

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"socialgraph/internal/graph"
	"socialgraph/internal/model"
)

// memFeedCache is an in-process cache.FeedCache.
type memFeedCache struct {
	mu     sync.Mutex
	feeds  map[int64]map[int64]struct{}
	warmed int
}

func newMemFeedCache() *memFeedCache {
	return &memFeedCache{feeds: make(map[int64]map[int64]struct{})}
}

func (c *memFeedCache) AddPost(ctx context.Context, userID, postID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.feeds[userID] == nil {
		c.feeds[userID] = make(map[int64]struct{})
	}
	c.feeds[userID][postID] = struct{}{}
	return nil
}

func (c *memFeedCache) RemovePost(ctx context.Context, userID, postID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.feeds[userID], postID)
	return nil
}

func (c *memFeedCache) GetFeed(ctx context.Context, userID int64, cursor *int64, limit int) ([]int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var ids []int64
	for id := range c.feeds[userID] {
		if cursor == nil || id < *cursor {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

func (c *memFeedCache) WarmCache(ctx context.Context, userID int64, postIDs []int64) error {
	c.mu.Lock()
	c.warmed++
	c.mu.Unlock()
	for _, id := range postIDs {
		_ = c.AddPost(ctx, userID, id)
	}
	return nil
}

func (c *memFeedCache) Drop(ctx context.Context, userID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.feeds, userID)
	return nil
}

func (c *memFeedCache) Size(ctx context.Context, userID int64) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return int64(len(c.feeds[userID])), nil
}

func (c *memFeedCache) Exists(ctx context.Context, userID int64) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.feeds[userID]
	return ok, nil
}

func feedIDs(resp *model.FeedResponse) []int64 {
	var ids []int64
	for _, p := range resp.Posts {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestGetFeed_WarmsAndPaginates(t *testing.T) {
	store := graph.New(graph.Options{})
	store.AddUser("reader")
	store.AddUser("writer")
	store.AddUser("stranger")
	store.AddFollow(1, 2)
	for _, author := range []int64{2, 3, 1, 2, 3} {
		_, err := store.AddPost(author, "post")
		require.NoError(t, err)
	}
	// posts: 1(w) 2(s) 3(r) 4(w) 5(s)

	feeds := newMemFeedCache()
	svc := NewFeedService(feeds, store, zap.NewNop())
	ctx := context.Background()

	first, err := svc.GetFeed(ctx, 1, nil, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 3}, feedIDs(first))
	assert.True(t, first.HasMore)
	require.NotNil(t, first.NextCursor)
	assert.Equal(t, int64(3), *first.NextCursor)

	second, err := svc.GetFeed(ctx, 1, first.NextCursor, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, feedIDs(second))
	assert.False(t, second.HasMore)
	assert.Nil(t, second.NextCursor)

	assert.Equal(t, 1, feeds.warmed, "cache is warmed once")
}

func TestGetFeed_EvictsDeletedPosts(t *testing.T) {
	store := graph.New(graph.Options{})
	store.AddUser("reader")
	store.AddUser("writer")
	store.AddFollow(1, 2)
	for i := 0; i < 4; i++ {
		_, err := store.AddPost(2, "post")
		require.NoError(t, err)
	}

	feeds := newMemFeedCache()
	svc := NewFeedService(feeds, store, zap.NewNop())
	ctx := context.Background()

	_, err := svc.GetFeed(ctx, 1, nil, 10)
	require.NoError(t, err)

	require.NoError(t, store.DeletePost(4))
	require.NoError(t, store.DeletePost(3))

	resp, err := svc.GetFeed(ctx, 1, nil, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 1}, feedIDs(resp))

	size, _ := feeds.Size(ctx, 1)
	assert.Equal(t, int64(2), size)
}

func TestGetFeed_Errors(t *testing.T) {
	svc := NewFeedService(newMemFeedCache(), graph.New(graph.Options{}), zap.NewNop())

	_, err := svc.GetFeed(context.Background(), 7, nil, 10)
	assert.ErrorIs(t, err, model.ErrUserNotFound)
}

func TestGetFeed_EmptyFeed(t *testing.T) {
	store := graph.New(graph.Options{})
	store.AddUser("lonely")
	svc := NewFeedService(newMemFeedCache(), store, zap.NewNop())

	resp, err := svc.GetFeed(context.Background(), 1, nil, 0)
	require.NoError(t, err)
	assert.Empty(t, resp.Posts)
	assert.NotNil(t, resp.Posts)
	assert.False(t, resp.HasMore)
}
