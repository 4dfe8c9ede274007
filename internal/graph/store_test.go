package graph

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialgraph/internal/model"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "db", "social_graph.db")
	return New(Options{Path: path}), path
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func TestAddUser_SequentialIDs(t *testing.T) {
	s := New(Options{})

	assert.Equal(t, int64(1), s.AddUser("alice"))
	assert.Equal(t, int64(2), s.AddUser("bob"))
	assert.Equal(t, int64(3), s.AddUser("alice"))

	require.NoError(t, s.DeleteUser(3))
	assert.Equal(t, int64(4), s.AddUser("carol"), "ids are never reused")
}

func TestAddPost_ModerationAndLogFormat(t *testing.T) {
	s, path := newTestStore(t)
	s.AddUser("alice")

	_, err := s.AddPost(1, "shit happens")
	assert.ErrorIs(t, err, model.ErrContentFlagged)
	assert.Empty(t, s.AllPosts())

	id, err := s.AddPost(1, "nice day")
	require.NoError(t, err)

	lines := readLines(t, path)
	assert.Equal(t, []string{"U|1|alice", "P|1|1|nice day"}, lines)
	assert.Equal(t, int64(1), id)
}

func TestAddPost_ObfuscatedContentFlagged(t *testing.T) {
	s := New(Options{})
	s.AddUser("alice")

	_, err := s.AddPost(1, "what the f.u.c.k")
	assert.ErrorIs(t, err, model.ErrContentFlagged)
	assert.True(t, s.ModerateContent("DAMN it"))
	assert.False(t, s.ModerateContent("lovely weather"))
}

func TestAddFollow_SelfAndRepeat(t *testing.T) {
	s, path := newTestStore(t)
	s.AddUser("a")
	s.AddUser("b")

	s.AddFollow(1, 1)
	assert.Empty(t, s.Followings(1))

	s.AddFollow(1, 2)
	s.AddFollow(1, 2)
	assert.Equal(t, []int64{2}, s.Followings(1))
	assert.Equal(t, []int64{1}, s.Followers(2))

	// repeated follows are still appended; set semantics apply on replay
	assert.Len(t, readLines(t, path), 4)
}

func TestAddLike_RequiresFollow(t *testing.T) {
	s, path := newTestStore(t)
	s.AddUser("A")
	s.AddUser("B")
	s.AddFollow(1, 2)
	p, err := s.AddPost(2, "hello world")
	require.NoError(t, err)

	require.NoError(t, s.AddLike(1, p))

	before := readLines(t, path)
	err = s.AddLike(2, p)
	assert.ErrorIs(t, err, model.ErrNotFollowingAuthor)
	assert.Equal(t, before, readLines(t, path), "rejected like must not be logged")

	assert.ErrorIs(t, s.AddLike(1, 99), model.ErrPostNotFound)

	info, ok := s.Post(p)
	require.True(t, ok)
	assert.Equal(t, 1, info.Likes)
	assert.Equal(t, []int64{p}, s.LikedPosts(1))
	assert.Empty(t, s.LikedPosts(2))
}

func TestDeleteUser_Cascades(t *testing.T) {
	s, path := newTestStore(t)
	s.AddUser("a")
	s.AddUser("b")
	s.AddUser("c")
	s.AddFollow(1, 2)
	s.AddFollow(2, 1)
	s.AddFollow(3, 2)

	pb, err := s.AddPost(2, "from bob")
	require.NoError(t, err)
	pa, err := s.AddPost(1, "unique zebra words")
	require.NoError(t, err)
	require.NoError(t, s.AddLike(1, pb))
	require.NoError(t, s.AddLike(3, pb))

	require.NoError(t, s.DeleteUser(1))

	assert.False(t, s.UserExists(1))
	assert.Equal(t, []int64{3}, s.Followers(2))
	assert.Empty(t, s.Followings(2))
	assert.Empty(t, s.Followings(1))

	_, ok := s.Post(pa)
	assert.False(t, ok)
	assert.Empty(t, s.SearchPosts("zebra"))

	info, _ := s.Post(pb)
	assert.Equal(t, 1, info.Likes)

	assert.ErrorIs(t, s.DeleteUser(1), model.ErrUserNotFound)

	for _, line := range readLines(t, path) {
		assert.NotContains(t, line, "|1|a")
		assert.NotEqual(t, "F|2|1", line)
		assert.NotEqual(t, "L|1|1", line)
	}
}

func TestDeletePost_PrunesIndex(t *testing.T) {
	s, path := newTestStore(t)
	s.AddUser("a")
	p1, _ := s.AddPost(1, "shared giraffe")
	p2, _ := s.AddPost(1, "shared okapi")

	require.NoError(t, s.DeletePost(p1))

	assert.Empty(t, s.SearchPosts("giraffe"))
	assert.Equal(t, []int64{p2}, s.SearchPosts("shared"))
	assert.Empty(t, s.AutocompletePosts("gir"))
	assert.Equal(t, []string{"U|1|a", "P|2|1|shared okapi"}, readLines(t, path))

	assert.ErrorIs(t, s.DeletePost(p1), model.ErrPostNotFound)

	p3, _ := s.AddPost(1, "third")
	assert.Equal(t, int64(3), p3)
}

func TestSearchPosts_IntersectsTokens(t *testing.T) {
	s := New(Options{})
	s.AddUser("a")
	s.AddPost(1, "Go is fun")
	s.AddPost(1, "go, go, GO!")
	s.AddPost(1, "rust is fun too")

	assert.Equal(t, []int64{1, 2}, s.SearchPosts("GO"))
	assert.Equal(t, []int64{1}, s.SearchPosts("fun go"))
	assert.Equal(t, []int64{1, 3}, s.SearchPosts("is-fun"))
	assert.Empty(t, s.SearchPosts(""))
	assert.Empty(t, s.SearchPosts("  ...  "))
	assert.Empty(t, s.SearchPosts("missing"))
}

func TestSearchPostsByPattern(t *testing.T) {
	s := New(Options{})
	s.AddUser("a")
	s.AddPost(1, "Sunny Beach day")
	s.AddPost(1, "beachside cafe")
	s.AddPost(1, "mountain")

	assert.Equal(t, []int64{1, 2}, s.SearchPostsByPattern("BEACH"))
	assert.Equal(t, []int64{1}, s.SearchPostsByPattern("y be"))
	assert.Empty(t, s.SearchPostsByPattern("   "))
}

func TestAutocomplete(t *testing.T) {
	s := New(Options{})
	s.AddUser("Alice")
	s.AddUser("Albert")
	s.AddUser("bob")

	assert.ElementsMatch(t, []string{"Alice", "Albert"}, s.Autocomplete("al"))
	assert.Empty(t, s.Autocomplete("z"))
	assert.Empty(t, s.Autocomplete(""))

	require.NoError(t, s.DeleteUser(1))
	assert.Equal(t, []string{"Albert"}, s.Autocomplete("AL"))
}

func TestAutocomplete_Limit(t *testing.T) {
	s := New(Options{})
	for i := 0; i < 15; i++ {
		s.AddUser("user" + strings.Repeat("x", i))
	}
	assert.Len(t, s.Autocomplete("user"), model.AutocompleteLimit)
}

func TestAutocompletePosts(t *testing.T) {
	s := New(Options{})
	s.AddUser("a")
	s.AddPost(1, "Travel tips and travelling light")

	assert.Equal(t, []string{"travel", "travelling"}, s.AutocompletePosts("trav"))
}

func TestShortestPath(t *testing.T) {
	s := New(Options{})
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		s.AddUser(name)
	}
	s.AddFollow(1, 2)
	s.AddFollow(2, 3)
	s.AddFollow(3, 4)
	s.AddFollow(1, 3)

	assert.Equal(t, []int64{1}, s.ShortestPath(1, 1))
	assert.Equal(t, []int64{1, 3, 4}, s.ShortestPath(1, 4))
	assert.Equal(t, []int64{2, 3}, s.ShortestPath(2, 3))
	assert.Empty(t, s.ShortestPath(4, 1), "edges are directed")
	assert.Empty(t, s.ShortestPath(1, 5))
}

func TestRecommendations(t *testing.T) {
	s := New(Options{})
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		s.AddUser(name)
	}
	s.AddFollow(1, 4)
	s.AddFollow(1, 5)
	s.AddFollow(2, 4)
	s.AddFollow(2, 5)
	s.AddFollow(3, 4)

	got := s.Recommendations(1)
	// 2 shares both followees, 3 shares one of two, 4 and 5 are followed already
	assert.Equal(t, []int64{2, 3}, got)
	assert.NotContains(t, got, int64(1))
}

func TestRecommendations_Limit(t *testing.T) {
	s := New(Options{})
	for i := 0; i < 20; i++ {
		s.AddUser("u")
	}
	got := s.Recommendations(1)
	assert.Len(t, got, model.RecommendationLimit)
	assert.Equal(t, int64(2), got[0], "ties keep ascending id order")
}

func TestCommunities(t *testing.T) {
	s := New(Options{})
	for _, name := range []string{"a", "b", "c", "d"} {
		s.AddUser(name)
	}
	s.AddFollow(1, 3)
	s.AddFollow(2, 3)
	s.AddFollow(4, 1)

	groups := s.Communities()

	seen := map[int64]int{}
	var memberSets [][]int64
	for _, g := range groups {
		memberSets = append(memberSets, g.Members)
		for _, m := range g.Members {
			seen[m]++
		}
	}
	for _, id := range []int64{1, 2, 3, 4} {
		assert.Equal(t, 1, seen[id], "user %d must appear exactly once", id)
	}
	assert.Contains(t, memberSets, []int64{1, 2})
	assert.Contains(t, memberSets, []int64{3})
	assert.Contains(t, memberSets, []int64{4})

	for _, g := range groups {
		assert.Equal(t, g.Members, s.CommunityMembers(g.ID))
	}
	assert.Empty(t, s.CommunityMembers(999))
}

func TestCommunities_SkipsDeletedUsers(t *testing.T) {
	s := New(Options{})
	s.AddUser("a")
	s.AddUser("b")
	require.NoError(t, s.DeleteUser(1))

	groups := s.Communities()
	require.Len(t, groups, 1)
	assert.Equal(t, []int64{2}, groups[0].Members)
}

func TestUsersAndRanked_Pagination(t *testing.T) {
	s := New(Options{})
	for _, name := range []string{"a", "b", "c"} {
		s.AddUser(name)
	}
	s.AddFollow(1, 3)
	s.AddFollow(2, 3)
	p, _ := s.AddPost(3, "hi")
	s.AddFollow(3, 2)
	require.NoError(t, s.AddLike(1, p))
	s.RecomputeAnalytics()

	assert.Equal(t, []model.User{{ID: 1, Username: "a"}, {ID: 2, Username: "b"}}, s.Users(1, 2))
	assert.Equal(t, []model.User{{ID: 3, Username: "c"}}, s.Users(2, 2))
	assert.Empty(t, s.Users(3, 2))
	assert.Empty(t, s.Users(1, 0))

	ranked := s.Ranked(1, 5)
	require.Len(t, ranked, 3)
	// c: 2 followers, 1 like, 1 following, 1 post
	assert.Equal(t, int64(3), ranked[0].ID)
	assert.InDelta(t, 3*2+2*1+1*1+0.5*1, ranked[0].Score, 1e-9)
	// b: 1 follower, 1 following
	assert.Equal(t, int64(2), ranked[1].ID)
	assert.Equal(t, int64(1), ranked[2].ID)

	assert.Empty(t, s.Ranked(2, 5))
}

func TestUserMetrics(t *testing.T) {
	s := New(Options{})
	s.AddUser("a")
	s.AddUser("b")
	s.AddFollow(1, 2)
	p, _ := s.AddPost(2, "x")
	require.NoError(t, s.AddLike(1, p))
	s.RecomputeAnalytics()

	m := s.UserMetrics(2)
	assert.Equal(t, model.UserMetrics{UserID: 2, Followers: 1, Posts: 1, TotalLikes: 1, Score: 5.5}, m)
	assert.Equal(t, model.UserMetrics{UserID: 42}, s.UserMetrics(42))
}

func TestScoresOnlyChangeOnRecompute(t *testing.T) {
	s := New(Options{})
	s.AddUser("a")
	s.AddUser("b")
	s.AddFollow(1, 2)
	assert.Zero(t, s.UserMetrics(2).Score)

	s.RecomputeAnalytics()
	assert.Equal(t, 3.0, s.UserMetrics(2).Score)
}

func TestTopPosts(t *testing.T) {
	s := New(Options{})
	for i := 0; i < 4; i++ {
		s.AddUser("u")
	}
	s.AddFollow(2, 1)
	s.AddFollow(3, 1)
	s.AddFollow(4, 1)

	var ids []int64
	for i := 0; i < 12; i++ {
		id, err := s.AddPost(1, "post")
		require.NoError(t, err)
		ids = append(ids, id)
	}
	require.NoError(t, s.AddLike(2, ids[5]))
	require.NoError(t, s.AddLike(3, ids[5]))
	require.NoError(t, s.AddLike(2, ids[7]))

	top := s.TopPosts()
	require.Len(t, top, model.TopPostsLimit)
	assert.Equal(t, ids[5], top[0].ID)
	assert.Equal(t, 2, top[0].Likes)
	assert.Equal(t, ids[7], top[1].ID)
	assert.Equal(t, ids[0], top[2].ID)

	all := s.AllPosts()
	assert.Len(t, all, 12)
	assert.Equal(t, int64(1), all[0].ID)
}

func TestRecentPosts(t *testing.T) {
	s := New(Options{})
	s.AddUser("a")
	s.AddUser("b")
	s.AddPost(1, "one")
	s.AddPost(2, "other")
	s.AddPost(1, "two")
	s.AddPost(1, "three")

	assert.Equal(t, []int64{4, 3}, s.RecentPosts(1, 2))
	assert.Equal(t, []int64{1, 3, 4}, s.UserPosts(1))
	assert.Empty(t, s.RecentPosts(9, 5))
}

func TestReload_RoundTrip(t *testing.T) {
	s, path := newTestStore(t)
	s.AddUser("alice")
	s.AddUser("bob|the|builder")
	s.AddUser("carol")
	s.AddFollow(1, 2)
	s.AddFollow(3, 2)
	s.AddFollow(2, 3)
	p1, _ := s.AddPost(2, "pipes | inside | content")
	p2, _ := s.AddPost(3, "hello there")
	require.NoError(t, s.AddLike(1, p1))
	require.NoError(t, s.AddLike(2, p2))
	require.NoError(t, s.DeleteUser(3))
	s.AddUser("dave")

	reloaded := New(Options{Path: path})

	assert.Equal(t, s.Users(1, 100), reloaded.Users(1, 100))
	assert.Equal(t, s.AllPosts(), reloaded.AllPosts())
	for _, id := range []int64{1, 2, 3, 4} {
		assert.Equal(t, s.Followers(id), reloaded.Followers(id))
		assert.Equal(t, s.Followings(id), reloaded.Followings(id))
		assert.Equal(t, s.LikedPosts(id), reloaded.LikedPosts(id))
	}
	assert.Equal(t, []int64{p1}, reloaded.SearchPosts("inside"))
	assert.Equal(t, []string{"bob|the|builder"}, reloaded.Autocomplete("bo"))

	assert.Equal(t, int64(5), reloaded.AddUser("eve"), "counters resume past replayed ids")
}

func TestReplay_HonorsStaleLike(t *testing.T) {
	path := filepath.Join(t.TempDir(), "social_graph.db")
	log := "U|1|a\nU|2|b\nP|1|2|hello\nL|1|1\nL|1|77\ngarbage\n"
	require.NoError(t, os.WriteFile(path, []byte(log), 0o644))

	s := New(Options{Path: path})

	info, ok := s.Post(1)
	require.True(t, ok)
	assert.Equal(t, 1, info.Likes, "replay does not re-check the follow rule")
	assert.Equal(t, int64(0), s.DurabilityErrors())
	assert.Equal(t, int64(2), s.nextPostID)
}

func TestClose_CompactsJournal(t *testing.T) {
	s, path := newTestStore(t)
	s.AddUser("a")
	s.AddUser("b")
	s.AddFollow(1, 2)
	s.AddFollow(1, 2)

	require.NoError(t, s.Close())
	assert.Equal(t, []string{"U|1|a", "U|2|b", "F|1|2"}, readLines(t, path))
	assert.Equal(t, path, s.JournalPath())
}

func TestDurabilityErrors_InMemoryContinues(t *testing.T) {
	dir := t.TempDir()

	// the journal path is a directory, so every read and write fails
	s := New(Options{Path: dir})
	before := s.DurabilityErrors()

	id := s.AddUser("alice")
	assert.Equal(t, int64(1), id)
	assert.True(t, s.UserExists(id))
	assert.Greater(t, s.DurabilityErrors(), before)

	require.NoError(t, s.DeleteUser(id))
	assert.False(t, s.UserExists(id))
}

func TestInMemoryStore(t *testing.T) {
	s := New(Options{})
	s.AddUser("a")
	require.NoError(t, s.Compact())
	assert.Equal(t, "", s.JournalPath())
	assert.Zero(t, s.DurabilityErrors())
}

func TestConcurrentAccess(t *testing.T) {
	s, _ := newTestStore(t)
	for i := 0; i < 10; i++ {
		s.AddUser("seed")
	}

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				a := int64(w%10 + 1)
				b := int64(i%10 + 1)
				s.AddFollow(a, b)
				if p, err := s.AddPost(b, "load test"); err == nil {
					_ = s.AddLike(a, p)
				}
				_ = s.Followers(b)
				_ = s.SearchPosts("load")
				_ = s.Recommendations(a)
				s.RecomputeAnalytics()
			}
		}(w)
	}
	wg.Wait()

	assert.Len(t, s.AllPosts(), 8*50)
	assert.Len(t, s.Users(1, 100), 10)
}

func TestReplay_LongRecordKeepsLaterRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "social_graph.db")
	content := strings.Repeat("word ", 1024*1024)
	log := "U|1|alice\nP|1|1|" + content + "\nU|2|bob\nU|3|carol\n"
	require.NoError(t, os.WriteFile(path, []byte(log), 0o644))

	s := New(Options{Path: path})
	assert.Len(t, s.Users(1, 10), 3)
	assert.Zero(t, s.DurabilityErrors())
	require.NoError(t, s.Close())

	reloaded := New(Options{Path: path})
	assert.Equal(t, []model.User{{ID: 1, Username: "alice"}, {ID: 2, Username: "bob"}, {ID: 3, Username: "carol"}},
		reloaded.Users(1, 10))
	info, ok := reloaded.Post(1)
	require.True(t, ok)
	assert.Len(t, info.Content, len(content))
}

func TestCompact_RefusedAfterPartialReplay(t *testing.T) {
	s, path := newTestStore(t)
	s.AddUser("alice")
	s.AddUser("bob")
	before := readLines(t, path)

	s.partialReplay = true
	require.NoError(t, s.DeleteUser(2))

	assert.ErrorIs(t, s.Close(), ErrPartialReplay)
	assert.Equal(t, before, readLines(t, path), "journal is left untouched")
	assert.Positive(t, s.DurabilityErrors())
}

func TestReplay_SkipsNonPositiveIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "social_graph.db")
	log := "U|-3|ghost\nU|0|zero\nU|1|alice\nU|2|bob\nF|-3|1\nF|1|2\n"
	require.NoError(t, os.WriteFile(path, []byte(log), 0o644))

	s := New(Options{Path: path})

	assert.Len(t, s.Users(1, 10), 2)
	assert.NotPanics(t, func() {
		assert.Equal(t, []model.Community{{ID: 1, Members: []int64{1}}, {ID: 2, Members: []int64{2}}}, s.Communities())
	})
	assert.Equal(t, []int64{1}, s.Followers(2))
	assert.Empty(t, s.Followers(1))
}

func TestCheckedMutators_RequireUsers(t *testing.T) {
	s := New(Options{})
	s.AddUser("a")
	s.AddUser("b")

	_, err := s.AddPostChecked(9, "hello")
	assert.ErrorIs(t, err, model.ErrUserNotFound)
	assert.Empty(t, s.AllPosts())

	_, err = s.AddPostChecked(9, "shit")
	assert.ErrorIs(t, err, model.ErrContentFlagged, "moderation runs first")

	id, err := s.AddPostChecked(1, "hello")
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	assert.ErrorIs(t, s.AddFollowChecked(1, 9), model.ErrUserNotFound)
	assert.ErrorIs(t, s.AddFollowChecked(9, 1), model.ErrUserNotFound)
	assert.NoError(t, s.AddFollowChecked(1, 1))
	assert.Empty(t, s.Followings(1))

	require.NoError(t, s.AddFollowChecked(1, 2))
	assert.Equal(t, []int64{1}, s.Followers(2))
}

func TestCheckedMutators_RaceWithDeleteUser(t *testing.T) {
	s := New(Options{})
	s.AddUser("anchor")

	for i := 0; i < 200; i++ {
		victim := s.AddUser("victim")

		var wg sync.WaitGroup
		wg.Add(3)
		go func() {
			defer wg.Done()
			_ = s.DeleteUser(victim)
		}()
		go func() {
			defer wg.Done()
			_ = s.AddFollowChecked(victim, 1)
		}()
		go func() {
			defer wg.Done()
			_, _ = s.AddPostChecked(victim, "late post")
		}()
		wg.Wait()

		require.False(t, s.UserExists(victim))
		require.NotContains(t, s.Followers(1), victim)
		require.Empty(t, s.UserPosts(victim))
	}
}
