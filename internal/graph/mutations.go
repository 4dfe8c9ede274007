package graph

import (
	"go.uber.org/zap"

	"socialgraph/internal/journal"
	"socialgraph/internal/model"
)

// AddUser registers a user and returns the new id.
func (s *Store) AddUser(username string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextUserID
	s.insertUserLocked(id, username)
	s.appendLocked(journal.UserRecord(id, username))
	return id
}

// AddPost moderates content and, if it passes, creates the post.
// Flagged content returns model.ErrContentFlagged and changes nothing.
// The author is not checked; see AddPostChecked.
func (s *Store) AddPost(authorID int64, content string) (int64, error) {
	return s.addPost(authorID, content, false)
}

// AddPostChecked is AddPost that also returns model.ErrUserNotFound when the
// author does not exist. The check and the insert share one critical section,
// so a concurrent DeleteUser cannot leave an orphan post behind.
func (s *Store) AddPostChecked(authorID int64, content string) (int64, error) {
	return s.addPost(authorID, content, true)
}

func (s *Store) addPost(authorID int64, content string, requireAuthor bool) (int64, error) {
	if s.moderator.Flagged(content) {
		s.log.Info("post rejected by moderation", zap.Int64("author", authorID))
		return 0, model.ErrContentFlagged
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[authorID]; requireAuthor && !ok {
		return 0, model.ErrUserNotFound
	}

	id := s.nextPostID
	s.insertPostLocked(id, authorID, content)
	s.appendLocked(journal.PostRecord(id, authorID, content))
	return id, nil
}

// AddFollow records that a follows b. Self-follows are ignored and repeated
// follows have no further effect on the graph.
func (s *Store) AddFollow(a, b int64) {
	if a == b {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.insertFollowLocked(a, b)
	s.appendLocked(journal.FollowRecord(a, b))
}

// AddFollowChecked is AddFollow that returns model.ErrUserNotFound unless both
// users exist at the moment the edge is written.
func (s *Store) AddFollowChecked(a, b int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[a]; !ok {
		return model.ErrUserNotFound
	}
	if _, ok := s.users[b]; !ok {
		return model.ErrUserNotFound
	}
	if a == b {
		return nil
	}

	s.insertFollowLocked(a, b)
	s.appendLocked(journal.FollowRecord(a, b))
	return nil
}

// AddLike records a like. The user must currently follow the post's author;
// otherwise model.ErrNotFollowingAuthor is returned and nothing is written.
func (s *Store) AddLike(userID, postID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[postID]
	if !ok {
		return model.ErrPostNotFound
	}
	if _, follows := s.followees[userID][p.authorID]; !follows {
		return model.ErrNotFollowingAuthor
	}

	p.likers[userID] = struct{}{}
	s.appendLocked(journal.LikeRecord(userID, postID))
	return nil
}

// DeletePost removes a post and compacts the journal so the post is gone from
// disk too.
func (s *Store) DeletePost(postID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[postID]
	if !ok {
		return model.ErrPostNotFound
	}

	s.removePostLocked(p)
	s.rebuildTriesLocked(false)
	_ = s.compactLocked()
	return nil
}

// DeleteUser removes a user with everything hanging off them: authored posts,
// follow edges in both directions and their likes on other posts. The journal
// is compacted afterwards.
func (s *Store) DeleteUser(userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID]; !ok {
		return model.ErrUserNotFound
	}

	delete(s.users, userID)
	delete(s.scores, userID)

	for _, set := range s.followees {
		delete(set, userID)
	}
	for _, set := range s.followers {
		delete(set, userID)
	}
	delete(s.followees, userID)
	delete(s.followers, userID)

	for _, p := range s.posts {
		delete(p.likers, userID)
	}
	for _, id := range sortedKeys(s.posts) {
		if p := s.posts[id]; p.authorID == userID {
			s.removePostLocked(p)
		}
	}

	s.rebuildTriesLocked(true)
	_ = s.compactLocked()
	return nil
}
