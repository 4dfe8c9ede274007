package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"socialgraph/internal/graph"
	"socialgraph/internal/model"
	"socialgraph/internal/queue"
)

// Snapshotter uploads a copy of the journal somewhere durable.
type Snapshotter interface {
	Upload(ctx context.Context, localPath string) (string, error)
}

// GraphService is the request layer over the graph store. It validates input,
// recomputes analytics after every mutation and announces mutations on the
// event stream.
type GraphService struct {
	store     *graph.Store
	publisher queue.Publisher
	snapshots Snapshotter
	log       *zap.Logger
}

// NewGraphService wires the service. publisher and snapshots may be nil when
// Redis or the snapshot bucket are not configured.
func NewGraphService(store *graph.Store, publisher queue.Publisher, snapshots Snapshotter, log *zap.Logger) *GraphService {
	return &GraphService{
		store:     store,
		publisher: publisher,
		snapshots: snapshots,
		log:       log.Named("graph_service"),
	}
}

// CreateUser registers a user.
func (s *GraphService) CreateUser(ctx context.Context, username string) (model.User, error) {
	if err := validateUsername(username); err != nil {
		return model.User{}, err
	}

	id := s.store.AddUser(username)
	s.store.RecomputeAnalytics()

	s.log.Info("user created", zap.Int64("user", id))
	return model.User{ID: id, Username: username}, nil
}

// CreatePost moderates and stores a post, then publishes post_created.
func (s *GraphService) CreatePost(ctx context.Context, authorID int64, content string) (int64, error) {
	if authorID <= 0 {
		return 0, model.ErrInvalidID
	}
	if err := validateContent(content); err != nil {
		return 0, err
	}

	id, err := s.store.AddPostChecked(authorID, content)
	if err != nil {
		return 0, err
	}
	s.store.RecomputeAnalytics()

	s.publish(ctx, queue.NewPostCreatedEvent(id, authorID))
	return id, nil
}

// Interact applies a follow or a like from userID to targetID. For a like,
// targetID is a post id.
func (s *GraphService) Interact(ctx context.Context, kind string, userID, targetID int64) error {
	if userID <= 0 || targetID <= 0 {
		return model.ErrInvalidID
	}
	if !s.store.UserExists(userID) {
		return model.ErrUserNotFound
	}

	switch kind {
	case model.InteractionFollow:
		if err := s.store.AddFollowChecked(userID, targetID); err != nil {
			return err
		}
		s.store.RecomputeAnalytics()
		if userID != targetID {
			s.publish(ctx, queue.NewUserFollowedEvent(userID, targetID))
		}
		return nil

	case model.InteractionLike:
		if err := s.store.AddLike(userID, targetID); err != nil {
			return err
		}
		s.store.RecomputeAnalytics()
		return nil
	}

	return model.ErrInvalidInteraction
}

// DeleteUser removes a user with all cascading data.
func (s *GraphService) DeleteUser(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return model.ErrInvalidID
	}
	if err := s.store.DeleteUser(userID); err != nil {
		return err
	}
	s.store.RecomputeAnalytics()

	s.publish(ctx, queue.NewUserDeletedEvent(userID))
	s.Snapshot(ctx)
	return nil
}

// DeletePost removes a post.
func (s *GraphService) DeletePost(ctx context.Context, postID int64) error {
	if postID <= 0 {
		return model.ErrInvalidID
	}
	post, ok := s.store.Post(postID)
	if !ok {
		return model.ErrPostNotFound
	}
	if err := s.store.DeletePost(postID); err != nil {
		return err
	}
	s.store.RecomputeAnalytics()

	s.publish(ctx, queue.NewPostDeletedEvent(postID, post.AuthorID))
	s.Snapshot(ctx)
	return nil
}

// Snapshot uploads the current journal when snapshots are configured. Failures
// are logged only.
func (s *GraphService) Snapshot(ctx context.Context) {
	path := s.store.JournalPath()
	if s.snapshots == nil || path == "" {
		return
	}
	if _, err := s.snapshots.Upload(ctx, path); err != nil {
		s.log.Warn("snapshot upload failed", zap.Error(err))
	}
}

// Shutdown compacts the journal and takes a final snapshot.
func (s *GraphService) Shutdown(ctx context.Context) error {
	if err := s.store.Close(); err != nil {
		return fmt.Errorf("compact journal: %w", err)
	}
	s.Snapshot(ctx)
	return nil
}

// publish sends an event if a publisher is configured. A failed publish only
// costs a stale feed, so it never fails the request.
func (s *GraphService) publish(ctx context.Context, event queue.GraphEvent) {
	if s.publisher == nil {
		return
	}
	if _, err := s.publisher.Publish(ctx, queue.StreamGraph, event); err != nil {
		s.log.Warn("event publish failed", zap.String("type", event.Type), zap.Error(err))
	}
}

func validateUsername(username string) error {
	if strings.TrimSpace(username) == "" || len(username) > model.MaxUsernameLength {
		return model.ErrInvalidUsername
	}
	if strings.ContainsAny(username, "\r\n") {
		return model.ErrInvalidUsername
	}
	return nil
}

func validateContent(content string) error {
	if strings.TrimSpace(content) == "" || len(content) > model.MaxPostContentLength {
		return model.ErrInvalidContent
	}
	if strings.ContainsAny(content, "\r\n") {
		return model.ErrInvalidContent
	}
	return nil
}
