package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"socialgraph/internal/handler"
	"socialgraph/internal/metrics"
	logmw "socialgraph/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	UserHandler   *handler.UserHandler
	PostHandler   *handler.PostHandler
	FollowHandler *handler.FollowHandler
	FeedHandler   *handler.FeedHandler
	SystemHandler *handler.SystemHandler
	Latency       *metrics.Recorder
	Logger        *zap.Logger
}

// NewRouter creates and configures a new Chi router with all routes
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(logmw.RequestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cfg.Latency.Middleware)

	r.Get("/health", cfg.SystemHandler.Health)
	r.Get("/metrics", cfg.SystemHandler.Metrics)

	// Mutations
	r.Post("/user", cfg.UserHandler.Create)
	r.Post("/user/delete", cfg.UserHandler.Delete)
	r.Post("/post", cfg.PostHandler.Create)
	r.Post("/post/delete", cfg.PostHandler.Delete)
	r.Post("/interaction", cfg.FollowHandler.Interact)

	// Users
	r.Get("/users-list", cfg.UserHandler.List)
	r.Get("/users/ranked", cfg.UserHandler.Ranked)
	// flat rather than r.Route("/user"), which would shadow POST /user
	r.Get("/user/metrics/{id}", cfg.UserHandler.Metrics)
	r.Get("/user/followers/{id}", cfg.UserHandler.Followers)
	r.Get("/user/followings/{id}", cfg.UserHandler.Followings)
	r.Get("/user/likedposts/{id}", cfg.UserHandler.LikedPosts)
	r.Get("/user/posts/{id}", cfg.UserHandler.Posts)

	// Posts and search
	r.Get("/posts/top10", cfg.PostHandler.Top)
	r.Get("/posts/all", cfg.PostHandler.All)
	r.Get("/search", cfg.PostHandler.Search)
	r.Get("/search/aho", cfg.PostHandler.SearchPattern)

	r.Route("/autocomplete", func(r chi.Router) {
		r.Get("/user", cfg.UserHandler.Autocomplete)
		r.Get("/users", cfg.UserHandler.Autocomplete)
		r.Get("/posts", cfg.PostHandler.Autocomplete)
	})

	// Graph structure
	r.Get("/path", cfg.FollowHandler.Path)
	r.Get("/recommendations", cfg.FollowHandler.Recommendations)
	r.Get("/communities", cfg.FollowHandler.Communities)
	r.Get("/community/{id}", cfg.FollowHandler.Community)

	r.Get("/feed/{id}", cfg.FeedHandler.GetFeed)

	return r
}
