package handler

import (
	"net/http"

	"go.uber.org/zap"

	"socialgraph/internal/httputil"
	"socialgraph/internal/service"
)

type FeedHandler struct {
	feedService *service.FeedService
	log         *zap.Logger
}

// NewFeedHandler accepts a nil service; the feed then answers 503.
func NewFeedHandler(feedService *service.FeedService, log *zap.Logger) *FeedHandler {
	return &FeedHandler{
		feedService: feedService,
		log:         log.Named("feed_handler"),
	}
}

// GetFeed handles GET /feed/{id}
//
// Query params:
//   - cursor: optional, last post id of the previous page
//   - limit: optional, posts per page (default 20, max 50)
func (h *FeedHandler) GetFeed(w http.ResponseWriter, r *http.Request) {
	if h.feedService == nil {
		httputil.WriteServiceUnavailable(w, "Feed requires Redis")
		return
	}

	userID, ok := pathID(w, r)
	if !ok {
		return
	}

	var cursor *int64
	if raw := r.URL.Query().Get("cursor"); raw != "" {
		c, err := parsePositiveID(raw)
		if err != nil {
			httputil.WriteBadRequest(w, "Invalid cursor parameter")
			return
		}
		cursor = &c
	}

	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return
	}

	feed, err := h.feedService.GetFeed(r.Context(), userID, cursor, limit)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, feed)
}
