package handler

import (
	"net/http"

	"go.uber.org/zap"

	"socialgraph/internal/httputil"
	"socialgraph/internal/service"
)

type PostHandler struct {
	graphService *service.GraphService
	log          *zap.Logger
}

func NewPostHandler(graphService *service.GraphService, log *zap.Logger) *PostHandler {
	return &PostHandler{
		graphService: graphService,
		log:          log.Named("post_handler"),
	}
}

type createPostResponse struct {
	PostID int64 `json:"post_id"`
}

// Create handles POST /post
// Form fields: user_id, content. Moderated content is rejected with
// CONTENT_FLAGGED.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := formID(w, r, "user_id")
	if !ok {
		return
	}

	postID, err := h.graphService.CreatePost(r.Context(), userID, r.FormValue("content"))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, createPostResponse{PostID: postID})
}

// Delete handles POST /post/delete
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	postID, ok := formID(w, r, "post_id")
	if !ok {
		return
	}

	if err := h.graphService.DeletePost(r.Context(), postID); err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Top handles GET /posts/top10
func (h *PostHandler) Top(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.graphService.TopPosts())
}

// All handles GET /posts/all
func (h *PostHandler) All(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.graphService.AllPosts())
}

// Search handles GET /search?q=
func (h *PostHandler) Search(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.graphService.SearchPosts(r.URL.Query().Get("q")))
}

// SearchPattern handles GET /search/aho?pattern=
func (h *PostHandler) SearchPattern(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.graphService.SearchPostsByPattern(r.URL.Query().Get("pattern")))
}

// Autocomplete handles GET /autocomplete/posts?prefix=
func (h *PostHandler) Autocomplete(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.graphService.AutocompletePosts(r.URL.Query().Get("prefix")))
}
