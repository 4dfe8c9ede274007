package handler

import (
	"net/http"

	"go.uber.org/zap"

	"socialgraph/internal/httputil"
	"socialgraph/internal/service"
)

type UserHandler struct {
	graphService *service.GraphService
	log          *zap.Logger
}

func NewUserHandler(graphService *service.GraphService, log *zap.Logger) *UserHandler {
	return &UserHandler{
		graphService: graphService,
		log:          log.Named("user_handler"),
	}
}

// Create handles POST /user
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, err := h.graphService.CreateUser(r.Context(), r.FormValue("username"))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, user)
}

// Delete handles POST /user/delete
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := formID(w, r, "user_id")
	if !ok {
		return
	}

	if err := h.graphService.DeleteUser(r.Context(), userID); err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// List handles GET /users-list?page=&limit=
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	page, ok := queryInt(w, r, "page")
	if !ok {
		return
	}
	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return
	}

	httputil.WriteJSON(w, http.StatusOK, h.graphService.ListUsers(page, limit))
}

// Ranked handles GET /users/ranked?page=&limit=
func (h *UserHandler) Ranked(w http.ResponseWriter, r *http.Request) {
	page, ok := queryInt(w, r, "page")
	if !ok {
		return
	}
	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return
	}

	httputil.WriteJSON(w, http.StatusOK, h.graphService.RankedUsers(page, limit))
}

// Metrics handles GET /user/metrics/{id}
func (h *UserHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r)
	if !ok {
		return
	}

	metrics, err := h.graphService.UserMetrics(userID)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, metrics)
}

// Followers handles GET /user/followers/{id}
func (h *UserHandler) Followers(w http.ResponseWriter, r *http.Request) {
	h.writeIDs(w, r, h.graphService.Followers)
}

// Followings handles GET /user/followings/{id}
func (h *UserHandler) Followings(w http.ResponseWriter, r *http.Request) {
	h.writeIDs(w, r, h.graphService.Followings)
}

// LikedPosts handles GET /user/likedposts/{id}
func (h *UserHandler) LikedPosts(w http.ResponseWriter, r *http.Request) {
	h.writeIDs(w, r, h.graphService.LikedPosts)
}

// Posts handles GET /user/posts/{id}
func (h *UserHandler) Posts(w http.ResponseWriter, r *http.Request) {
	h.writeIDs(w, r, h.graphService.UserPosts)
}

// Autocomplete handles GET /autocomplete/user?prefix=
func (h *UserHandler) Autocomplete(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.graphService.AutocompleteUsers(r.URL.Query().Get("prefix")))
}

func (h *UserHandler) writeIDs(w http.ResponseWriter, r *http.Request, lookup func(int64) []int64) {
	userID, ok := pathID(w, r)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, lookup(userID))
}
