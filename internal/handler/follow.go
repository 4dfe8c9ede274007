package handler

import (
	"net/http"

	"go.uber.org/zap"

	"socialgraph/internal/httputil"
	"socialgraph/internal/service"
)

// FollowHandler serves interactions and the structural graph queries.
type FollowHandler struct {
	graphService *service.GraphService
	log          *zap.Logger
}

func NewFollowHandler(graphService *service.GraphService, log *zap.Logger) *FollowHandler {
	return &FollowHandler{
		graphService: graphService,
		log:          log.Named("follow_handler"),
	}
}

// Interact handles POST /interaction
// Form fields: type (follow|like), user_id, target_id. For likes target_id is
// the post id.
func (h *FollowHandler) Interact(w http.ResponseWriter, r *http.Request) {
	userID, ok := formID(w, r, "user_id")
	if !ok {
		return
	}
	targetID, ok := formID(w, r, "target_id")
	if !ok {
		return
	}

	if err := h.graphService.Interact(r.Context(), r.FormValue("type"), userID, targetID); err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type pathResponse struct {
	Path []int64 `json:"path"`
}

// Path handles GET /path?u1=&u2=
func (h *FollowHandler) Path(w http.ResponseWriter, r *http.Request) {
	from, ok := formID(w, r, "u1")
	if !ok {
		return
	}
	to, ok := formID(w, r, "u2")
	if !ok {
		return
	}

	httputil.WriteJSON(w, http.StatusOK, pathResponse{Path: h.graphService.ShortestPath(from, to)})
}

// Recommendations handles GET /recommendations?u=
func (h *FollowHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := formID(w, r, "u")
	if !ok {
		return
	}

	httputil.WriteJSON(w, http.StatusOK, h.graphService.Recommendations(userID))
}

// Communities handles GET /communities
func (h *FollowHandler) Communities(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.graphService.Communities())
}

// Community handles GET /community/{id}
func (h *FollowHandler) Community(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	httputil.WriteJSON(w, http.StatusOK, h.graphService.CommunityMembers(id))
}
