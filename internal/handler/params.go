package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"socialgraph/internal/httputil"
	"socialgraph/internal/model"
)

// parsePositiveID parses a strictly positive integer id.
func parsePositiveID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, model.ErrInvalidID
	}
	return id, nil
}

// formID reads a form or query field and writes a 400 when it is missing or
// not a positive integer.
func formID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := parsePositiveID(r.FormValue(name))
	if err != nil {
		httputil.WriteBadRequestWithCode(w, httputil.ErrCodeInvalidID, name+" must be a positive integer")
		return 0, false
	}
	return id, true
}

// pathID reads the {id} URL parameter.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := parsePositiveID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteBadRequestWithCode(w, httputil.ErrCodeInvalidID, "id must be a positive integer")
		return 0, false
	}
	return id, true
}

// queryInt reads an optional positive integer query parameter. An absent
// value yields 0 so the service applies its default.
func queryInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		httputil.WriteBadRequest(w, "Invalid "+name+" parameter")
		return 0, false
	}
	return n, true
}

// writeServiceError maps domain errors to responses. Policy rejections get
// their own codes so clients can tell them apart from not-found.
func writeServiceError(w http.ResponseWriter, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, model.ErrContentFlagged):
		httputil.WriteBadRequestWithCode(w, httputil.ErrCodeFlagged, "Post flagged for containing vulgar language")
	case errors.Is(err, model.ErrNotFollowingAuthor):
		httputil.WriteBadRequestWithCode(w, httputil.ErrCodeNotFollowing, "User must follow the author to like their posts")
	case errors.Is(err, model.ErrUserNotFound):
		httputil.WriteNotFound(w, "User not found")
	case errors.Is(err, model.ErrPostNotFound):
		httputil.WriteNotFound(w, "Post not found")
	case errors.Is(err, model.ErrInvalidID):
		httputil.WriteBadRequestWithCode(w, httputil.ErrCodeInvalidID, err.Error())
	case errors.Is(err, model.ErrInvalidUsername),
		errors.Is(err, model.ErrInvalidContent),
		errors.Is(err, model.ErrInvalidInteraction):
		httputil.WriteBadRequestWithCode(w, httputil.ErrCodeInvalidRequest, err.Error())
	default:
		log.Error("request failed", zap.Error(err))
		httputil.WriteInternalError(w, "Internal server error")
	}
}
