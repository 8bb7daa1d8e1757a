package handler

import (
	"net/http"

	"github.com/quillpost/quillpost-go/internal/model"
	"github.com/quillpost/quillpost-go/internal/respond"
	"github.com/quillpost/quillpost-go/internal/service"
)

// PostHandler handles HTTP requests for blog posts.
type PostHandler struct {
	service *service.PostService
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(svc *service.PostService) *PostHandler {
	return &PostHandler{service: svc}
}

// HandleList handles GET /api/blogs requests.
func (h *PostHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, posts)
}

// HandleGet handles GET /api/blogs/{id} requests.
func (h *PostHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	postID, ok := pathID(w, r, "id", "post id")
	if !ok {
		return
	}

	post, err := h.service.Get(r.Context(), postID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, post)
}

// HandleCreate handles POST /api/blogs requests.
func (h *PostHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.PostRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	post, err := h.service.Create(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, post)
}

// HandleUpdate handles PUT /api/blogs/{id} requests.
func (h *PostHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	postID, ok := pathID(w, r, "id", "post id")
	if !ok {
		return
	}

	var req model.PostRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	post, err := h.service.Update(r.Context(), userID, postID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, post)
}

// HandleDelete handles DELETE /api/blogs/{id} requests.
func (h *PostHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	postID, ok := pathID(w, r, "id", "post id")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, postID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
