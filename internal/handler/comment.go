package handler

import (
	"net/http"
	"strconv"

	"github.com/quillpost/quillpost-go/internal/model"
	"github.com/quillpost/quillpost-go/internal/respond"
	"github.com/quillpost/quillpost-go/internal/service"
)

// CommentHandler handles HTTP requests for comments.
type CommentHandler struct {
	service *service.CommentService
}

// NewCommentHandler creates a new CommentHandler.
func NewCommentHandler(svc *service.CommentService) *CommentHandler {
	return &CommentHandler{service: svc}
}

// HandleList handles GET /api/comments?post_id= requests.
func (h *CommentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	postID, err := strconv.ParseInt(r.URL.Query().Get("post_id"), 10, 64)
	if err != nil || postID <= 0 {
		respond.Error(w, http.StatusBadRequest, "invalid post_id")
		return
	}

	comments, err := h.service.ListByPost(r.Context(), postID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, comments)
}

// HandleCreate handles POST /api/comments requests.
func (h *CommentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.CommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	comment, err := h.service.Create(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, comment)
}
