package handler

import (
	"net/http"

	"github.com/quillpost/quillpost-go/internal/respond"
	"github.com/quillpost/quillpost-go/internal/service"
)

// DashboardHandler serves per-user activity summaries.
type DashboardHandler struct {
	service *service.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: svc}
}

// HandleStats handles GET /api/dashboard/stats requests.
func (h *DashboardHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	stats, err := h.service.Stats(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, stats)
}
