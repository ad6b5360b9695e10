package handlers

import (
	"net/http"
	"time"

	"github.com/WilliamSoderberg/volley-bracket/services"
)

type DashboardHandler struct {
	dashboardService services.DashboardService
	now              func() time.Time
}

func NewDashboardHandler(s services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: s, now: time.Now}
}

// List handles GET /tournaments: every tournament bucketed as live, future
// or past at request time.
func (h *DashboardHandler) List(w http.ResponseWriter, r *http.Request) {
	dash, err := h.dashboardService.Dashboard(r.Context(), h.now())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": dash}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
