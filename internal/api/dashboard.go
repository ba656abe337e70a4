package api

import (
	"net/http"

	"github.com/erazemk/zaloga/internal/catalog"
)

// DashboardHandler serves inventory summary statistics.
type DashboardHandler struct {
	Catalog *catalog.Service
}

// Get handles GET /api/dashboard.
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Catalog.Stats()
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, stats)
}
