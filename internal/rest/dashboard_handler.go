package rest

import (
	"net/http"

	"kopimas-be/internal/report"

	"github.com/go-chi/chi/v5"
)

type DashboardHandler struct {
	service report.Service
}

func NewDashboardHandler(service report.Service) *DashboardHandler {
	return &DashboardHandler{service: service}
}

func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/stats", h.stats)
	r.Get("/revenue", h.revenue)
	return r
}

func (h *DashboardHandler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.DashboardStats(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *DashboardHandler) revenue(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	if period == "" {
		period = "7d"
	}

	rep, err := h.service.RevenueForPeriod(r.Context(), period)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
