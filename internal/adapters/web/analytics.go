package web

import "net/http"

// dashboard handles GET /api/v1/dashboard — the cached KPI snapshot.
func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())

	dash, err := h.svc.GetDashboard(r.Context(), claims.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, dash)
}

// salesAnalytics handles GET /api/v1/analytics — the chart series for the
// analytics page.
func (h *Handler) salesAnalytics(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())

	analytics, err := h.svc.GetSalesAnalytics(r.Context(), claims.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, analytics)
}
