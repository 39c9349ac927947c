package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"stockmaster/internal/app"

	"github.com/go-chi/chi/v5"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc       app.ApplicationService
	router    chi.Router
	jwtSecret string
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins, jwtSecret string) http.Handler {
	h := &Handler{
		svc:       svc,
		jwtSecret: jwtSecret,
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))

	// ── Health (public) ───────────────────────────────────────────────────────
	r.Get("/api/health", h.health)

	r.Route("/api/v1", func(r chi.Router) {
		// 1 MB body limit on every JSON endpoint.
		r.Use(RequestBodyLimit(1 << 20))

		// ── Auth (public) ─────────────────────────────────────────────────────
		r.Post("/auth/signup", h.signup)
		r.Post("/auth/login", h.login)

		// ── Protected routes (401 JSON if unauthenticated) ────────────────────
		r.Group(func(r chi.Router) {
			r.Use(h.RequireAuth)

			r.Post("/auth/logout", h.logout)
			r.Get("/auth/me", h.me)
			r.Get("/profile", h.getProfile)
			r.Put("/profile", h.updateProfile)

			// Catalog
			r.Get("/products", h.listProducts)
			r.Post("/products", h.createProduct)
			r.Get("/products/{id}", h.getProduct)
			r.Put("/products/{id}", h.updateProduct)
			r.Delete("/products/{id}", h.deleteProduct)

			// Warehouses and locations
			r.Get("/warehouses", h.listWarehouses)
			r.Post("/warehouses", h.createWarehouse)
			r.Get("/warehouses/{id}", h.getWarehouse)
			r.Put("/warehouses/{id}", h.updateWarehouse)
			r.Delete("/warehouses/{id}", h.deleteWarehouse)
			r.Post("/warehouses/{id}/locations", h.addLocation)
			r.Delete("/warehouses/{id}/locations/{locationID}", h.removeLocation)

			// Stock
			r.Get("/stock", h.listStock)
			r.Get("/stock/export", h.exportStock)

			// Orders
			r.Post("/orders", h.createOrder)
			r.Get("/orders", h.listOrders)
			r.Get("/orders/{id}", h.getOrder)
			r.Put("/orders/{id}/status", h.updateOrderStatus)

			// Goods receipts
			r.Post("/receipts", h.createReceipt)
			r.Get("/receipts", h.listReceipts)
			r.Get("/receipts/{id}", h.getReceipt)

			// Transfers
			r.Post("/transfers", h.createTransfer)
			r.Get("/transfers", h.listTransfers)
			r.Get("/transfers/{id}", h.getTransfer)

			// Analytics
			r.Get("/dashboard", h.dashboard)
			r.Get("/analytics", h.salesAnalytics)
		})
	})

	h.router = r
	return r
}

// health returns service status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, response{Status: "ok"})
}

// idParam parses the named URL parameter as a positive integer.
func idParam(r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
