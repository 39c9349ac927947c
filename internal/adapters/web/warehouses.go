package web

import (
	"net/http"

	"stockmaster/internal/app"
)

// warehouseBody is the JSON payload for creating or updating a warehouse.
type warehouseBody struct {
	Code    string `json:"code" validate:"required"`
	Name    string `json:"name" validate:"required"`
	Address string `json:"address"`
}

// listWarehouses handles GET /api/v1/warehouses.
func (h *Handler) listWarehouses(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())

	result, err := h.svc.ListWarehouses(r.Context(), claims.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// createWarehouse handles POST /api/v1/warehouses.
func (h *Handler) createWarehouse(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())

	var body warehouseBody
	if !decodeValid(w, r, &body) {
		return
	}

	warehouse, err := h.svc.CreateWarehouse(r.Context(), claims.UserID, app.WarehouseRequest{
		Code:    body.Code,
		Name:    body.Name,
		Address: body.Address,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, warehouse)
}

// getWarehouse handles GET /api/v1/warehouses/{id} — the warehouse plus its
// locations.
func (h *Handler) getWarehouse(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	warehouseID, ok := idParam(r, "id")
	if !ok {
		writeError(w, r, "invalid warehouse id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	result, err := h.svc.GetWarehouse(r.Context(), claims.UserID, warehouseID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// updateWarehouse handles PUT /api/v1/warehouses/{id}.
func (h *Handler) updateWarehouse(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	warehouseID, ok := idParam(r, "id")
	if !ok {
		writeError(w, r, "invalid warehouse id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	var body warehouseBody
	if !decodeValid(w, r, &body) {
		return
	}

	warehouse, err := h.svc.UpdateWarehouse(r.Context(), claims.UserID, warehouseID, app.WarehouseRequest{
		Code:    body.Code,
		Name:    body.Name,
		Address: body.Address,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, warehouse)
}

// deleteWarehouse handles DELETE /api/v1/warehouses/{id}.
func (h *Handler) deleteWarehouse(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	warehouseID, ok := idParam(r, "id")
	if !ok {
		writeError(w, r, "invalid warehouse id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	if err := h.svc.DeleteWarehouse(r.Context(), claims.UserID, warehouseID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// addLocation handles POST /api/v1/warehouses/{id}/locations. At least one
// of aisle, rack, shelf must be non-empty; the warehouse service enforces it.
func (h *Handler) addLocation(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	warehouseID, ok := idParam(r, "id")
	if !ok {
		writeError(w, r, "invalid warehouse id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	var body struct {
		Aisle string `json:"aisle"`
		Rack  string `json:"rack"`
		Shelf string `json:"shelf"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	location, err := h.svc.AddLocation(r.Context(), claims.UserID, warehouseID, app.LocationRequest{
		Aisle: body.Aisle,
		Rack:  body.Rack,
		Shelf: body.Shelf,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, location)
}

// removeLocation handles DELETE /api/v1/warehouses/{id}/locations/{locationID}.
func (h *Handler) removeLocation(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	warehouseID, ok := idParam(r, "id")
	if !ok {
		writeError(w, r, "invalid warehouse id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	locationID, ok := idParam(r, "locationID")
	if !ok {
		writeError(w, r, "invalid location id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	if err := h.svc.RemoveLocation(r.Context(), claims.UserID, warehouseID, locationID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
