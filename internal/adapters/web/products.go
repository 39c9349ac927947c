package web

import (
	"net/http"
	"strconv"

	"stockmaster/internal/app"

	"github.com/shopspring/decimal"
)

// productBody is the JSON payload for creating or updating a product.
// Price and quantity fields accept JSON numbers or numeric strings; negative
// values are rejected by the catalog service.
type productBody struct {
	SKU           string          `json:"sku" validate:"required"`
	Name          string          `json:"name" validate:"required"`
	Category      string          `json:"category"`
	UnitOfMeasure string          `json:"unit_of_measure"`
	ReorderLevel  decimal.Decimal `json:"reorder_level"`
	CostPrice     decimal.Decimal `json:"cost_price"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
}

func (b productBody) toRequest() app.ProductRequest {
	return app.ProductRequest{
		SKU:           b.SKU,
		Name:          b.Name,
		Category:      b.Category,
		UnitOfMeasure: b.UnitOfMeasure,
		ReorderLevel:  b.ReorderLevel,
		CostPrice:     b.CostPrice,
		SellingPrice:  b.SellingPrice,
	}
}

// listProducts handles GET /api/v1/products?search=&category=&low_stock=.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	q := r.URL.Query()
	lowStock, _ := strconv.ParseBool(q.Get("low_stock"))

	result, err := h.svc.ListProducts(r.Context(), claims.UserID, app.ProductListRequest{
		Search:   q.Get("search"),
		Category: q.Get("category"),
		LowStock: lowStock,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// createProduct handles POST /api/v1/products.
func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())

	var body productBody
	if !decodeValid(w, r, &body) {
		return
	}

	product, err := h.svc.CreateProduct(r.Context(), claims.UserID, body.toRequest())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, product)
}

// getProduct handles GET /api/v1/products/{id}.
func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	productID, ok := idParam(r, "id")
	if !ok {
		writeError(w, r, "invalid product id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	product, err := h.svc.GetProduct(r.Context(), claims.UserID, productID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, product)
}

// updateProduct handles PUT /api/v1/products/{id}.
func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	productID, ok := idParam(r, "id")
	if !ok {
		writeError(w, r, "invalid product id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	var body productBody
	if !decodeValid(w, r, &body) {
		return
	}

	product, err := h.svc.UpdateProduct(r.Context(), claims.UserID, productID, body.toRequest())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, product)
}

// deleteProduct handles DELETE /api/v1/products/{id}.
func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	productID, ok := idParam(r, "id")
	if !ok {
		writeError(w, r, "invalid product id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	if err := h.svc.DeleteProduct(r.Context(), claims.UserID, productID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
