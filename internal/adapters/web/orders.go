package web

import (
	"net/http"

	"stockmaster/internal/app"

	"github.com/shopspring/decimal"
)

// orderLineBody is one line of an order creation payload.
type orderLineBody struct {
	ProductID int             `json:"product_id" validate:"required,gt=0"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// orderBody is the JSON payload for creating an order. warehouse_id is
// required for sales orders; order_date defaults to today when empty.
type orderBody struct {
	OrderType    string          `json:"order_type" validate:"required,oneof=purchase sales"`
	Counterparty string          `json:"counterparty" validate:"required"`
	WarehouseID  int             `json:"warehouse_id"`
	OrderDate    string          `json:"order_date"`
	Notes        string          `json:"notes"`
	Lines        []orderLineBody `json:"lines" validate:"required,min=1,dive"`
}

// createOrder handles POST /api/v1/orders.
func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())

	var body orderBody
	if !decodeValid(w, r, &body) {
		return
	}

	lines := make([]app.OrderLineInput, len(body.Lines))
	for i, l := range body.Lines {
		lines[i] = app.OrderLineInput{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		}
	}

	order, err := h.svc.CreateOrder(r.Context(), claims.UserID, app.CreateOrderRequest{
		OrderType:    body.OrderType,
		Counterparty: body.Counterparty,
		WarehouseID:  body.WarehouseID,
		OrderDate:    body.OrderDate,
		Notes:        body.Notes,
		Lines:        lines,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, order)
}

// listOrders handles GET /api/v1/orders?type=&status=.
func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	q := r.URL.Query()

	result, err := h.svc.ListOrders(r.Context(), claims.UserID, q.Get("type"), q.Get("status"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// getOrder handles GET /api/v1/orders/{id}.
func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	orderID, ok := idParam(r, "id")
	if !ok {
		writeError(w, r, "invalid order id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	order, err := h.svc.GetOrder(r.Context(), claims.UserID, orderID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, order)
}

// updateOrderStatus handles PUT /api/v1/orders/{id}/status.
func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	orderID, ok := idParam(r, "id")
	if !ok {
		writeError(w, r, "invalid order id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	var body struct {
		Status string `json:"status" validate:"required,oneof=pending confirmed completed cancelled"`
	}
	if !decodeValid(w, r, &body) {
		return
	}

	order, err := h.svc.UpdateOrderStatus(r.Context(), claims.UserID, orderID, body.Status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, order)
}
