package web

import (
	"net/http"

	"stockmaster/internal/app"

	"github.com/shopspring/decimal"
)

// receiptLineBody is one line of a goods receipt payload. A nil location_id
// receives into the warehouse-level slot.
type receiptLineBody struct {
	ProductID  int             `json:"product_id" validate:"required,gt=0"`
	LocationID *int            `json:"location_id"`
	Quantity   decimal.Decimal `json:"quantity"`
}

// receiptBody is the JSON payload for recording a goods receipt. order_id
// optionally links the receipt to a purchase order.
type receiptBody struct {
	OrderID     int               `json:"order_id"`
	WarehouseID int               `json:"warehouse_id" validate:"required,gt=0"`
	ReceiptDate string            `json:"receipt_date"`
	Notes       string            `json:"notes"`
	Lines       []receiptLineBody `json:"lines" validate:"required,min=1,dive"`
}

// createReceipt handles POST /api/v1/receipts.
func (h *Handler) createReceipt(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())

	var body receiptBody
	if !decodeValid(w, r, &body) {
		return
	}

	lines := make([]app.ReceiptLineInput, len(body.Lines))
	for i, l := range body.Lines {
		lines[i] = app.ReceiptLineInput{
			ProductID:  l.ProductID,
			LocationID: l.LocationID,
			Quantity:   l.Quantity,
		}
	}

	receipt, err := h.svc.CreateReceipt(r.Context(), claims.UserID, app.CreateReceiptRequest{
		OrderID:     body.OrderID,
		WarehouseID: body.WarehouseID,
		ReceiptDate: body.ReceiptDate,
		Notes:       body.Notes,
		Lines:       lines,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, receipt)
}

// listReceipts handles GET /api/v1/receipts.
func (h *Handler) listReceipts(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())

	result, err := h.svc.ListReceipts(r.Context(), claims.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// getReceipt handles GET /api/v1/receipts/{id}.
func (h *Handler) getReceipt(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	receiptID, ok := idParam(r, "id")
	if !ok {
		writeError(w, r, "invalid receipt id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	receipt, err := h.svc.GetReceipt(r.Context(), claims.UserID, receiptID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, receipt)
}
