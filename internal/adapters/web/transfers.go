package web

import (
	"net/http"

	"stockmaster/internal/app"

	"github.com/shopspring/decimal"
)

// transferLineBody is one line of a transfer payload. A nil from_location_id
// drains the source warehouse's slots in row order; a nil to_location_id
// lands in the destination warehouse-level slot.
type transferLineBody struct {
	ProductID      int             `json:"product_id" validate:"required,gt=0"`
	FromLocationID *int            `json:"from_location_id"`
	ToLocationID   *int            `json:"to_location_id"`
	Quantity       decimal.Decimal `json:"quantity"`
}

// transferBody is the JSON payload for recording an inter-warehouse transfer.
type transferBody struct {
	FromWarehouseID int                `json:"from_warehouse_id" validate:"required,gt=0"`
	ToWarehouseID   int                `json:"to_warehouse_id" validate:"required,gt=0"`
	TransferDate    string             `json:"transfer_date"`
	Notes           string             `json:"notes"`
	Lines           []transferLineBody `json:"lines" validate:"required,min=1,dive"`
}

// createTransfer handles POST /api/v1/transfers.
func (h *Handler) createTransfer(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())

	var body transferBody
	if !decodeValid(w, r, &body) {
		return
	}

	lines := make([]app.TransferLineInput, len(body.Lines))
	for i, l := range body.Lines {
		lines[i] = app.TransferLineInput{
			ProductID:      l.ProductID,
			FromLocationID: l.FromLocationID,
			ToLocationID:   l.ToLocationID,
			Quantity:       l.Quantity,
		}
	}

	transfer, err := h.svc.CreateTransfer(r.Context(), claims.UserID, app.CreateTransferRequest{
		FromWarehouseID: body.FromWarehouseID,
		ToWarehouseID:   body.ToWarehouseID,
		TransferDate:    body.TransferDate,
		Notes:           body.Notes,
		Lines:           lines,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, transfer)
}

// listTransfers handles GET /api/v1/transfers.
func (h *Handler) listTransfers(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())

	result, err := h.svc.ListTransfers(r.Context(), claims.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// getTransfer handles GET /api/v1/transfers/{id}.
func (h *Handler) getTransfer(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	transferID, ok := idParam(r, "id")
	if !ok {
		writeError(w, r, "invalid transfer id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	transfer, err := h.svc.GetTransfer(r.Context(), claims.UserID, transferID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, transfer)
}
