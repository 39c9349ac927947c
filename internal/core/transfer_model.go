package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transfer statuses. Transfers apply their stock movement when created, so
// they commit straight to completed; pending exists for imported history.
const (
	TransferStatusPending   = "pending"
	TransferStatusCompleted = "completed"
)

// Transfer moves stock between two warehouses of the same owner.
type Transfer struct {
	ID                int            `json:"id"`
	OwnerID           int            `json:"owner_id"`
	TransferNumber    string         `json:"transfer_number"`
	FromWarehouseID   int            `json:"from_warehouse_id"`
	FromWarehouseCode string         `json:"from_warehouse_code"` // joined from warehouses
	ToWarehouseID     int            `json:"to_warehouse_id"`
	ToWarehouseCode   string         `json:"to_warehouse_code"` // joined from warehouses
	Status            string         `json:"status"`
	TransferDate      string         `json:"transfer_date"` // YYYY-MM-DD
	Notes             string         `json:"notes"`
	Items             []TransferItem `json:"items"`
	CreatedAt         time.Time      `json:"created_at"`
}

// TransferItem is one moved line. FromLocation narrows which source slot is
// drained (nil walks all slots); ToLocation is the destination slot.
type TransferItem struct {
	ID                int             `json:"id"`
	TransferID        int             `json:"transfer_id"`
	ProductID         int             `json:"product_id"`
	SKU               string          `json:"sku"`          // joined from products
	ProductName       string          `json:"product_name"` // joined from products
	FromLocationID    *int            `json:"from_location_id,omitempty"`
	FromLocationLabel string          `json:"from_location_label"`
	ToLocationID      *int            `json:"to_location_id,omitempty"`
	ToLocationLabel   string          `json:"to_location_label"`
	Quantity          decimal.Decimal `json:"quantity"`
}

// TransferLineInput is one requested line when creating a transfer.
type TransferLineInput struct {
	ProductID      int
	FromLocationID *int
	ToLocationID   *int
	Quantity       decimal.Decimal
}

// TransferInput is the payload for CreateTransfer.
type TransferInput struct {
	FromWarehouseID int
	ToWarehouseID   int
	TransferDate    string // YYYY-MM-DD; empty means today
	Notes           string
	Lines           []TransferLineInput
}
