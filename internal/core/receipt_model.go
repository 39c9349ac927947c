package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Receipt is a goods receipt: stock arriving into one warehouse, optionally
// against a purchase order.
type Receipt struct {
	ID            int           `json:"id"`
	OwnerID       int           `json:"owner_id"`
	ReceiptNumber string        `json:"receipt_number"`
	OrderID       *int          `json:"order_id,omitempty"`
	OrderNumber   string        `json:"order_number,omitempty"` // joined from orders
	WarehouseID   int           `json:"warehouse_id"`
	WarehouseCode string        `json:"warehouse_code"` // joined from warehouses
	ReceiptDate   string        `json:"receipt_date"`   // YYYY-MM-DD
	Notes         string        `json:"notes"`
	Items         []ReceiptItem `json:"items"`
	CreatedAt     time.Time     `json:"created_at"`
}

// ReceiptItem is one received line. Location is the destination slot inside
// the receipt's warehouse; nil means the warehouse-level slot.
type ReceiptItem struct {
	ID            int             `json:"id"`
	ReceiptID     int             `json:"receipt_id"`
	ProductID     int             `json:"product_id"`
	SKU           string          `json:"sku"`          // joined from products
	ProductName   string          `json:"product_name"` // joined from products
	LocationID    *int            `json:"location_id,omitempty"`
	LocationLabel string          `json:"location_label"`
	Quantity      decimal.Decimal `json:"quantity"`
}

// ReceiptLineInput is one requested line when creating a receipt.
type ReceiptLineInput struct {
	ProductID  int
	LocationID *int
	Quantity   decimal.Decimal
}

// ReceiptInput is the payload for CreateReceipt. OrderID, when non-zero,
// links the receipt to a purchase order of the same owner.
type ReceiptInput struct {
	OrderID     int
	WarehouseID int
	ReceiptDate string // YYYY-MM-DD; empty means today
	Notes       string
	Lines       []ReceiptLineInput
}
