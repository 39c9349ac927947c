package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order types.
const (
	OrderTypePurchase = "purchase"
	OrderTypeSales    = "sales"
)

// Order statuses.
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

// Order is a purchase or sales document header.
// Status progresses through the state machine:
//
//	pending → confirmed → completed
//	pending | confirmed → cancelled
//
// completed and cancelled are terminal. Cancelling a sales order returns the
// stock its creation deducted.
type Order struct {
	ID            int             `json:"id"`
	OwnerID       int             `json:"owner_id"`
	OrderNumber   string          `json:"order_number"`
	OrderType     string          `json:"order_type"`
	Status        string          `json:"status"`
	Counterparty  string          `json:"counterparty"`
	WarehouseID   *int            `json:"warehouse_id,omitempty"`
	WarehouseCode string          `json:"warehouse_code,omitempty"` // joined from warehouses
	OrderDate     string          `json:"order_date"`               // YYYY-MM-DD
	Notes         string          `json:"notes"`
	TotalAmount   decimal.Decimal `json:"total_amount"` // summed from items
	Items         []OrderItem     `json:"items"`
	CreatedAt     time.Time       `json:"created_at"`
}

// OrderItem is one line on an order.
type OrderItem struct {
	ID          int             `json:"id"`
	OrderID     int             `json:"order_id"`
	ProductID   int             `json:"product_id"`
	SKU         string          `json:"sku"`          // joined from products
	ProductName string          `json:"product_name"` // joined from products
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// OrderLineInput is one requested line when creating an order.
// A zero UnitPrice means "use the catalog price": selling price on sales
// orders, cost price on purchase orders.
type OrderLineInput struct {
	ProductID int
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// OrderInput is the payload for CreateOrder.
type OrderInput struct {
	OrderType    string
	Counterparty string
	// WarehouseID is the stock source for sales orders (required) and an
	// optional delivery hint for purchase orders.
	WarehouseID int
	OrderDate   string // YYYY-MM-DD; empty means today
	Notes       string
	Lines       []OrderLineInput
}

// OrderFilter narrows GetOrders. Zero values mean "no filter".
type OrderFilter struct {
	OrderType string
	Status    string
}

// CanTransitionOrder reports whether an order status change is allowed.
func CanTransitionOrder(from, to string) bool {
	switch from {
	case OrderStatusPending:
		return to == OrderStatusConfirmed || to == OrderStatusCancelled
	case OrderStatusConfirmed:
		return to == OrderStatusCompleted || to == OrderStatusCancelled
	default:
		return false
	}
}
