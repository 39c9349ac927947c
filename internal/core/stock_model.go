package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockRow is one (product, warehouse, optional location) quantity record,
// joined with its product/warehouse/location names for listing.
// Available is quantity minus reserved_quantity, computed in the query.
type StockRow struct {
	ID            int             `json:"id"`
	ProductID     int             `json:"product_id"`
	SKU           string          `json:"sku"`
	ProductName   string          `json:"product_name"`
	WarehouseID   int             `json:"warehouse_id"`
	WarehouseCode string          `json:"warehouse_code"`
	WarehouseName string          `json:"warehouse_name"`
	LocationID    *int            `json:"location_id,omitempty"`
	LocationLabel string          `json:"location_label"`
	Quantity      decimal.Decimal `json:"quantity"`
	Reserved      decimal.Decimal `json:"reserved_quantity"`
	Available     decimal.Decimal `json:"available_quantity"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// StockFilter narrows ListStock results. Zero values mean "no filter".
// BelowReorder keeps only rows whose available quantity has fallen below the
// product's reorder level (rows of products with no reorder level never match).
type StockFilter struct {
	ProductID    int
	WarehouseID  int
	LocationID   int
	SKU          string // exact match
	BelowReorder bool
	Page         int // 1-based; 0 means first page
	Limit        int // 0 means DefaultStockPageSize
}

const (
	DefaultStockPageSize = 50
	MaxStockPageSize     = 200
)

// ReceiveLine adds quantity to one stock slot. SKU is carried for error messages.
type ReceiveLine struct {
	ProductID  int
	SKU        string
	LocationID *int
	Quantity   decimal.Decimal
}

// DeductLine removes quantity for one product from a warehouse. When
// LocationID is nil the deduction walks every slot of the product in the
// warehouse in row order; when set, only that slot is touched.
type DeductLine struct {
	ProductID  int
	SKU        string
	LocationID *int
	Quantity   decimal.Decimal
}

// MoveLine moves quantity of one product between two warehouses.
type MoveLine struct {
	ProductID      int
	SKU            string
	FromLocationID *int
	ToLocationID   *int
	Quantity       decimal.Decimal
}

// StockSlot is a stock row reduced to what the deduction planner needs.
type StockSlot struct {
	StockID   int
	Available decimal.Decimal
}

// Deduction is one planned write against a stock row.
type Deduction struct {
	StockID int
	Take    decimal.Decimal
}
