package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is an account holder. Every top-level record in the system carries the
// creating user's id as owner_id, and all service queries scope by it.
type User struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `json:"display_name"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// Product is a catalog entry. ReorderLevel is the threshold below which the
// product is flagged low-stock; zero means no threshold is set.
type Product struct {
	ID            int             `json:"id"`
	OwnerID       int             `json:"owner_id"`
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	UnitOfMeasure string          `json:"unit_of_measure"`
	ReorderLevel  decimal.Decimal `json:"reorder_level"`
	CostPrice     decimal.Decimal `json:"cost_price"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	OnHand        decimal.Decimal `json:"on_hand"` // total quantity across all stock rows
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ProductInput is the payload for creating or updating a product.
type ProductInput struct {
	SKU           string
	Name          string
	Category      string
	UnitOfMeasure string
	ReorderLevel  decimal.Decimal
	CostPrice     decimal.Decimal
	SellingPrice  decimal.Decimal
}

// Warehouse is a physical stock-holding site, owned by the user who created it.
type Warehouse struct {
	ID        int       `json:"id"`
	OwnerID   int       `json:"owner_id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}

// WarehouseInput is the payload for creating or updating a warehouse.
type WarehouseInput struct {
	Code    string
	Name    string
	Address string
}

// Location is a named slot inside a warehouse (aisle/rack/shelf descriptors
// are all optional). Stock rows may reference a location or sit directly on
// the warehouse (NULL location).
type Location struct {
	ID          int       `json:"id"`
	WarehouseID int       `json:"warehouse_id"`
	Aisle       string    `json:"aisle"`
	Rack        string    `json:"rack"`
	Shelf       string    `json:"shelf"`
	CreatedAt   time.Time `json:"created_at"`
}

// LocationInput is the payload for creating a location.
type LocationInput struct {
	Aisle string
	Rack  string
	Shelf string
}

// Label is the human-readable form used on stock listings and exports,
// e.g. "A1/R2/S3". Empty descriptors are skipped; all empty yields "".
func (l Location) Label() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{l.Aisle, l.Rack, l.Shelf} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	label := ""
	for i, p := range parts {
		if i > 0 {
			label += "/"
		}
		label += p
	}
	return label
}
