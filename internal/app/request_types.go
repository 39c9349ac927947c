package app

import "github.com/shopspring/decimal"

// RegisterRequest is the input for creating a new account.
type RegisterRequest struct {
	Email       string
	Password    string
	DisplayName string
}

// UpdateProfileRequest is the input for changing a user's profile.
// CurrentPassword is only consulted when NewPassword is set.
type UpdateProfileRequest struct {
	DisplayName     string
	CurrentPassword string
	NewPassword     string
}

// ProductRequest is the input for creating or updating a catalog product.
type ProductRequest struct {
	SKU           string
	Name          string
	Category      string
	UnitOfMeasure string
	ReorderLevel  decimal.Decimal
	CostPrice     decimal.Decimal
	SellingPrice  decimal.Decimal
}

// ProductListRequest narrows ListProducts. Zero values mean "no filter".
type ProductListRequest struct {
	Search   string
	Category string
	LowStock bool
}

// WarehouseRequest is the input for creating or updating a warehouse.
type WarehouseRequest struct {
	Code    string
	Name    string
	Address string
}

// LocationRequest is the input for adding a location to a warehouse.
// At least one descriptor must be non-empty.
type LocationRequest struct {
	Aisle string
	Rack  string
	Shelf string
}

// StockBrowseRequest filters and pages the stock listing.
type StockBrowseRequest struct {
	ProductID    int
	WarehouseID  int
	LocationID   int
	SKU          string
	BelowReorder bool
	Page         int // 1-based; zero means first page
	Limit        int // zero means the default page size
}

// CreateOrderRequest is the input for submitting a purchase or sales order.
type CreateOrderRequest struct {
	OrderType    string
	Counterparty string
	WarehouseID  int    // required for sales orders
	OrderDate    string // YYYY-MM-DD; empty means today
	Notes        string
	Lines        []OrderLineInput
}

// OrderLineInput is a single line within a CreateOrderRequest.
type OrderLineInput struct {
	ProductID int
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal // zero means "use the catalog price"
}

// CreateReceiptRequest is the input for recording a goods receipt.
type CreateReceiptRequest struct {
	OrderID     int // optional parent purchase order
	WarehouseID int
	ReceiptDate string // YYYY-MM-DD; empty means today
	Notes       string
	Lines       []ReceiptLineInput
}

// ReceiptLineInput is a single line within a CreateReceiptRequest.
type ReceiptLineInput struct {
	ProductID  int
	LocationID *int // nil receives into the warehouse-level slot
	Quantity   decimal.Decimal
}

// CreateTransferRequest is the input for recording an inter-warehouse
// transfer.
type CreateTransferRequest struct {
	FromWarehouseID int
	ToWarehouseID   int
	TransferDate    string // YYYY-MM-DD; empty means today
	Notes           string
	Lines           []TransferLineInput
}

// TransferLineInput is a single line within a CreateTransferRequest.
type TransferLineInput struct {
	ProductID      int
	FromLocationID *int // nil drains the source warehouse's slots in row order
	ToLocationID   *int // nil lands in the destination warehouse-level slot
	Quantity       decimal.Decimal
}
